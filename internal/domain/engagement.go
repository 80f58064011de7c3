package domain

import "time"

const (
	ActivityView           = "view"
	ActivityFavoriteAdd    = "favorite_add"
	ActivityFavoriteRemove = "favorite_remove"
	ActivitySaveAdd        = "save_add"
	ActivitySaveRemove     = "save_remove"
	ActivityPriceAlertSet  = "price_alert_set"
	ActivityEnquirySent    = "enquiry_sent"
)

// UserFavorite marks a car as a favorite of a user
type UserFavorite struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_user_car_favorite;not null" json:"userId"`
	CarID     int64     `gorm:"uniqueIndex:idx_user_car_favorite;not null" json:"carId"`
	Car       *Car      `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE" json:"car,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (UserFavorite) TableName() string {
	return "user_favorites"
}

// UserSaved marks a car as saved for later by a user
type UserSaved struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_user_car_saved;not null" json:"userId"`
	CarID     int64     `gorm:"uniqueIndex:idx_user_car_saved;not null" json:"carId"`
	Car       *Car      `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE" json:"car,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (UserSaved) TableName() string {
	return "user_saved"
}

// PriceAlert asks to be notified when a car's price drops.
// UserID is nil for alerts created without an account.
type PriceAlert struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         *int64     `gorm:"index" json:"userId"`
	FirstName      string     `gorm:"size:100" json:"firstName"`
	LastName       string     `gorm:"size:100" json:"lastName"`
	Email          string     `gorm:"size:255;index;not null" json:"email"`
	Phone          string     `gorm:"size:50" json:"phone"`
	CarID          int64      `gorm:"index;not null" json:"carId"`
	CarMake        string     `gorm:"size:100" json:"carMake"`
	CarModel       string     `gorm:"size:100" json:"carModel"`
	CarYear        int        `json:"carYear"`
	CarPrice       string     `gorm:"size:100" json:"carPrice"`
	CarMileage     int        `json:"carMileage"`
	CarLocation    string     `gorm:"size:200" json:"carLocation"`
	SimilarCars    bool       `gorm:"default:false" json:"similarCars"`
	IsActive       bool       `gorm:"index;default:true" json:"isActive"`
	LastNotifiedAt *time.Time `json:"lastNotifiedAt"`
	Car            *Car       `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE" json:"car,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (PriceAlert) TableName() string {
	return "price_alerts"
}

// UserActivity is one entry of a member's recent activity feed
type UserActivity struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"index;not null" json:"userId"`
	CarID        *int64    `gorm:"index" json:"carId"`
	ActivityType string    `gorm:"size:32;index;not null" json:"activityType"`
	Details      string    `gorm:"type:text" json:"details"`
	Car          *Car      `gorm:"foreignKey:CarID;constraint:OnDelete:SET NULL" json:"car,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}
