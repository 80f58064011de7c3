package domain

import "time"

// CarEnquiry is a question sent to the dealer about a listing
type CarEnquiry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id" csv:"id"`
	CarID     int64     `gorm:"index" json:"carId" csv:"car_id"`
	CarName   string    `gorm:"size:255" json:"carName" csv:"car_name"`
	FullName  string    `gorm:"size:200;not null" json:"fullName" csv:"full_name"`
	Email     string    `gorm:"size:255;not null" json:"email" csv:"email"`
	Phone     string    `gorm:"size:50" json:"phone" csv:"phone"`
	Message   string    `gorm:"type:text" json:"message" csv:"message"`
	CreatedAt time.Time `json:"createdAt" csv:"created_at"`
}

func (CarEnquiry) TableName() string {
	return "car_enquiries"
}

// ContactMessage is a message left through the contact form
type ContactMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id" csv:"id"`
	Name      string    `gorm:"size:200;not null" json:"name" csv:"name"`
	Email     string    `gorm:"size:255;not null" json:"email" csv:"email"`
	Subject   string    `gorm:"size:255;default:No Subject" json:"subject" csv:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message" csv:"message"`
	CreatedAt time.Time `json:"createdAt" csv:"created_at"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}

type NewsletterSubscriber struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id" csv:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email" csv:"email"`
	SubscribedAt time.Time `json:"subscribedAt" csv:"subscribed_at"`
}

func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
