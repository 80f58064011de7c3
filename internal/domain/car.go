package domain

import (
	"time"

	"github.com/exidealers/marketplace/internal/pricing"
	"gorm.io/gorm"
)

// Car is a vehicle listing. Price keeps the seller's display text ("N$ 125,000", "POA");
// PriceValue holds its normalized numeric form and stays NULL when the price is unknown.
type Car struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Make             string     `gorm:"size:100;index;not null" json:"make"`
	Model            string     `gorm:"size:100;index;not null" json:"model"`
	Year             int        `gorm:"index" json:"year"`
	Price            string     `gorm:"size:100" json:"price"`
	PriceValue       *float64   `gorm:"index" json:"priceValue"`
	Mileage          int        `gorm:"index" json:"mileage"`
	Location         string     `gorm:"size:200;index" json:"location"`
	Description      string     `gorm:"type:text" json:"description"`
	Condition        string     `gorm:"size:32" json:"condition"`
	SellerName       string     `gorm:"size:200" json:"sellerName"`
	SellerEmail      string     `gorm:"size:255" json:"sellerEmail"`
	SellerPhone      string     `gorm:"size:50" json:"sellerPhone"`
	PreferredContact string     `gorm:"size:16;default:email" json:"preferredContact"`
	BodyType         string     `gorm:"size:50;index" json:"bodyType"`
	Transmission     string     `gorm:"size:50" json:"transmission"`
	FuelType         string     `gorm:"size:50" json:"fuelType"`
	DriveType        string     `gorm:"size:50" json:"driveType"`
	Status           string     `gorm:"size:16;index;default:approved" json:"status"`
	Images           []CarImage `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt        time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (Car) TableName() string {
	return "cars"
}

// BeforeSave keeps PriceValue in sync with the display price
func (c *Car) BeforeSave(tx *gorm.DB) error {
	p := pricing.NormalizeString(c.Price)
	if p.Known {
		v := p.Value
		c.PriceValue = &v
	} else {
		c.PriceValue = nil
	}
	return nil
}

// NormalizedPrice returns the numeric price derived from the display text
func (c *Car) NormalizedPrice() pricing.Price {
	return pricing.NormalizeString(c.Price)
}

// PrimaryImage returns the image flagged primary, or the first one
func (c *Car) PrimaryImage() *CarImage {
	for i := range c.Images {
		if c.Images[i].IsPrimary {
			return &c.Images[i]
		}
	}
	if len(c.Images) > 0 {
		return &c.Images[0]
	}
	return nil
}

// CarImage is an ordered picture attached to a listing
type CarImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CarID     int64     `gorm:"index;not null" json:"carId"`
	ImageURL  string    `gorm:"size:1024;not null" json:"imageUrl"`
	IsPrimary bool      `gorm:"default:false" json:"isPrimary"`
	SortOrder int       `gorm:"default:0" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

func (CarImage) TableName() string {
	return "car_images"
}
