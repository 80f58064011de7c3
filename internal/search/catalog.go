package search

import (
	"context"
	"sort"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ModelCount is the number of listings for one model of a brand
type ModelCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Catalog answers the lookup queries behind the search form and the detail page
type Catalog struct {
	db     *gorm.DB
	status string
}

func NewCatalog(db *gorm.DB, status string) *Catalog {
	return &Catalog{db: db, status: status}
}

func (c *Catalog) base(ctx context.Context) *gorm.DB {
	db := c.db.WithContext(ctx).Model(&domain.Car{})
	if c.status != "" {
		db = db.Where("status = ?", c.status)
	}
	return db
}

// Brands returns the distinct makes in ascending order
func (c *Catalog) Brands(ctx context.Context) ([]string, error) {
	brands := make([]string, 0)
	if err := c.base(ctx).Distinct("make").Order("make ASC").Pluck("make", &brands).Error; err != nil {
		return nil, errors.Wrap(err, "query brands")
	}
	return brands, nil
}

// BrandModels groups listing counts by make and model, models sorted by name
func (c *Catalog) BrandModels(ctx context.Context) (map[string][]ModelCount, error) {
	var rows []struct {
		Make  string
		Model string
		Total int64
	}
	err := c.base(ctx).
		Select("make, model, COUNT(*) AS total").
		Group("make, model").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query brand models")
	}

	result := make(map[string][]ModelCount)
	for _, r := range rows {
		result[r.Make] = append(result[r.Make], ModelCount{Name: r.Model, Count: r.Total})
	}
	for _, models := range result {
		sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	}
	return result, nil
}

// Get loads one car with its images in display order
func (c *Catalog) Get(ctx context.Context, id int64) (*domain.Car, error) {
	var car domain.Car
	err := c.base(ctx).Preload("Images", orderedImages).Where("id = ?", id).First(&car).Error
	if err != nil {
		return nil, err
	}
	return &car, nil
}
