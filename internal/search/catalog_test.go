package search

import (
	"context"
	"errors"
	"testing"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/testutil"
	"github.com/exidealers/marketplace/pkg/common"
	"gorm.io/gorm"
)

func TestCatalogBrandsAndModels(t *testing.T) {
	db := testutil.OpenDB(t)
	seedCars(t, db,
		domain.Car{Make: "Toyota", Model: "Hilux", Year: 2020, Price: "1"},
		domain.Car{Make: "Toyota", Model: "Corolla", Year: 2020, Price: "1"},
		domain.Car{Make: "Toyota", Model: "Hilux", Year: 2021, Price: "1"},
		domain.Car{Make: "Audi", Model: "A4", Year: 2018, Price: "1"},
		domain.Car{Make: "Zotye", Model: "T600", Year: 2018, Price: "1", Status: common.StatusPending},
	)
	cat := NewCatalog(db, common.StatusApproved)
	ctx := context.Background()

	brands, err := cat.Brands(ctx)
	if err != nil {
		t.Fatalf("brands: %v", err)
	}
	if len(brands) != 2 || brands[0] != "Audi" || brands[1] != "Toyota" {
		t.Fatalf("unexpected brands %v", brands)
	}

	models, err := cat.BrandModels(ctx)
	if err != nil {
		t.Fatalf("brand models: %v", err)
	}
	toyota := models["Toyota"]
	if len(toyota) != 2 || toyota[0].Name != "Corolla" || toyota[1].Name != "Hilux" || toyota[1].Count != 2 {
		t.Fatalf("unexpected toyota models %+v", toyota)
	}
	if _, ok := models["Zotye"]; ok {
		t.Fatalf("pending listings must not be counted")
	}
}

func TestCatalogGetOrdersImages(t *testing.T) {
	db := testutil.OpenDB(t)
	car := domain.Car{Make: "Mazda", Model: "CX-5", Year: 2019, Price: "N$ 300 000", Status: common.StatusApproved,
		Images: []domain.CarImage{
			{ImageURL: "/uploads/b.jpg", SortOrder: 1},
			{ImageURL: "/uploads/a.jpg", SortOrder: 0, IsPrimary: true},
		},
	}
	if err := db.Create(&car).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := NewCatalog(db, "").Get(context.Background(), car.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Images) != 2 || got.Images[0].ImageURL != "/uploads/a.jpg" {
		t.Fatalf("unexpected images %+v", got.Images)
	}
	if got.PriceValue == nil || *got.PriceValue != 300000 {
		t.Fatalf("price value not maintained: %v", got.PriceValue)
	}

	_, err = NewCatalog(db, "").Get(context.Background(), car.ID+100)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
