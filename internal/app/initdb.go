package app

import (
	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/pkg/common"
	"go.uber.org/zap"
)

var demoCars = []domain.Car{
	{Make: "Toyota", Model: "Hilux 2.8 GD-6", Year: 2021, Price: "N$ 585,000", Mileage: 48000, Location: "Windhoek", Condition: "Used", BodyType: "Bakkie", Transmission: "Automatic", FuelType: "Diesel", DriveType: "4x4", SellerName: "ExiDealers"},
	{Make: "Volkswagen", Model: "Polo Vivo", Year: 2019, Price: "N$ 165,000", Mileage: 72000, Location: "Swakopmund", Condition: "Used", BodyType: "Hatchback", Transmission: "Manual", FuelType: "Petrol", DriveType: "FWD", SellerName: "ExiDealers"},
	{Make: "Ford", Model: "Ranger Wildtrak", Year: 2022, Price: "POA", Mileage: 21000, Location: "Windhoek", Condition: "Used", BodyType: "Bakkie", Transmission: "Automatic", FuelType: "Diesel", DriveType: "4x4", SellerName: "ExiDealers"},
	{Make: "Nissan", Model: "NP200", Year: 2017, Price: "N$ 98 500", Mileage: 131000, Location: "Oshakati", Condition: "Used", BodyType: "Bakkie", Transmission: "Manual", FuelType: "Petrol", DriveType: "RWD", SellerName: "ExiDealers"},
	{Make: "Mercedes-Benz", Model: "C200", Year: 2020, Price: "N$ 455,000", Mileage: 39000, Location: "Walvis Bay", Condition: "Used", BodyType: "Sedan", Transmission: "Automatic", FuelType: "Petrol", DriveType: "RWD", SellerName: "ExiDealers"},
}

// checkDemoCars seeds a few approved listings into an empty inventory
func (a *Application) checkDemoCars() {
	var count int64
	if err := a.gormDB.Model(&domain.Car{}).Count(&count).Error; err != nil {
		zap.L().Error("failed to count cars", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	for _, c := range demoCars {
		car := c
		car.Status = common.StatusApproved
		car.PreferredContact = "email"
		if err := a.gormDB.Create(&car).Error; err != nil {
			zap.L().Error("failed to seed demo car", zap.String("model", car.Model), zap.Error(err))
			return
		}
	}
	zap.L().Info("seeded demo inventory", zap.Int("cars", len(demoCars)))
}
