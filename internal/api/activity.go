package api

import (
	"net/http"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/webserver"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const recentActivityLimit = 20

func registerActivityRoutes() {
	webserver.UserGET("/user/activity", listActivity)
}

func listActivity(c echo.Context) error {
	uid := webserver.CurrentUserID(c)
	if uid == 0 {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "A member account is required", nil)
	}
	activities := make([]domain.UserActivity, 0)
	err := GetDB(c).
		Where("user_id = ?", uid).
		Preload("Car").
		Preload("Car.Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Order("created_at DESC, id DESC").
		Limit(recentActivityLimit).
		Find(&activities).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query activity", err.Error())
	}
	return ok(c, activities)
}
