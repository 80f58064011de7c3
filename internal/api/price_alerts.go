package api

import (
	"net/http"
	"strings"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type priceAlertPayload struct {
	FirstName   string `json:"firstName" validate:"omitempty,max=100"`
	LastName    string `json:"lastName" validate:"omitempty,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=50"`
	CarID       int64  `json:"carId" validate:"required,gt=0"`
	SimilarCars bool   `json:"similarCars"`
}

type memberAlertPayload struct {
	CarID       int64 `json:"carId" validate:"required,gt=0"`
	SimilarCars bool  `json:"similarCars"`
}

type deactivatePayload struct {
	Email string `json:"email" validate:"required,email"`
}

// registerPriceAlertRoutes registers anonymous, member and admin price alert routes
func registerPriceAlertRoutes() {
	webserver.ApiPOST("/price-alerts", createPriceAlert, webserver.OptionalAuth())
	webserver.ApiGET("/price-alerts/:email", listAlertsByEmail)
	webserver.ApiPUT("/price-alerts/:id/deactivate", deactivatePriceAlert)

	webserver.UserGET("/user/alerts", listMemberAlerts)
	webserver.UserPOST("/user/alerts", createMemberAlert)
	webserver.UserDELETE("/user/alerts/:alertId", deactivateMemberAlert)

	webserver.AdminGET("/price-alerts", adminListAlerts)
	webserver.AdminDELETE("/price-alerts/:id", adminDeleteAlert)
	webserver.AdminPOST("/price-alerts/sweep", adminRunSweep)
}

// upsertAlert snapshots the car into a new alert unless an active one exists for the
// same email and car. The recorded price is the baseline of the price drop sweep.
func upsertAlert(c echo.Context, alert domain.PriceAlert) (*domain.PriceAlert, bool, error) {
	db := GetDB(c)
	var car domain.Car
	if err := db.First(&car, alert.CarID).Error; err != nil {
		return nil, false, err
	}

	var existing domain.PriceAlert
	err := db.Where("email = ? AND car_id = ? AND is_active = ?", alert.Email, alert.CarID, true).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	alert.CarMake = car.Make
	alert.CarModel = car.Model
	alert.CarYear = car.Year
	alert.CarPrice = car.Price
	alert.CarMileage = car.Mileage
	alert.CarLocation = car.Location
	alert.IsActive = true
	if err := db.Create(&alert).Error; err != nil {
		return nil, false, err
	}
	if alert.UserID != nil {
		logActivity(c, *alert.UserID, domain.ActivityPriceAlertSet, &car.ID, car.Make+" "+car.Model)
	}
	return &alert, true, nil
}

func alertResponse(c echo.Context, alert *domain.PriceAlert, isNew bool, err error) error {
	if isNotFound(err) {
		return fail(c, http.StatusNotFound, "CAR_NOT_FOUND", "Car not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create price alert", err.Error())
	}
	message := "Alert already exists for this car"
	if isNew {
		message = "Price alert created successfully"
	}
	return ok(c, map[string]interface{}{
		"created": isNew,
		"message": message,
		"alert":   alert,
	})
}

// createPriceAlert works without an account; a logged in member gets the alert attached
func createPriceAlert(c echo.Context) error {
	var payload priceAlertPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price alert", nil)
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	alert := domain.PriceAlert{
		FirstName:   strings.TrimSpace(payload.FirstName),
		LastName:    strings.TrimSpace(payload.LastName),
		Email:       payload.Email,
		Phone:       strings.TrimSpace(payload.Phone),
		CarID:       payload.CarID,
		SimilarCars: payload.SimilarCars,
	}
	if uid := webserver.CurrentUserID(c); uid > 0 {
		alert.UserID = &uid
	}
	saved, isNew, err := upsertAlert(c, alert)
	return alertResponse(c, saved, isNew, err)
}

func listAlertsByEmail(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	if email == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Email is required", nil)
	}
	alerts := make([]domain.PriceAlert, 0)
	if err := GetDB(c).Where("email = ?", email).Order("created_at DESC").Find(&alerts).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price alerts", err.Error())
	}
	return ok(c, alerts)
}

// deactivatePriceAlert requires the subscriber's email so ids cannot be enumerated
func deactivatePriceAlert(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid alert ID", nil)
	}
	var payload deactivatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", nil)
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	return setAlertInactive(c, GetDB(c).Where("id = ? AND email = ?", id, payload.Email))
}

func setAlertInactive(c echo.Context, scope *gorm.DB) error {
	res := scope.Model(&domain.PriceAlert{}).Update("is_active", false)
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to deactivate alert", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "ALERT_NOT_FOUND", "Alert not found", nil)
	}
	return ok(c, map[string]interface{}{"message": "Alert deactivated"})
}

func listMemberAlerts(c echo.Context) error {
	uid := webserver.CurrentUserID(c)
	if uid == 0 {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "A member account is required", nil)
	}
	alerts := make([]domain.PriceAlert, 0)
	err := GetDB(c).
		Where("user_id = ? AND is_active = ?", uid, true).
		Preload("Car").
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price alerts", err.Error())
	}
	return ok(c, alerts)
}

func createMemberAlert(c echo.Context) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	var payload memberAlertPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price alert", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	uid := user.ID
	saved, isNew, err := upsertAlert(c, domain.PriceAlert{
		UserID:      &uid,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		Phone:       user.Phone,
		CarID:       payload.CarID,
		SimilarCars: payload.SimilarCars,
	})
	return alertResponse(c, saved, isNew, err)
}

func deactivateMemberAlert(c echo.Context) error {
	uid := webserver.CurrentUserID(c)
	if uid == 0 {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "A member account is required", nil)
	}
	id, err := parseIDParam(c, "alertId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid alert ID", nil)
	}
	return setAlertInactive(c, GetDB(c).Where("id = ? AND user_id = ?", id, uid))
}

func adminListAlerts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := GetDB(c).Model(&domain.PriceAlert{})
	if c.QueryParam("active") == "true" {
		db = db.Where("is_active = ?", true)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price alerts", err.Error())
	}
	alerts := make([]domain.PriceAlert, 0)
	if err := db.Order("created_at DESC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&alerts).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price alerts", err.Error())
	}
	return paged(c, alerts, total, page, pageSize)
}

func adminDeleteAlert(c echo.Context) error {
	return deleteRow(c, &domain.PriceAlert{}, "ALERT_NOT_FOUND", "Alert not found")
}

// adminRunSweep runs the price drop sweep now instead of waiting for the schedule
func adminRunSweep(c echo.Context) error {
	report, err := GetAppContext(c).RunAlertSweep(c.Request().Context())
	if err != nil {
		zap.L().Error("manual alert sweep failed", zap.String("namespace", "alerts"), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "SWEEP_FAILED", "Failed to run price alert sweep", err.Error())
	}
	return ok(c, report)
}
