package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/webserver"
	"github.com/labstack/echo/v4"
)

type contactPayload struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"omitempty,max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

type subscribePayload struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type enquiryPayload struct {
	CarID    int64  `json:"carId" validate:"omitempty,gt=0"`
	CarName  string `json:"carName" validate:"omitempty,max=255"`
	FullName string `json:"fullName" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Message  string `json:"message" validate:"omitempty,max=5000"`
}

// registerSiteRoutes registers contact, newsletter and enquiry routes
func registerSiteRoutes() {
	webserver.ApiPOST("/contact", createContactMessage)
	webserver.AdminGET("/messages", adminListMessages)
	webserver.AdminDELETE("/messages/:id", adminDeleteMessage)

	webserver.ApiPOST("/newsletter/subscribe", subscribeNewsletter)
	webserver.AdminGET("/newsletter/subscribers", adminListSubscribers)
	webserver.AdminDELETE("/newsletter/subscribers/:id", adminDeleteSubscriber)

	webserver.ApiPOST("/car-enquiries", createEnquiry, webserver.OptionalAuth())
	webserver.AdminGET("/car-enquiries", adminListEnquiries)
	webserver.AdminDELETE("/car-enquiries/:id", adminDeleteEnquiry)
}

func createContactMessage(c echo.Context) error {
	var payload contactPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse message", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	msg := domain.ContactMessage{
		Name:    strings.TrimSpace(payload.Name),
		Email:   strings.TrimSpace(payload.Email),
		Subject: strings.TrimSpace(payload.Subject),
		Message: payload.Message,
	}
	if msg.Subject == "" {
		msg.Subject = "No Subject"
	}
	if err := GetDB(c).Create(&msg).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save message", err.Error())
	}
	return created(c, msg)
}

func adminListMessages(c echo.Context) error {
	rows := make([]domain.ContactMessage, 0)
	return listPaged(c, &domain.ContactMessage{}, "created_at DESC, id DESC", &rows)
}

func adminDeleteMessage(c echo.Context) error {
	return deleteRow(c, &domain.ContactMessage{}, "MESSAGE_NOT_FOUND", "Message not found")
}

// subscribeNewsletter is idempotent per email
func subscribeNewsletter(c echo.Context) error {
	var payload subscribePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse subscription", nil)
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_EMAIL", "Valid email required", nil)
	}

	db := GetDB(c)
	var exists int64
	if err := db.Model(&domain.NewsletterSubscriber{}).Where("email = ?", payload.Email).Count(&exists).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to subscribe", err.Error())
	}
	if exists > 0 {
		return ok(c, map[string]interface{}{"subscribed": false, "message": "Already subscribed"})
	}
	sub := domain.NewsletterSubscriber{Email: payload.Email, SubscribedAt: time.Now()}
	if err := db.Create(&sub).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to subscribe", err.Error())
	}
	return ok(c, map[string]interface{}{"subscribed": true, "message": "Subscribed successfully"})
}

func adminListSubscribers(c echo.Context) error {
	rows := make([]domain.NewsletterSubscriber, 0)
	return listPaged(c, &domain.NewsletterSubscriber{}, "subscribed_at DESC, id DESC", &rows)
}

func adminDeleteSubscriber(c echo.Context) error {
	return deleteRow(c, &domain.NewsletterSubscriber{}, "SUBSCRIBER_NOT_FOUND", "Subscriber not found")
}

func createEnquiry(c echo.Context) error {
	var payload enquiryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse enquiry", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	enquiry := domain.CarEnquiry{
		CarID:    payload.CarID,
		CarName:  strings.TrimSpace(payload.CarName),
		FullName: strings.TrimSpace(payload.FullName),
		Email:    strings.TrimSpace(payload.Email),
		Phone:    strings.TrimSpace(payload.Phone),
		Message:  payload.Message,
	}
	if err := GetDB(c).Create(&enquiry).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save enquiry", err.Error())
	}
	if uid := webserver.CurrentUserID(c); uid > 0 {
		var carID *int64
		if enquiry.CarID > 0 {
			carID = &enquiry.CarID
		}
		logActivity(c, uid, domain.ActivityEnquirySent, carID, enquiry.CarName)
	}
	return created(c, enquiry)
}

func adminListEnquiries(c echo.Context) error {
	rows := make([]domain.CarEnquiry, 0)
	return listPaged(c, &domain.CarEnquiry{}, "created_at DESC, id DESC", &rows)
}

func adminDeleteEnquiry(c echo.Context) error {
	return deleteRow(c, &domain.CarEnquiry{}, "ENQUIRY_NOT_FOUND", "Car enquiry not found")
}

// listPaged loads one page of a table into rows
func listPaged(c echo.Context, model interface{}, order string, rows interface{}) error {
	page, pageSize := parsePagination(c)
	db := GetDB(c).Model(model)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query records", err.Error())
	}
	if err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query records", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

// deleteRow deletes the row named by the id path parameter
func deleteRow(c echo.Context, model interface{}, notFoundCode, notFoundMsg string) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID", nil)
	}
	res := GetDB(c).Delete(model, id)
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete record", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, notFoundCode, notFoundMsg, nil)
	}
	return ok(c, map[string]interface{}{"id": id})
}
