package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/exidealers/marketplace/internal/listing"
	"github.com/exidealers/marketplace/internal/webserver"
	"github.com/exidealers/marketplace/pkg/common"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type carStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=approved pending rejected"`
}

// registerAdminCarRoutes registers listing moderation routes
func registerAdminCarRoutes() {
	webserver.AdminGET("/cars", adminSearchCars)
	webserver.AdminGET("/cars/:id", adminGetCar)
	webserver.AdminPOST("/cars", adminCreateCar)
	webserver.AdminPUT("/cars/:id", adminUpdateCar)
	webserver.AdminPUT("/cars/:id/status", adminSetCarStatus)
	webserver.AdminDELETE("/cars/:id", adminDeleteCar)
}

// adminSearchCars runs the search engine over listings of every status
func adminSearchCars(c echo.Context) error {
	return runSearch(c, GetAppContext(c).AdminSearchEngine())
}

func adminGetCar(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid car ID", nil)
	}
	car, err := GetAppContext(c).Listings().Get(c.Request().Context(), id)
	if isNotFound(err) {
		return fail(c, http.StatusNotFound, "CAR_NOT_FOUND", "Car not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query car", err.Error())
	}
	return ok(c, car)
}

// adminCreateCar publishes a listing directly
func adminCreateCar(c echo.Context) error {
	return saveNewCar(c, common.StatusApproved)
}

// adminUpdateCar accepts the listing fields, an optional existingImages JSON list of the
// images to keep and new carImages files.
func adminUpdateCar(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid car ID", nil)
	}
	var draft listing.Draft
	if err := c.Bind(&draft); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse car parameters", nil)
	}

	var keep []listing.KeptImage
	if raw := c.FormValue("existingImages"); strings.TrimSpace(raw) != "" {
		keep = make([]listing.KeptImage, 0)
		if err := json.Unmarshal([]byte(raw), &keep); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "existingImages must be a JSON list", nil)
		}
	}
	uploads, err := formUploads(c, "carImages")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read uploaded images", nil)
	}

	car, err := GetAppContext(c).Listings().Update(c.Request().Context(), id, draft, keep, uploads)
	if err != nil {
		return listingError(c, err, "Failed to update car")
	}
	return ok(c, car)
}

func adminSetCarStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid car ID", nil)
	}
	var payload carStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	car, err := GetAppContext(c).Listings().SetStatus(c.Request().Context(), id, payload.Status)
	if err != nil {
		return listingError(c, err, "Failed to update car status")
	}
	return ok(c, car)
}

func adminDeleteCar(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid car ID", nil)
	}
	if err := GetAppContext(c).Listings().Delete(c.Request().Context(), id); err != nil {
		return listingError(c, err, "Failed to delete car")
	}
	zap.L().Info("car listing deleted", zap.String("namespace", "listing"), zap.Int64("car_id", id))
	return ok(c, map[string]interface{}{"id": id})
}

// formUploads collects the files of a multipart field; non-multipart requests carry none
func formUploads(c echo.Context, field string) ([]listing.Upload, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := form.File[field]
	uploads := make([]listing.Upload, 0, len(files))
	for _, fh := range files {
		fh := fh
		uploads = append(uploads, listing.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return openPart(fh) },
		})
	}
	return uploads, nil
}

func openPart(fh *multipart.FileHeader) (io.ReadCloser, error) {
	return fh.Open()
}

func listingError(c echo.Context, err error, message string) error {
	switch {
	case isNotFound(err):
		return fail(c, http.StatusNotFound, "CAR_NOT_FOUND", "Car not found", nil)
	case listing.IsLimitError(err):
		return fail(c, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", err.Error(), nil)
	case errors.Is(err, listing.ErrNotImage):
		return fail(c, http.StatusBadRequest, "INVALID_FILE", err.Error(), nil)
	case errors.Is(err, listing.ErrInvalidMileage):
		return fail(c, http.StatusBadRequest, "INVALID_MILEAGE", err.Error(), nil)
	}
	zap.L().Error(message, zap.String("namespace", "listing"), zap.Error(err))
	return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", message, nil)
}
