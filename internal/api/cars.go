package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/listing"
	"github.com/exidealers/marketplace/internal/search"
	"github.com/exidealers/marketplace/internal/webserver"
	"github.com/exidealers/marketplace/pkg/common"
	"github.com/exidealers/marketplace/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// registerCarRoutes registers the public listing routes
func registerCarRoutes() {
	webserver.ApiGET("/cars", searchCars)
	webserver.ApiGET("/cars/brands/unique", listBrands)
	webserver.ApiGET("/cars/brands-models/counts", listBrandModels)
	webserver.ApiGET("/cars/:id", getCar, webserver.OptionalAuth())
	webserver.ApiPOST("/cars/submit", submitCar)
}

// searchCars answers with {cars, pagination} so the listing page can page through results
func searchCars(c echo.Context) error {
	return runSearch(c, GetAppContext(c).SearchEngine())
}

func runSearch(c echo.Context, engine *search.Engine) error {
	start := time.Now()
	req := search.ParseRequest(c.QueryParams())
	res, err := engine.Search(c.Request().Context(), req)
	metrics.Record(metrics.SearchRequests, 1)
	if err != nil {
		metrics.Record(metrics.SearchErrors, 1)
		zap.L().Error("car search failed",
			zap.String("namespace", "search"),
			zap.String("query", c.QueryString()),
			zap.Error(err))
		return fail(c, http.StatusInternalServerError, "SEARCH_FAILED", "Failed to search cars", nil)
	}
	metrics.Record(metrics.SearchLatencyMs, float64(time.Since(start).Milliseconds()))
	return c.JSON(http.StatusOK, res)
}

func listBrands(c echo.Context) error {
	brands, err := GetAppContext(c).Catalog().Brands(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query brands", err.Error())
	}
	return ok(c, brands)
}

func listBrandModels(c echo.Context) error {
	models, err := GetAppContext(c).Catalog().BrandModels(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query models", err.Error())
	}
	return ok(c, models)
}

func getCar(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid car ID", nil)
	}
	car, err := GetAppContext(c).Catalog().Get(c.Request().Context(), id)
	if isNotFound(err) {
		return fail(c, http.StatusNotFound, "CAR_NOT_FOUND", "Car not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query car", err.Error())
	}

	if uid := webserver.CurrentUserID(c); uid > 0 {
		logActivity(c, uid, domain.ActivityView, &car.ID, car.Make+" "+car.Model)
	}
	return ok(c, car)
}

// submitCar lets a seller list a car; it stays pending until an admin approves it
func submitCar(c echo.Context) error {
	return saveNewCar(c, common.StatusPending)
}

func saveNewCar(c echo.Context, status string) error {
	var draft listing.Draft
	if err := c.Bind(&draft); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse car parameters", nil)
	}
	if strings.TrimSpace(draft.Make) == "" || strings.TrimSpace(draft.Model) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Make and model are required", nil)
	}
	uploads, err := formUploads(c, "carImages")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read uploaded images", nil)
	}

	car, err := GetAppContext(c).Listings().Create(c.Request().Context(), draft, uploads, status)
	if err != nil {
		return listingError(c, err, "Failed to create car")
	}
	zap.L().Info("car listing created",
		zap.String("namespace", "listing"),
		zap.Int64("car_id", car.ID),
		zap.String("status", status),
		zap.Int("images", len(car.Images)))
	return created(c, car)
}
