package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/export"
	"github.com/exidealers/marketplace/internal/pricing"
	"github.com/exidealers/marketplace/internal/webserver"
	"github.com/exidealers/marketplace/pkg/common"
	"github.com/exidealers/marketplace/pkg/metrics"
	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const metricsWindow = 24 * time.Hour

// PriceSummary describes the known prices of the inventory
type PriceSummary struct {
	Known   int     `json:"known"`
	Unknown int     `json:"unknown"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
}

// DashboardStats is the answer of the admin overview
type DashboardStats struct {
	TotalCars                  int64                      `json:"totalCars"`
	PendingCars                int64                      `json:"pendingCars"`
	TotalPriceAlerts           int64                      `json:"totalPriceAlerts"`
	ActivePriceAlerts          int64                      `json:"activePriceAlerts"`
	TotalNewsletterSubscribers int64                      `json:"totalNewsletterSubscribers"`
	TotalMessages              int64                      `json:"totalMessages"`
	TotalCarEnquiries          int64                      `json:"totalCarEnquiries"`
	TotalUsers                 int64                      `json:"totalUsers"`
	Prices                     PriceSummary               `json:"prices"`
	Search                     map[string]metrics.Summary `json:"search"`
}

func registerDashboardRoutes() {
	webserver.AdminGET("/dashboard/stats", dashboardStats)
	webserver.AdminGET("/exports/inventory.xlsx", exportInventory)
	webserver.AdminGET("/exports/subscribers.csv", exportSubscribers)
	webserver.AdminGET("/exports/enquiries.csv", exportEnquiries)
	webserver.AdminGET("/exports/messages.csv", exportMessages)
}

func dashboardStats(c echo.Context) error {
	db := GetDB(c)
	var st DashboardStats
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&st.TotalCars, db.Model(&domain.Car{})},
		{&st.PendingCars, db.Model(&domain.Car{}).Where("status = ?", common.StatusPending)},
		{&st.TotalPriceAlerts, db.Model(&domain.PriceAlert{})},
		{&st.ActivePriceAlerts, db.Model(&domain.PriceAlert{}).Where("is_active = ?", true)},
		{&st.TotalNewsletterSubscribers, db.Model(&domain.NewsletterSubscriber{})},
		{&st.TotalMessages, db.Model(&domain.ContactMessage{})},
		{&st.TotalCarEnquiries, db.Model(&domain.CarEnquiry{})},
		{&st.TotalUsers, db.Model(&domain.User{})},
	}
	for _, q := range counts {
		if err := q.query.Count(q.dst).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query statistics", err.Error())
		}
	}

	var prices []string
	if err := db.Model(&domain.Car{}).Pluck("price", &prices).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query prices", err.Error())
	}
	st.Prices = summarizePrices(prices)

	st.Search = make(map[string]metrics.Summary)
	for _, name := range []string{metrics.SearchRequests, metrics.SearchLatencyMs, metrics.SearchErrors, metrics.AlertsNotified} {
		sum, err := metrics.Summarize(name, metricsWindow)
		if err != nil {
			zap.L().Warn("metric summary failed", zap.String("namespace", "metrics"), zap.String("metric", name), zap.Error(err))
			continue
		}
		st.Search[name] = sum
	}
	return ok(c, st)
}

// summarizePrices normalizes display prices and describes the known ones
func summarizePrices(raw []string) PriceSummary {
	var sum PriceSummary
	values := make(stats.Float64Data, 0, len(raw))
	for _, s := range raw {
		if p := pricing.NormalizeString(s); p.Known {
			values = append(values, p.Value)
		} else {
			sum.Unknown++
		}
	}
	sum.Known = len(values)
	if sum.Known == 0 {
		return sum
	}
	sum.Min, _ = values.Min()
	sum.Max, _ = values.Max()
	sum.Mean, _ = values.Mean()
	sum.Median, _ = values.Median()
	return sum
}

func attachment(c echo.Context, contentType, name string, body []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, contentType, body)
}

func exportName(base, ext string) string {
	return fmt.Sprintf("%s-%s.%s", base, time.Now().Format("20060102"), ext)
}

func exportInventory(c echo.Context) error {
	cars := make([]domain.Car, 0)
	err := GetDB(c).
		Preload("Images").
		Order("created_at DESC, id DESC").
		Find(&cars).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query cars", err.Error())
	}
	var buf bytes.Buffer
	if err := export.Inventory(&buf, cars); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build workbook", err.Error())
	}
	return attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		exportName("inventory", "xlsx"), buf.Bytes())
}

func exportSubscribers(c echo.Context) error {
	rows := make([]domain.NewsletterSubscriber, 0)
	if err := GetDB(c).Order("subscribed_at DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query subscribers", err.Error())
	}
	var buf bytes.Buffer
	if err := export.Subscribers(&buf, rows); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build CSV", err.Error())
	}
	return attachment(c, "text/csv; charset=utf-8", exportName("subscribers", "csv"), buf.Bytes())
}

func exportEnquiries(c echo.Context) error {
	rows := make([]domain.CarEnquiry, 0)
	if err := GetDB(c).Order("created_at DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query enquiries", err.Error())
	}
	var buf bytes.Buffer
	if err := export.Enquiries(&buf, rows); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build CSV", err.Error())
	}
	return attachment(c, "text/csv; charset=utf-8", exportName("enquiries", "csv"), buf.Bytes())
}

func exportMessages(c echo.Context) error {
	rows := make([]domain.ContactMessage, 0)
	if err := GetDB(c).Order("created_at DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query messages", err.Error())
	}
	var buf bytes.Buffer
	if err := export.Messages(&buf, rows); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build CSV", err.Error())
	}
	return attachment(c, "text/csv; charset=utf-8", exportName("messages", "csv"), buf.Bytes())
}
