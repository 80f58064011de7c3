package app

import (
	"context"

	"github.com/exidealers/marketplace/config"
	"github.com/exidealers/marketplace/internal/alerts"
	"github.com/exidealers/marketplace/internal/listing"
	"github.com/exidealers/marketplace/internal/media"
	"github.com/exidealers/marketplace/internal/notify"
	"github.com/exidealers/marketplace/internal/search"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// SearchProvider provides the public car search engine and catalog
type SearchProvider interface {
	SearchEngine() *search.Engine
	AdminSearchEngine() *search.Engine
	Catalog() *search.Catalog
}

// ListingProvider provides listing management
type ListingProvider interface {
	Listings() *listing.Service
	MediaStore() media.Store
}

// MailProvider provides outgoing mail
type MailProvider interface {
	Mailer() notify.Mailer
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	SearchProvider
	ListingProvider
	MailProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// RunAlertSweep runs the price alert sweep immediately
	RunAlertSweep(ctx context.Context) (alerts.Report, error)
}
