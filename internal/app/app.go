package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/exidealers/marketplace/config"
	"github.com/exidealers/marketplace/internal/alerts"
	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/listing"
	"github.com/exidealers/marketplace/internal/media"
	"github.com/exidealers/marketplace/internal/notify"
	"github.com/exidealers/marketplace/internal/search"
	"github.com/exidealers/marketplace/pkg/common"
	"github.com/exidealers/marketplace/pkg/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Application struct {
	appConfig    *config.AppConfig
	gormDB       *gorm.DB
	sched        *cron.Cron
	searchEngine *search.Engine
	adminSearch  *search.Engine
	catalog      *search.Catalog
	listings     *listing.Service
	mediaStore   media.Store
	mailer       notify.Mailer
	sweeper      *alerts.Sweeper
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ SearchProvider    = (*Application)(nil)
	_ ListingProvider   = (*Application)(nil)
	_ MailProvider      = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	if err := a.InitServices(context.Background()); err != nil {
		zap.L().Fatal("service initialization failed", zap.Error(err))
	}

	if cfg.System.SeedDemo {
		a.checkDemoCars()
	}

	a.initJob()
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	var err error
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// InitServices wires the domain services on top of the current database handle
func (a *Application) InitServices(ctx context.Context) error {
	cfg := a.appConfig
	store, err := media.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	a.mediaStore = store

	opts := search.Options{
		DefaultLimit:    cfg.Search.DefaultLimit,
		MaxLimit:        cfg.Search.MaxLimit,
		FetchMultiplier: cfg.Search.FetchMultiplier,
		FetchCeiling:    cfg.Search.FetchCeiling,
	}
	repo := search.NewGormCarRepository(a.gormDB)
	adminOpts := opts
	opts.Status = common.StatusApproved
	a.searchEngine = search.NewEngine(repo, opts)
	a.adminSearch = search.NewEngine(repo, adminOpts)
	a.catalog = search.NewCatalog(a.gormDB, common.StatusApproved)

	a.listings = listing.NewService(a.gormDB, a.mediaStore)
	a.mailer = notify.NewMailer(cfg.Mail)
	a.sweeper = alerts.NewSweeper(a.gormDB, a.mailer, cfg.Mail.SiteURL, cfg.Jobs.AlertWorkers)
	return nil
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		return a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...)
	}
	return a.gormDB.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) SearchEngine() *search.Engine {
	return a.searchEngine
}

// AdminSearchEngine searches listings of every status
func (a *Application) AdminSearchEngine() *search.Engine {
	return a.adminSearch
}

func (a *Application) Catalog() *search.Catalog {
	return a.catalog
}

func (a *Application) Listings() *listing.Service {
	return a.listings
}

func (a *Application) MediaStore() media.Store {
	return a.mediaStore
}

func (a *Application) Mailer() notify.Mailer {
	return a.mailer
}

// RunAlertSweep runs the price alert sweep now
func (a *Application) RunAlertSweep(ctx context.Context) (alerts.Report, error) {
	return a.sweeper.Run(ctx)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
