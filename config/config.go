package config

import (
	"os"
	"path"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid" env:"DEALER_SYSTEM_APPID"`
	Location string `yaml:"location" env:"DEALER_SYSTEM_LOCATION"`
	Workdir  string `yaml:"workdir" env:"DEALER_SYSTEM_WORKDIR"`
	Debug    bool   `yaml:"debug" env:"DEALER_SYSTEM_DEBUG"`
	SeedDemo bool   `yaml:"seed_demo" env:"DEALER_SYSTEM_SEED_DEMO"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host      string `yaml:"host" env:"DEALER_WEB_HOST"`
	Port      int    `yaml:"port" env:"DEALER_WEB_PORT"`
	ClientDir string `yaml:"client_dir" env:"DEALER_WEB_CLIENT_DIR"`
	// BodyLimit follows the echo notation, e.g. "100M"
	BodyLimit string `yaml:"body_limit" env:"DEALER_WEB_BODY_LIMIT"`
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type" env:"DEALER_DB_TYPE"` // postgres or sqlite
	Host     string `yaml:"host" env:"DEALER_DB_HOST"`
	Port     int    `yaml:"port" env:"DEALER_DB_PORT"`
	Name     string `yaml:"name" env:"DEALER_DB_NAME"`
	User     string `yaml:"user" env:"DEALER_DB_USER"`
	Passwd   string `yaml:"passwd" env:"DEALER_DB_PWD"`
	SSLMode  string `yaml:"sslmode" env:"DEALER_DB_SSLMODE"`
	MaxConn  int    `yaml:"max_conn" env:"DEALER_DB_MAX_CONN"`
	IdleConn int    `yaml:"idle_conn" env:"DEALER_DB_IDLE_CONN"`
	Debug    bool   `yaml:"debug" env:"DEALER_DB_DEBUG"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode" env:"DEALER_LOGGER_MODE"`
	FileEnable bool   `yaml:"file_enable" env:"DEALER_LOGGER_FILE_ENABLE"`
	Filename   string `yaml:"filename" env:"DEALER_LOGGER_FILENAME"`
}

// SearchConfig tunes the car search engine
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit" env:"DEALER_SEARCH_DEFAULT_LIMIT"`
	MaxLimit     int `yaml:"max_limit" env:"DEALER_SEARCH_MAX_LIMIT"`
	// FetchMultiplier and FetchCeiling bound the candidate set used for price filtering
	FetchMultiplier int `yaml:"fetch_multiplier" env:"DEALER_SEARCH_FETCH_MULTIPLIER"`
	FetchCeiling    int `yaml:"fetch_ceiling" env:"DEALER_SEARCH_FETCH_CEILING"`
}

// AuthConfig user and admin credentials
type AuthConfig struct {
	JwtSecret   string `yaml:"jwt_secret" env:"DEALER_JWT_SECRET"`
	TokenDays   int    `yaml:"token_days" env:"DEALER_TOKEN_DAYS"`
	AdminSecret string `yaml:"admin_secret" env:"DEALER_ADMIN_SECRET"`
	SecureCookie bool  `yaml:"secure_cookie" env:"DEALER_SECURE_COOKIE"`
}

// MailConfig outgoing mail settings used by price alert notifications
type MailConfig struct {
	Enabled  bool   `yaml:"enabled" env:"DEALER_MAIL_ENABLED"`
	Host     string `yaml:"host" env:"DEALER_MAIL_HOST"`
	Port     int    `yaml:"port" env:"DEALER_MAIL_PORT"`
	Username string `yaml:"username" env:"DEALER_MAIL_USERNAME"`
	Password string `yaml:"password" env:"DEALER_MAIL_PASSWORD"`
	From     string `yaml:"from" env:"DEALER_MAIL_FROM"`
	SiteURL  string `yaml:"site_url" env:"DEALER_SITE_URL"`
}

// MediaConfig image storage settings
type MediaConfig struct {
	Backend   string `yaml:"backend" env:"DEALER_MEDIA_BACKEND"` // local or s3
	UploadDir string `yaml:"upload_dir" env:"DEALER_MEDIA_UPLOAD_DIR"`
	URLPrefix string `yaml:"url_prefix" env:"DEALER_MEDIA_URL_PREFIX"`

	S3Bucket    string `yaml:"s3_bucket" env:"DEALER_S3_BUCKET"`
	S3Region    string `yaml:"s3_region" env:"DEALER_S3_REGION"`
	S3Endpoint  string `yaml:"s3_endpoint" env:"DEALER_S3_ENDPOINT"`
	S3AccessKey string `yaml:"s3_access_key" env:"DEALER_S3_ACCESS_KEY"`
	S3SecretKey string `yaml:"s3_secret_key" env:"DEALER_S3_SECRET_KEY"`
	S3PublicURL string `yaml:"s3_public_url" env:"DEALER_S3_PUBLIC_URL"`
}

// JobsConfig cron expressions for background jobs
type JobsConfig struct {
	AlertSweepCron    string `yaml:"alert_sweep_cron" env:"DEALER_JOBS_ALERT_SWEEP_CRON"`
	AlertWorkers      int    `yaml:"alert_workers" env:"DEALER_JOBS_ALERT_WORKERS"`
	ActivityRetention int    `yaml:"activity_retention_days" env:"DEALER_JOBS_ACTIVITY_RETENTION_DAYS"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Search   SearchConfig `yaml:"search"`
	Auth     AuthConfig   `yaml:"auth"`
	Mail     MailConfig   `yaml:"mail"`
	Media    MediaConfig  `yaml:"media"`
	Jobs     JobsConfig   `yaml:"jobs"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetUploadDir() string {
	if c.Media.UploadDir != "" {
		return c.Media.UploadDir
	}
	return path.Join(c.System.Workdir, "uploads")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
	_ = os.MkdirAll(c.GetUploadDir(), 0o755)
}

// DefaultAppConfig returns the built-in configuration
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "ExiDealers",
			Location: "Africa/Windhoek",
			Workdir:  "/var/exidealers",
		},
		Web: WebConfig{
			Host:      "0.0.0.0",
			Port:      5000,
			ClientDir: "client",
			BodyLimit: "100M",
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "exidealers",
			User:     "postgres",
			Passwd:   "postgres",
			SSLMode:  "disable",
			MaxConn:  50,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: true,
			Filename:   "/var/exidealers/logs/exidealers.log",
		},
		Search: SearchConfig{
			DefaultLimit:    15,
			MaxLimit:        100,
			FetchMultiplier: 10,
			FetchCeiling:    1000,
		},
		Auth: AuthConfig{
			JwtSecret: "change-this-secret",
			TokenDays: 7,
		},
		Mail: MailConfig{
			Port: 587,
			From: "no-reply@exidealers.com",
		},
		Media: MediaConfig{
			Backend:   "local",
			URLPrefix: "/uploads",
		},
		Jobs: JobsConfig{
			AlertSweepCron:    "@every 30m",
			AlertWorkers:      4,
			ActivityRetention: 180,
		},
	}
}

// LoadConfig reads the YAML file (when present), then applies .env and environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := DefaultAppConfig()
	if strings.TrimSpace(cfile) != "" {
		data, err := os.ReadFile(cfile)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.initDirs()
	return cfg, nil
}
