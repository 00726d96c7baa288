package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// defaultJWTSecret is only accepted outside production
const defaultJWTSecret = "waggin-meals-dev-secret-change-me"

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Cookie       CookieConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Billing      BillingConfig
	Payment      PaymentConfig
	AuthorizeNet AuthorizeNetConfig
	Stripe       StripeConfig
	Shippo       ShippoConfig
	GHL          GHLConfig
	SMTP         SMTPConfig
	Storage      StorageConfig
	Printing     PrintingConfig
	Consultation ConsultationConfig
	Swagger      SwaggerConfig
	Telemetry    TelemetryConfig
	Site         SiteConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	MaxSizeMB  int    // rotation size for file output
	MaxBackups int
	MaxAgeDays int
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs with production rules
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	Issuer                 string
	AdminSessionExpiration time.Duration
	// Customers sign in with the hosted auth provider; its tokens are
	// verified with CustomerSecret and must carry CustomerAudience.
	CustomerSecret   string
	CustomerIssuer   string
	CustomerAudience string
}

// AdminConfig holds the single back-office account
type AdminConfig struct {
	Username     string
	PasswordHash string // bcrypt
}

// CookieConfig holds settings for the admin session cookie
type CookieConfig struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	SameSite string // "strict", "lax", or "none"
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// BillingConfig holds recurring billing settings
type BillingConfig struct {
	CronSecret       string
	SchedulerEnabled bool
	DailyHour        int
	DailyMinute      int
	CheckInterval    time.Duration
	MaxAttempts      int
	LockTTL          time.Duration
}

// PaymentConfig selects the gateway
type PaymentConfig struct {
	Provider string // authorizenet or stripe
}

// AuthorizeNetConfig holds Authorize.net API credentials
type AuthorizeNetConfig struct {
	Environment    string // sandbox or production
	LoginID        string
	TransactionKey string
	Timeout        time.Duration
}

// Endpoint returns the JSON API URL for the configured environment
func (a AuthorizeNetConfig) Endpoint() string {
	if a.Environment == "production" {
		return "https://api.authorize.net/xml/v1/request.api"
	}
	return "https://apitest.authorize.net/xml/v1/request.api"
}

// IsConfigured reports whether credentials are present
func (a AuthorizeNetConfig) IsConfigured() bool {
	return a.LoginID != "" && a.TransactionKey != ""
}

// StripeConfig holds Stripe credentials
type StripeConfig struct {
	SecretKey string
	Currency  string
}

// ShippoConfig holds the carrier rate API settings and the ship-from address
type ShippoConfig struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	OriginName    string
	OriginStreet  string
	OriginCity    string
	OriginState   string
	OriginZip     string
	OriginCountry string
	OriginPhone   string
	OriginEmail   string
}

// GHLConfig holds the CRM settings
type GHLConfig struct {
	Enabled    bool
	WebhookURL string
	APIKey     string
	LocationID string
	CalendarID string
	BaseURL    string
	Timeout    time.Duration
}

// SMTPConfig holds outbound mail settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// IsConfigured reports whether SMTP credentials are present
func (s SMTPConfig) IsConfigured() bool {
	return s.Username != "" && s.Password != ""
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Endpoint        string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string
	MaxUploadSize   int64
}

// IsConfigured reports whether a bucket is configured
func (s StorageConfig) IsConfigured() bool {
	return s.Bucket != ""
}

// PrintingConfig holds the headless Chrome renderer settings
type PrintingConfig struct {
	Enabled         bool
	ChromeRemoteURL string // empty launches a local browser
	Timeout         time.Duration
}

// ConsultationConfig holds consultation pricing
type ConsultationConfig struct {
	Fee string // decimal string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // IPs or CIDRs; empty allows everyone
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
}

// SiteConfig holds public site settings used in emails and redirects
type SiteConfig struct {
	PublicURL string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with WM_ prefix (e.g., WM_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("WM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			Issuer:                 v.GetString("jwt.issuer"),
			AdminSessionExpiration: v.GetDuration("jwt.admin_session_expiration"),
			CustomerSecret:         v.GetString("jwt.customer_secret"),
			CustomerIssuer:         v.GetString("jwt.customer_issuer"),
			CustomerAudience:       v.GetString("jwt.customer_audience"),
		},
		Admin: AdminConfig{
			Username:     v.GetString("admin.username"),
			PasswordHash: v.GetString("admin.password_hash"),
		},
		Cookie: CookieConfig{
			Name:     v.GetString("cookie.name"),
			Domain:   v.GetString("cookie.domain"),
			Path:     v.GetString("cookie.path"),
			Secure:   v.GetBool("cookie.secure"),
			SameSite: v.GetString("cookie.same_site"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Billing: BillingConfig{
			CronSecret:       v.GetString("billing.cron_secret"),
			SchedulerEnabled: v.GetBool("billing.scheduler_enabled"),
			DailyHour:        v.GetInt("billing.daily_hour"),
			DailyMinute:      v.GetInt("billing.daily_minute"),
			CheckInterval:    v.GetDuration("billing.check_interval"),
			MaxAttempts:      v.GetInt("billing.max_attempts"),
			LockTTL:          v.GetDuration("billing.lock_ttl"),
		},
		Payment: PaymentConfig{
			Provider: v.GetString("payment.provider"),
		},
		AuthorizeNet: AuthorizeNetConfig{
			Environment:    v.GetString("authorizenet.environment"),
			LoginID:        v.GetString("authorizenet.login_id"),
			TransactionKey: v.GetString("authorizenet.transaction_key"),
			Timeout:        v.GetDuration("authorizenet.timeout"),
		},
		Stripe: StripeConfig{
			SecretKey: v.GetString("stripe.secret_key"),
			Currency:  v.GetString("stripe.currency"),
		},
		Shippo: ShippoConfig{
			APIKey:        v.GetString("shippo.api_key"),
			BaseURL:       v.GetString("shippo.base_url"),
			Timeout:       v.GetDuration("shippo.timeout"),
			OriginName:    v.GetString("shippo.origin_name"),
			OriginStreet:  v.GetString("shippo.origin_street"),
			OriginCity:    v.GetString("shippo.origin_city"),
			OriginState:   v.GetString("shippo.origin_state"),
			OriginZip:     v.GetString("shippo.origin_zip"),
			OriginCountry: v.GetString("shippo.origin_country"),
			OriginPhone:   v.GetString("shippo.origin_phone"),
			OriginEmail:   v.GetString("shippo.origin_email"),
		},
		GHL: GHLConfig{
			Enabled:    v.GetBool("ghl.enabled"),
			WebhookURL: v.GetString("ghl.webhook_url"),
			APIKey:     v.GetString("ghl.api_key"),
			LocationID: v.GetString("ghl.location_id"),
			CalendarID: v.GetString("ghl.calendar_id"),
			BaseURL:    v.GetString("ghl.base_url"),
			Timeout:    v.GetDuration("ghl.timeout"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
			FromName: v.GetString("smtp.from_name"),
		},
		Storage: StorageConfig{
			Endpoint:        v.GetString("storage.endpoint"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PublicBaseURL:   v.GetString("storage.public_base_url"),
			MaxUploadSize:   v.GetInt64("storage.max_upload_size"),
		},
		Printing: PrintingConfig{
			Enabled:         v.GetBool("printing.enabled"),
			ChromeRemoteURL: v.GetString("printing.chrome_remote_url"),
			Timeout:         v.GetDuration("printing.timeout"),
		},
		Consultation: ConsultationConfig{
			Fee: v.GetString("consultation.fee"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_export_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
		Site: SiteConfig{
			PublicURL: v.GetString("site.public_url"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "waggin-meals"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "waggin_meals"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Secret == "" && !cfg.App.IsProduction() {
		cfg.JWT.Secret = defaultJWTSecret
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "waggin-meals"
	}
	if cfg.JWT.AdminSessionExpiration == 0 {
		cfg.JWT.AdminSessionExpiration = 24 * time.Hour
	}
	if cfg.JWT.CustomerSecret == "" {
		cfg.JWT.CustomerSecret = cfg.JWT.Secret
	}
	if cfg.JWT.CustomerAudience == "" {
		cfg.JWT.CustomerAudience = "authenticated"
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin"
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = "admin-session"
	}
	if cfg.Cookie.Path == "" {
		cfg.Cookie.Path = "/"
	}
	if cfg.Cookie.SameSite == "" {
		cfg.Cookie.SameSite = "lax"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 28
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// No wildcard fallback for origins: an empty list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Billing.DailyHour == 0 && cfg.Billing.DailyMinute == 0 {
		cfg.Billing.DailyHour = 6
	}
	if cfg.Billing.CheckInterval == 0 {
		cfg.Billing.CheckInterval = time.Minute
	}
	if cfg.Billing.MaxAttempts == 0 {
		cfg.Billing.MaxAttempts = 3
	}
	if cfg.Billing.LockTTL == 0 {
		cfg.Billing.LockTTL = 10 * time.Minute
	}
	if cfg.Payment.Provider == "" {
		cfg.Payment.Provider = "authorizenet"
	}
	if cfg.AuthorizeNet.Environment == "" {
		cfg.AuthorizeNet.Environment = "sandbox"
	}
	if cfg.AuthorizeNet.Timeout == 0 {
		cfg.AuthorizeNet.Timeout = 30 * time.Second
	}
	if cfg.Stripe.Currency == "" {
		cfg.Stripe.Currency = "usd"
	}
	if cfg.Shippo.BaseURL == "" {
		cfg.Shippo.BaseURL = "https://api.goshippo.com"
	}
	if cfg.Shippo.Timeout == 0 {
		cfg.Shippo.Timeout = 10 * time.Second
	}
	if cfg.Shippo.OriginCountry == "" {
		cfg.Shippo.OriginCountry = "US"
	}
	if cfg.GHL.BaseURL == "" {
		cfg.GHL.BaseURL = "https://services.leadconnectorhq.com"
	}
	if cfg.GHL.Timeout == 0 {
		cfg.GHL.Timeout = 10 * time.Second
	}
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = "smtp.gmail.com"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	if cfg.SMTP.FromName == "" {
		cfg.SMTP.FromName = "Waggin Meals"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = 5 << 20
	}
	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
	}
	if cfg.Consultation.Fee == "" {
		cfg.Consultation.Fee = "395.00"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "waggin-meals-backend"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Site.PublicURL == "" {
		cfg.Site.PublicURL = "http://localhost:3000"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	switch c.Payment.Provider {
	case "authorizenet", "stripe":
	default:
		return fmt.Errorf("payment.provider must be authorizenet or stripe, got %q", c.Payment.Provider)
	}
	if c.Billing.DailyHour < 0 || c.Billing.DailyHour > 23 {
		return fmt.Errorf("billing.daily_hour must be between 0 and 23")
	}
	if c.Billing.DailyMinute < 0 || c.Billing.DailyMinute > 59 {
		return fmt.Errorf("billing.daily_minute must be between 0 and 59")
	}
	if c.Billing.MaxAttempts < 1 {
		return fmt.Errorf("billing.max_attempts must be at least 1")
	}

	if c.App.IsProduction() {
		if c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Billing.CronSecret == "" {
			return fmt.Errorf("billing.cron_secret is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Admin.PasswordHash == "" {
			return fmt.Errorf("admin.password_hash is required in production")
		}
		if !c.Cookie.Secure {
			return fmt.Errorf("cookie.secure must be true in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}
	if c.Cookie.SameSite == "none" && !c.Cookie.Secure {
		return fmt.Errorf("cookie.same_site=none requires cookie.secure=true")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the Redis client
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
