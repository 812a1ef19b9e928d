package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"guardpost/pkg/client"
	"guardpost/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	PartnerWebhookSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	AssignMaxAttempts int
	AssignBackoffBase time.Duration
	AssignDeadline    time.Duration

	DefaultCompanyPriority int
	MinCompanyPriority     int
	MaxCompanyPriority     int

	MinHourlyRateCents int
	MaxHourlyRateCents int

	BookingServiceURL string
	GuardServiceURL   string
	CompanyServiceURL string

	OfferTTL       time.Duration
	OfferMaxGuards int

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		PartnerWebhookSecret: getEnvStr(EnvPartnerWebhookSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		AssignMaxAttempts: getEnvNum(EnvAssignMaxAttempts, DefaultAssignMaxAttempts),
		AssignBackoffBase: getEnvDuration(EnvAssignBackoffBase, DefaultAssignBackoffBase),
		AssignDeadline:    getEnvDuration(EnvAssignDeadline, DefaultAssignDeadline),

		DefaultCompanyPriority: getEnvNum(EnvCompanyPriority, DefaultCompanyPriority),
		MinCompanyPriority:     getEnvNum(EnvMinCompanyPriority, DefaultMinCompanyPriority),
		MaxCompanyPriority:     getEnvNum(EnvMaxCompanyPriority, DefaultMaxCompanyPriority),

		MinHourlyRateCents: getEnvNum(EnvMinHourlyRateCents, DefaultMinHourlyRateCents),
		MaxHourlyRateCents: getEnvNum(EnvMaxHourlyRateCents, DefaultMaxHourlyRateCents),

		BookingServiceURL: getEnvStr(EnvBookingServiceURL, DefaultBookingServiceURL),
		GuardServiceURL:   getEnvStr(EnvGuardServiceURL, DefaultGuardServiceURL),
		CompanyServiceURL: getEnvStr(EnvCompanyServiceURL, DefaultCompanyServiceURL),

		OfferTTL:       getEnvDuration(EnvOfferTTL, DefaultOfferTTL),
		OfferMaxGuards: getEnvNum(EnvOfferMaxGuards, DefaultOfferMaxGuards),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout":  cfg.MongoConnTimeout,
		"RateLimitWindow":   cfg.RateLimitWindow,
		"RequestTimeout":    cfg.RequestTimeout,
		"IdempotencyTTL":    cfg.IdempotencyTTL,
		"ReadTimeout":       cfg.ReadTimeout,
		"WriteTimeout":      cfg.WriteTimeout,
		"IdleTimeout":       cfg.IdleTimeout,
		"ShutdownTimeout":   cfg.ShutdownTimeout,
		"AssignBackoffBase": cfg.AssignBackoffBase,
		"AssignDeadline":    cfg.AssignDeadline,
		"OfferTTL":          cfg.OfferTTL,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.AssignMaxAttempts <= 0 {
		errs = append(errs, fmt.Sprintf("AssignMaxAttempts must be positive, got: %d", cfg.AssignMaxAttempts))
	}

	if cfg.OfferMaxGuards <= 0 {
		errs = append(errs, fmt.Sprintf("OfferMaxGuards must be positive, got: %d", cfg.OfferMaxGuards))
	}

	if cfg.MinCompanyPriority < 0 {
		errs = append(errs, fmt.Sprintf("MinCompanyPriority cannot be negative, got: %d", cfg.MinCompanyPriority))
	}
	if cfg.MaxCompanyPriority < cfg.MinCompanyPriority {
		errs = append(errs, fmt.Sprintf("MaxCompanyPriority (%d) must be >= MinCompanyPriority (%d)", cfg.MaxCompanyPriority, cfg.MinCompanyPriority))
	}
	if cfg.DefaultCompanyPriority < cfg.MinCompanyPriority || cfg.DefaultCompanyPriority > cfg.MaxCompanyPriority {
		errs = append(errs, fmt.Sprintf("DefaultCompanyPriority (%d) must be between MinCompanyPriority (%d) and MaxCompanyPriority (%d)", cfg.DefaultCompanyPriority, cfg.MinCompanyPriority, cfg.MaxCompanyPriority))
	}

	if cfg.MinHourlyRateCents <= 0 {
		errs = append(errs, fmt.Sprintf("MinHourlyRateCents must be positive, got: %d", cfg.MinHourlyRateCents))
	}
	if cfg.MaxHourlyRateCents < cfg.MinHourlyRateCents {
		errs = append(errs, fmt.Sprintf("MaxHourlyRateCents (%d) must be >= MinHourlyRateCents (%d)", cfg.MaxHourlyRateCents, cfg.MinHourlyRateCents))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"partner_webhook_secret_set", cfg.PartnerWebhookSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"assign_max_attempts", cfg.AssignMaxAttempts,
		"assign_backoff_base", cfg.AssignBackoffBase,
		"assign_deadline", cfg.AssignDeadline,
		"default_company_priority", cfg.DefaultCompanyPriority,
		"min_company_priority", cfg.MinCompanyPriority,
		"max_company_priority", cfg.MaxCompanyPriority,
		"min_hourly_rate_cents", cfg.MinHourlyRateCents,
		"max_hourly_rate_cents", cfg.MaxHourlyRateCents,
		"offer_ttl", cfg.OfferTTL,
		"offer_max_guards", cfg.OfferMaxGuards,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
