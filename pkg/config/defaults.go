package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "guardpost"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Claim-race retry budget: attempts at 100ms, 200ms, 400ms under a
	// single 5s deadline.
	DefaultAssignMaxAttempts = 3
	DefaultAssignBackoffBase = 100 * time.Millisecond
	DefaultAssignDeadline    = 5 * time.Second

	DefaultCompanyPriority    = 100
	DefaultMinCompanyPriority = 0
	DefaultMaxCompanyPriority = 100000

	DefaultMinHourlyRateCents = 500
	DefaultMaxHourlyRateCents = 100000

	DefaultPaginationLimit = 100

	DefaultBookingServiceURL = "http://localhost:8081"
	DefaultGuardServiceURL   = "http://localhost:8082"
	DefaultCompanyServiceURL = "http://localhost:8083"

	DefaultOfferTTL       = 15 * time.Minute
	DefaultOfferMaxGuards = 25
)
