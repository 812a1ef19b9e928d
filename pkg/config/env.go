package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvPartnerWebhookSecret = "PARTNER_WEBHOOK_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvAssignMaxAttempts  = "ASSIGN_MAX_ATTEMPTS"
	EnvAssignBackoffBase  = "ASSIGN_BACKOFF_BASE"
	EnvAssignDeadline     = "ASSIGN_DEADLINE"
	EnvCompanyPriority    = "COMPANY_PRIORITY"
	EnvMinCompanyPriority = "MIN_COMPANY_PRIORITY"
	EnvMaxCompanyPriority = "MAX_COMPANY_PRIORITY"

	EnvMinHourlyRateCents = "MIN_HOURLY_RATE_CENTS"
	EnvMaxHourlyRateCents = "MAX_HOURLY_RATE_CENTS"

	EnvBookingServiceURL = "BOOKING_SERVICE_URL"
	EnvGuardServiceURL   = "GUARD_SERVICE_URL"
	EnvCompanyServiceURL = "COMPANY_SERVICE_URL"

	EnvOfferTTL       = "OFFER_TTL"
	EnvOfferMaxGuards = "OFFER_MAX_GUARDS"
)
