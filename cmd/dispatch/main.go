package main

import (
	"guardpost/internal/dispatch/handler"
	"guardpost/internal/dispatch/service"
	"guardpost/pkg/app"
	"guardpost/pkg/config"
	"guardpost/pkg/events"
	pkgkafka "guardpost/pkg/kafka"
	kafka_config "guardpost/pkg/kafka/config"
	kafka_middleware "guardpost/pkg/kafka/middleware"
)

const ServiceName = "dispatch"

func main() {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown()

	cfg.Client.SetBookingClient(cfg.BookingServiceURL)
	cfg.Client.SetGuardClient(cfg.GuardServiceURL)
	cfg.Client.SetCompanyClient(cfg.CompanyServiceURL)

	cfg.Log.Info("Starting Dispatch service",
		"booking_service", cfg.BookingServiceURL,
		"guard_service", cfg.GuardServiceURL,
		"company_service", cfg.CompanyServiceURL,
	)

	producer := initProducer(cfg)
	defer producer.Close()

	dispatchService := service.NewDispatchService(cfg, producer)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewFlowHandler(dispatchService, cfg.Log))
	serverApp.Run()
}

// The fan-out step publishes one offer per eligible guard, so dispatch cannot
// run without its producer.
func initProducer(cfg *config.Config) *pkgkafka.Producer {
	kafkaCfg := kafka_config.Load()
	producer, err := pkgkafka.NewMultiTopicProducer(kafkaCfg, events.TopicDLQDispatch)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	producer.Use(kafka_middleware.LoggingProducerMiddleware())
	producer.Use(kafka_middleware.MetricsProducerMiddleware())
	return producer
}
