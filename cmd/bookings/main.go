package main

import (
	"guardpost/internal/audit"
	"guardpost/internal/bookings/handler"
	"guardpost/internal/bookings/repository"
	"guardpost/internal/bookings/service"
	"guardpost/internal/bookings/validator"
	"guardpost/pkg/app"
	"guardpost/pkg/config"
	"guardpost/pkg/events"
	pkgkafka "guardpost/pkg/kafka"
	kafka_config "guardpost/pkg/kafka/config"
	kafka_middleware "guardpost/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	producer := initProducer(cfg)
	if producer != nil {
		defer producer.Close()
	}

	bookingService := initServices(cfg, producer)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

// initProducer builds the lifecycle event producer. Kafka being down is not
// fatal: bookings still work, the event stream just goes dark.
func initProducer(cfg *config.Config) *pkgkafka.Producer {
	kafkaCfg := kafka_config.Load()
	producer, err := pkgkafka.NewMultiTopicProducer(kafkaCfg, events.TopicDLQBookings)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, events disabled", "error", err)
		return nil
	}

	producer.Use(kafka_middleware.LoggingProducerMiddleware())
	producer.Use(kafka_middleware.MetricsProducerMiddleware())
	return producer
}

func initServices(cfg *config.Config, producer *pkgkafka.Producer) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg, cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	assignmentRepo := repository.NewMongoAssignmentRepository(cfg)
	auditor := audit.NewMongoRecorder(cfg)

	var publisher service.EventPublisher
	if producer != nil {
		publisher = producer
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		assignmentRepo,
		auditor,
		bookingValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
