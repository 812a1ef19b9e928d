package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"guardpost/internal/notifier"
	"guardpost/pkg/config"
	"guardpost/pkg/events"
	pkgkafka "guardpost/pkg/kafka"
	kafka_config "guardpost/pkg/kafka/config"
	kafka_middleware "guardpost/pkg/kafka/middleware"
)

const (
	ServiceName   = "notifier"
	consumerGroup = "notifier"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Notifier service")

	dispatcher := notifier.NewLogDispatcher(cfg.Log)
	handler := notifier.NewHandler(dispatcher, cfg.Log)

	kafkaCfg := kafka_config.Load()
	topics := []string{
		events.TopicBookingOffered,
		events.TopicBookingAssigned,
		events.TopicBookingCanceled,
	}

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, topic, consumerGroup, events.TopicDLQNotifier, handler.Handle)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka consumer", "topic", topic, "error", err)
		}
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware())
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
		consumers = append(consumers, consumer)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for i, consumer := range consumers {
		wg.Add(1)
		go func(topic string, c *pkgkafka.Consumer) {
			defer wg.Done()
			cfg.Log.Info("Consumer started", "topic", topic)
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				cfg.Log.Error("Consumer stopped with error", "topic", topic, "error", err)
			}
		}(topics[i], consumer)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	cfg.Log.Info("Shutdown signal received", "signal", sig)

	cancel()
	for i, consumer := range consumers {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close consumer", "topic", topics[i], "error", err)
		}
	}
	wg.Wait()
	cfg.Log.Info("Notifier stopped gracefully")
}
