package client

import (
	"context"
	"time"

	"guardpost/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client bundles the process-wide connections a service needs: the Mongo
// client and HTTP clients for the sibling services. Each Set* method is
// called once during startup for the connections that service actually uses.
type Client struct {
	Mongo *mongo.Client

	BookingClient *BookingClient
	GuardClient   *GuardClient
	CompanyClient *CompanyClient
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB",
			"error", err,
		)
	}

	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = mongoClient
}

func (c *Client) SetBookingClient(baseURL string) {
	c.BookingClient = NewBookingClient(baseURL)
}

func (c *Client) SetGuardClient(baseURL string) {
	c.GuardClient = NewGuardClient(baseURL)
}

func (c *Client) SetCompanyClient(baseURL string) {
	c.CompanyClient = NewCompanyClient(baseURL)
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.Mongo.Disconnect(ctx); err != nil {
		log.Error("Failed to disconnect MongoDB client", "error", err)
	}
}
