// Package audit provides an append-only sink for booking status transitions.
// Writes are best-effort: a failure is logged by the caller and never
// propagated into the transition it describes.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"guardpost/pkg/config"
	"guardpost/pkg/model"
)

const CollectionName = "Audit_entries"

type Recorder interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	FindByBookingID(ctx context.Context, bookingID string, limit int) ([]*model.AuditEntry, error)
}

type mongoRecorder struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRecorder(cfg *config.Config) Recorder {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRecorder{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRecorder) Append(ctx context.Context, entry *model.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *mongoRecorder) FindByBookingID(ctx context.Context, bookingID string, limit int) ([]*model.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.AuditEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	return entries, nil
}
