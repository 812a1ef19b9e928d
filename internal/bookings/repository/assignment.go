package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "guardpost/internal/bookings/errors"
	"guardpost/pkg/config"
	"guardpost/pkg/model"
)

const AssignmentCollectionName = "Assignments"

// AssignmentRepository stores the companion tracking record created after a
// guard wins a booking. The collection carries a unique index on booking_id
// (see migrations), so a duplicate create from a retried winner is a no-op.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	FindByBookingID(ctx context.Context, bookingID string) (*model.Assignment, error)
	UpdateSubStatus(ctx context.Context, bookingID string, subStatus string) error
}

type mongoAssignmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAssignmentRepository(cfg *config.Config) AssignmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAssignmentRepository{
		cfg:        cfg,
		collection: db.Collection(AssignmentCollectionName),
	}
}

func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	assignment.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A record for this booking already exists. The winner retried.
			return nil
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		assignment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAssignmentRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var assignment model.Assignment
	err := r.collection.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	return &assignment, nil
}

func (r *mongoAssignmentRepository) UpdateSubStatus(ctx context.Context, bookingID string, subStatus string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"booking_id": bookingID},
		bson.M{"$set": bson.M{"sub_status": subStatus}},
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment sub-status: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}
