package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	guardserrors "guardpost/internal/guards/errors"
	"guardpost/pkg/config"
	mongotx "guardpost/pkg/db/mongo"
	"guardpost/pkg/model"
)

const (
	CollectionName = "Guards"
)

type GuardRepository interface {
	Create(ctx context.Context, guard *model.Guard) error
	FindByID(ctx context.Context, id string) (*model.Guard, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Guard, error)
	Update(ctx context.Context, id string, guard *model.Guard) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error

	FindByPhone(ctx context.Context, phone string) (*model.Guard, error)
	FindEligible(ctx context.Context, city string, armed bool, limit int, offset int64) ([]*model.Guard, error)
	CountEligible(ctx context.Context, city string, armed bool) (int64, error)
	FindByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.Guard, error)
	Count(ctx context.Context) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoGuardRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoGuardRepository(cfg *config.Config) GuardRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoGuardRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is a SessionContext,
// which cannot be wrapped without breaking transaction semantics.
func (r *mongoGuardRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoGuardRepository) Create(ctx context.Context, guard *model.Guard) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	guard.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, guard)
	if err != nil {
		return fmt.Errorf("failed to create guard: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		guard.ID = oid.Hex()
	}

	return nil
}

func (r *mongoGuardRepository) FindByID(ctx context.Context, id string) (*model.Guard, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", guardserrors.ErrInvalidID, id)
	}

	var guard model.Guard
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&guard)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", guardserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find guard: %w", err)
	}
	return &guard, nil
}

func (r *mongoGuardRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Guard, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "rating", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query guards: %w", err)
	}
	defer cursor.Close(ctx)

	var guards []*model.Guard
	if err = cursor.All(ctx, &guards); err != nil {
		return nil, fmt.Errorf("failed to decode guards: %w", err)
	}

	return guards, nil
}

func (r *mongoGuardRepository) Update(ctx context.Context, id string, guard *model.Guard) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", guardserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"company_id":    guard.CompanyID,
			"full_name":     guard.FullName,
			"phone":         guard.Phone,
			"city":          guard.City,
			"armed_license": guard.ArmedLicense,
			"rating":        guard.Rating,
			"active":        guard.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update guard: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", guardserrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoGuardRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", guardserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete guard: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", guardserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoGuardRepository) FindByPhone(ctx context.Context, phone string) (*model.Guard, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var guard model.Guard
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&guard)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: phone %s", guardserrors.ErrNotFound, phone)
		}
		return nil, fmt.Errorf("failed to find guard by phone: %w", err)
	}
	return &guard, nil
}

func (r *mongoGuardRepository) FindEligible(ctx context.Context, city string, armed bool, limit int, offset int64) ([]*model.Guard, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.eligibleFilter(city, armed)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "rating", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible guards in [%s]: %w", city, err)
	}
	defer cursor.Close(ctx)

	var guards []*model.Guard
	if err := cursor.All(ctx, &guards); err != nil {
		return nil, fmt.Errorf("failed to decode eligible guards: %w", err)
	}

	return guards, nil
}

func (r *mongoGuardRepository) CountEligible(ctx context.Context, city string, armed bool) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.eligibleFilter(city, armed))
	if err != nil {
		return 0, fmt.Errorf("failed to count eligible guards in [%s]: %w", city, err)
	}
	return count, nil
}

func (r *mongoGuardRepository) eligibleFilter(city string, armed bool) bson.M {
	filter := bson.M{
		"city":   city,
		"active": true,
	}
	if armed {
		filter["armed_license"] = true
	}
	return filter
}

func (r *mongoGuardRepository) FindByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.Guard, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "full_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find guards for company [%s]: %w", companyID, err)
	}
	defer cursor.Close(ctx)

	var guards []*model.Guard
	if err := cursor.All(ctx, &guards); err != nil {
		return nil, fmt.Errorf("failed to decode guards: %w", err)
	}

	return guards, nil
}

func (r *mongoGuardRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count guards: %w", err)
	}
	return count, nil
}

func (r *mongoGuardRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
