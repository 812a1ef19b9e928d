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

	companieserrors "guardpost/internal/companies/errors"
	"guardpost/pkg/config"
	mongotx "guardpost/pkg/db/mongo"
	"guardpost/pkg/model"
)

const (
	CollectionName = "Companies"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id string) (*model.Company, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Company, error)
	Update(ctx context.Context, id string, company *model.Company) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error

	FindByName(ctx context.Context, name string) (*model.Company, error)
	FindByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Company, error)
	CountByCity(ctx context.Context, city string) (int64, error)
	Count(ctx context.Context) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoCompanyRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoCompanyRepository(cfg *config.Config) CompanyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCompanyRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoCompanyRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoCompanyRepository) Create(ctx context.Context, company *model.Company) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	company.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, company)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		company.ID = oid.Hex()
	}

	return nil
}

func (r *mongoCompanyRepository) FindByID(ctx context.Context, id string) (*model.Company, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", companieserrors.ErrInvalidID, id)
	}

	var company model.Company
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&company)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", companieserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return &company, nil
}

func (r *mongoCompanyRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Company, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "priority", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer cursor.Close(ctx)

	var companies []*model.Company
	if err = cursor.All(ctx, &companies); err != nil {
		return nil, fmt.Errorf("failed to decode companies: %w", err)
	}

	return companies, nil
}

func (r *mongoCompanyRepository) Update(ctx context.Context, id string, company *model.Company) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", companieserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":          company.Name,
			"cities":        company.Cities,
			"contact_phone": company.ContactPhone,
			"priority":      company.Priority,
			"active":        company.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", companieserrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoCompanyRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", companieserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", companieserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoCompanyRepository) FindByName(ctx context.Context, name string) (*model.Company, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var company model.Company
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&company)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: name %s", companieserrors.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to find company by name: %w", err)
	}
	return &company, nil
}

func (r *mongoCompanyRepository) FindByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Company, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"cities": city,
		"active": true,
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "priority", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find companies in city [%s]: %w", city, err)
	}
	defer cursor.Close(ctx)

	var companies []*model.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, fmt.Errorf("failed to decode companies: %w", err)
	}

	return companies, nil
}

func (r *mongoCompanyRepository) CountByCity(ctx context.Context, city string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"cities": city, "active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count companies in city [%s]: %w", city, err)
	}
	return count, nil
}

func (r *mongoCompanyRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}

func (r *mongoCompanyRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
