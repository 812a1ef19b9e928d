package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	guardserrors "guardpost/internal/guards/errors"
	"guardpost/internal/guards/repository"
	"guardpost/internal/guards/validator"
	"guardpost/pkg/config"
	apperrors "guardpost/pkg/errors"
	"guardpost/pkg/model"
	"guardpost/pkg/sanitizer"
)

type GuardService interface {
	Create(ctx context.Context, guard *model.Guard) error
	GetByID(ctx context.Context, id string) (*model.Guard, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Guard, int64, error)
	Update(ctx context.Context, id string, updates *model.GuardUpdate) error
	Delete(ctx context.Context, id string) error

	GetByPhone(ctx context.Context, phone string) (*model.Guard, error)
	FindEligible(ctx context.Context, city string, armed bool, limit int, offset int64) ([]*model.Guard, int64, error)
}

type guardService struct {
	repo      repository.GuardRepository
	validator *validator.GuardValidator
	cfg       *config.Config
}

func NewGuardService(
	repo repository.GuardRepository,
	validator *validator.GuardValidator,
	cfg *config.Config,
) GuardService {
	return &guardService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *guardService) Create(ctx context.Context, guard *model.Guard) error {
	s.sanitize(guard)

	if err := s.validator.Validate(guard); err != nil {
		s.cfg.Log.Warn("Guard validation failed",
			"full_name", guard.FullName,
			"phone", guard.Phone,
			"error", err,
		)
		return apperrors.Validation("Guard validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByPhone(sessCtx, guard.Phone)
		if err != nil && !errors.Is(err, guardserrors.ErrNotFound) {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}

		if existing != nil {
			return apperrors.Conflict(fmt.Sprintf(
				"Guard with this phone number already exists (id: %s)",
				existing.ID,
			))
		}

		if err := s.repo.Create(sessCtx, guard); err != nil {
			return fmt.Errorf("failed to create guard: %w", err)
		}

		return nil
	})

	if err != nil {
		s.cfg.Log.Error("Failed to create guard",
			"full_name", guard.FullName,
			"phone", guard.Phone,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Guard created successfully",
		"id", guard.ID,
		"full_name", guard.FullName,
		"city", guard.City,
		"company_id", guard.CompanyID,
	)

	return nil
}

func (s *guardService) GetByID(ctx context.Context, id string) (*model.Guard, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Guard ID cannot be empty")
	}

	guard, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, guardserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Guard", id)
		}
		if errors.Is(err, guardserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid guard ID format")
		}
		s.cfg.Log.Error("Failed to get guard by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve guard", err)
	}

	return guard, nil
}

func (s *guardService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Guard, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var guards []*model.Guard
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count guards", "error", err)
			errCount = apperrors.Internal("Failed to count guards", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		guards, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all guards",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve guards", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return guards, count, nil
}

func (s *guardService) Update(ctx context.Context, id string, updates *model.GuardUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Guard ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, guardserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Guard", id)
		}
		if errors.Is(err, guardserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid guard ID format")
		}
		return apperrors.Internal("Failed to check guard existence", err)
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeGuardUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Guard validation failed",
			"id", id,
			"full_name", merged.FullName,
			"error", err,
		)
		return apperrors.Validation("Guard validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update guard",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to update guard", err)
	}

	s.cfg.Log.Info("Guard updated successfully",
		"id", id,
		"full_name", merged.FullName,
	)

	return nil
}

func (s *guardService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Guard ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, guardserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Guard", id)
		}
		if errors.Is(err, guardserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid guard ID format")
		}
		s.cfg.Log.Error("Failed to delete guard",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete guard", err)
	}

	s.cfg.Log.Info("Guard deleted successfully", "id", id)

	return nil
}

func (s *guardService) GetByPhone(ctx context.Context, phone string) (*model.Guard, error) {
	if phone == "" {
		return nil, apperrors.InvalidInput("Phone number cannot be empty")
	}

	normalized := sanitizer.NormalizePhone(phone)
	if normalized == "" {
		return nil, apperrors.InvalidInput("Invalid phone number format")
	}

	guard, err := s.repo.FindByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, guardserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Guard").WithDetails(map[string]any{
				"phone": normalized,
			})
		}
		s.cfg.Log.Error("Failed to get guard by phone",
			"phone", normalized,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve guard by phone", err)
	}

	return guard, nil
}

func (s *guardService) FindEligible(ctx context.Context, city string, armed bool, limit int, offset int64) ([]*model.Guard, int64, error) {
	if city == "" {
		return nil, 0, apperrors.InvalidInput("City must be provided")
	}

	city = sanitizer.SanitizeCity(city)
	if city == "" {
		return nil, 0, apperrors.InvalidInput("City resulted in no valid value after normalization")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var guards []*model.Guard
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.CountEligible(ctx, city, armed)
		if err != nil {
			s.cfg.Log.Error("Failed to count eligible guards",
				"city", city,
				"armed", armed,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count eligible guards", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		guards, err = s.repo.FindEligible(ctx, city, armed, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to find eligible guards",
				"city", city,
				"armed", armed,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to find eligible guards", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Eligible guard search completed",
		"city", city,
		"armed", armed,
		"results_count", len(guards),
	)

	return guards, count, nil
}

func (s *guardService) sanitize(guard *model.Guard) {
	guard.FullName = sanitizer.NormalizeName(guard.FullName)
	guard.Phone = sanitizer.NormalizePhone(guard.Phone)
	guard.City = sanitizer.SanitizeCity(guard.City)
}

func (s *guardService) sanitizeUpdate(updates *model.GuardUpdate) {
	if updates.FullName != "" {
		updates.FullName = sanitizer.NormalizeName(updates.FullName)
	}
	if updates.Phone != "" {
		updates.Phone = sanitizer.NormalizePhone(updates.Phone)
	}
	if updates.City != "" {
		updates.City = sanitizer.SanitizeCity(updates.City)
	}
}

func (s *guardService) mergeGuardUpdates(existing *model.Guard, updates *model.GuardUpdate) *model.Guard {
	merged := *existing

	if updates.FullName != "" {
		merged.FullName = updates.FullName
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.City != "" {
		merged.City = updates.City
	}
	if updates.ArmedLicense != nil {
		merged.ArmedLicense = *updates.ArmedLicense
	}
	if updates.Rating != nil {
		merged.Rating = *updates.Rating
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
