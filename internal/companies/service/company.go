package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	companieserrors "guardpost/internal/companies/errors"
	"guardpost/internal/companies/repository"
	"guardpost/internal/companies/validator"
	"guardpost/pkg/config"
	apperrors "guardpost/pkg/errors"
	"guardpost/pkg/model"
	"guardpost/pkg/sanitizer"
)

type CompanyService interface {
	Create(ctx context.Context, company *model.Company) error
	GetByID(ctx context.Context, id string) (*model.Company, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Company, int64, error)
	Update(ctx context.Context, id string, updates *model.CompanyUpdate) error
	Delete(ctx context.Context, id string) error

	FindByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Company, int64, error)
}

type companyService struct {
	repo      repository.CompanyRepository
	validator *validator.CompanyValidator
	cfg       *config.Config
}

func NewCompanyService(
	repo repository.CompanyRepository,
	validator *validator.CompanyValidator,
	cfg *config.Config,
) CompanyService {
	return &companyService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *companyService) Create(ctx context.Context, company *model.Company) error {
	s.sanitize(company)
	s.applyDefaults(company)

	if err := s.validator.Validate(company); err != nil {
		s.cfg.Log.Warn("Company validation failed",
			"name", company.Name,
			"error", err,
		)
		return apperrors.Validation("Company validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByName(sessCtx, company.Name)
		if err != nil && !errors.Is(err, companieserrors.ErrNotFound) {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}

		if existing != nil {
			return apperrors.Conflict(fmt.Sprintf(
				"Company with this name already exists (id: %s)",
				existing.ID,
			))
		}

		if err := s.repo.Create(sessCtx, company); err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}

		return nil
	})

	if err != nil {
		s.cfg.Log.Error("Failed to create company",
			"name", company.Name,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Company created successfully",
		"id", company.ID,
		"name", company.Name,
		"cities", company.Cities,
		"priority", company.Priority,
	)

	return nil
}

func (s *companyService) GetByID(ctx context.Context, id string) (*model.Company, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Company ID cannot be empty")
	}

	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, companieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Company", id)
		}
		if errors.Is(err, companieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid company ID format")
		}
		s.cfg.Log.Error("Failed to get company by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve company", err)
	}

	return company, nil
}

func (s *companyService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Company, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var companies []*model.Company
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
			s.cfg.Log.Error("Failed to count companies", "error", err)
			errCount = apperrors.Internal("Failed to count companies", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		companies, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all companies",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve companies", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return companies, count, nil
}

func (s *companyService) Update(ctx context.Context, id string, updates *model.CompanyUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Company ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, companieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Company", id)
		}
		if errors.Is(err, companieserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid company ID format")
		}
		return apperrors.Internal("Failed to check company existence", err)
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeCompanyUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Company validation failed",
			"id", id,
			"name", merged.Name,
			"error", err,
		)
		return apperrors.Validation("Company validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update company",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to update company", err)
	}

	s.cfg.Log.Info("Company updated successfully",
		"id", id,
		"name", merged.Name,
	)

	return nil
}

func (s *companyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Company ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, companieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Company", id)
		}
		if errors.Is(err, companieserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid company ID format")
		}
		s.cfg.Log.Error("Failed to delete company",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete company", err)
	}

	s.cfg.Log.Info("Company deleted successfully", "id", id)

	return nil
}

func (s *companyService) FindByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Company, int64, error) {
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
	var companies []*model.Company
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.CountByCity(ctx, city)
		if err != nil {
			s.cfg.Log.Error("Failed to count companies by city",
				"city", city,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count companies by city", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		companies, err = s.repo.FindByCity(ctx, city, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to find companies by city",
				"city", city,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to find companies by city", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return companies, count, nil
}

func (s *companyService) sanitize(company *model.Company) {
	company.Name = sanitizer.NormalizeName(company.Name)
	company.Cities = sanitizer.SanitizeCities(company.Cities)
	company.ContactPhone = sanitizer.NormalizePhone(company.ContactPhone)
	company.Priority = sanitizer.ClampPriority(company.Priority, s.cfg.MinCompanyPriority, s.cfg.MaxCompanyPriority)
}

func (s *companyService) applyDefaults(company *model.Company) {
	if company.Priority == 0 {
		company.Priority = s.cfg.DefaultCompanyPriority
	}
}

func (s *companyService) sanitizeUpdate(updates *model.CompanyUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Cities != nil {
		if len(updates.Cities) == 0 {
			s.cfg.Log.Warn("Attempted to update cities with empty array")
		} else {
			updates.Cities = sanitizer.SanitizeCities(updates.Cities)
		}
	}
	if updates.ContactPhone != "" {
		updates.ContactPhone = sanitizer.NormalizePhone(updates.ContactPhone)
	}
	if updates.Priority != nil {
		clamped := sanitizer.ClampPriority(*updates.Priority, s.cfg.MinCompanyPriority, s.cfg.MaxCompanyPriority)
		updates.Priority = &clamped
	}
}

func (s *companyService) mergeCompanyUpdates(existing *model.Company, updates *model.CompanyUpdate) *model.Company {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Cities != nil {
		merged.Cities = updates.Cities
	}
	if updates.ContactPhone != "" {
		merged.ContactPhone = updates.ContactPhone
	}
	if updates.Priority != nil {
		merged.Priority = *updates.Priority
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
