package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"guardpost/internal/audit"
	bookingserrors "guardpost/internal/bookings/errors"
	"guardpost/internal/bookings/repository"
	"guardpost/internal/bookings/validator"
	"guardpost/pkg/config"
	apperrors "guardpost/pkg/errors"
	"guardpost/pkg/events"
	"guardpost/pkg/kafka"
	"guardpost/pkg/model"
	"guardpost/pkg/sanitizer"
)

// EventPublisher is the slice of kafka.Producer the service needs. Nil means
// the service runs without an event stream (tests, local development).
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type BookingService interface {
	Create(ctx context.Context, booking *model.BookingRequest) error
	GetByID(ctx context.Context, id string) (*model.BookingRequest, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRequest, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) error
	Cancel(ctx context.Context, id string, reason string) error
	Complete(ctx context.Context, id string) error
	Search(ctx context.Context, companyID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.BookingRequest, int64, error)
	TryAssign(ctx context.Context, bookingID string, guardID string) (*AssignmentResult, error)
	AuditTrail(ctx context.Context, bookingID string, limit int) ([]*model.AuditEntry, error)
}

type bookingService struct {
	repo        repository.BookingRepository
	assignments repository.AssignmentRepository
	auditor     audit.Recorder
	validator   *validator.BookingValidator
	producer    EventPublisher
	cfg         *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	assignments repository.AssignmentRepository,
	auditor audit.Recorder,
	validator *validator.BookingValidator,
	producer EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:        repo,
		assignments: assignments,
		auditor:     auditor,
		validator:   validator,
		producer:    producer,
		cfg:         cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.BookingRequest) error {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}

	s.publishEvent(ctx, events.TopicBookingCreated, events.EventTypeBookingCreated, booking.ID, events.BookingCreated{
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		CompanyID:  booking.CompanyID,
		City:       booking.City,
		Armed:      booking.Armed,
		HourlyRate: booking.HourlyRateCents,
		StartTime:  booking.StartTime,
		EndTime:    booking.EndTime,
		CreatedAt:  booking.CreatedAt,
	})

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"client_id", booking.ClientID,
		"company_id", booking.CompanyID,
		"city", booking.City,
		"start_time", booking.StartTime,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRequest, int64, error) {
	var count int64
	var bookings []*model.BookingRequest
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.Open() {
		return apperrors.Conflict("Only bookings still matching can be edited")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}
	merged := s.mergeBookingUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}
	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return apperrors.Internal("Failed to update booking", err)
	}
	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return nil
}

// Cancel moves a booking to canceled from matching or assigned. The same
// conditional-update primitive as the claim path, so a cancel can never
// clobber a concurrent completion.
func (s *bookingService) Cancel(ctx context.Context, id string, reason string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	prior, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.repo.TransitionStatus(ctx, id, []string{model.StatusMatching, model.StatusAssigned}, model.StatusCanceled)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}
	if !ok {
		return apperrors.Conflict("Booking cannot be canceled from its current status")
	}

	s.recordAudit(ctx, id, prior.Status, model.StatusCanceled, prior.ClientID)

	s.publishEvent(ctx, events.TopicBookingCanceled, events.EventTypeBookingCanceled, id, events.BookingCanceled{
		BookingID:       id,
		AssignedGuardID: prior.AssignedGuardID,
		Reason:          reason,
		CanceledAt:      time.Now().UTC(),
	})

	s.cfg.Log.Info("Booking canceled", "id", id, "prior_status", prior.Status, "reason", reason)
	return nil
}

func (s *bookingService) Complete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	prior, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.repo.TransitionStatus(ctx, id, []string{model.StatusAssigned}, model.StatusCompleted)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to complete booking", "id", id, "error", err)
		return apperrors.Internal("Failed to complete booking", err)
	}
	if !ok {
		return apperrors.Conflict("Only assigned bookings can be completed")
	}

	s.recordAudit(ctx, id, prior.Status, model.StatusCompleted, prior.AssignedGuardID)

	s.cfg.Log.Info("Booking completed", "id", id, "guard_id", prior.AssignedGuardID)
	return nil
}

func (s *bookingService) Search(ctx context.Context, companyID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.BookingRequest, int64, error) {
	if companyID == "" && status == "" {
		return nil, 0, apperrors.InvalidInput("At least one of company_id or status is required")
	}

	var count int64
	var bookings []*model.BookingRequest
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByCompanyAndStatus(ctx, companyID, status, startTime, endTime)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings by search",
				"company_id", companyID,
				"status", status,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByCompanyAndStatus(ctx, companyID, status, startTime, endTime, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search bookings",
				"company_id", companyID,
				"status", status,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search bookings", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Booking search completed",
		"company_id", companyID,
		"status", status,
		"count", len(bookings),
		"total_count", count,
	)
	return bookings, count, nil
}

func (s *bookingService) AuditTrail(ctx context.Context, bookingID string, limit int) ([]*model.AuditEntry, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if limit <= 0 {
		limit = config.NormalizePaginationLimit(0)
	}

	entries, err := s.auditor.FindByBookingID(ctx, bookingID, limit)
	if err != nil {
		s.cfg.Log.Error("Failed to read audit trail", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve audit trail", err)
	}
	return entries, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.BookingRequest) {
	b.Address = sanitizer.NormalizeAddress(b.Address)
	b.City = sanitizer.SanitizeCity(b.City)
	b.Notes = sanitizer.NormalizeNotes(b.Notes)
}

func (s *bookingService) applyDefaults(b *model.BookingRequest) {
	if b.Status == "" {
		b.Status = model.StatusMatching
	}
}

func (s *bookingService) mergeBookingUpdates(existing *model.BookingRequest, updates *model.BookingUpdate) *model.BookingRequest {
	merged := *existing

	if updates.Address != "" {
		merged.Address = updates.Address
	}
	if updates.City != "" {
		merged.City = updates.City
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.HourlyRateCents != nil {
		merged.HourlyRateCents = *updates.HourlyRateCents
	}
	if updates.Armed != nil {
		merged.Armed = *updates.Armed
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}

	return &merged
}

func (s *bookingService) validate(booking *model.BookingRequest) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// recordAudit appends a transition entry. Best-effort: an audit failure is
// logged and never surfaced to the caller.
func (s *bookingService) recordAudit(ctx context.Context, bookingID, priorStatus, newStatus, actorID string) {
	entry := &model.AuditEntry{
		BookingID:   bookingID,
		PriorStatus: priorStatus,
		NewStatus:   newStatus,
		ActorID:     actorID,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.auditor.Append(ctx, entry); err != nil {
		s.cfg.Log.Warn("Failed to append audit entry",
			"booking_id", bookingID,
			"prior_status", priorStatus,
			"new_status", newStatus,
			"error", err,
		)
	}
}

// publishEvent emits a domain event. Best-effort: the state transition is
// already durable when this runs, so a publish failure is only logged.
func (s *bookingService) publishEvent(ctx context.Context, topic, eventType, bookingID string, payload any) {
	if s.producer == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(bookingID).
		WithValue(payload).
		WithEventType(eventType).
		WithBookingID(bookingID).
		WithSource("bookings").
		Build()
	msg.Topic = topic

	if err := s.producer.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"topic", topic,
			"event_type", eventType,
			"booking_id", bookingID,
			"error", err,
		)
	}
}
