package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "guardpost/internal/bookings/errors"
	apperrors "guardpost/pkg/errors"
	"guardpost/pkg/events"
	"guardpost/pkg/model"
	"guardpost/pkg/retry"
)

// AssignmentOutcome is the decision returned to each caller racing to claim
// a booking. Exactly one caller per booking ever sees OutcomeAssigned.
type AssignmentOutcome string

const (
	// OutcomeAssigned means this call committed the matching -> assigned
	// transition. This caller is the winner.
	OutcomeAssigned AssignmentOutcome = "assigned"

	// OutcomeAlreadyAssignedToCaller means the booking was already assigned
	// to this same guard, typically a retry after a lost response. Treated
	// as success, no write performed.
	OutcomeAlreadyAssignedToCaller AssignmentOutcome = "already_assigned_to_caller"

	// OutcomeUnavailable means the race is resolved against this caller:
	// another guard won, or the booking was canceled or otherwise closed.
	OutcomeUnavailable AssignmentOutcome = "unavailable"

	// OutcomeTransientFailure means no definitive outcome could be reached
	// within the attempt budget. The booking's true state is unknown to the
	// caller and a fresh TryAssign may be attempted.
	OutcomeTransientFailure AssignmentOutcome = "transient_failure"
)

type AssignmentResult struct {
	Outcome AssignmentOutcome     `json:"outcome"`
	Booking *model.BookingRequest `json:"booking,omitempty"`
}

// TryAssign resolves a guard's claim on a booking. Safety under concurrent
// callers comes entirely from the store's conditional update: the status
// predicate and the write are one atomic operation, so whichever caller's
// update is durably applied first wins. There is no secondary ranking.
func (s *bookingService) TryAssign(ctx context.Context, bookingID string, guardID string) (*AssignmentResult, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if guardID == "" {
		return nil, apperrors.InvalidInput("Guard ID cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AssignDeadline)
	defer cancel()

	// Idempotency short-circuit: no write when the race is already settled.
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		// Transient read failure. The claim loop below does not depend on
		// this read, so fall through and let the conditional update decide.
		s.cfg.Log.Warn("Pre-claim read failed, proceeding to claim", "booking_id", bookingID, "error", err)
	} else {
		if booking.Status == model.StatusAssigned && booking.AssignedGuardID == guardID {
			return &AssignmentResult{Outcome: OutcomeAlreadyAssignedToCaller, Booking: booking}, nil
		}
		if !booking.Open() {
			return &AssignmentResult{Outcome: OutcomeUnavailable, Booking: booking}, nil
		}
	}

	var outcome AssignmentOutcome
	var current *model.BookingRequest
	priorStatus := model.StatusMatching

	strategy := retry.Strategy{
		Attempts: s.cfg.AssignMaxAttempts,
		Delay:    s.cfg.AssignBackoffBase,
		Backoff:  2,
	}

	err = retry.Do(ctx, strategy, func(ctx context.Context) error {
		claimed, err := s.repo.ClaimIfMatching(ctx, bookingID, guardID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrInvalidID) {
				return retry.Permanent(err)
			}
			// Store error (network, timeout). Worth another attempt.
			return err
		}
		if claimed {
			outcome = OutcomeAssigned
			return nil
		}

		// Predicate missed. Re-read to tell "lost for good" from "still
		// matching, predicate raced a transient inconsistency".
		latest, err := s.repo.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return retry.Permanent(err)
			}
			return err
		}

		switch {
		case latest.Status == model.StatusAssigned && latest.AssignedGuardID == guardID:
			// A duplicate request from this caller raced itself.
			outcome = OutcomeAlreadyAssignedToCaller
			current = latest
			return nil
		case latest.Open():
			return bookingserrors.ErrClaimLost
		default:
			outcome = OutcomeUnavailable
			current = latest
			priorStatus = latest.Status
			return nil
		}
	})

	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}

		// Exhausted attempts, deadline, or an unresolvable store error: the
		// caller cannot know whether its claim landed.
		s.cfg.Log.Warn("Assignment attempt did not reach a definitive outcome",
			"booking_id", bookingID,
			"guard_id", guardID,
			"error", err,
		)
		return &AssignmentResult{Outcome: OutcomeTransientFailure}, nil
	}

	switch outcome {
	case OutcomeAssigned:
		winner := s.postClaimBooking(ctx, bookingID, guardID, booking)
		s.recordWin(ctx, bookingID, guardID, priorStatus, winner)
		return &AssignmentResult{Outcome: OutcomeAssigned, Booking: winner}, nil

	case OutcomeAlreadyAssignedToCaller:
		return &AssignmentResult{Outcome: OutcomeAlreadyAssignedToCaller, Booking: current}, nil

	default:
		return &AssignmentResult{Outcome: OutcomeUnavailable, Booking: current}, nil
	}
}

// postClaimBooking returns the post-transition booking state. The re-read is
// cosmetic; if it fails the state is reconstructed from the pre-claim copy,
// since the transition itself is already durable.
func (s *bookingService) postClaimBooking(ctx context.Context, bookingID, guardID string, preClaim *model.BookingRequest) *model.BookingRequest {
	latest, err := s.repo.FindByID(ctx, bookingID)
	if err == nil {
		return latest
	}
	s.cfg.Log.Warn("Post-claim read failed, reconstructing booking state", "booking_id", bookingID, "error", err)

	reconstructed := &model.BookingRequest{ID: bookingID}
	if preClaim != nil {
		copied := *preClaim
		reconstructed = &copied
	}
	reconstructed.Status = model.StatusAssigned
	reconstructed.AssignedGuardID = guardID
	reconstructed.UpdatedAt = time.Now().UTC()
	return reconstructed
}

// recordWin performs the winner's side effects: the companion assignment
// record, the audit entry, and the assigned event. All best-effort. A
// failure here is logged and reconciled later, never rolled back; losing a
// companion write must not un-assign a guard who legitimately won.
func (s *bookingService) recordWin(ctx context.Context, bookingID, guardID, priorStatus string, booking *model.BookingRequest) {
	assignment := &model.Assignment{
		BookingID: bookingID,
		GuardID:   guardID,
		SubStatus: model.SubStatusPendingCheckin,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		s.cfg.Log.Warn("Failed to create assignment record",
			"booking_id", bookingID,
			"guard_id", guardID,
			"error", err,
		)
	}

	s.recordAudit(ctx, bookingID, priorStatus, model.StatusAssigned, guardID)

	companyID := ""
	if booking != nil {
		companyID = booking.CompanyID
	}
	s.publishEvent(ctx, events.TopicBookingAssigned, events.EventTypeBookingAssigned, bookingID, events.BookingAssigned{
		BookingID:  bookingID,
		GuardID:    guardID,
		CompanyID:  companyID,
		AssignedAt: time.Now().UTC(),
	})

	s.cfg.Log.Info("Booking assigned",
		"booking_id", bookingID,
		"guard_id", guardID,
	)
}
