package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "guardpost/internal/bookings/errors"
	"guardpost/pkg/config"
	mongotx "guardpost/pkg/db/mongo"
	apperrors "guardpost/pkg/errors"
	"guardpost/pkg/logger"
	"guardpost/pkg/model"
)

// fakeBookingStore backs the repository interface with an in-memory map and
// a mutex-guarded conditional update, mirroring the atomicity contract of
// the real store. Optional hooks script predicate misses and store errors.
type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*model.BookingRequest

	claimCalls int
	writes     int

	// beforeClaim, when set, runs under the lock before each conditional
	// update and may short-circuit the claim with (claimed, handled, err).
	beforeClaim func(call int) (bool, bool, error)

	findByIDFunc func(ctx context.Context, id string) (*model.BookingRequest, error)
}

func newFakeBookingStore(bookings ...*model.BookingRequest) *fakeBookingStore {
	s := &fakeBookingStore{bookings: make(map[string]*model.BookingRequest)}
	for _, b := range bookings {
		copied := *b
		s.bookings[b.ID] = &copied
	}
	return s
}

func (s *fakeBookingStore) FindByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	if s.findByIDFunc != nil {
		return s.findByIDFunc(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (s *fakeBookingStore) ClaimIfMatching(ctx context.Context, id string, guardID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.claimCalls++

	if s.beforeClaim != nil {
		if claimed, handled, err := s.beforeClaim(s.claimCalls); handled {
			if claimed {
				s.apply(id, guardID)
			}
			return claimed, err
		}
	}

	b, ok := s.bookings[id]
	if !ok || b.Status != model.StatusMatching {
		return false, nil
	}

	s.apply(id, guardID)
	return true, nil
}

// apply commits the matching -> assigned transition. Caller holds the lock.
func (s *fakeBookingStore) apply(id, guardID string) {
	b, ok := s.bookings[id]
	if !ok {
		return
	}
	b.Status = model.StatusAssigned
	b.AssignedGuardID = guardID
	b.UpdatedAt = time.Now().UTC()
	s.writes++
}

func (s *fakeBookingStore) TransitionStatus(ctx context.Context, id string, fromStatuses []string, toStatus string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return false, nil
	}
	for _, from := range fromStatuses {
		if b.Status == from {
			b.Status = toStatus
			b.UpdatedAt = time.Now().UTC()
			s.writes++
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeBookingStore) stateOf(id string) (status, guardID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[id]
	return b.Status, b.AssignedGuardID
}

func (s *fakeBookingStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *fakeBookingStore) claimCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claimCalls
}

// Unused by the assignment path.
func (s *fakeBookingStore) Create(ctx context.Context, b *model.BookingRequest) error { return nil }
func (s *fakeBookingStore) FindAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRequest, error) {
	return nil, nil
}
func (s *fakeBookingStore) Update(ctx context.Context, id string, b *model.BookingRequest) (*mongo.UpdateResult, error) {
	return nil, nil
}
func (s *fakeBookingStore) FindByCompanyAndStatus(ctx context.Context, companyID string, status string, startTime *time.Time, endTime *time.Time, limit int, offset int64) ([]*model.BookingRequest, error) {
	return nil, nil
}
func (s *fakeBookingStore) CountByCompanyAndStatus(ctx context.Context, companyID string, status string, startTime *time.Time, endTime *time.Time) (int64, error) {
	return 0, nil
}
func (s *fakeBookingStore) Count(ctx context.Context) (int64, error) { return 0, nil }
func (s *fakeBookingStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

type mockAssignmentRepo struct {
	mu      sync.Mutex
	created []*model.Assignment
	err     error
}

func (m *mockAssignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, a)
	return nil
}

func (m *mockAssignmentRepo) FindByBookingID(ctx context.Context, bookingID string) (*model.Assignment, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockAssignmentRepo) UpdateSubStatus(ctx context.Context, bookingID string, subStatus string) error {
	return nil
}

func (m *mockAssignmentRepo) createdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type mockAuditRecorder struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
	err     error
}

func (m *mockAuditRecorder) Append(ctx context.Context, entry *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRecorder) FindByBookingID(ctx context.Context, bookingID string, limit int) ([]*model.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, nil
}

func newTestService(store *fakeBookingStore, assignments *mockAssignmentRepo, auditor *mockAuditRecorder) *bookingService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})

	cfg := &config.Config{
		Log:               log,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		AssignMaxAttempts: 3,
		AssignBackoffBase: time.Millisecond,
		AssignDeadline:    2 * time.Second,
	}

	return &bookingService{
		repo:        store,
		assignments: assignments,
		auditor:     auditor,
		cfg:         cfg,
	}
}

func openBooking(id string) *model.BookingRequest {
	return &model.BookingRequest{
		ID:        id,
		ClientID:  "client-1",
		CompanyID: "company-1",
		Status:    model.StatusMatching,
		City:      "telaviv",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(9 * time.Hour),
	}
}

func TestTryAssign_AtMostOneWinner(t *testing.T) {
	const guards = 16

	store := newFakeBookingStore(openBooking("b1"))
	assignments := &mockAssignmentRepo{}
	auditor := &mockAuditRecorder{}
	svc := newTestService(store, assignments, auditor)

	results := make([]*AssignmentResult, guards)
	errs := make([]error, guards)

	var wg sync.WaitGroup
	for i := 0; i < guards; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.TryAssign(context.Background(), "b1", fmt.Sprintf("guard-%d", i))
		}(i)
	}
	wg.Wait()

	winners := 0
	winnerGuard := ""
	for i := 0; i < guards; i++ {
		require.NoError(t, errs[i], "guard %d", i)
		switch results[i].Outcome {
		case OutcomeAssigned:
			winners++
			winnerGuard = fmt.Sprintf("guard-%d", i)
		case OutcomeUnavailable:
		default:
			t.Errorf("guard %d: unexpected outcome %q", i, results[i].Outcome)
		}
	}

	require.Equal(t, 1, winners, "exactly one guard must win")

	status, guardID := store.stateOf("b1")
	assert.Equal(t, model.StatusAssigned, status)
	assert.Equal(t, winnerGuard, guardID)
	assert.Equal(t, 1, store.writeCount(), "only the winning claim may write")
	assert.Equal(t, 1, assignments.createdCount())
}

func TestTryAssign_Idempotent(t *testing.T) {
	store := newFakeBookingStore(openBooking("b1"))
	svc := newTestService(store, &mockAssignmentRepo{}, &mockAuditRecorder{})

	first, err := svc.TryAssign(context.Background(), "b1", "guard-1")
	require.NoError(t, err)
	require.Equal(t, OutcomeAssigned, first.Outcome)

	second, err := svc.TryAssign(context.Background(), "b1", "guard-1")
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyAssignedToCaller, second.Outcome)
	require.NotNil(t, second.Booking)
	assert.Equal(t, "guard-1", second.Booking.AssignedGuardID)

	assert.Equal(t, 1, store.writeCount(), "replay must not write again")
}

func TestTryAssign_CanceledBookingNoWrites(t *testing.T) {
	canceled := openBooking("b2")
	canceled.Status = model.StatusCanceled

	store := newFakeBookingStore(canceled)
	svc := newTestService(store, &mockAssignmentRepo{}, &mockAuditRecorder{})

	result, err := svc.TryAssign(context.Background(), "b2", "guard-1")
	require.NoError(t, err)
	require.Equal(t, OutcomeUnavailable, result.Outcome)

	assert.Equal(t, 0, store.writeCount())
	assert.Equal(t, 0, store.claimCount(), "closed bookings must short-circuit before the claim")
}

func TestTryAssign_LoserGetsUnavailable(t *testing.T) {
	store := newFakeBookingStore(openBooking("b1"))
	svc := newTestService(store, &mockAssignmentRepo{}, &mockAuditRecorder{})

	var wg sync.WaitGroup
	results := make([]*AssignmentResult, 2)
	for i, guard := range []string{"g1", "g2"} {
		wg.Add(1)
		go func(i int, guard string) {
			defer wg.Done()
			results[i], _ = svc.TryAssign(context.Background(), "b1", guard)
		}(i, guard)
	}
	wg.Wait()

	outcomes := map[AssignmentOutcome]int{}
	for _, r := range results {
		outcomes[r.Outcome]++
	}
	require.Equal(t, 1, outcomes[OutcomeAssigned])
	require.Equal(t, 1, outcomes[OutcomeUnavailable])

	_, winner := store.stateOf("b1")

	replay, err := svc.TryAssign(context.Background(), "b1", winner)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyAssignedToCaller, replay.Outcome)

	late, err := svc.TryAssign(context.Background(), "b1", "g3")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnavailable, late.Outcome)
}

func TestTryAssign_RetriesThenWins(t *testing.T) {
	store := newFakeBookingStore(openBooking("b1"))
	// First two predicate checks miss while the booking stays matching,
	// the third lands.
	store.beforeClaim = func(call int) (bool, bool, error) {
		if call <= 2 {
			return false, true, nil
		}
		return true, true, nil
	}

	svc := newTestService(store, &mockAssignmentRepo{}, &mockAuditRecorder{})

	result, err := svc.TryAssign(context.Background(), "b1", "guard-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, result.Outcome)
	assert.Equal(t, 3, store.claimCount())
}

func TestTryAssign_ExhaustedRetriesTransientFailure(t *testing.T) {
	store := newFakeBookingStore(openBooking("b1"))
	// The predicate never matches and the booking never leaves matching:
	// the arbiter must give up after its attempt budget, not loop forever.
	store.beforeClaim = func(call int) (bool, bool, error) {
		return false, true, nil
	}

	svc := newTestService(store, &mockAssignmentRepo{}, &mockAuditRecorder{})

	result, err := svc.TryAssign(context.Background(), "b1", "guard-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeTransientFailure, result.Outcome)
	assert.Equal(t, 3, store.claimCount())
}

func TestTryAssign_DeadlineExpiryTransientFailure(t *testing.T) {
	store := newFakeBookingStore(openBooking("b1"))
	// The predicate never matches and the backoff schedule outlives the
	// call deadline: the deadline must cut the loop short and surface a
	// transient failure instead of hanging.
	store.beforeClaim = func(call int) (bool, bool, error) {
		return false, true, nil
	}

	svc := newTestService(store, &mockAssignmentRepo{}, &mockAuditRecorder{})
	svc.cfg.AssignMaxAttempts = 50
	svc.cfg.AssignBackoffBase = 20 * time.Millisecond
	svc.cfg.AssignDeadline = 50 * time.Millisecond

	start := time.Now()
	result, err := svc.TryAssign(context.Background(), "b1", "guard-1")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, OutcomeTransientFailure, result.Outcome)
	assert.Less(t, elapsed, time.Second, "deadline expiry must not hang the call")
	assert.Less(t, store.claimCount(), 50, "deadline must stop the attempt loop early")
	assert.Greater(t, store.claimCount(), 0, "at least one claim must have been attempted")

	status, guardID := store.stateOf("b1")
	assert.Equal(t, model.StatusMatching, status)
	assert.Empty(t, guardID)
	assert.Equal(t, 0, store.writeCount())
}

func TestTryAssign_StoreErrorsAreRetried(t *testing.T) {
	store := newFakeBookingStore(openBooking("b1"))
	store.beforeClaim = func(call int) (bool, bool, error) {
		if call <= 2 {
			return false, true, errors.New("connection reset")
		}
		return false, false, nil
	}

	svc := newTestService(store, &mockAssignmentRepo{}, &mockAuditRecorder{})

	result, err := svc.TryAssign(context.Background(), "b1", "guard-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, result.Outcome)
}

func TestTryAssign_NotFound(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestService(store, &mockAssignmentRepo{}, &mockAuditRecorder{})

	_, err := svc.TryAssign(context.Background(), "missing", "guard-1")
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestTryAssign_EmptyInputs(t *testing.T) {
	svc := newTestService(newFakeBookingStore(), &mockAssignmentRepo{}, &mockAuditRecorder{})

	_, err := svc.TryAssign(context.Background(), "", "guard-1")
	assert.Error(t, err)

	_, err = svc.TryAssign(context.Background(), "b1", "")
	assert.Error(t, err)
}

func TestTryAssign_CompanionFailureDoesNotVoidWin(t *testing.T) {
	store := newFakeBookingStore(openBooking("b1"))
	assignments := &mockAssignmentRepo{err: errors.New("assignments collection unavailable")}
	auditor := &mockAuditRecorder{err: errors.New("audit collection unavailable")}

	svc := newTestService(store, assignments, auditor)

	result, err := svc.TryAssign(context.Background(), "b1", "guard-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, result.Outcome, "a committed claim is never rolled back")

	status, guardID := store.stateOf("b1")
	assert.Equal(t, model.StatusAssigned, status)
	assert.Equal(t, "guard-1", guardID)
}

func TestTryAssign_AuditRecordedForWinner(t *testing.T) {
	store := newFakeBookingStore(openBooking("b1"))
	auditor := &mockAuditRecorder{}

	svc := newTestService(store, &mockAssignmentRepo{}, auditor)

	_, err := svc.TryAssign(context.Background(), "b1", "guard-1")
	require.NoError(t, err)

	entries, _ := auditor.FindByBookingID(context.Background(), "b1", 10)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, model.StatusMatching, entry.PriorStatus)
	assert.Equal(t, model.StatusAssigned, entry.NewStatus)
	assert.Equal(t, "guard-1", entry.ActorID)
}
