package create_booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/availability"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/infra/cache/idempotency"
	bookingRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/booking"
	exceptionRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/exception"
	"github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-BarberService/pkg/ptr"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetByIdempotencyKey(ctx context.Context, clientID int64, key string) (*domain.Booking, error) {
	args := m.Called(ctx, clientID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetByBarberWithFilter(ctx context.Context, filter domain.BarberBookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) GetByBarber(ctx context.Context, barberID int64) ([]*domain.WeeklyScheduleRule, error) {
	args := m.Called(ctx, barberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WeeklyScheduleRule), args.Error(1)
}

type mockExceptionRepo struct {
	mock.Mock
}

func (m *mockExceptionRepo) GetByDate(ctx context.Context, barberID int64, date time.Time) (*domain.ScheduleException, error) {
	args := m.Called(ctx, barberID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleException), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetBarber(ctx context.Context, barberID int64) (*catalogservice.Barber, error) {
	args := m.Called(ctx, barberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogservice.Barber), args.Error(1)
}

func (m *mockCatalog) GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogservice.Service), args.Error(1)
}

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Get(ctx context.Context, clientID int64, key string) (int64, error) {
	args := m.Called(ctx, clientID, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockIdempotencyStore) Remember(ctx context.Context, clientID int64, key string, bookingID int64) (bool, error) {
	args := m.Called(ctx, clientID, key, bookingID)
	return args.Bool(0), args.Error(1)
}

type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// retryTx повторяет fn при ошибке сериализации PostgreSQL
type retryTx struct {
	attempts int
}

func (r *retryTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for i := 0; i < 3; i++ {
		r.attempts++
		err = fn(ctx)
		var pqErr *pq.Error
		if !errors.As(err, &pqErr) || pqErr.Code != "40001" {
			return err
		}
	}
	return err
}

type fakeMetrics struct {
	created   int
	replays   int
	conflicts []string
}

func (f *fakeMetrics) IncBookingCreated()               { f.created++ }
func (f *fakeMetrics) IncIdempotentReplay()             { f.replays++ }
func (f *fakeMetrics) IncBookingConflict(reason string) { f.conflicts = append(f.conflicts, reason) }

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const (
	barberID  int64 = 7
	clientID  int64 = 42
	serviceID int64 = 3
	key             = "6f1c0f5e-2b0a-4b8e-9a55-0c7d4c3e9f10"
)

var (
	monday   = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	saturday = monday.AddDate(0, 0, -2)
)

type fixture struct {
	bookings   *mockBookingRepo
	schedule   *mockScheduleRepo
	exceptions *mockExceptionRepo
	catalog    *mockCatalog
	store      *mockIdempotencyStore
	metrics    *fakeMetrics
	useCase    *UseCase
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	engine, err := availability.NewEngine(availability.Config{
		DefaultDay:         domain.TimeInterval{Start: "08:00", End: "18:00"},
		GranularityMinutes: 30,
	})
	require.NoError(t, err)

	f := &fixture{
		bookings:   &mockBookingRepo{},
		schedule:   &mockScheduleRepo{},
		exceptions: &mockExceptionRepo{},
		catalog:    &mockCatalog{},
		store:      &mockIdempotencyStore{},
		metrics:    &fakeMetrics{},
	}
	f.useCase = NewUseCase(f.bookings, f.schedule, f.exceptions, f.catalog, f.store, inlineTx{}, engine,
		Settings{AdvanceBookingDays: 30, MinBookingNoticeMinutes: 60}, f.metrics, nopLogger{}).
		WithTimeProvider(fixedTime{now: now})
	return f
}

// ready настраивает каталог, понедельник 09:00-17:00 без исключений и переданные бронирования
func (f *fixture) ready(existing ...*domain.Booking) {
	f.catalog.On("GetBarber", mock.Anything, barberID).Return(&catalogservice.Barber{ID: barberID, IsActive: true}, nil)
	f.catalog.On("GetService", mock.Anything, serviceID).
		Return(&catalogservice.Service{ID: serviceID, Name: "Corte clásico", DurationMinutes: 30, Price: 15.5, IsActive: true}, nil)
	f.schedule.On("GetByBarber", mock.Anything, barberID).Return([]*domain.WeeklyScheduleRule{
		{BarberID: barberID, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
	}, nil)
	f.exceptions.On("GetByDate", mock.Anything, barberID, mock.Anything).Return(nil, exceptionRepo.ErrExceptionNotFound)
	f.bookings.On("GetByBarberWithFilter", mock.Anything, mock.MatchedBy(func(filter domain.BarberBookingsFilter) bool {
		return filter.BarberID == barberID && filter.IsSingleDay()
	})).Return(existing, nil)
}

func request(start string) *Request {
	return &Request{
		ClientID:  clientID,
		BarberID:  barberID,
		ServiceID: serviceID,
		Date:      monday,
		StartTime: types.TimeString(start),
	}
}

func stored(id int64, start string) *domain.Booking {
	return &domain.Booking{
		ID: id, BarberID: barberID, ClientID: clientID, ServiceID: serviceID,
		BookingDate: monday, StartTime: types.TimeString(start), DurationMinutes: 30,
		Status: domain.StatusPending, ServiceName: "Corte clásico", ServicePrice: 15.5,
	}
}

func TestUseCase_Execute_Creates(t *testing.T) {
	f := newFixture(t, saturday.Add(12*time.Hour))
	f.ready(stored(1, "10:00"))
	f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.StartTime == "11:00" && b.DurationMinutes == 30 && b.Status == domain.StatusPending &&
			b.ServicePrice == 15.5 && b.BookingDate.Equal(monday) && b.IdempotencyKey == nil
	})).Return(stored(2, "11:00"), nil)

	resp, err := f.useCase.Execute(context.Background(), request("11:00"))
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.ID)
	assert.Equal(t, types.TimeString("11:30"), resp.EndTime)
	assert.False(t, resp.Replayed)
	assert.Equal(t, 1, f.metrics.created)
	f.store.AssertNotCalled(t, "Remember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUseCase_Execute_RemembersIdempotencyKey(t *testing.T) {
	f := newFixture(t, saturday)
	f.ready()
	f.store.On("Get", mock.Anything, clientID, key).Return(int64(0), idempotency.ErrKeyNotFound)
	f.bookings.On("GetByIdempotencyKey", mock.Anything, clientID, key).Return(nil, bookingRepo.ErrBookingNotFound)
	f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.IdempotencyKey != nil && *b.IdempotencyKey == key
	})).Return(stored(5, "09:00"), nil)
	f.store.On("Remember", mock.Anything, clientID, key, int64(5)).Return(true, nil)

	req := request("09:00")
	req.IdempotencyKey = ptr.Ptr(key)

	resp, err := f.useCase.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.ID)
	f.store.AssertExpectations(t)
}

func TestUseCase_Execute_ReplaysFromStore(t *testing.T) {
	f := newFixture(t, saturday)
	f.store.On("Get", mock.Anything, clientID, key).Return(int64(5), nil)
	f.bookings.On("GetByID", mock.Anything, int64(5)).Return(stored(5, "09:00"), nil)

	req := request("09:00")
	req.IdempotencyKey = ptr.Ptr(key)

	resp, err := f.useCase.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, int64(5), resp.ID)
	assert.Equal(t, 1, f.metrics.replays)
	assert.Zero(t, f.metrics.created)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.catalog.AssertNotCalled(t, "GetService", mock.Anything, mock.Anything)
}

func TestUseCase_Execute_ReplaysFromDatabaseWhenStoreFails(t *testing.T) {
	f := newFixture(t, saturday)
	f.store.On("Get", mock.Anything, clientID, key).Return(int64(0), fmt.Errorf("%w: connection refused", idempotency.ErrStore))
	f.bookings.On("GetByIdempotencyKey", mock.Anything, clientID, key).Return(stored(5, "09:00"), nil)
	f.store.On("Remember", mock.Anything, clientID, key, int64(5)).Return(false, fmt.Errorf("%w: connection refused", idempotency.ErrStore))

	req := request("09:00")
	req.IdempotencyKey = ptr.Ptr(key)

	resp, err := f.useCase.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
}

func TestUseCase_Execute_IdempotencyKeyReused(t *testing.T) {
	f := newFixture(t, saturday)
	f.store.On("Get", mock.Anything, clientID, key).Return(int64(5), nil)
	f.bookings.On("GetByID", mock.Anything, int64(5)).Return(stored(5, "09:00"), nil)

	req := request("09:30")
	req.IdempotencyKey = ptr.Ptr(key)

	_, err := f.useCase.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrIdempotencyKeyReused)
}

func TestUseCase_Execute_ConcurrentSameKey(t *testing.T) {
	f := newFixture(t, saturday)
	f.ready()
	f.store.On("Get", mock.Anything, clientID, key).Return(int64(0), idempotency.ErrKeyNotFound)
	f.bookings.On("GetByIdempotencyKey", mock.Anything, clientID, key).Return(nil, bookingRepo.ErrBookingNotFound).Once()
	f.bookings.On("GetByIdempotencyKey", mock.Anything, clientID, key).Return(stored(9, "09:00"), nil).Once()
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil, bookingRepo.ErrDuplicateIdempotencyKey)
	f.store.On("Remember", mock.Anything, clientID, key, int64(9)).Return(true, nil)

	req := request("09:00")
	req.IdempotencyKey = ptr.Ptr(key)

	resp, err := f.useCase.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, int64(9), resp.ID)
}

func TestUseCase_Execute_Rejects(t *testing.T) {
	tests := []struct {
		name         string
		start        string
		existing     []*domain.Booking
		wantErr      error
		wantConflict string
	}{
		{name: "off grid next to booking", start: "10:15", existing: []*domain.Booking{stored(1, "10:00")}, wantErr: ErrInvalidTimeSlot, wantConflict: conflictInvalidSlot},
		{name: "slot taken", start: "10:00", existing: []*domain.Booking{stored(1, "10:00")}, wantErr: ErrSlotNotAvailable, wantConflict: conflictSlotTaken},
		{name: "after closing", start: "16:45", wantErr: ErrInvalidTimeSlot, wantConflict: conflictInvalidSlot},
		{name: "before opening", start: "08:30", wantErr: ErrInvalidTimeSlot, wantConflict: conflictInvalidSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, saturday)
			f.ready(tt.existing...)

			_, err := f.useCase.Execute(context.Background(), request(tt.start))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{tt.wantConflict}, f.metrics.conflicts)
			f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUseCase_Execute_UniqueViolationIsConflict(t *testing.T) {
	f := newFixture(t, saturday)
	f.ready()
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil, bookingRepo.ErrSlotAlreadyTaken)

	_, err := f.useCase.Execute(context.Background(), request("09:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, []string{conflictSlotTaken}, f.metrics.conflicts)
}

// Проигравшая гонку транзакция повторяется и видит занятый слот
func TestUseCase_Execute_SerializationFailureRetriedAsConflict(t *testing.T) {
	f := newFixture(t, saturday)
	tx := &retryTx{}
	engine, err := availability.NewEngine(availability.Config{
		DefaultDay:         domain.TimeInterval{Start: "08:00", End: "18:00"},
		GranularityMinutes: 30,
	})
	require.NoError(t, err)
	f.useCase = NewUseCase(f.bookings, f.schedule, f.exceptions, f.catalog, f.store, tx, engine,
		Settings{AdvanceBookingDays: 30, MinBookingNoticeMinutes: 60}, f.metrics, nopLogger{}).
		WithTimeProvider(fixedTime{now: saturday})

	f.catalog.On("GetBarber", mock.Anything, barberID).Return(&catalogservice.Barber{ID: barberID, IsActive: true}, nil)
	f.catalog.On("GetService", mock.Anything, serviceID).
		Return(&catalogservice.Service{ID: serviceID, Name: "Corte clásico", DurationMinutes: 30, Price: 15.5, IsActive: true}, nil)
	f.schedule.On("GetByBarber", mock.Anything, barberID).Return([]*domain.WeeklyScheduleRule{
		{BarberID: barberID, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
	}, nil)
	f.exceptions.On("GetByDate", mock.Anything, barberID, mock.Anything).Return(nil, exceptionRepo.ErrExceptionNotFound)
	f.bookings.On("GetByBarberWithFilter", mock.Anything, mock.Anything).Return([]*domain.Booking{}, nil).Once()
	f.bookings.On("GetByBarberWithFilter", mock.Anything, mock.Anything).Return([]*domain.Booking{stored(9, "09:00")}, nil).Once()
	f.bookings.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: Create - execute insert: %w", bookingRepo.ErrExecQuery, &pq.Error{Code: "40001"})).Once()

	_, err = f.useCase.Execute(context.Background(), request("09:00"))

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Equal(t, 2, tx.attempts)
	f.bookings.AssertNumberOfCalls(t, "Create", 1)
}

func TestUseCase_Execute_DayOff(t *testing.T) {
	f := newFixture(t, saturday)
	f.ready()

	req := request("10:00")
	req.Date = monday.AddDate(0, 0, 1)

	_, err := f.useCase.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBarberUnavailable)
	assert.Equal(t, []string{conflictUnavailable}, f.metrics.conflicts)
}

func TestUseCase_Execute_TooLateToday(t *testing.T) {
	f := newFixture(t, monday.Add(9*time.Hour+30*time.Minute))

	_, err := f.useCase.Execute(context.Background(), request("10:00"))
	assert.ErrorIs(t, err, ErrTooLateToBook)
	assert.Equal(t, []string{conflictTooLate}, f.metrics.conflicts)
	f.catalog.AssertNotCalled(t, "GetBarber", mock.Anything, mock.Anything)
}

func TestUseCase_Execute_InvalidInput(t *testing.T) {
	f := newFixture(t, saturday)

	badKey := request("10:00")
	badKey.IdempotencyKey = ptr.Ptr("not-a-uuid")
	_, err := f.useCase.Execute(context.Background(), badKey)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.useCase.Execute(context.Background(), request("25:00"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	noClient := request("10:00")
	noClient.ClientID = 0
	_, err = f.useCase.Execute(context.Background(), noClient)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUseCase_Execute_PastDate(t *testing.T) {
	f := newFixture(t, monday.AddDate(0, 0, 1))

	_, err := f.useCase.Execute(context.Background(), request("10:00"))
	assert.ErrorIs(t, err, ErrInvalidDate)
}
