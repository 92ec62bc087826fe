package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	exceptionRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/exception"
	scheduleRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-BarberService/internal/service/schedule/models"
	"github.com/m04kA/SMC-BarberService/pkg/ptr"
)

type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) Upsert(ctx context.Context, rule *domain.WeeklyScheduleRule) (*domain.WeeklyScheduleRule, bool, error) {
	args := m.Called(ctx, rule)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.WeeklyScheduleRule), args.Bool(1), args.Error(2)
}

func (m *mockScheduleRepo) GetByBarber(ctx context.Context, barberID int64) ([]*domain.WeeklyScheduleRule, error) {
	args := m.Called(ctx, barberID)
	return args.Get(0).([]*domain.WeeklyScheduleRule), args.Error(1)
}

func (m *mockScheduleRepo) ReplaceWeek(ctx context.Context, barberID int64, rules []*domain.WeeklyScheduleRule) ([]*domain.WeeklyScheduleRule, error) {
	args := m.Called(ctx, barberID, rules)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WeeklyScheduleRule), args.Error(1)
}

func (m *mockScheduleRepo) Delete(ctx context.Context, barberID int64, dayOfWeek int) error {
	return m.Called(ctx, barberID, dayOfWeek).Error(0)
}

type mockExceptionRepo struct {
	mock.Mock
}

func (m *mockExceptionRepo) Upsert(ctx context.Context, exc *domain.ScheduleException) (*domain.ScheduleException, bool, error) {
	args := m.Called(ctx, exc)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.ScheduleException), args.Bool(1), args.Error(2)
}

func (m *mockExceptionRepo) ListByRange(ctx context.Context, barberID int64, from, to *time.Time) ([]*domain.ScheduleException, error) {
	args := m.Called(ctx, barberID, from, to)
	return args.Get(0).([]*domain.ScheduleException), args.Error(1)
}

func (m *mockExceptionRepo) Delete(ctx context.Context, barberID int64, date time.Time) error {
	return m.Called(ctx, barberID, date).Error(0)
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

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const barberID int64 = 7

var barberActor = domain.Actor{UserID: barberID, Role: domain.RoleBarber}

type fixture struct {
	schedule   *mockScheduleRepo
	exceptions *mockExceptionRepo
	catalog    *mockCatalog
	service    *Service
}

func newFixture() *fixture {
	f := &fixture{
		schedule:   &mockScheduleRepo{},
		exceptions: &mockExceptionRepo{},
		catalog:    &mockCatalog{},
	}
	f.service = NewService(f.schedule, f.exceptions, f.catalog, inlineTx{}, nil, nopLogger{})
	return f
}

func (f *fixture) barberExists() {
	f.catalog.On("GetBarber", mock.Anything, barberID).Return(&catalogservice.Barber{ID: barberID, IsActive: true}, nil)
}

func TestService_ReplaceWeeklySchedule(t *testing.T) {
	f := newFixture()
	f.barberExists()

	f.schedule.On("ReplaceWeek", mock.Anything, barberID, mock.MatchedBy(func(rules []*domain.WeeklyScheduleRule) bool {
		return len(rules) == 2 && rules[0].DayOfWeek == 1 && !rules[1].IsAvailable
	})).Return([]*domain.WeeklyScheduleRule{
		{ID: 1, BarberID: barberID, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		{ID: 2, BarberID: barberID, DayOfWeek: 0},
	}, nil)

	resp, err := f.service.ReplaceWeeklySchedule(context.Background(), &models.ReplaceWeekRequest{
		Actor:    barberActor,
		BarberID: barberID,
		Rules: []models.WeeklyRuleRequest{
			{DayOfWeek: ptr.Ptr(1), StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
			{DayOfWeek: ptr.Ptr(0)},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Rules, 2)
	assert.Equal(t, "09:00", resp.Rules[0].StartTime)
	assert.Empty(t, resp.Rules[1].StartTime)
	f.schedule.AssertExpectations(t)
}

func TestService_ReplaceWeeklySchedule_RejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name  string
		rules []models.WeeklyRuleRequest
	}{
		{
			name: "duplicate day",
			rules: []models.WeeklyRuleRequest{
				{DayOfWeek: ptr.Ptr(1), StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
				{DayOfWeek: ptr.Ptr(1), StartTime: "10:00", EndTime: "18:00", IsAvailable: true},
			},
		},
		{
			name:  "inverted interval",
			rules: []models.WeeklyRuleRequest{{DayOfWeek: ptr.Ptr(2), StartTime: "18:00", EndTime: "09:00", IsAvailable: true}},
		},
		{
			name:  "bad time format",
			rules: []models.WeeklyRuleRequest{{DayOfWeek: ptr.Ptr(2), StartTime: "9am", EndTime: "17:00", IsAvailable: true}},
		},
		{
			name:  "missing day",
			rules: []models.WeeklyRuleRequest{{StartTime: "09:00", EndTime: "17:00", IsAvailable: true}},
		},
		{
			name:  "day out of range",
			rules: []models.WeeklyRuleRequest{{DayOfWeek: ptr.Ptr(7)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.barberExists()

			_, err := f.service.ReplaceWeeklySchedule(context.Background(), &models.ReplaceWeekRequest{
				Actor: barberActor, BarberID: barberID, Rules: tt.rules,
			})
			assert.ErrorIs(t, err, ErrInvalidInput)
			f.schedule.AssertNotCalled(t, "ReplaceWeek", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_AccessControl(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Actor
		wantErr error
	}{
		{name: "client", actor: domain.Actor{UserID: 42, Role: domain.RoleClient}, wantErr: ErrAccessDenied},
		{name: "other barber", actor: domain.Actor{UserID: 8, Role: domain.RoleBarber}, wantErr: ErrAccessDenied},
		{name: "admin", actor: domain.Actor{UserID: 1, Role: domain.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.barberExists()
			f.exceptions.On("Delete", mock.Anything, barberID, mock.Anything).Return(nil)

			err := f.service.DeleteException(context.Background(), tt.actor, barberID, time.Now())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.exceptions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_UpsertWeeklyRule_BarberNotFound(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetBarber", mock.Anything, barberID).Return(nil, catalogservice.ErrBarberNotFound)

	_, err := f.service.UpsertWeeklyRule(context.Background(), &models.UpsertWeeklyRuleRequest{
		Actor:    barberActor,
		BarberID: barberID,
		Rule:     models.WeeklyRuleRequest{DayOfWeek: ptr.Ptr(1), StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
	})
	assert.ErrorIs(t, err, ErrBarberNotFound)
}

func TestService_UpsertWeeklyRule_ReportsReplaced(t *testing.T) {
	f := newFixture()
	f.barberExists()
	f.schedule.On("Upsert", mock.Anything, mock.Anything).
		Return(&domain.WeeklyScheduleRule{ID: 3, BarberID: barberID, DayOfWeek: 1, StartTime: "10:00", EndTime: "14:00", IsAvailable: true}, true, nil)

	resp, err := f.service.UpsertWeeklyRule(context.Background(), &models.UpsertWeeklyRuleRequest{
		Actor:    barberActor,
		BarberID: barberID,
		Rule:     models.WeeklyRuleRequest{DayOfWeek: ptr.Ptr(1), StartTime: "10:00", EndTime: "14:00", IsAvailable: true},
	})
	require.NoError(t, err)
	assert.True(t, resp.Replaced)
	assert.Equal(t, "10:00", resp.Rule.StartTime)
}

func TestService_UpsertException(t *testing.T) {
	f := newFixture()
	f.barberExists()
	f.exceptions.On("Upsert", mock.Anything, mock.MatchedBy(func(exc *domain.ScheduleException) bool {
		return exc.IsSpecialHours() && exc.StartTime.String() == "10:00"
	})).Return(&domain.ScheduleException{
		ID: 5, BarberID: barberID, ExceptionDate: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		IsAvailable: true, StartTime: nil, EndTime: nil,
	}, false, nil)

	resp, err := f.service.UpsertException(context.Background(), &models.UpsertExceptionRequest{
		Actor:    barberActor,
		BarberID: barberID,
		Exception: models.ExceptionRequest{
			Date:        "2025-03-09",
			IsAvailable: true,
			StartTime:   ptr.Ptr("10:00"),
			EndTime:     ptr.Ptr("14:00"),
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.Replaced)
	assert.Equal(t, "2025-03-09", resp.Exception.Date)
}

func TestService_UpsertException_Invalid(t *testing.T) {
	tests := []struct {
		name string
		exc  models.ExceptionRequest
	}{
		{name: "bad date", exc: models.ExceptionRequest{Date: "09/03/2025"}},
		{name: "special hours without end", exc: models.ExceptionRequest{Date: "2025-03-09", IsAvailable: true, StartTime: ptr.Ptr("10:00")}},
		{name: "all day with hours", exc: models.ExceptionRequest{Date: "2025-03-09", IsAvailable: true, AllDay: true, StartTime: ptr.Ptr("10:00"), EndTime: ptr.Ptr("12:00")}},
		{name: "bad time", exc: models.ExceptionRequest{Date: "2025-03-09", IsAvailable: true, StartTime: ptr.Ptr("24:30"), EndTime: ptr.Ptr("12:00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.barberExists()

			_, err := f.service.UpsertException(context.Background(), &models.UpsertExceptionRequest{
				Actor: barberActor, BarberID: barberID, Exception: tt.exc,
			})
			assert.ErrorIs(t, err, ErrInvalidInput)
			f.exceptions.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}

func TestService_CreateExceptionRange(t *testing.T) {
	f := newFixture()
	f.barberExists()
	f.exceptions.On("Upsert", mock.Anything, mock.Anything).Return(&domain.ScheduleException{BarberID: barberID}, false, nil).Times(2)
	f.exceptions.On("Upsert", mock.Anything, mock.Anything).Return(&domain.ScheduleException{BarberID: barberID}, true, nil).Once()

	resp, err := f.service.CreateExceptionRange(context.Background(), &models.ExceptionRangeRequest{
		Actor:     barberActor,
		BarberID:  barberID,
		StartDate: "2025-03-10",
		EndDate:   "2025-03-12",
		Reason:    ptr.Ptr("Vacaciones"),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Exceptions, 3)
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, 1, resp.Replaced)
}

func TestService_DeleteException_NotFound(t *testing.T) {
	f := newFixture()
	f.barberExists()
	f.exceptions.On("Delete", mock.Anything, barberID, mock.Anything).Return(exceptionRepo.ErrExceptionNotFound)

	err := f.service.DeleteException(context.Background(), barberActor, barberID, time.Now())
	assert.ErrorIs(t, err, ErrExceptionNotFound)
}

func TestService_GetExceptions_InvalidRange(t *testing.T) {
	f := newFixture()
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := f.service.GetExceptions(context.Background(), barberID, &from, &to)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_DeleteWeeklyRule(t *testing.T) {
	f := newFixture()
	f.barberExists()
	f.schedule.On("Delete", mock.Anything, barberID, 2).Return(nil).Once()
	f.schedule.On("Delete", mock.Anything, barberID, 3).Return(scheduleRepo.ErrRuleNotFound).Once()

	assert.NoError(t, f.service.DeleteWeeklyRule(context.Background(), barberActor, barberID, 2))
	assert.ErrorIs(t, f.service.DeleteWeeklyRule(context.Background(), barberActor, barberID, 3), ErrRuleNotFound)
	f.schedule.AssertExpectations(t)
}

func TestService_DeleteWeeklyRule_Rejects(t *testing.T) {
	f := newFixture()
	f.barberExists()

	err := f.service.DeleteWeeklyRule(context.Background(), barberActor, barberID, 7)
	assert.ErrorIs(t, err, ErrInvalidInput)

	other := domain.Actor{UserID: 99, Role: domain.RoleBarber}
	err = f.service.DeleteWeeklyRule(context.Background(), other, barberID, 2)
	assert.ErrorIs(t, err, ErrAccessDenied)

	f.schedule.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
