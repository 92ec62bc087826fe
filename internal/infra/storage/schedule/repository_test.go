package schedule

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_Upsert(t *testing.T) {
	tests := []struct {
		name         string
		inserted     bool
		wantReplaced bool
	}{
		{name: "new rule", inserted: true, wantReplaced: false},
		{name: "existing rule", inserted: false, wantReplaced: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			now := time.Now()

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO barber_schedules (barber_id,day_of_week,start_time,end_time,is_available) VALUES ($1,$2,$3,$4,$5) ON CONFLICT (barber_id, day_of_week)")).
				WithArgs(int64(7), 1, "09:00", "17:00", true).
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "inserted"}).
					AddRow(int64(3), now, now, tt.inserted))

			rule, replaced, err := repo.Upsert(context.Background(), &domain.WeeklyScheduleRule{
				BarberID: 7, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantReplaced, replaced)
			assert.Equal(t, int64(3), rule.ID)
		})
	}
}

func TestRepository_GetByBarber(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM barber_schedules WHERE barber_id = $1 ORDER BY day_of_week ASC")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(ruleColumns).
			AddRow(int64(1), int64(7), int64(1), "09:00:00", "17:00:00", true, now, now).
			AddRow(int64(2), int64(7), int64(2), nil, nil, false, now, now))

	rules, err := repo.GetByBarber(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "09:00", rules[0].StartTime.String())
	assert.False(t, rules[1].IsAvailable)
	assert.True(t, rules[1].StartTime.IsZero())
}

func TestRepository_GetByBarberAndDay_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM barber_schedules WHERE barber_id = $1 AND day_of_week = $2")).
		WithArgs(int64(7), 0).
		WillReturnRows(sqlmock.NewRows(ruleColumns))

	_, err := repo.GetByBarberAndDay(context.Background(), 7, 0)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestRepository_ReplaceWeek(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM barber_schedules WHERE barber_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	for i, day := range []int{2, 6} {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO barber_schedules")).
			WithArgs(int64(7), day, sqlmock.AnyArg(), sqlmock.AnyArg(), true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "inserted"}).
				AddRow(int64(10+i), now, now, true))
	}

	saved, err := repo.ReplaceWeek(context.Background(), 7, []*domain.WeeklyScheduleRule{
		{DayOfWeek: 2, StartTime: "12:00", EndTime: "20:00", IsAvailable: true},
		{DayOfWeek: 6, StartTime: "10:00", EndTime: "14:00", IsAvailable: true},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, int64(7), saved[0].BarberID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM barber_schedules WHERE barber_id = $1 AND day_of_week = $2")).
		WithArgs(int64(7), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM barber_schedules")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 7, 2))
	assert.ErrorIs(t, repo.Delete(context.Background(), 7, 2), ErrRuleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
