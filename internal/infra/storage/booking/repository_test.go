package booking

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberService/pkg/ptr"
	"github.com/m04kA/SMC-BarberService/pkg/simpletxmanager"
)

var bookingDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (*Repository, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), db, mock
}

func newBooking() *domain.Booking {
	return &domain.Booking{
		BarberID:        7,
		ClientID:        42,
		ServiceID:       3,
		BookingDate:     bookingDate,
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusPending,
		ServiceName:     "Corte clásico",
		ServicePrice:    15,
	}
}

func bookingRow(id int64, start string, status domain.BookingStatus) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, int64(7), int64(42), int64(3), bookingDate, start + ":00", int64(30), string(status),
		"Corte clásico", 15.0, nil, nil, nil, nil, nil, now, now,
	}
}

func TestRepository_Create(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(int64(7), int64(42), int64(3), bookingDate, "10:00", 30, "pending",
			"Corte clásico", 15.0, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	created, err := repo.Create(context.Background(), newBooking())
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, now, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_UniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantErr    error
	}{
		{name: "slot taken", constraint: activeSlotConstraint, wantErr: ErrSlotAlreadyTaken},
		{name: "idempotency key", constraint: idempotencyKeyConstraint, wantErr: ErrDuplicateIdempotencyKey},
		{name: "other constraint", constraint: "bookings_pkey", wantErr: ErrExecQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, mock := newMockRepo(t)
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
				WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: tt.constraint})

			_, err := repo.Create(context.Background(), newBooking())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRepository_Create_SerializationFailureIsRetried(t *testing.T) {
	repo, db, mock := newMockRepo(t)
	txMgr := simpletxmanager.NewTransactionManager(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(12), now, now))
	mock.ExpectCommit()

	attempts := 0
	var created *domain.Booking
	err := txMgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		var err error
		created, err = repo.Create(ctx, newBooking())
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(12), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_KeepsDriverError(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: "40001"})

	_, err := repo.Create(context.Background(), newBooking())
	assert.ErrorIs(t, err, ErrExecQuery)

	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
}

func TestRepository_GetByID(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(11, "10:00", domain.StatusConfirmed)...))

	got, err := repo.GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, "10:00", got.StartTime.String())
	assert.Nil(t, got.Notes)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	_, err := repo.GetByID(context.Background(), 11)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_GetByIdempotencyKey(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE client_id = $1 AND idempotency_key = $2")).
		WithArgs(int64(42), "key-1").
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(11, "10:00", domain.StatusPending)...))

	got, err := repo.GetByIdempotencyKey(context.Background(), 42, "key-1")
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
}

func TestRepository_GetByBarberWithFilter_ExcludesInactive(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE barber_id = $1 AND booking_date >= $2 AND booking_date <= $3 AND status NOT IN ($4) ORDER BY start_time ASC")).
		WithArgs(int64(7), bookingDate, bookingDate, "cancelled").
		WillReturnRows(sqlmock.NewRows(bookingColumns).
			AddRow(bookingRow(1, "10:00", domain.StatusConfirmed)...).
			AddRow(bookingRow(2, "10:30", domain.StatusPending)...))

	got, err := repo.GetByBarberWithFilter(context.Background(), domain.BarberBookingsFilter{
		BarberID:  7,
		StartDate: &bookingDate,
		EndDate:   &bookingDate,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "10:30", got[1].StartTime.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByBarberWithFilter_LocksDayInTransaction(t *testing.T) {
	repo, db, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY start_time ASC FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(bookingColumns))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), &dbmetrics.SqlTxWrapper{Tx: tx})

	got, err := repo.GetByBarberWithFilter(ctx, domain.BarberBookingsFilter{
		BarberID:  7,
		StartDate: &bookingDate,
		EndDate:   &bookingDate,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByClientID_WithStatus(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	status := domain.StatusCancelled

	mock.ExpectQuery(regexp.QuoteMeta("WHERE client_id = $1 AND status = $2")).
		WithArgs(int64(42), "cancelled").
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(bookingRow(5, "12:00", status)...))

	got, err := repo.GetByClientID(context.Background(), 42, &status)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsCancelled())
}

func TestRepository_Cancel(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, cancellation_reason = $2, cancelled_at = NOW(), updated_at = NOW() WHERE id = $3 AND status IN ($4,$5)")).
		WithArgs("cancelled", "no puedo", int64(11), "pending", "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Cancel(context.Background(), 11, ptr.Ptr("no puedo"))
	assert.NoError(t, err)
}

func TestRepository_Cancel_NotCancellable(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), 11, nil)
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestRepository_UpdateStatus_Completed(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, updated_at = NOW(), completed_at = NOW() WHERE id = $2 AND status IN ($3)")).
		WithArgs("completed", int64(11), "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 11, []domain.BookingStatus{domain.StatusConfirmed}, domain.StatusCompleted)
	assert.NoError(t, err)
}

func TestRepository_UpdateStatus_WrongCurrentStatus(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status IN ($3)")).
		WithArgs("confirmed", int64(11), "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 11, []domain.BookingStatus{domain.StatusPending}, domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestRepository_GetStats(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	to := bookingDate.AddDate(0, 0, 6)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*), COALESCE(SUM(service_price), 0) FROM bookings WHERE barber_id = $1 AND booking_date >= $2 AND booking_date <= $3 GROUP BY status")).
		WithArgs(int64(7), bookingDate, to).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "revenue"}).
			AddRow("completed", int64(3), 46.5).
			AddRow("confirmed", int64(1), 15.5).
			AddRow("cancelled", int64(2), 31.0))

	stats, err := repo.GetStats(context.Background(), 7, bookingDate, to)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusStats{Count: 3, Revenue: 46.5}, stats.ByStatus[domain.StatusCompleted])
	assert.Equal(t, 4, stats.ActiveCount())
	assert.Equal(t, 46.5, stats.CompletedRevenue())
	assert.Equal(t, 62.0, stats.ExpectedRevenue())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetStats_Empty(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "revenue"}))

	stats, err := repo.GetStats(context.Background(), 7, bookingDate, bookingDate)
	require.NoError(t, err)
	assert.Zero(t, stats.ActiveCount())
	assert.Zero(t, stats.CompletedRevenue())
}
