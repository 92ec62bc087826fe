package exception

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberService/pkg/psqlbuilder"
)

const upsertSuffix = `ON CONFLICT (barber_id, exception_date) DO UPDATE SET
	all_day = EXCLUDED.all_day,
	is_available = EXCLUDED.is_available,
	start_time = EXCLUDED.start_time,
	end_time = EXCLUDED.end_time,
	reason = EXCLUDED.reason,
	updated_at = NOW()
RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`

var exceptionColumns = []string{
	"id",
	"barber_id",
	"exception_date",
	"all_day",
	"is_available",
	"start_time",
	"end_time",
	"reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий исключений из расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория исключений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или заменяет исключение на (barber_id, exception_date), последняя запись побеждает
// replaced = true, если на эту дату уже было исключение
func (r *Repository) Upsert(ctx context.Context, exc *domain.ScheduleException) (*domain.ScheduleException, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	exc.ExceptionDate = domain.DateOnly(exc.ExceptionDate)

	query, args, err := psqlbuilder.Insert("barber_exceptions").
		Columns("barber_id", "exception_date", "all_day", "is_available", "start_time", "end_time", "reason").
		Values(exc.BarberID, exc.ExceptionDate, exc.AllDay, exc.IsAvailable, exc.StartTime, exc.EndTime, exc.Reason).
		Suffix(upsertSuffix).
		ToSql()

	if err != nil {
		return nil, false, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	var inserted bool
	err = executor.QueryRowContext(ctx, query, args...).Scan(&exc.ID, &createdAt, &updatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	exc.CreatedAt = createdAt.Time
	exc.UpdatedAt = updatedAt.Time

	return exc, !inserted, nil
}

// GetByDate получает исключение барбера на дату
func (r *Repository) GetByDate(ctx context.Context, barberID int64, date time.Time) (*domain.ScheduleException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(exceptionColumns...).
		From("barber_exceptions").
		Where(squirrel.Eq{"barber_id": barberID, "exception_date": domain.DateOnly(date)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - build select query: %v", ErrBuildQuery, err)
	}

	exc, err := scanException(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrExceptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - scan exception: %w", ErrScanRow, err)
	}

	return exc, nil
}

// ListByRange получает исключения барбера в периоде [from, to], границы опциональны
func (r *Repository) ListByRange(ctx context.Context, barberID int64, from, to *time.Time) ([]*domain.ScheduleException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(exceptionColumns...).
		From("barber_exceptions").
		Where(squirrel.Eq{"barber_id": barberID}).
		OrderBy("exception_date ASC")

	if from != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"exception_date": domain.DateOnly(*from)})
	}
	if to != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"exception_date": domain.DateOnly(*to)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRange - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	exceptions := make([]*domain.ScheduleException, 0)
	for rows.Next() {
		exc, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByRange - scan row: %w", ErrScanRow, err)
		}
		exceptions = append(exceptions, exc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByRange - rows error: %w", ErrScanRow, err)
	}

	return exceptions, nil
}

// Delete удаляет исключение барбера на дату
func (r *Repository) Delete(ctx context.Context, barberID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("barber_exceptions").
		Where(squirrel.Eq{"barber_id": barberID, "exception_date": domain.DateOnly(date)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrExceptionNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanException(row rowScanner) (*domain.ScheduleException, error) {
	var exc domain.ScheduleException
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&exc.ID,
		&exc.BarberID,
		&exc.ExceptionDate,
		&exc.AllDay,
		&exc.IsAvailable,
		&exc.StartTime,
		&exc.EndTime,
		&exc.Reason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	exc.CreatedAt = createdAt.Time
	exc.UpdatedAt = updatedAt.Time

	return &exc, nil
}
