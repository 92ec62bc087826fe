package schedule

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberService/pkg/psqlbuilder"
)

const upsertSuffix = `ON CONFLICT (barber_id, day_of_week) DO UPDATE SET
	start_time = EXCLUDED.start_time,
	end_time = EXCLUDED.end_time,
	is_available = EXCLUDED.is_available,
	updated_at = NOW()
RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`

var ruleColumns = []string{
	"id",
	"barber_id",
	"day_of_week",
	"start_time",
	"end_time",
	"is_available",
	"created_at",
	"updated_at",
}

// Repository репозиторий недельного расписания барберов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или заменяет правило на (barber_id, day_of_week)
// replaced = true, если правило на этот день уже существовало
func (r *Repository) Upsert(ctx context.Context, rule *domain.WeeklyScheduleRule) (*domain.WeeklyScheduleRule, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("barber_schedules").
		Columns("barber_id", "day_of_week", "start_time", "end_time", "is_available").
		Values(rule.BarberID, rule.DayOfWeek, rule.StartTime, rule.EndTime, rule.IsAvailable).
		Suffix(upsertSuffix).
		ToSql()

	if err != nil {
		return nil, false, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	var inserted bool
	err = executor.QueryRowContext(ctx, query, args...).Scan(&rule.ID, &createdAt, &updatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, !inserted, nil
}

// GetByBarber получает все правила барбера, упорядоченные по дню недели
func (r *Repository) GetByBarber(ctx context.Context, barberID int64) ([]*domain.WeeklyScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("barber_schedules").
		Where(squirrel.Eq{"barber_id": barberID}).
		OrderBy("day_of_week ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBarber - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBarber - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.WeeklyScheduleRule, 0, 7)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByBarber - scan row: %w", ErrScanRow, err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByBarber - rows error: %w", ErrScanRow, err)
	}

	return rules, nil
}

// GetByBarberAndDay получает правило барбера на день недели
func (r *Repository) GetByBarberAndDay(ctx context.Context, barberID int64, dayOfWeek int) (*domain.WeeklyScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("barber_schedules").
		Where(squirrel.Eq{"barber_id": barberID, "day_of_week": dayOfWeek}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBarberAndDay - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := scanRule(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBarberAndDay - scan rule: %w", ErrScanRow, err)
	}

	return rule, nil
}

// ReplaceWeek удаляет все правила барбера и записывает новые
// Вызывать внутри транзакции: иначе читатели могут увидеть пустую неделю
func (r *Repository) ReplaceWeek(ctx context.Context, barberID int64, rules []*domain.WeeklyScheduleRule) ([]*domain.WeeklyScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("barber_schedules").
		Where(squirrel.Eq{"barber_id": barberID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ReplaceWeek - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: ReplaceWeek - execute delete: %w", ErrExecQuery, err)
	}

	saved := make([]*domain.WeeklyScheduleRule, 0, len(rules))
	for _, rule := range rules {
		rule.BarberID = barberID
		stored, _, err := r.Upsert(ctx, rule)
		if err != nil {
			return nil, err
		}
		saved = append(saved, stored)
	}

	return saved, nil
}

// Delete удаляет правило барбера на день недели, после чего день считается нерабочим
func (r *Repository) Delete(ctx context.Context, barberID int64, dayOfWeek int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("barber_schedules").
		Where(squirrel.Eq{"barber_id": barberID, "day_of_week": dayOfWeek}).
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
		return ErrRuleNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*domain.WeeklyScheduleRule, error) {
	var rule domain.WeeklyScheduleRule
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&rule.ID,
		&rule.BarberID,
		&rule.DayOfWeek,
		&rule.StartTime,
		&rule.EndTime,
		&rule.IsAvailable,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return &rule, nil
}
