package availability

import (
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// ScheduleSource источник правил и исключений для резолвинга доступности
type ScheduleSource interface {
	GetWeeklyRule(barberID int64, dayOfWeek int) (*domain.WeeklyScheduleRule, bool)
	GetException(barberID int64, date time.Time) (*domain.ScheduleException, bool)
}

type ruleKey struct {
	barberID  int64
	dayOfWeek int
}

type exceptionKey struct {
	barberID int64
	date     string
}

func newExceptionKey(barberID int64, date time.Time) exceptionKey {
	return exceptionKey{barberID: barberID, date: date.Format(domain.DateFormat)}
}

// MemoryStore потокобезопасное in-memory хранилище расписания
// Не более одного правила на (barber, dayOfWeek) и одного исключения на (barber, date)
// Повторная запись по тому же ключу заменяет предыдущую (upsert)
type MemoryStore struct {
	mu         sync.RWMutex
	rules      map[ruleKey]domain.WeeklyScheduleRule
	exceptions map[exceptionKey]domain.ScheduleException
}

// NewMemoryStore создает пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules:      make(map[ruleKey]domain.WeeklyScheduleRule),
		exceptions: make(map[exceptionKey]domain.ScheduleException),
	}
}

// NewSnapshot создает хранилище, заполненное записями из БД
// Используется для резолвинга в рамках одного запроса
func NewSnapshot(rules []*domain.WeeklyScheduleRule, exceptions []*domain.ScheduleException) (*MemoryStore, error) {
	store := NewMemoryStore()
	for _, rule := range rules {
		if _, err := store.UpsertWeeklyRule(rule); err != nil {
			return nil, err
		}
	}
	for _, exc := range exceptions {
		if _, err := store.UpsertException(exc); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// GetWeeklyRule возвращает правило барбера на день недели
func (s *MemoryStore) GetWeeklyRule(barberID int64, dayOfWeek int) (*domain.WeeklyScheduleRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[ruleKey{barberID: barberID, dayOfWeek: dayOfWeek}]
	if !ok {
		return nil, false
	}
	return &rule, true
}

// GetException возвращает исключение барбера на дату
func (s *MemoryStore) GetException(barberID int64, date time.Time) (*domain.ScheduleException, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exc, ok := s.exceptions[newExceptionKey(barberID, date)]
	if !ok {
		return nil, false
	}
	return &exc, true
}

// UpsertWeeklyRule сохраняет правило, заменяя существующее для того же дня недели
// replaced = true, если правило на этот день уже было
func (s *MemoryStore) UpsertWeeklyRule(rule *domain.WeeklyScheduleRule) (replaced bool, err error) {
	if err := ValidateWeeklyRule(rule); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := ruleKey{barberID: rule.BarberID, dayOfWeek: rule.DayOfWeek}
	_, replaced = s.rules[key]
	s.rules[key] = *rule
	return replaced, nil
}

// ReplaceWeek заменяет все недельные правила барбера
// Дни, которых нет в rules, становятся выходными (правило отсутствует)
func (s *MemoryStore) ReplaceWeek(barberID int64, rules []*domain.WeeklyScheduleRule) error {
	seen := make(map[int]struct{}, len(rules))
	for _, rule := range rules {
		if err := ValidateWeeklyRule(rule); err != nil {
			return err
		}
		if rule.BarberID != barberID {
			return fmt.Errorf("%w: rule belongs to barber %d, expected %d", ErrInvalidConfiguration, rule.BarberID, barberID)
		}
		if _, dup := seen[rule.DayOfWeek]; dup {
			return fmt.Errorf("%w: duplicate rule for dayOfWeek %d", ErrInvalidConfiguration, rule.DayOfWeek)
		}
		seen[rule.DayOfWeek] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for day := 0; day <= 6; day++ {
		delete(s.rules, ruleKey{barberID: barberID, dayOfWeek: day})
	}
	for _, rule := range rules {
		s.rules[ruleKey{barberID: barberID, dayOfWeek: rule.DayOfWeek}] = *rule
	}
	return nil
}

// UpsertException сохраняет исключение, заменяя существующее на ту же дату (last-write-wins)
// replaced = true, если исключение на эту дату уже было
func (s *MemoryStore) UpsertException(exc *domain.ScheduleException) (replaced bool, err error) {
	if err := ValidateException(exc); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := newExceptionKey(exc.BarberID, exc.ExceptionDate)
	_, replaced = s.exceptions[key]
	s.exceptions[key] = *exc
	return replaced, nil
}

// DeleteException удаляет исключение, возвращает false если его не было
func (s *MemoryStore) DeleteException(barberID int64, date time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := newExceptionKey(barberID, date)
	if _, ok := s.exceptions[key]; !ok {
		return false
	}
	delete(s.exceptions, key)
	return true
}

// WeeklyRules возвращает правила барбера, упорядоченные по дню недели
func (s *MemoryStore) WeeklyRules(barberID int64) []domain.WeeklyScheduleRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]domain.WeeklyScheduleRule, 0, 7)
	for day := 0; day <= 6; day++ {
		if rule, ok := s.rules[ruleKey{barberID: barberID, dayOfWeek: day}]; ok {
			rules = append(rules, rule)
		}
	}
	return rules
}
