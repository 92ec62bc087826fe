package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

type stubSource struct {
	exception *domain.ScheduleException
}

func (s stubSource) GetWeeklyRule(int64, int) (*domain.WeeklyScheduleRule, bool) {
	return nil, false
}

func (s stubSource) GetException(int64, time.Time) (*domain.ScheduleException, bool) {
	return s.exception, s.exception != nil
}

func TestResolveException_SpecialHoursWithoutTimesIsUnavailable(t *testing.T) {
	src := stubSource{exception: &domain.ScheduleException{BarberID: barberID, ExceptionDate: monday, IsAvailable: true}}

	got := ResolveException(src, barberID, monday)
	assert.Equal(t, FullyUnavailable, got.Kind)
	assert.Same(t, src.exception, got.Exception)
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "no_exception", NoException.String())
	assert.Equal(t, "special_hours", SpecialHours.String())
	assert.Equal(t, "unknown", OutcomeKind(42).String())
}
