package availability

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

func collect(t *testing.T, interval domain.TimeInterval, granularity, duration int) []types.TimeString {
	t.Helper()
	seq, err := GenerateSlots(interval, granularity, duration)
	require.NoError(t, err)
	return slices.Collect(seq)
}

// понедельник 09:00-17:00, шаг 30, услуга 30 минут
func TestGenerateSlots_WorkingDay(t *testing.T) {
	slots := collect(t, domain.TimeInterval{Start: "09:00", End: "17:00"}, 30, 30)

	require.Len(t, slots, 16)
	assert.Equal(t, types.TimeString("09:00"), slots[0])
	assert.Equal(t, types.TimeString("16:30"), slots[len(slots)-1])
}

func TestGenerateSlots_DurationLongerThanGranularity(t *testing.T) {
	slots := collect(t, domain.TimeInterval{Start: "09:00", End: "10:00"}, 15, 45)
	assert.Equal(t, []types.TimeString{"09:00", "09:15"}, slots)
}

func TestGenerateSlots_DurationDoesNotFit(t *testing.T) {
	slots := collect(t, domain.TimeInterval{Start: "09:00", End: "09:30"}, 15, 45)
	assert.Empty(t, slots)
}

func TestGenerateSlots_EmptyAndInvertedInterval(t *testing.T) {
	assert.Empty(t, collect(t, domain.TimeInterval{Start: "10:00", End: "10:00"}, 30, 30))
	assert.Empty(t, collect(t, domain.TimeInterval{Start: "17:00", End: "09:00"}, 30, 30))
}

func TestGenerateSlots_InvalidParameters(t *testing.T) {
	interval := domain.TimeInterval{Start: "09:00", End: "17:00"}

	_, err := GenerateSlots(interval, 0, 30)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = GenerateSlots(interval, -15, 30)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = GenerateSlots(interval, 30, 0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = GenerateSlots(domain.TimeInterval{Start: "9am", End: "17:00"}, 30, 30)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestGenerateSlots_NeverExceedsIntervalEnd(t *testing.T) {
	interval := domain.TimeInterval{Start: "08:10", End: "13:50"}
	end, err := interval.End.Minutes()
	require.NoError(t, err)

	for _, granularity := range []int{5, 15, 20, 30, 60} {
		for _, duration := range []int{10, 30, 45, 90} {
			for _, slot := range collect(t, interval, granularity, duration) {
				start, err := slot.Minutes()
				require.NoError(t, err)
				assert.LessOrEqual(t, start+duration, end, "granularity=%d duration=%d slot=%s", granularity, duration, slot)
			}
		}
	}
}

func TestGenerateSlots_Restartable(t *testing.T) {
	seq, err := GenerateSlots(domain.TimeInterval{Start: "09:00", End: "11:00"}, 30, 30)
	require.NoError(t, err)

	assert.Equal(t, slices.Collect(seq), slices.Collect(seq))

	// Ранний выход из обхода не ломает последовательность
	first := make([]types.TimeString, 0)
	for slot := range seq {
		first = append(first, slot)
		break
	}
	assert.Equal(t, []types.TimeString{"09:00"}, first)
	assert.Len(t, slices.Collect(seq), 4)
}

func TestNotBefore(t *testing.T) {
	seq, err := GenerateSlots(domain.TimeInterval{Start: "09:00", End: "11:00"}, 30, 30)
	require.NoError(t, err)

	got := slices.Collect(NotBefore(seq, "09:45"))
	assert.Equal(t, []types.TimeString{"10:00", "10:30"}, got)
}
