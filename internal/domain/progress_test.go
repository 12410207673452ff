package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekOfYear(t *testing.T) {
	day := func(year int, month time.Month, d int) time.Time {
		return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
	}

	// 2025 starts on a Wednesday; the first partial week runs through Friday.
	assert.Equal(t, 1, WeekOfYear(day(2025, time.January, 1)))
	assert.Equal(t, 1, WeekOfYear(day(2025, time.January, 3)))
	assert.Equal(t, 2, WeekOfYear(day(2025, time.January, 4)))
	assert.Equal(t, 2, WeekOfYear(day(2025, time.January, 10)))
	assert.Equal(t, 3, WeekOfYear(day(2025, time.January, 11)))
	assert.Equal(t, 53, WeekOfYear(day(2025, time.December, 31)))

	// Leap year.
	assert.Equal(t, 1, WeekOfYear(day(2024, time.January, 1)))
	assert.Equal(t, 2, WeekOfYear(day(2024, time.January, 6)))
}

func TestWeekOfYear_MonotonicWithinYear(t *testing.T) {
	prev := 0
	for d := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC); d.Year() == 2025; d = d.AddDate(0, 0, 1) {
		week := WeekOfYear(d)
		assert.GreaterOrEqual(t, week, prev)
		prev = week
	}
}

func TestRoutineExerciseVolume(t *testing.T) {
	ex := RoutineExercise{Name: "Squat", Area: "Legs", Sets: 3, Repetitions: 12}
	assert.Equal(t, 36, ex.Volume())

	ex = RoutineExercise{Name: "Plank", Area: "Core", Sets: 0, Repetitions: 60}
	assert.Equal(t, 0, ex.Volume())
}
