package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressEntry is the immutable snapshot of a completed routine. It carries
// everything the routine had plus the completion date, and is only ever read
// after creation (history views and aggregation).
type ProgressEntry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID      primitive.ObjectID `bson:"studentId" json:"studentId"`
	TrainerID      primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	RoutineName    string             `bson:"routineName" json:"routineName"`
	StartDate      time.Time          `bson:"startDate" json:"startDate"`
	CompletionDate time.Time          `bson:"completionDate" json:"completionDate"`
	Completed      bool               `bson:"completed" json:"completed"` // Always true; kept for history views
	Exercises      []RoutineExercise  `bson:"exercises" json:"exercises"`
}

// WeekOfYear returns the week number used for weekly volume grouping:
// week = ceil((dayOfYear + startOfYearWeekday + 1) / 7), where the weekday of
// January 1st is 0 for Sunday through 6 for Saturday.
func WeekOfYear(t time.Time) int {
	startOfYear := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	numerator := t.YearDay() + int(startOfYear.Weekday()) + 1
	return (numerator + 6) / 7
}
