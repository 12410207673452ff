// internal/domain/routine.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineExercise is a single exercise entry inside a routine. Entries are
// embedded by value: editing a catalog template later never changes a routine
// that was built from it.
type RoutineExercise struct {
	Name        string  `bson:"name" json:"name"`
	Area        string  `bson:"area" json:"area"` // e.g. "Legs", "Cardio", "Back"
	Sets        int     `bson:"sets" json:"sets"`
	Repetitions int     `bson:"repetitions" json:"repetitions"`
	Weight      float64 `bson:"weight" json:"weight"` // kg
}

// Routine is an ordered exercise plan assigned by a trainer to one student.
// It is created pending (Completed=false) and leaves this collection when the
// student completes it: completion archives a snapshot into progress and
// deletes the routine, so an existing routine document is always pending.
type Routine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID   primitive.ObjectID `bson:"studentId" json:"studentId"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Denormalized for trainer queries/auth
	RoutineName string             `bson:"routineName" json:"routineName"`
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	Completed   bool               `bson:"completed" json:"completed"`
	Exercises   []RoutineExercise  `bson:"exercises" json:"exercises"`
}

// Volume is the training volume of one exercise entry (sets x repetitions).
func (e RoutineExercise) Volume() int {
	return e.Sets * e.Repetitions
}
