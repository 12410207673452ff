// internal/domain/template.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PredefinedExercise is a reusable exercise template in the trainer-maintained
// catalog. Templates are not tied to any student; building a routine from the
// catalog copies them by value. Immutable after creation, except for the demo
// video object key which is set once the trainer confirms an upload.
type PredefinedExercise struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID     primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Who created the template
	Area          string             `bson:"area" json:"area"`
	Name          string             `bson:"name" json:"name"`
	Repetitions   int                `bson:"repetitions" json:"repetitions"`
	Series        int                `bson:"series" json:"series"`
	Weight        float64            `bson:"weight" json:"weight"`
	DemoObjectKey string             `bson:"demoObjectKey,omitempty" json:"-"` // S3 key of the demo video, internal use
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// ToRoutineExercise copies the template into a routine exercise entry.
func (p PredefinedExercise) ToRoutineExercise() RoutineExercise {
	return RoutineExercise{
		Name:        p.Name,
		Area:        p.Area,
		Sets:        p.Series,
		Repetitions: p.Repetitions,
		Weight:      p.Weight,
	}
}
