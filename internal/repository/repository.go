package repository

import (
	"context"

	"gympro/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListUnassignedStudents(ctx context.Context) ([]domain.User, error)
	GetStudentsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	ListStudentsAssignedTo(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	// The two halves of the trainer<->student edge. Each must be idempotent so
	// a reconciliation pass can re-apply whichever half is missing.
	AddStudentIDToTrainer(ctx context.Context, trainerID, studentID primitive.ObjectID) error
	RemoveStudentIDFromTrainer(ctx context.Context, trainerID, studentID primitive.ObjectID) error
	SetTrainerForStudent(ctx context.Context, studentID, trainerID primitive.ObjectID) error
	// UpdateStudentProfile rewrites a student's editable profile fields. It
	// never touches role, email, password or the trainer edge.
	UpdateStudentProfile(ctx context.Context, studentID primitive.ObjectID, name string, year int, gender string, height, weight float64) error
}

// RoutineRepository defines the interface for interacting with routine data.
// Routines only exist while pending; completion archives and deletes them.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Routine, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProgressRepository defines the interface for interacting with progress
// entries. Entries are immutable: create and read only.
type ProgressRepository interface {
	Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.ProgressEntry, error)
}

// InjuryRepository defines the interface for interacting with injury data.
// There is no update or delete: the only mutation after creation is the
// append-only comment thread.
type InjuryRepository interface {
	Create(ctx context.Context, injury *domain.Injury) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Injury, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Injury, error)
	GetByStudentIDs(ctx context.Context, studentIDs []primitive.ObjectID) ([]domain.Injury, error)
	AppendComment(ctx context.Context, injuryID primitive.ObjectID, comment domain.InjuryComment) error
}

// TemplateRepository defines the interface for the predefined exercise catalog.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.PredefinedExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PredefinedExercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PredefinedExercise, error)
	List(ctx context.Context) ([]domain.PredefinedExercise, error)
	SetDemoObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error
}
