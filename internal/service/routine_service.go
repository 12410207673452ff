package service

import (
	"context"
	"errors"
	"time"

	"gympro/internal/domain"
	"gympro/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrRoutineNotFound        = errors.New("routine not found")
	ErrRoutineNameRequired    = errors.New("routine name is required")
	ErrRoutineAccessDenied    = errors.New("routine does not belong to this student")
	ErrNoTemplatesSelected    = errors.New("at least one template is required")
	ErrRoutineWithoutExercise = errors.New("routine requires at least one exercise")
)

// Fallback name for routines built from the catalog when the trainer does not
// provide one.
const defaultCatalogRoutineName = "Catalog Routine"

// ProgressSummary aggregates a student's completed routines: total count plus
// training volume (sets x repetitions) grouped by body area and by
// week-of-year of the completion date.
type ProgressSummary struct {
	CompletedRoutines int            `json:"completedRoutines"`
	VolumeByArea      map[string]int `json:"volumeByArea"`
	VolumeByWeek      map[int]int    `json:"volumeByWeek"`
}

// RoutineService manages the routine lifecycle: creation in pending state by
// a trainer, completion by the student (which archives the routine into the
// progress history and removes it from the active set), and the historical
// progress reads.
type RoutineService interface {
	CreateCustomRoutine(ctx context.Context, trainerID, studentID primitive.ObjectID, name string, exercises []domain.RoutineExercise) (*domain.Routine, error)
	AssignFromCatalog(ctx context.Context, trainerID, studentID primitive.ObjectID, name string, templateIDs []primitive.ObjectID) (*domain.Routine, error)
	ListRoutines(ctx context.Context, studentID primitive.ObjectID) ([]domain.Routine, error)
	MarkCompleted(ctx context.Context, studentID, routineID primitive.ObjectID) (*domain.ProgressEntry, error)
	ListProgress(ctx context.Context, studentID primitive.ObjectID) ([]domain.ProgressEntry, error)
	ProgressSummary(ctx context.Context, studentID primitive.ObjectID) (*ProgressSummary, error)
}

// --- Service Implementation ---

type routineService struct {
	userRepo     repository.UserRepository
	routineRepo  repository.RoutineRepository
	progressRepo repository.ProgressRepository
	templateRepo repository.TemplateRepository
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(
	userRepo repository.UserRepository,
	routineRepo repository.RoutineRepository,
	progressRepo repository.ProgressRepository,
	templateRepo repository.TemplateRepository,
) RoutineService {
	return &routineService{
		userRepo:     userRepo,
		routineRepo:  routineRepo,
		progressRepo: progressRepo,
		templateRepo: templateRepo,
	}
}

// requireManagedStudent resolves the student and checks the trainer manages them.
func (s *routineService) requireManagedStudent(ctx context.Context, trainerID, studentID primitive.ObjectID) (*domain.User, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if !student.IsStudent() {
		return nil, ErrNotAStudent
	}
	if student.TrainerID == nil || *student.TrainerID != trainerID {
		return nil, ErrStudentNotManaged
	}
	return student, nil
}

// CreateCustomRoutine creates a pending routine with the given exercise list.
func (s *routineService) CreateCustomRoutine(ctx context.Context, trainerID, studentID primitive.ObjectID, name string, exercises []domain.RoutineExercise) (*domain.Routine, error) {
	if name == "" {
		return nil, ErrRoutineNameRequired
	}
	if len(exercises) == 0 {
		return nil, ErrRoutineWithoutExercise
	}
	if _, err := s.requireManagedStudent(ctx, trainerID, studentID); err != nil {
		return nil, err
	}

	routine := &domain.Routine{
		StudentID:   studentID,
		TrainerID:   trainerID,
		RoutineName: name,
		StartDate:   time.Now().UTC(),
		Completed:   false,
		Exercises:   exercises,
	}

	routineID, err := s.routineRepo.Create(ctx, routine)
	if err != nil {
		return nil, err
	}
	routine.ID = routineID
	return routine, nil
}

// AssignFromCatalog builds a pending routine from predefined exercise
// templates. Templates are copied by value: later catalog edits never reach
// routines already assigned.
func (s *routineService) AssignFromCatalog(ctx context.Context, trainerID, studentID primitive.ObjectID, name string, templateIDs []primitive.ObjectID) (*domain.Routine, error) {
	if len(templateIDs) == 0 {
		return nil, ErrNoTemplatesSelected
	}
	if name == "" {
		name = defaultCatalogRoutineName
	}
	if _, err := s.requireManagedStudent(ctx, trainerID, studentID); err != nil {
		return nil, err
	}

	templates, err := s.templateRepo.GetByIDs(ctx, templateIDs)
	if err != nil {
		return nil, err
	}
	if len(templates) != len(uniqueIDs(templateIDs)) {
		return nil, ErrTemplateNotFound
	}

	exercises := make([]domain.RoutineExercise, len(templates))
	for i, tpl := range templates {
		exercises[i] = tpl.ToRoutineExercise()
	}

	routine := &domain.Routine{
		StudentID:   studentID,
		TrainerID:   trainerID,
		RoutineName: name,
		StartDate:   time.Now().UTC(),
		Completed:   false,
		Exercises:   exercises,
	}

	routineID, err := s.routineRepo.Create(ctx, routine)
	if err != nil {
		return nil, err
	}
	routine.ID = routineID
	return routine, nil
}

// ListRoutines returns the student's active (pending) routines.
func (s *routineService) ListRoutines(ctx context.Context, studentID primitive.ObjectID) ([]domain.Routine, error) {
	if studentID == primitive.NilObjectID {
		return nil, errors.New("student ID is required")
	}
	return s.routineRepo.GetByStudentID(ctx, studentID)
}

// MarkCompleted performs the one-way completion transition: it snapshots the
// routine into a progress entry with completionDate=now and then deletes the
// routine from the active set. A second call on the same routine finds
// nothing and fails with ErrRoutineNotFound. The snapshot insert and the
// delete are two documents with no transaction around them; if the delete
// fails the caller gets a PartialWriteError and retries only the delete half
// (re-running the whole operation would duplicate the snapshot).
func (s *routineService) MarkCompleted(ctx context.Context, studentID, routineID primitive.ObjectID) (*domain.ProgressEntry, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	if routine.StudentID != studentID {
		return nil, ErrRoutineAccessDenied
	}

	entry := &domain.ProgressEntry{
		StudentID:      routine.StudentID,
		TrainerID:      routine.TrainerID,
		RoutineName:    routine.RoutineName,
		StartDate:      routine.StartDate,
		CompletionDate: time.Now().UTC(),
		Completed:      true,
		Exercises:      routine.Exercises,
	}

	entryID, err := s.progressRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = entryID

	if err := s.routineRepo.Delete(ctx, routineID); err != nil {
		return entry, &PartialWriteError{
			Op:      "complete routine",
			Done:    "progress snapshot",
			Missing: "routine delete",
			Err:     err,
		}
	}

	return entry, nil
}

// ListProgress returns the student's completed-routine history.
func (s *routineService) ListProgress(ctx context.Context, studentID primitive.ObjectID) ([]domain.ProgressEntry, error) {
	if studentID == primitive.NilObjectID {
		return nil, errors.New("student ID is required")
	}
	return s.progressRepo.GetByStudentID(ctx, studentID)
}

// ProgressSummary aggregates the student's history in memory; the history is
// a plain collection scan and the grouping formula lives in the domain.
func (s *routineService) ProgressSummary(ctx context.Context, studentID primitive.ObjectID) (*ProgressSummary, error) {
	entries, err := s.ListProgress(ctx, studentID)
	if err != nil {
		return nil, err
	}

	summary := &ProgressSummary{
		CompletedRoutines: len(entries),
		VolumeByArea:      make(map[string]int),
		VolumeByWeek:      make(map[int]int),
	}

	for _, entry := range entries {
		week := domain.WeekOfYear(entry.CompletionDate)
		for _, ex := range entry.Exercises {
			summary.VolumeByArea[ex.Area] += ex.Volume()
			summary.VolumeByWeek[week] += ex.Volume()
		}
	}

	return summary, nil
}

// uniqueIDs deduplicates template IDs so the existence check matches what the
// $in query can return.
func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
