package service

import (
	"context"
	"errors"

	"gympro/internal/domain"
	"gympro/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTrainerNotFound        = errors.New("trainer user not found")
	ErrStudentNotFound        = errors.New("student user not found")
	ErrNotATrainer            = errors.New("user found but is not a trainer")
	ErrNotAStudent            = errors.New("user found but is not a student")
	ErrStudentAlreadyAssigned = errors.New("student is already assigned to a trainer")
	ErrStudentNotManaged      = errors.New("student is not managed by this trainer")
)

// ReconcileReport lists the repairs a reconciliation pass applied, as hex
// student IDs per category. Empty slices mean the edge was already symmetric.
type ReconcileReport struct {
	LinkedStudents   []string `json:"linkedStudents"`   // trainerId set on the student side
	AddedToTrainer   []string `json:"addedToTrainer"`   // student added to the trainer's list
	RemovedFromList  []string `json:"removedFromList"`  // stale list entry removed (student points elsewhere)
	DroppedMissing   []string `json:"droppedMissing"`   // list entry removed because the student record is gone
}

// Repaired reports whether the pass changed anything.
func (r *ReconcileReport) Repaired() bool {
	return len(r.LinkedStudents)+len(r.AddedToTrainer)+len(r.RemovedFromList)+len(r.DroppedMissing) > 0
}

// AssignmentService manages the bidirectional trainer<->student link. The two
// sides live on two user documents and the store offers no multi-document
// transaction, so Assign writes them sequentially and reports a
// PartialWriteError when only the first write landed; Reconcile is the
// idempotent repair pass for exactly that situation.
type AssignmentService interface {
	ListUnassignedStudents(ctx context.Context) ([]domain.User, error)
	ListTrainers(ctx context.Context) ([]domain.User, error)
	// Assign links an unassigned student to a trainer and returns how many
	// students remain available for further assignment. When the link is
	// written but the count cannot be read back, remaining is -1.
	Assign(ctx context.Context, trainerID, studentID primitive.ObjectID) (remaining int, err error)
	// ListStudents reads the trainer's side of the edge.
	ListStudents(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	Reconcile(ctx context.Context, trainerID primitive.ObjectID) (*ReconcileReport, error)
}

// --- Service Implementation ---

type assignmentService struct {
	userRepo repository.UserRepository
}

// NewAssignmentService creates a new instance of assignmentService.
func NewAssignmentService(userRepo repository.UserRepository) AssignmentService {
	return &assignmentService{userRepo: userRepo}
}

// ListUnassignedStudents returns every student with no trainer yet.
func (s *assignmentService) ListUnassignedStudents(ctx context.Context) ([]domain.User, error) {
	students, err := s.userRepo.ListUnassignedStudents(ctx)
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].PasswordHash = ""
	}
	return students, nil
}

// ListTrainers returns every trainer account.
func (s *assignmentService) ListTrainers(ctx context.Context) ([]domain.User, error) {
	trainers, err := s.userRepo.ListByRole(ctx, domain.RoleTrainer)
	if err != nil {
		return nil, err
	}
	for i := range trainers {
		trainers[i].PasswordHash = ""
	}
	return trainers, nil
}

// Assign sets student.trainerId and then adds the student to the trainer's
// list. The student side goes first: a half-written edge is then always
// detectable from the student record, which Reconcile treats as the source
// of truth.
func (s *assignmentService) Assign(ctx context.Context, trainerID, studentID primitive.ObjectID) (int, error) {
	if trainerID == primitive.NilObjectID || studentID == primitive.NilObjectID {
		return 0, errors.New("trainer ID and student ID are required")
	}

	// 1. Resolve both users and verify roles.
	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrTrainerNotFound
		}
		return 0, err
	}
	if !trainer.IsTrainer() {
		return 0, ErrNotATrainer
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrStudentNotFound
		}
		return 0, err
	}
	if !student.IsStudent() {
		return 0, ErrNotAStudent
	}

	// 2. Only first assignment is supported; reassignment is not exposed.
	if student.IsAssigned() {
		return 0, ErrStudentAlreadyAssigned
	}

	// 3. Two sequential writes, student side first.
	if err := s.userRepo.SetTrainerForStudent(ctx, studentID, trainerID); err != nil {
		return 0, err
	}
	if err := s.userRepo.AddStudentIDToTrainer(ctx, trainerID, studentID); err != nil {
		return 0, &PartialWriteError{
			Op:      "assign",
			Done:    "student.trainerId",
			Missing: "trainer.studentIds",
			Err:     err,
		}
	}

	remaining, err := s.userRepo.ListUnassignedStudents(ctx)
	if err != nil {
		// The assignment itself succeeded; only the count is unavailable.
		return -1, nil
	}
	return len(remaining), nil
}

// ListStudents retrieves the students a trainer manages.
func (s *assignmentService) ListStudents(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	students, err := s.userRepo.GetStudentsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].PasswordHash = ""
	}
	return students, nil
}

// Reconcile reads both sides of the edge for one trainer and completes or
// removes whatever is inconsistent. Assign only ever adds, so every
// inconsistency is a missing half: a student pointing at the trainer but
// absent from the list, or a list entry whose student points elsewhere (the
// student record wins) or no longer exists.
func (s *assignmentService) Reconcile(ctx context.Context, trainerID primitive.ObjectID) (*ReconcileReport, error) {
	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, ErrNotATrainer
	}

	report := &ReconcileReport{
		LinkedStudents:  []string{},
		AddedToTrainer:  []string{},
		RemovedFromList: []string{},
		DroppedMissing:  []string{},
	}

	listed := make(map[primitive.ObjectID]bool, len(trainer.StudentIDs))
	for _, id := range trainer.StudentIDs {
		listed[id] = true
	}

	// List side: every entry must be a student pointing back at this trainer.
	for _, studentID := range trainer.StudentIDs {
		student, err := s.userRepo.GetByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				if err := s.userRepo.RemoveStudentIDFromTrainer(ctx, trainerID, studentID); err != nil {
					return nil, err
				}
				report.DroppedMissing = append(report.DroppedMissing, studentID.Hex())
				continue
			}
			return nil, err
		}

		switch {
		case !student.IsAssigned():
			if err := s.userRepo.SetTrainerForStudent(ctx, studentID, trainerID); err != nil {
				return nil, err
			}
			report.LinkedStudents = append(report.LinkedStudents, studentID.Hex())
		case *student.TrainerID != trainerID:
			// The student record wins; drop the stale list entry.
			if err := s.userRepo.RemoveStudentIDFromTrainer(ctx, trainerID, studentID); err != nil {
				return nil, err
			}
			report.RemovedFromList = append(report.RemovedFromList, studentID.Hex())
		}
	}

	// Student side: everyone pointing at this trainer must be in the list.
	assigned, err := s.userRepo.ListStudentsAssignedTo(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	for _, student := range assigned {
		if !listed[student.ID] {
			if err := s.userRepo.AddStudentIDToTrainer(ctx, trainerID, student.ID); err != nil {
				return nil, err
			}
			report.AddedToTrainer = append(report.AddedToTrainer, student.ID.Hex())
		}
	}

	return report, nil
}
