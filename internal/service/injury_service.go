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
	ErrInjuryNotFound            = errors.New("injury not found")
	ErrInjuryDescriptionRequired = errors.New("injury description is required")
	ErrCommentTextRequired       = errors.New("comment text is required")
	ErrInjuryAccessDenied        = errors.New("access denied to this injury")
	ErrInvalidCommentAuthor      = errors.New("comment author must be trainer or student")
)

// PlaceholderStudentName substitutes the display name in the trainer-wide
// listing when an injury's owning student record no longer resolves.
const PlaceholderStudentName = "Unknown student"

// InjuryWithStudent joins an injury with its owning student's display name
// for the trainer-wide listing.
type InjuryWithStudent struct {
	domain.Injury
	StudentName string `json:"studentName"`
}

// InjuryService records injuries for students and maintains the append-only
// comment thread both sides can write to.
type InjuryService interface {
	RecordInjury(ctx context.Context, trainerID, studentID primitive.ObjectID, description, trainerNotes string) (*domain.Injury, error)
	ListInjuries(ctx context.Context, studentID primitive.ObjectID) ([]domain.Injury, error)
	AddComment(ctx context.Context, actorID primitive.ObjectID, author domain.CommentAuthor, injuryID primitive.ObjectID, text string) (*domain.Injury, error)
	ListAllInjuries(ctx context.Context, trainerID primitive.ObjectID) ([]InjuryWithStudent, error)
}

// --- Service Implementation ---

type injuryService struct {
	userRepo   repository.UserRepository
	injuryRepo repository.InjuryRepository
}

// NewInjuryService creates a new instance of injuryService.
func NewInjuryService(userRepo repository.UserRepository, injuryRepo repository.InjuryRepository) InjuryService {
	return &injuryService{
		userRepo:   userRepo,
		injuryRepo: injuryRepo,
	}
}

// RecordInjury creates an active injury with an empty comment thread for a
// student managed by the given trainer.
func (s *injuryService) RecordInjury(ctx context.Context, trainerID, studentID primitive.ObjectID, description, trainerNotes string) (*domain.Injury, error) {
	if description == "" {
		return nil, ErrInjuryDescriptionRequired
	}

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

	injury := &domain.Injury{
		StudentID:    studentID,
		Description:  description,
		Date:         time.Now().UTC(),
		Status:       domain.InjuryStatusActive,
		TrainerNotes: trainerNotes,
		Comments:     []domain.InjuryComment{},
	}

	injuryID, err := s.injuryRepo.Create(ctx, injury)
	if err != nil {
		return nil, err
	}
	injury.ID = injuryID
	return injury, nil
}

// ListInjuries returns a student's injuries with their comment threads.
func (s *injuryService) ListInjuries(ctx context.Context, studentID primitive.ObjectID) ([]domain.Injury, error) {
	if studentID == primitive.NilObjectID {
		return nil, errors.New("student ID is required")
	}
	return s.injuryRepo.GetByStudentID(ctx, studentID)
}

// AddComment appends one comment to the injury's thread. Students may only
// comment on their own injuries; trainers only on injuries of students they
// manage. Existing comments are never touched.
func (s *injuryService) AddComment(ctx context.Context, actorID primitive.ObjectID, author domain.CommentAuthor, injuryID primitive.ObjectID, text string) (*domain.Injury, error) {
	if text == "" {
		return nil, ErrCommentTextRequired
	}
	if author != domain.CommentByTrainer && author != domain.CommentByStudent {
		return nil, ErrInvalidCommentAuthor
	}

	injury, err := s.injuryRepo.GetByID(ctx, injuryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInjuryNotFound
		}
		return nil, err
	}

	switch author {
	case domain.CommentByStudent:
		if injury.StudentID != actorID {
			return nil, ErrInjuryAccessDenied
		}
	case domain.CommentByTrainer:
		student, err := s.userRepo.GetByID(ctx, injury.StudentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInjuryAccessDenied
			}
			return nil, err
		}
		if student.TrainerID == nil || *student.TrainerID != actorID {
			return nil, ErrInjuryAccessDenied
		}
	}

	comment := domain.InjuryComment{Author: author, Text: text}
	if err := s.injuryRepo.AppendComment(ctx, injuryID, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInjuryNotFound
		}
		return nil, err
	}

	injury.Comments = append(injury.Comments, comment)
	return injury, nil
}

// ListAllInjuries joins every injury across the trainer's students with the
// owning student's display name. A missing student record gets a placeholder
// name instead of failing the whole listing.
func (s *injuryService) ListAllInjuries(ctx context.Context, trainerID primitive.ObjectID) ([]InjuryWithStudent, error) {
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

	injuries, err := s.injuryRepo.GetByStudentIDs(ctx, trainer.StudentIDs)
	if err != nil {
		return nil, err
	}

	names := make(map[primitive.ObjectID]string, len(trainer.StudentIDs))
	students, err := s.userRepo.GetStudentsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	for _, st := range students {
		names[st.ID] = st.Name
	}

	result := make([]InjuryWithStudent, len(injuries))
	for i, injury := range injuries {
		name, ok := names[injury.StudentID]
		if !ok || name == "" {
			name = PlaceholderStudentName
		}
		result[i] = InjuryWithStudent{Injury: injury, StudentName: name}
	}

	return result, nil
}
