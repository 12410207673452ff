package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"gympro/internal/domain"
	"gympro/internal/repository"
	"gympro/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("template not found")
	ErrTemplateValidation   = errors.New("template validation failed")
	ErrTemplateAccessDenied = errors.New("access denied to modify this template")
	ErrDemoURLError         = errors.New("failed to generate demo video URL")
	ErrNoDemoVideo          = errors.New("template has no demo video")
)

// DemoUploadResponse carries the presigned PUT URL plus the object key the
// trainer must report back when confirming the upload.
type DemoUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// CatalogService maintains the trainer-shared library of predefined exercise
// templates. Templates are immutable after creation; the one exception is
// attaching a demo video, which goes through presigned object-storage URLs
// so the video bytes never pass through this server.
type CatalogService interface {
	CreateTemplate(ctx context.Context, trainerID primitive.ObjectID, area, name string, repetitions, series int, weight float64) (*domain.PredefinedExercise, error)
	ListTemplates(ctx context.Context) ([]domain.PredefinedExercise, error)

	RequestDemoUploadURL(ctx context.Context, trainerID, templateID primitive.ObjectID, contentType string) (*DemoUploadResponse, error)
	ConfirmDemoUpload(ctx context.Context, trainerID, templateID primitive.ObjectID, objectKey string) error
	GetDemoDownloadURL(ctx context.Context, templateID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type catalogService struct {
	templateRepo repository.TemplateRepository
	fileStorage  storage.FileStorage
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(templateRepo repository.TemplateRepository, fileStorage storage.FileStorage) CatalogService {
	return &catalogService{
		templateRepo: templateRepo,
		fileStorage:  fileStorage,
	}
}

// CreateTemplate adds a template to the global catalog. All fields are
// required; weight may be zero for bodyweight and cardio entries.
func (s *catalogService) CreateTemplate(ctx context.Context, trainerID primitive.ObjectID, area, name string, repetitions, series int, weight float64) (*domain.PredefinedExercise, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required to create a template")
	}
	if area == "" || name == "" || repetitions <= 0 || series <= 0 || weight < 0 {
		return nil, ErrTemplateValidation
	}

	template := &domain.PredefinedExercise{
		TrainerID:   trainerID,
		Area:        area,
		Name:        name,
		Repetitions: repetitions,
		Series:      series,
		Weight:      weight,
	}

	templateID, err := s.templateRepo.Create(ctx, template)
	if err != nil {
		return nil, err
	}
	template.ID = templateID
	return template, nil
}

// ListTemplates returns the whole catalog.
func (s *catalogService) ListTemplates(ctx context.Context) ([]domain.PredefinedExercise, error) {
	return s.templateRepo.List(ctx)
}

// RequestDemoUploadURL generates a presigned PUT URL for a demo video of one
// of the trainer's own templates.
func (s *catalogService) RequestDemoUploadURL(ctx context.Context, trainerID, templateID primitive.ObjectID, contentType string) (*DemoUploadResponse, error) {
	if !strings.HasPrefix(contentType, "video/") {
		return nil, fmt.Errorf("%w: unsupported content type %q for demo video", ErrTemplateValidation, contentType)
	}

	template, err := s.requireOwnTemplate(ctx, trainerID, templateID)
	if err != nil {
		return nil, err
	}

	// Unique key per upload attempt; the old object is replaced on confirm.
	objectKey := path.Join("templates", template.ID.Hex(), uuid.NewString())

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrDemoURLError
	}

	return &DemoUploadResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmDemoUpload records the uploaded object key on the template and
// removes the previous demo object, if any.
func (s *catalogService) ConfirmDemoUpload(ctx context.Context, trainerID, templateID primitive.ObjectID, objectKey string) error {
	if objectKey == "" {
		return errors.New("object key is required")
	}
	// Keys are minted under the template's own prefix; anything else would
	// let one template claim (and later delete) another template's object.
	if !strings.HasPrefix(objectKey, "templates/"+templateID.Hex()+"/") {
		return fmt.Errorf("%w: object key does not belong to this template", ErrTemplateValidation)
	}

	template, err := s.requireOwnTemplate(ctx, trainerID, templateID)
	if err != nil {
		return err
	}

	if err := s.templateRepo.SetDemoObjectKey(ctx, templateID, objectKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	if template.DemoObjectKey != "" && template.DemoObjectKey != objectKey {
		// Best effort; an orphaned object is harmless.
		_ = s.fileStorage.DeleteObject(ctx, template.DemoObjectKey)
	}

	return nil
}

// GetDemoDownloadURL generates a presigned GET URL for a template's demo video.
func (s *catalogService) GetDemoDownloadURL(ctx context.Context, templateID primitive.ObjectID) (string, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTemplateNotFound
		}
		return "", err
	}
	if template.DemoObjectKey == "" {
		return "", ErrNoDemoVideo
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, template.DemoObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDemoURLError
	}
	return downloadURL, nil
}

func (s *catalogService) requireOwnTemplate(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.PredefinedExercise, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.TrainerID != trainerID {
		return nil, ErrTemplateAccessDenied
	}
	return template, nil
}
