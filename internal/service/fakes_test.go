package service

import (
	"context"
	"errors"
	"time"

	"gympro/internal/domain"
	"gympro/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the mongo implementations' observable
// behavior (ErrNotFound mapping, idempotent edge writes, insertion-order
// injuries) and allow injecting failures for the partial-write paths.

// --- fakeUserRepo ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User

	setTrainerErr     error
	addStudentErr     error
	listUnassignedErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

// seed stores a copy of the user, assigning an ID when missing.
func (r *fakeUserRepo) seed(u domain.User) primitive.ObjectID {
	if u.ID == primitive.NilObjectID {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = &u
	return u.ID
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, errors.New("user with this email already exists")
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.users[user.ID] = &stored
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListUnassignedStudents(ctx context.Context) ([]domain.User, error) {
	if r.listUnassignedErr != nil {
		return nil, r.listUnassignedErr
	}
	var out []domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleStudent && !u.IsAssigned() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetStudentsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	trainer, ok := r.users[trainerID]
	if !ok {
		return nil, errors.New("trainer not found")
	}
	if !trainer.IsTrainer() {
		return nil, errors.New("user is not a trainer")
	}
	out := []domain.User{}
	for _, id := range trainer.StudentIDs {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListStudentsAssignedTo(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleStudent && u.TrainerID != nil && *u.TrainerID == trainerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) AddStudentIDToTrainer(ctx context.Context, trainerID, studentID primitive.ObjectID) error {
	if r.addStudentErr != nil {
		return r.addStudentErr
	}
	trainer, ok := r.users[trainerID]
	if !ok || !trainer.IsTrainer() {
		return repository.ErrNotFound
	}
	for _, id := range trainer.StudentIDs {
		if id == studentID {
			return nil
		}
	}
	trainer.StudentIDs = append(trainer.StudentIDs, studentID)
	return nil
}

func (r *fakeUserRepo) RemoveStudentIDFromTrainer(ctx context.Context, trainerID, studentID primitive.ObjectID) error {
	trainer, ok := r.users[trainerID]
	if !ok || !trainer.IsTrainer() {
		return repository.ErrNotFound
	}
	kept := trainer.StudentIDs[:0]
	for _, id := range trainer.StudentIDs {
		if id != studentID {
			kept = append(kept, id)
		}
	}
	trainer.StudentIDs = kept
	return nil
}

func (r *fakeUserRepo) UpdateStudentProfile(ctx context.Context, studentID primitive.ObjectID, name string, year int, gender string, height, weight float64) error {
	student, ok := r.users[studentID]
	if !ok || !student.IsStudent() {
		return repository.ErrNotFound
	}
	student.Name = name
	student.Year = year
	student.Gender = gender
	student.Height = height
	student.Weight = weight
	return nil
}

func (r *fakeUserRepo) SetTrainerForStudent(ctx context.Context, studentID, trainerID primitive.ObjectID) error {
	if r.setTrainerErr != nil {
		return r.setTrainerErr
	}
	student, ok := r.users[studentID]
	if !ok || !student.IsStudent() {
		return repository.ErrNotFound
	}
	id := trainerID
	student.TrainerID = &id
	return nil
}

// --- fakeRoutineRepo ---

type fakeRoutineRepo struct {
	routines map[primitive.ObjectID]*domain.Routine

	deleteErr error
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{routines: make(map[primitive.ObjectID]*domain.Routine)}
}

func (r *fakeRoutineRepo) Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	routine.ID = primitive.NewObjectID()
	stored := *routine
	r.routines[routine.ID] = &stored
	return routine.ID, nil
}

func (r *fakeRoutineRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	routine, ok := r.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *routine
	return &copied, nil
}

func (r *fakeRoutineRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Routine, error) {
	out := []domain.Routine{}
	for _, routine := range r.routines {
		if routine.StudentID == studentID {
			out = append(out, *routine)
		}
	}
	return out, nil
}

func (r *fakeRoutineRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.routines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.routines, id)
	return nil
}

// --- fakeProgressRepo ---

type fakeProgressRepo struct {
	entries []domain.ProgressEntry

	createErr error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{}
}

func (r *fakeProgressRepo) Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	entry.ID = primitive.NewObjectID()
	r.entries = append(r.entries, *entry)
	return entry.ID, nil
}

func (r *fakeProgressRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.ProgressEntry, error) {
	out := []domain.ProgressEntry{}
	for _, entry := range r.entries {
		if entry.StudentID == studentID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// --- fakeInjuryRepo ---

type fakeInjuryRepo struct {
	injuries []*domain.Injury
}

func newFakeInjuryRepo() *fakeInjuryRepo {
	return &fakeInjuryRepo{}
}

func (r *fakeInjuryRepo) Create(ctx context.Context, injury *domain.Injury) (primitive.ObjectID, error) {
	injury.ID = primitive.NewObjectID()
	stored := *injury
	stored.Comments = append([]domain.InjuryComment{}, injury.Comments...)
	r.injuries = append(r.injuries, &stored)
	return injury.ID, nil
}

func (r *fakeInjuryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Injury, error) {
	for _, injury := range r.injuries {
		if injury.ID == id {
			copied := *injury
			copied.Comments = append([]domain.InjuryComment{}, injury.Comments...)
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeInjuryRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Injury, error) {
	out := []domain.Injury{}
	for _, injury := range r.injuries {
		if injury.StudentID == studentID {
			out = append(out, *injury)
		}
	}
	return out, nil
}

func (r *fakeInjuryRepo) GetByStudentIDs(ctx context.Context, studentIDs []primitive.ObjectID) ([]domain.Injury, error) {
	wanted := make(map[primitive.ObjectID]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}
	out := []domain.Injury{}
	for _, injury := range r.injuries {
		if wanted[injury.StudentID] {
			out = append(out, *injury)
		}
	}
	return out, nil
}

func (r *fakeInjuryRepo) AppendComment(ctx context.Context, injuryID primitive.ObjectID, comment domain.InjuryComment) error {
	for _, injury := range r.injuries {
		if injury.ID == injuryID {
			injury.Comments = append(injury.Comments, comment)
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- fakeTemplateRepo ---

type fakeTemplateRepo struct {
	templates map[primitive.ObjectID]*domain.PredefinedExercise
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[primitive.ObjectID]*domain.PredefinedExercise)}
}

func (r *fakeTemplateRepo) Create(ctx context.Context, template *domain.PredefinedExercise) (primitive.ObjectID, error) {
	template.ID = primitive.NewObjectID()
	template.CreatedAt = time.Now().UTC()
	stored := *template
	r.templates[template.ID] = &stored
	return template.ID, nil
}

func (r *fakeTemplateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PredefinedExercise, error) {
	template, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *template
	return &copied, nil
}

func (r *fakeTemplateRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PredefinedExercise, error) {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := []domain.PredefinedExercise{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if template, ok := r.templates[id]; ok {
			out = append(out, *template)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) List(ctx context.Context) ([]domain.PredefinedExercise, error) {
	out := []domain.PredefinedExercise{}
	for _, template := range r.templates {
		out = append(out, *template)
	}
	return out, nil
}

func (r *fakeTemplateRepo) SetDemoObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error {
	template, ok := r.templates[id]
	if !ok {
		return repository.ErrNotFound
	}
	template.DemoObjectKey = objectKey
	return nil
}

// --- fakeFileStorage ---

type fakeFileStorage struct {
	uploadURLs   map[string]string // objectKey -> URL handed out
	deletedKeys  []string
	downloadErr  error
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{uploadURLs: make(map[string]string)}
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	url := "https://storage.test/upload/" + objectKey
	s.uploadURLs[objectKey] = url
	return url, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if s.downloadErr != nil {
		return "", s.downloadErr
	}
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.deletedKeys = append(s.deletedKeys, objectKey)
	return nil
}

// newStudent builds an unassigned student record for tests.
func newStudent(name, email string) domain.User {
	return domain.User{
		Name:   name,
		Email:  email,
		Role:   domain.RoleStudent,
		Year:   2000,
		Gender: "f",
		Height: 170,
		Weight: 65,
	}
}

// newTrainer builds a trainer record with an empty student list.
func newTrainer(name, email string) domain.User {
	return domain.User{
		Name:       name,
		Email:      email,
		Role:       domain.RoleTrainer,
		StudentIDs: []primitive.ObjectID{},
	}
}
