package service

import (
	"context"
	"testing"

	"gympro/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type injuryFixture struct {
	userRepo   *fakeUserRepo
	injuryRepo *fakeInjuryRepo
	svc        InjuryService
	trainerID  primitive.ObjectID
	studentID  primitive.ObjectID
}

func newInjuryFixture(t *testing.T) *injuryFixture {
	t.Helper()
	userRepo := newFakeUserRepo()
	trainerID := userRepo.seed(newTrainer("Coach", "coach@test.com"))
	student := newStudent("Ana", "ana@test.com")
	student.TrainerID = &trainerID
	studentID := userRepo.seed(student)
	userRepo.users[trainerID].StudentIDs = []primitive.ObjectID{studentID}

	injuryRepo := newFakeInjuryRepo()
	return &injuryFixture{
		userRepo:   userRepo,
		injuryRepo: injuryRepo,
		svc:        NewInjuryService(userRepo, injuryRepo),
		trainerID:  trainerID,
		studentID:  studentID,
	}
}

func TestRecordInjury_StartsActiveWithEmptyThread(t *testing.T) {
	f := newInjuryFixture(t)
	ctx := context.Background()

	injury, err := f.svc.RecordInjury(ctx, f.trainerID, f.studentID, "Sprained ankle", "Rest two weeks")
	assert.NoError(t, err)
	assert.Equal(t, domain.InjuryStatusActive, injury.Status)
	assert.Equal(t, "Rest two weeks", injury.TrainerNotes)
	assert.Empty(t, injury.Comments)
	assert.False(t, injury.Date.IsZero())
}

func TestRecordInjury_Validation(t *testing.T) {
	f := newInjuryFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordInjury(ctx, f.trainerID, f.studentID, "", "")
	assert.ErrorIs(t, err, ErrInjuryDescriptionRequired)

	strangerID := f.userRepo.seed(newStudent("Luis", "luis@test.com"))
	_, err = f.svc.RecordInjury(ctx, f.trainerID, strangerID, "Sprained ankle", "")
	assert.ErrorIs(t, err, ErrStudentNotManaged)

	_, err = f.svc.RecordInjury(ctx, f.trainerID, primitive.NewObjectID(), "Sprained ankle", "")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestAddComment_AppendsInOrder(t *testing.T) {
	f := newInjuryFixture(t)
	ctx := context.Background()

	injury, err := f.svc.RecordInjury(ctx, f.trainerID, f.studentID, "Sprained ankle", "")
	assert.NoError(t, err)

	_, err = f.svc.AddComment(ctx, f.trainerID, domain.CommentByTrainer, injury.ID, "How does it feel today?")
	assert.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.studentID, domain.CommentByStudent, injury.ID, "Better, still swollen")
	assert.NoError(t, err)
	updated, err := f.svc.AddComment(ctx, f.trainerID, domain.CommentByTrainer, injury.ID, "Keep icing it")
	assert.NoError(t, err)

	assert.Equal(t, []domain.InjuryComment{
		{Author: domain.CommentByTrainer, Text: "How does it feel today?"},
		{Author: domain.CommentByStudent, Text: "Better, still swollen"},
		{Author: domain.CommentByTrainer, Text: "Keep icing it"},
	}, updated.Comments)
}

func TestAddComment_Validation(t *testing.T) {
	f := newInjuryFixture(t)
	ctx := context.Background()

	injury, err := f.svc.RecordInjury(ctx, f.trainerID, f.studentID, "Sprained ankle", "")
	assert.NoError(t, err)

	_, err = f.svc.AddComment(ctx, f.trainerID, domain.CommentByTrainer, injury.ID, "")
	assert.ErrorIs(t, err, ErrCommentTextRequired)

	_, err = f.svc.AddComment(ctx, f.trainerID, domain.CommentAuthor("admin"), injury.ID, "hi")
	assert.ErrorIs(t, err, ErrInvalidCommentAuthor)

	_, err = f.svc.AddComment(ctx, f.trainerID, domain.CommentByTrainer, primitive.NewObjectID(), "hi")
	assert.ErrorIs(t, err, ErrInjuryNotFound)
}

func TestAddComment_AccessControl(t *testing.T) {
	f := newInjuryFixture(t)
	ctx := context.Background()

	injury, err := f.svc.RecordInjury(ctx, f.trainerID, f.studentID, "Sprained ankle", "")
	assert.NoError(t, err)

	// Another student cannot comment on this injury.
	strangerID := f.userRepo.seed(newStudent("Luis", "luis@test.com"))
	_, err = f.svc.AddComment(ctx, strangerID, domain.CommentByStudent, injury.ID, "hi")
	assert.ErrorIs(t, err, ErrInjuryAccessDenied)

	// A trainer who does not manage the student cannot either.
	otherTrainerID := f.userRepo.seed(newTrainer("Other", "other@test.com"))
	_, err = f.svc.AddComment(ctx, otherTrainerID, domain.CommentByTrainer, injury.ID, "hi")
	assert.ErrorIs(t, err, ErrInjuryAccessDenied)
}

func TestListInjuries_ReturnsStudentThread(t *testing.T) {
	f := newInjuryFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordInjury(ctx, f.trainerID, f.studentID, "Sprained ankle", "")
	assert.NoError(t, err)
	_, err = f.svc.RecordInjury(ctx, f.trainerID, f.studentID, "Shoulder pain", "")
	assert.NoError(t, err)

	injuries, err := f.svc.ListInjuries(ctx, f.studentID)
	assert.NoError(t, err)
	assert.Len(t, injuries, 2)
}

func TestListAllInjuries_JoinsStudentNames(t *testing.T) {
	f := newInjuryFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordInjury(ctx, f.trainerID, f.studentID, "Sprained ankle", "")
	assert.NoError(t, err)

	all, err := f.svc.ListAllInjuries(ctx, f.trainerID)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "Ana", all[0].StudentName)
	assert.Equal(t, "Sprained ankle", all[0].Description)
}

func TestListAllInjuries_PlaceholderForMissingStudent(t *testing.T) {
	f := newInjuryFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordInjury(ctx, f.trainerID, f.studentID, "Sprained ankle", "")
	assert.NoError(t, err)

	// The student record disappears but the injury and the list entry remain.
	delete(f.userRepo.users, f.studentID)

	all, err := f.svc.ListAllInjuries(ctx, f.trainerID)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, PlaceholderStudentName, all[0].StudentName)
}

func TestListAllInjuries_RequiresTrainer(t *testing.T) {
	f := newInjuryFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListAllInjuries(ctx, f.studentID)
	assert.ErrorIs(t, err, ErrNotATrainer)

	_, err = f.svc.ListAllInjuries(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrTrainerNotFound)
}
