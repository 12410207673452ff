package service

import (
	"context"
	"testing"
	"time"

	"gympro/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "test-secret"

func newAuthFixture() (*fakeUserRepo, AuthService) {
	userRepo := newFakeUserRepo()
	return userRepo, NewAuthService(userRepo, testJWTSecret, time.Hour)
}

func validStudentProfile() StudentProfile {
	return StudentProfile{Year: 2000, Gender: "f", Height: 170, Weight: 65}
}

func TestRegisterStudent_StartsUnassigned(t *testing.T) {
	ctx := context.Background()
	_, svc := newAuthFixture()

	user, err := svc.RegisterStudent(ctx, "Ana", "ana@test.com", "password123", validStudentProfile())
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.Nil(t, user.TrainerID)
	assert.Empty(t, user.PasswordHash, "hash never leaves the service")
	assert.False(t, user.ID.IsZero())
}

func TestRegisterStudent_ProfileValidation(t *testing.T) {
	ctx := context.Background()
	_, svc := newAuthFixture()

	profile := validStudentProfile()
	profile.Height = 0
	_, err := svc.RegisterStudent(ctx, "Ana", "ana@test.com", "password123", profile)
	assert.ErrorIs(t, err, ErrProfileValidation)

	profile = validStudentProfile()
	profile.Weight = -1
	_, err = svc.RegisterStudent(ctx, "Ana", "ana@test.com", "password123", profile)
	assert.ErrorIs(t, err, ErrProfileValidation)

	_, err = svc.RegisterStudent(ctx, "", "ana@test.com", "password123", validStudentProfile())
	assert.ErrorIs(t, err, ErrProfileValidation)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	_, svc := newAuthFixture()

	_, err := svc.RegisterStudent(ctx, "Ana", "ana@test.com", "password123", validStudentProfile())
	assert.NoError(t, err)

	_, err = svc.RegisterStudent(ctx, "Other Ana", "ana@test.com", "password123", validStudentProfile())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	// The check spans roles: a trainer cannot reuse a student's email either.
	_, err = svc.RegisterTrainer(ctx, "Coach", "ana@test.com", "password123", TrainerProfile{})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterTrainer_EmptyStudentList(t *testing.T) {
	ctx := context.Background()
	_, svc := newAuthFixture()

	profile := TrainerProfile{Age: 35, Gender: "m", Experience: "10 years", Phone: "555-0100"}
	user, err := svc.RegisterTrainer(ctx, "Coach", "coach@test.com", "password123", profile)
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleTrainer, user.Role)
	assert.NotNil(t, user.StudentIDs)
	assert.Empty(t, user.StudentIDs)
}

func TestUpdateStudentProfile_PersistsEditedFields(t *testing.T) {
	ctx := context.Background()
	userRepo, svc := newAuthFixture()

	registered, err := svc.RegisterStudent(ctx, "Ana", "ana@test.com", "password123", validStudentProfile())
	assert.NoError(t, err)

	updated, err := svc.UpdateStudentProfile(ctx, registered.ID, "Ana Maria", StudentProfile{
		Year:   1998,
		Gender: "f",
		Height: 172,
		Weight: 68,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, 1998, updated.Year)
	assert.Equal(t, 172.0, updated.Height)
	assert.Empty(t, updated.PasswordHash)

	stored, err := userRepo.GetByID(ctx, registered.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Ana Maria", stored.Name)
	assert.Equal(t, 68.0, stored.Weight)
	assert.Equal(t, domain.RoleStudent, stored.Role, "role is not editable")
	assert.Equal(t, "ana@test.com", stored.Email, "email is not editable")
}

func TestUpdateStudentProfile_Validation(t *testing.T) {
	ctx := context.Background()
	_, svc := newAuthFixture()

	registered, err := svc.RegisterStudent(ctx, "Ana", "ana@test.com", "password123", validStudentProfile())
	assert.NoError(t, err)

	_, err = svc.UpdateStudentProfile(ctx, registered.ID, "", validStudentProfile())
	assert.ErrorIs(t, err, ErrProfileValidation)

	profile := validStudentProfile()
	profile.Height = 0
	_, err = svc.UpdateStudentProfile(ctx, registered.ID, "Ana", profile)
	assert.ErrorIs(t, err, ErrProfileValidation)

	profile = validStudentProfile()
	profile.Weight = -5
	_, err = svc.UpdateStudentProfile(ctx, registered.ID, "Ana", profile)
	assert.ErrorIs(t, err, ErrProfileValidation)

	profile = validStudentProfile()
	profile.Gender = ""
	_, err = svc.UpdateStudentProfile(ctx, registered.ID, "Ana", profile)
	assert.ErrorIs(t, err, ErrProfileValidation)
}

func TestUpdateStudentProfile_RejectsNonStudents(t *testing.T) {
	ctx := context.Background()
	_, svc := newAuthFixture()

	trainer, err := svc.RegisterTrainer(ctx, "Coach", "coach@test.com", "password123", TrainerProfile{})
	assert.NoError(t, err)

	_, err = svc.UpdateStudentProfile(ctx, trainer.ID, "Coach", validStudentProfile())
	assert.ErrorIs(t, err, ErrNotAStudent)

	_, err = svc.UpdateStudentProfile(ctx, primitive.NewObjectID(), "Ghost", validStudentProfile())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_IssuesTokenWithUIDAndRole(t *testing.T) {
	ctx := context.Background()
	_, svc := newAuthFixture()

	registered, err := svc.RegisterStudent(ctx, "Ana", "ana@test.com", "password123", validStudentProfile())
	assert.NoError(t, err)

	token, user, err := svc.Login(ctx, "ana@test.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, registered.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleStudent, claims.Role)
	assert.Equal(t, "gympro", claims.Issuer)
}

func TestLogin_WrongCredentials(t *testing.T) {
	ctx := context.Background()
	_, svc := newAuthFixture()

	_, err := svc.RegisterStudent(ctx, "Ana", "ana@test.com", "password123", validStudentProfile())
	assert.NoError(t, err)

	_, _, err = svc.Login(ctx, "ana@test.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	// Unknown email maps to the same failure, not a not-found leak.
	_, _, err = svc.Login(ctx, "nobody@test.com", "password123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
