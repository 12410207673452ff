package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRolePredicates(t *testing.T) {
	admin := User{Role: RoleAdmin}
	trainer := User{Role: RoleTrainer}
	student := User{Role: RoleStudent}

	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsTrainer())

	assert.True(t, trainer.IsTrainer())
	assert.False(t, trainer.IsStudent())

	assert.True(t, student.IsStudent())
	assert.False(t, student.IsAdmin())
}

func TestIsAssigned(t *testing.T) {
	student := User{Role: RoleStudent}
	assert.False(t, student.IsAssigned())

	nilID := primitive.NilObjectID
	student.TrainerID = &nilID
	assert.False(t, student.IsAssigned(), "explicit null trainer id counts as unassigned")

	trainerID := primitive.NewObjectID()
	student.TrainerID = &trainerID
	assert.True(t, student.IsAssigned())
}
