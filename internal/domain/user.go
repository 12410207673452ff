package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleStudent Role = "student"
)

// User represents a user in the system (Admin, Trainer or Student).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	Gender       string             `bson:"gender,omitempty" json:"gender,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Student-specific ---
	Year   int     `bson:"year,omitempty" json:"year,omitempty"`     // Birth year
	Height float64 `bson:"height,omitempty" json:"height,omitempty"` // cm
	Weight float64 `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	// The trainer this student is assigned to. Nil while unassigned.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`

	// --- Trainer-specific ---
	Age        int    `bson:"age,omitempty" json:"age,omitempty"`
	Experience string `bson:"experience,omitempty" json:"experience,omitempty"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
	// IDs of the students managed by this trainer. Must stay symmetric with
	// each student's TrainerID: a student appears here iff their TrainerID
	// points back at this trainer.
	StudentIDs []primitive.ObjectID `bson:"studentIds,omitempty" json:"studentIds,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsAssigned reports whether a student already has a trainer.
func (u *User) IsAssigned() bool {
	return u.TrainerID != nil && *u.TrainerID != primitive.NilObjectID
}
