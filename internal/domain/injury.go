package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentAuthor identifies which side of the trainer/student pair wrote a comment.
type CommentAuthor string

const (
	CommentByTrainer CommentAuthor = "trainer"
	CommentByStudent CommentAuthor = "student"
)

// Injury status as recorded at creation time.
const InjuryStatusActive = "Activa"

// InjuryComment is one entry of an injury's comment thread. The thread is
// append-only: comments are never edited, removed or reordered.
type InjuryComment struct {
	Author CommentAuthor `bson:"author" json:"author"`
	Text   string        `bson:"text" json:"text"`
}

// Injury is a tracked health event for a student, recorded by their trainer
// and discussed by both sides through the comment thread.
type Injury struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID    primitive.ObjectID `bson:"studentId" json:"studentId"`
	Description  string             `bson:"description" json:"description"`
	Date         time.Time          `bson:"date" json:"date"`
	Status       string             `bson:"status" json:"status"` // Free-form, "Activa" at creation
	TrainerNotes string             `bson:"trainerNotes,omitempty" json:"trainerNotes,omitempty"`
	Comments     []InjuryComment    `bson:"comments" json:"comments"` // Creation order
}
