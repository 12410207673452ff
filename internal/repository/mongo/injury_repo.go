package mongo

import (
	"context"
	"errors"

	"gympro/internal/domain"
	"gympro/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const injuryCollectionName = "injuries"

// mongoInjuryRepository implements repository.InjuryRepository
type mongoInjuryRepository struct {
	collection *mongo.Collection
}

// NewMongoInjuryRepository creates a new Injury repository backed by MongoDB.
func NewMongoInjuryRepository(db *mongo.Database) repository.InjuryRepository {
	return &mongoInjuryRepository{
		collection: db.Collection(injuryCollectionName),
	}
}

// Create inserts a new injury record.
func (r *mongoInjuryRepository) Create(ctx context.Context, injury *domain.Injury) (primitive.ObjectID, error) {
	if injury.Description == "" || injury.StudentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("injury description and student ID are required")
	}

	injury.ID = primitive.NewObjectID()
	if injury.Comments == nil {
		injury.Comments = []domain.InjuryComment{}
	}

	result, err := r.collection.InsertOne(ctx, injury)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted injury ID")
	}

	return insertedID, nil
}

// GetByID retrieves an injury by its ID.
func (r *mongoInjuryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Injury, error) {
	var injury domain.Injury
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&injury)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &injury, nil
}

// GetByStudentID retrieves all injuries for a specific student in insertion
// order (ObjectIDs sort by creation time).
func (r *mongoInjuryRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Injury, error) {
	return r.findInjuries(ctx, bson.M{"studentId": studentID})
}

// GetByStudentIDs retrieves all injuries belonging to any of the given
// students. Used by the trainer-wide listing.
func (r *mongoInjuryRepository) GetByStudentIDs(ctx context.Context, studentIDs []primitive.ObjectID) ([]domain.Injury, error) {
	if len(studentIDs) == 0 {
		return []domain.Injury{}, nil
	}
	return r.findInjuries(ctx, bson.M{"studentId": bson.M{"$in": studentIDs}})
}

func (r *mongoInjuryRepository) findInjuries(ctx context.Context, filter bson.M) ([]domain.Injury, error) {
	var injuries []domain.Injury

	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &injuries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return injuries, nil
}

// AppendComment pushes a comment onto the end of an injury's thread. $push
// preserves order and never touches existing entries, which is what keeps
// the thread append-only at the storage level.
func (r *mongoInjuryRepository) AppendComment(ctx context.Context, injuryID primitive.ObjectID, comment domain.InjuryComment) error {
	filter := bson.M{"_id": injuryID}
	update := bson.M{
		"$push": bson.M{"comments": comment},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureInjuryIndexes creates necessary indexes for the injuries collection.
func EnsureInjuryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Not fatal; queries still work unindexed.
	}
}
