package mongo

import (
	"context"
	"errors"
	"time"

	"gympro/internal/domain"
	"gympro/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const templateCollectionName = "predefined_exercises"

// mongoTemplateRepository implements repository.TemplateRepository
type mongoTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoTemplateRepository creates a new predefined-exercise repository
// backed by MongoDB.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
	}
}

// Create inserts a new template into the catalog.
func (r *mongoTemplateRepository) Create(ctx context.Context, template *domain.PredefinedExercise) (primitive.ObjectID, error) {
	if template.Name == "" || template.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template name and trainer ID are required")
	}

	template.ID = primitive.NewObjectID()
	template.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, template)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted template ID")
	}

	return insertedID, nil
}

// GetByID retrieves a single template.
func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PredefinedExercise, error) {
	var template domain.PredefinedExercise
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetByIDs retrieves the templates with the given IDs. Missing IDs are simply
// absent from the result; the caller decides whether that is an error.
func (r *mongoTemplateRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PredefinedExercise, error) {
	if len(ids) == 0 {
		return []domain.PredefinedExercise{}, nil
	}

	var templates []domain.PredefinedExercise
	filter := bson.M{"_id": bson.M{"$in": ids}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

// List retrieves the whole catalog.
func (r *mongoTemplateRepository) List(ctx context.Context) ([]domain.PredefinedExercise, error) {
	var templates []domain.PredefinedExercise

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

// SetDemoObjectKey records the storage key of a template's demo video. This is
// the only mutation templates allow after creation.
func (r *mongoTemplateRepository) SetDemoObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{"demoObjectKey": objectKey},
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

// EnsureTemplateIndexes creates necessary indexes for the catalog collection.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "area", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Not fatal; queries still work unindexed.
	}
}
