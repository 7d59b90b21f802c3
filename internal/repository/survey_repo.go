package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"createform/internal/model"
)

// SurveyRepo handles MongoDB operations for surveys
type SurveyRepo interface {
	Create(ctx context.Context, survey *model.Survey) (string, error)
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	List(ctx context.Context, ownerID, workspaceID string) ([]*model.Survey, error)
	Update(ctx context.Context, survey *model.Survey) error
	SetActive(ctx context.Context, id string, active bool) error
	DetachWorkspace(ctx context.Context, workspaceID string) error
	Delete(ctx context.Context, id string) error
}

type surveyRepo struct {
	collection *mongo.Collection
}

// NewSurveyRepo creates a new survey repository
func NewSurveyRepo(db *mongo.Database) SurveyRepo {
	return &surveyRepo{
		collection: db.Collection(CollectionSurveys),
	}
}

func (r *surveyRepo) Create(ctx context.Context, survey *model.Survey) (string, error) {
	if survey.ID == "" {
		survey.ID = primitive.NewObjectID().Hex()
	}
	survey.CreatedAt = time.Now().UTC()
	survey.UpdatedAt = survey.CreatedAt

	if _, err := r.collection.InsertOne(ctx, survey); err != nil {
		return "", err
	}
	return survey.ID, nil
}

func (r *surveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	var survey model.Survey
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&survey)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// List returns the owner's surveys, newest first. An empty workspaceID lists every workspace.
func (r *surveyRepo) List(ctx context.Context, ownerID, workspaceID string) ([]*model.Survey, error) {
	filter := bson.M{"ownerId": ownerID}
	if workspaceID != "" {
		filter["workspaceId"] = workspaceID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveys := []*model.Survey{}
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, err
	}
	return surveys, nil
}

func (r *surveyRepo) Update(ctx context.Context, survey *model.Survey) error {
	survey.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": survey.ID}, survey)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *surveyRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"active":    active,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *surveyRepo) DetachWorkspace(ctx context.Context, workspaceID string) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"workspaceId": workspaceID}, bson.M{
		"$unset": bson.M{"workspaceId": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

func (r *surveyRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
