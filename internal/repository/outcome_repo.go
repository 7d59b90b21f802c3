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

// OutcomeRepo handles MongoDB operations for outcomes
type OutcomeRepo interface {
	Create(ctx context.Context, outcome *model.Outcome) error
	GetByID(ctx context.Context, id string) (*model.Outcome, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]*model.Outcome, error)
	Update(ctx context.Context, outcome *model.Outcome) error
	Delete(ctx context.Context, id string) error
	DeleteBySurvey(ctx context.Context, surveyID string) error
}

type outcomeRepo struct {
	collection *mongo.Collection
}

// NewOutcomeRepo creates a new outcome repository
func NewOutcomeRepo(db *mongo.Database) OutcomeRepo {
	return &outcomeRepo{
		collection: db.Collection(CollectionOutcomes),
	}
}

func (r *outcomeRepo) Create(ctx context.Context, outcome *model.Outcome) error {
	if outcome.ID == "" {
		outcome.ID = primitive.NewObjectID().Hex()
	}
	outcome.CreatedAt = time.Now().UTC()
	outcome.UpdatedAt = outcome.CreatedAt

	_, err := r.collection.InsertOne(ctx, outcome)
	return err
}

func (r *outcomeRepo) GetByID(ctx context.Context, id string) (*model.Outcome, error) {
	var outcome model.Outcome
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&outcome)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// ListBySurvey returns outcomes in author order. Resolution applies its own ordering.
func (r *outcomeRepo) ListBySurvey(ctx context.Context, surveyID string) ([]*model.Outcome, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"surveyId": surveyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	outcomes := []*model.Outcome{}
	if err := cursor.All(ctx, &outcomes); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *outcomeRepo) Update(ctx context.Context, outcome *model.Outcome) error {
	outcome.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": outcome.ID}, outcome)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *outcomeRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *outcomeRepo) DeleteBySurvey(ctx context.Context, surveyID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"surveyId": surveyID})
	return err
}
