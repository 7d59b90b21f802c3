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

// SubmissionRepo handles MongoDB operations for submissions.
// Submissions are write-once: there is no update or delete.
type SubmissionRepo interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	List(ctx context.Context, filter model.SubmissionFilter) ([]*model.Submission, error)
	Count(ctx context.Context, filter model.SubmissionFilter) (int64, error)
	Subscribe(ctx context.Context, filter model.SubmissionFilter, interval time.Duration) *Subscription
}

type submissionRepo struct {
	collection *mongo.Collection
}

// NewSubmissionRepo creates a new submission repository
func NewSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &submissionRepo{
		collection: db.Collection(CollectionSubmissions),
	}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	if submission.ID == "" {
		submission.ID = primitive.NewObjectID().Hex()
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, submission)
	return err
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var submission model.Submission
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&submission)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// List returns matching submissions, newest first
func (r *submissionRepo) List(ctx context.Context, filter model.SubmissionFilter) ([]*model.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, submissionQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	submissions := []*model.Submission{}
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepo) Count(ctx context.Context, filter model.SubmissionFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, submissionQuery(filter))
}

// Subscribe polls the collection and emits a snapshot whenever the matching count changes
func (r *submissionRepo) Subscribe(ctx context.Context, filter model.SubmissionFilter, interval time.Duration) *Subscription {
	return NewSubscription(ctx, interval, func(ctx context.Context) (*model.SubmissionSnapshot, error) {
		count, err := r.Count(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &model.SubmissionSnapshot{
			SurveyID: filter.SurveyID,
			Count:    int(count),
		}, nil
	}, func(ctx context.Context, snap *model.SubmissionSnapshot) error {
		submissions, err := r.List(ctx, filter)
		if err != nil {
			return err
		}
		snap.Submissions = submissions
		return nil
	})
}

// submissionQuery translates a filter into a MongoDB query document
func submissionQuery(f model.SubmissionFilter) bson.M {
	q := bson.M{}
	if f.SurveyID != "" {
		q["surveyId"] = f.SurveyID
	}
	if f.OutcomeTitle != "" {
		q["outcomeTitle"] = f.OutcomeTitle
	}

	score := bson.M{}
	if f.MinScore != nil {
		score["$gte"] = *f.MinScore
	}
	if f.MaxScore != nil {
		score["$lte"] = *f.MaxScore
	}
	if len(score) > 0 {
		q["totalScore"] = score
	}

	created := bson.M{}
	if !f.Since.IsZero() {
		created["$gte"] = f.Since
	}
	if !f.Until.IsZero() {
		created["$lt"] = f.Until
	}
	if len(created) > 0 {
		q["createdAt"] = created
	}

	if f.HasLead != nil {
		lead := bson.A{
			bson.M{"respondentName": bson.M{"$nin": bson.A{nil, ""}}},
			bson.M{"respondentEmail": bson.M{"$nin": bson.A{nil, ""}}},
			bson.M{"leadCaptureData.0": bson.M{"$exists": true}},
		}
		if *f.HasLead {
			q["$or"] = lead
		} else {
			q["$nor"] = lead
		}
	}
	return q
}
