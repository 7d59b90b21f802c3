package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names
const (
	CollectionWorkspaces  = "workspaces"
	CollectionSurveys     = "surveys"
	CollectionQuestions   = "questions"
	CollectionOutcomes    = "outcomes"
	CollectionSubmissions = "submissions"
)

// ErrNotFound is returned by updates that matched no document
var ErrNotFound = errors.New("document not found")

// EnsureIndexes creates the indexes the repositories query by. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionWorkspaces: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "name", Value: 1}}},
		},
		CollectionSurveys: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "workspaceId", Value: 1}}},
		},
		CollectionQuestions: {
			{Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "order", Value: 1}}},
		},
		CollectionOutcomes: {
			{Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "order", Value: 1}}},
		},
		CollectionSubmissions: {
			{Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "outcomeTitle", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
