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

// WorkspaceRepo handles MongoDB operations for workspaces
type WorkspaceRepo interface {
	Create(ctx context.Context, ws *model.Workspace) error
	GetByID(ctx context.Context, id string) (*model.Workspace, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Workspace, error)
	Update(ctx context.Context, ws *model.Workspace) error
	Delete(ctx context.Context, id string) error
}

type workspaceRepo struct {
	collection *mongo.Collection
}

// NewWorkspaceRepo creates a new workspace repository
func NewWorkspaceRepo(db *mongo.Database) WorkspaceRepo {
	return &workspaceRepo{
		collection: db.Collection(CollectionWorkspaces),
	}
}

func (r *workspaceRepo) Create(ctx context.Context, ws *model.Workspace) error {
	if ws.ID == "" {
		ws.ID = primitive.NewObjectID().Hex()
	}
	ws.CreatedAt = time.Now().UTC()
	ws.UpdatedAt = ws.CreatedAt

	_, err := r.collection.InsertOne(ctx, ws)
	return err
}

func (r *workspaceRepo) GetByID(ctx context.Context, id string) (*model.Workspace, error) {
	var ws model.Workspace
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ws)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Workspace, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workspaces := []*model.Workspace{}
	if err := cursor.All(ctx, &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

func (r *workspaceRepo) Update(ctx context.Context, ws *model.Workspace) error {
	ws.UpdatedAt = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": ws.ID}, bson.M{"$set": bson.M{
		"name":      ws.Name,
		"updatedAt": ws.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workspaceRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
