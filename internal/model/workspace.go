package model

import "time"

// Workspace groups surveys of one owner
type Workspace struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	OwnerID   string    `json:"ownerId" bson:"ownerId"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
