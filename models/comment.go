package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment references its post and author by id only. Username is a
// denormalized snapshot of the author's name at creation time.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	Username  string             `bson:"username" json:"username"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CommentPatch holds the only mutable comment field.
type CommentPatch struct {
	Text *string
}
