package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID   `bson:"user" json:"user"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Category    string               `bson:"category" json:"category"`
	Image       Image                `bson:"image" json:"image"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// PostPatch enumerates the mutable post fields. A nil field is left
// unchanged. The image is replaced through a dedicated store operation,
// not through a patch.
type PostPatch struct {
	Title       *string
	Description *string
	Category    *string
}
