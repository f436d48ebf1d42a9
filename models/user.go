package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultProfilePhotoURL is the placeholder shown until a user uploads a
// photo. It is not backed by a media-store asset, so its PublicID is empty.
const DefaultProfilePhotoURL = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_640.png"

// Image is a remotely hosted asset. PublicID addresses the asset in the
// media store for later deletion; it is empty when the URL is not ours to
// delete (e.g. the default profile photo).
type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	ProfilePhoto Image              `bson:"profilePhoto" json:"profilePhoto"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserPatch enumerates the mutable profile fields. A nil field is left
// unchanged. Password must already be hashed by the caller.
type UserPatch struct {
	Username *string
	Password *string
	Bio      *string
}
