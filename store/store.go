// Package store defines the persistence contracts for the resource
// collections. The Mongo implementation backs production; the in-memory
// implementation backs tests and local development. Handlers and the
// cascade coordinator only see these interfaces.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

// ErrNotFound is returned when the addressed record does not exist.
var ErrNotFound = errors.New("record not found")

// PostFilter narrows Find queries. Zero values mean "no constraint".
type PostFilter struct {
	Category string
	OwnerID  primitive.ObjectID
}

// FindOptions controls ordering and paging. Limit 0 means no limit.
type FindOptions struct {
	Skip  int64
	Limit int64
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error)
	SetProfilePhoto(ctx context.Context, id primitive.ObjectID, photo models.Image) (*models.User, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// Find returns posts newest first.
	Find(ctx context.Context, filter PostFilter, opts FindOptions) ([]models.Post, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error)
	SetImage(ctx context.Context, id primitive.ObjectID, image models.Image) (*models.Post, error)
	// ToggleLike atomically adds userID to the post's like set if absent,
	// or removes it if present, in a single store round trip. It reports
	// whether the user is liked after the call. Concurrent toggles for
	// the same pair must never produce duplicate entries.
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	DeleteManyByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	FindAll(ctx context.Context) ([]models.Comment, error)
	FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.CommentPatch) (*models.Comment, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	DeleteManyByPost(ctx context.Context, postIDs ...primitive.ObjectID) (int64, error)
	DeleteManyByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
}

type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// Store bundles the per-collection stores handed to handlers.
type Store struct {
	Users      UserStore
	Posts      PostStore
	Comments   CommentStore
	Categories CategoryStore
}
