// Package cascade sequences the multi-resource deletions triggered by
// removing a user or a post. Store-record deletion is authoritative and
// any store failure aborts the request; remote-media cleanup is always
// attempted but never blocks or reverts the record deletions.
package cascade

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/media"
	"inkwell/models"
	"inkwell/store"
)

type Coordinator struct {
	store *store.Store
	media media.Store
	log   *logrus.Logger
}

func New(s *store.Store, m media.Store, log *logrus.Logger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{store: s, media: m, log: log}
}

// DeleteUser removes the user and everything that hangs off them: their
// posts, those posts' remote images, all comments on those posts (any
// author), comments the user left anywhere, and the profile photo.
// Returns store.ErrNotFound if the user does not exist. A store failure
// after cleanup has begun is returned to the caller as-is; there is no
// compensating re-creation.
func (c *Coordinator) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	user, err := c.store.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	posts, err := c.store.Posts.Find(ctx, store.PostFilter{OwnerID: userID}, store.FindOptions{})
	if err != nil {
		return fmt.Errorf("load posts for user %s: %w", userID.Hex(), err)
	}

	var publicIDs []string
	postIDs := make([]primitive.ObjectID, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
		if post.Image.PublicID != "" {
			publicIDs = append(publicIDs, post.Image.PublicID)
		}
	}

	if len(publicIDs) > 0 {
		if err := c.media.RemoveMany(ctx, publicIDs); err != nil {
			c.log.WithError(err).WithField("user", userID.Hex()).
				Warn("post image cleanup failed, continuing")
		}
	}
	if user.ProfilePhoto.PublicID != "" {
		if err := c.media.Remove(ctx, user.ProfilePhoto.PublicID); err != nil {
			c.log.WithError(err).WithField("user", userID.Hex()).
				Warn("profile photo cleanup failed, continuing")
		}
	}

	if _, err := c.store.Posts.DeleteManyByOwner(ctx, userID); err != nil {
		return fmt.Errorf("delete posts for user %s: %w", userID.Hex(), err)
	}
	if _, err := c.store.Comments.DeleteManyByOwner(ctx, userID); err != nil {
		return fmt.Errorf("delete comments by user %s: %w", userID.Hex(), err)
	}
	if len(postIDs) > 0 {
		if _, err := c.store.Comments.DeleteManyByPost(ctx, postIDs...); err != nil {
			return fmt.Errorf("delete comments on posts of user %s: %w", userID.Hex(), err)
		}
	}

	if err := c.store.Users.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("delete user %s after cleanup: %w", userID.Hex(), err)
	}
	return nil
}

// DeletePost removes an already-loaded, already-authorized post, its
// remote image, and its comments. The record deletion decides the outcome;
// image cleanup failure is only logged.
func (c *Coordinator) DeletePost(ctx context.Context, post *models.Post) error {
	if err := c.store.Posts.DeleteByID(ctx, post.ID); err != nil {
		return err
	}

	if post.Image.PublicID != "" {
		if err := c.media.Remove(ctx, post.Image.PublicID); err != nil {
			c.log.WithError(err).WithField("post", post.ID.Hex()).
				Warn("post image cleanup failed, continuing")
		}
	}

	if _, err := c.store.Comments.DeleteManyByPost(ctx, post.ID); err != nil {
		return fmt.Errorf("delete comments for post %s: %w", post.ID.Hex(), err)
	}
	return nil
}
