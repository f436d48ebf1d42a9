package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/auth"
	"inkwell/middleware"
	"inkwell/models"
)

type CreateCommentRequest struct {
	PostID string `json:"postId" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

type UpdateCommentRequest struct {
	Text *string `json:"text" binding:"required"`
}

// CreateComment attaches a comment to an existing post. Authenticated.
// The author's username is copied onto the comment at creation time.
func (a *API) CreateComment(c *gin.Context) {
	principal := middleware.Principal(c)
	if !a.authorize(c, auth.Authenticated, primitive.NilObjectID) {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
		return
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid post id"})
		return
	}

	ctx := c.Request.Context()

	if _, err := a.Store.Posts.FindByID(ctx, postID); err != nil {
		respondStoreError(c, err, "post not found")
		return
	}

	author, err := a.Store.Users.FindByID(ctx, principal.ID)
	if err != nil {
		respondStoreError(c, err, "user not found")
		return
	}

	comment := models.Comment{
		PostID:   postID,
		UserID:   principal.ID,
		Text:     req.Text,
		Username: author.Username,
	}
	if err := a.Store.Comments.Create(ctx, &comment); err != nil {
		a.Log.WithError(err).Error("create comment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetAllComments lists every comment. Admin only.
func (a *API) GetAllComments(c *gin.Context) {
	if !a.authorize(c, auth.AdminOnly, primitive.NilObjectID) {
		return
	}

	comments, err := a.Store.Comments.FindAll(c.Request.Context())
	if err != nil {
		a.Log.WithError(err).Error("list comments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, comments)
}

// UpdateComment edits the text. Owner only; admins may delete comments
// but not rewrite them.
func (a *API) UpdateComment(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
		return
	}

	ctx := c.Request.Context()

	comment, err := a.Store.Comments.FindByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "comment not found")
		return
	}

	if !a.authorize(c, auth.OwnerOnly, comment.UserID) {
		return
	}

	updated, err := a.Store.Comments.UpdateByID(ctx, id, models.CommentPatch{Text: req.Text})
	if err != nil {
		respondStoreError(c, err, "comment not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteComment removes a comment. Owner or admin.
func (a *API) DeleteComment(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()

	comment, err := a.Store.Comments.FindByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "comment not found")
		return
	}

	if !a.authorize(c, auth.OwnerOrAdmin, comment.UserID) {
		return
	}

	if err := a.Store.Comments.DeleteByID(ctx, id); err != nil {
		respondStoreError(c, err, "comment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment removed", "commentId": id.Hex()})
}
