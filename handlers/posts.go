package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/auth"
	"inkwell/middleware"
	"inkwell/models"
	"inkwell/store"
)

// pageSize matches the public listing page length.
const pageSize = 3

type CreatePostRequest struct {
	Title       string `form:"title" binding:"required,min=2,max=200"`
	Description string `form:"description" binding:"required,min=10"`
	Category    string `form:"category" binding:"required"`
}

type UpdatePostRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,min=10"`
	Category    *string `json:"category"`
}

// CreatePost stores a new post with its required image. Authenticated.
func (a *API) CreatePost(c *gin.Context) {
	principal := middleware.Principal(c)
	if !a.authorize(c, auth.Authenticated, primitive.NilObjectID) {
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no image provided"})
		return
	}
	defer file.Close()

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
		return
	}

	ctx := c.Request.Context()

	asset, err := a.Media.Upload(ctx, file)
	if err != nil {
		a.Log.WithError(err).Error("post image upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to upload image"})
		return
	}

	post := models.Post{
		UserID:      principal.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Image:       models.Image{URL: asset.URL, PublicID: asset.PublicID},
	}
	if err := a.Store.Posts.Create(ctx, &post); err != nil {
		a.Log.WithError(err).Error("create post failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "post created", "post": post})
}

// GetPosts is public. ?pageNumber pages through all posts three at a time;
// ?category filters instead. Newest first either way.
func (a *API) GetPosts(c *gin.Context) {
	filter := store.PostFilter{}
	opts := store.FindOptions{}

	if pageStr := c.Query("pageNumber"); pageStr != "" {
		page, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid page number"})
			return
		}
		opts.Skip = (page - 1) * pageSize
		opts.Limit = pageSize
	} else if category := c.Query("category"); category != "" {
		filter.Category = category
	}

	posts, err := a.Store.Posts.Find(c.Request.Context(), filter, opts)
	if err != nil {
		a.Log.WithError(err).Error("list posts failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost is public.
func (a *API) GetPost(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	post, err := a.Store.Posts.FindByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "post not found")
		return
	}
	c.JSON(http.StatusOK, post)
}

// CountPosts is public.
func (a *API) CountPosts(c *gin.Context) {
	count, err := a.Store.Posts.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, count)
}

// UpdatePost edits title, description or category. Owner only.
func (a *API) UpdatePost(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
		return
	}

	ctx := c.Request.Context()

	post, err := a.Store.Posts.FindByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "post not found")
		return
	}

	if !a.authorize(c, auth.OwnerOnly, post.UserID) {
		return
	}

	updated, err := a.Store.Posts.UpdateByID(ctx, id, models.PostPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		respondStoreError(c, err, "post not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeletePost removes the post, its image and its comments. Owner or admin.
func (a *API) DeletePost(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()

	post, err := a.Store.Posts.FindByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "post not found")
		return
	}

	if !a.authorize(c, auth.OwnerOrAdmin, post.UserID) {
		return
	}

	if err := a.Cascade.DeletePost(ctx, post); err != nil {
		a.Log.WithError(err).WithField("post", id.Hex()).Error("post cascade delete failed")
		respondStoreError(c, err, "post not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted", "postId": id.Hex()})
}

// UpdatePostImage swaps the post's image for a newly uploaded one. Owner
// only. The old asset is removed after the new one is stored; that
// removal is best-effort.
func (a *API) UpdatePostImage(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no image provided"})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()

	post, err := a.Store.Posts.FindByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "post not found")
		return
	}

	if !a.authorize(c, auth.OwnerOnly, post.UserID) {
		return
	}

	asset, err := a.Media.Upload(ctx, file)
	if err != nil {
		a.Log.WithError(err).Error("post image upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to upload image"})
		return
	}

	updated, err := a.Store.Posts.SetImage(ctx, id, models.Image{URL: asset.URL, PublicID: asset.PublicID})
	if err != nil {
		respondStoreError(c, err, "post not found")
		return
	}

	if post.Image.PublicID != "" {
		if err := a.Media.Remove(ctx, post.Image.PublicID); err != nil {
			a.Log.WithError(err).WithField("publicId", post.Image.PublicID).
				Warn("old post image cleanup failed, continuing")
		}
	}

	c.JSON(http.StatusOK, updated)
}

// ToggleLike flips the caller's membership in the post's like set. The
// flip happens in a single atomic store operation, so rapid repeated
// calls settle on the last observed state instead of accumulating.
func (a *API) ToggleLike(c *gin.Context) {
	principal := middleware.Principal(c)
	if !a.authorize(c, auth.Authenticated, primitive.NilObjectID) {
		return
	}

	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	liked, err := a.Store.Posts.ToggleLike(c.Request.Context(), id, principal.ID)
	if err != nil {
		respondStoreError(c, err, "post not found")
		return
	}

	message := "post unliked"
	if liked {
		message = "post liked"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "liked": liked})
}
