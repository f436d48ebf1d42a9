package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"inkwell/auth"
	"inkwell/middleware"
	"inkwell/models"
)

type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=2,max=100"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Bio      *string `json:"bio"`
}

// GetAllUsers lists every account. Admin only.
func (a *API) GetAllUsers(c *gin.Context) {
	if !a.authorize(c, auth.AdminOnly, primitive.NilObjectID) {
		return
	}

	users, err := a.Store.Users.FindAll(c.Request.Context())
	if err != nil {
		a.Log.WithError(err).Error("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUserProfile is public.
func (a *API) GetUserProfile(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	user, err := a.Store.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUserProfile edits username, password or bio. Owner only: admins
// may delete accounts but not edit them.
func (a *API) UpdateUserProfile(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
		return
	}

	ctx := c.Request.Context()

	user, err := a.Store.Users.FindByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "user not found")
		return
	}

	if !a.authorize(c, auth.OwnerOnly, user.ID) {
		return
	}

	patch := models.UserPatch{Username: req.Username, Bio: req.Bio}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
			return
		}
		hashedStr := string(hashed)
		patch.Password = &hashedStr
	}

	updated, err := a.Store.Users.UpdateByID(ctx, id, patch)
	if err != nil {
		respondStoreError(c, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteUserProfile removes the account and cascades to its posts, their
// images and comments, and the user's comments elsewhere. Owner or admin.
func (a *API) DeleteUserProfile(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()

	user, err := a.Store.Users.FindByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "user not found")
		return
	}

	if !a.authorize(c, auth.OwnerOrAdmin, user.ID) {
		return
	}

	if err := a.Cascade.DeleteUser(ctx, id); err != nil {
		a.Log.WithError(err).WithField("user", id.Hex()).Error("user cascade delete failed")
		respondStoreError(c, err, "user not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "your profile has been deleted",
		"userId":  id.Hex(),
	})
}

// CountUsers is admin only.
func (a *API) CountUsers(c *gin.Context) {
	if !a.authorize(c, auth.AdminOnly, primitive.NilObjectID) {
		return
	}

	count, err := a.Store.Users.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, count)
}

// UploadProfilePhoto replaces the caller's own photo. The previous asset
// is removed only after the new one is confirmed uploaded, and its removal
// is best-effort.
func (a *API) UploadProfilePhoto(c *gin.Context) {
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

	ctx := c.Request.Context()

	user, err := a.Store.Users.FindByID(ctx, principal.ID)
	if err != nil {
		respondStoreError(c, err, "user not found")
		return
	}
	oldPublicID := user.ProfilePhoto.PublicID

	asset, err := a.Media.Upload(ctx, file)
	if err != nil {
		a.Log.WithError(err).Error("profile photo upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to upload image"})
		return
	}

	updated, err := a.Store.Users.SetProfilePhoto(ctx, principal.ID, models.Image{
		URL:      asset.URL,
		PublicID: asset.PublicID,
	})
	if err != nil {
		respondStoreError(c, err, "user not found")
		return
	}

	if oldPublicID != "" {
		if err := a.Media.Remove(ctx, oldPublicID); err != nil {
			a.Log.WithError(err).WithField("publicId", oldPublicID).
				Warn("old profile photo cleanup failed, continuing")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "your profile photo uploaded successfully",
		"profilePhoto": updated.ProfilePhoto,
	})
}
