package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/auth"
	"inkwell/middleware"
	"inkwell/models"
)

type CreateCategoryRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateCategory is admin only.
func (a *API) CreateCategory(c *gin.Context) {
	if !a.authorize(c, auth.AdminOnly, primitive.NilObjectID) {
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
		return
	}

	category := models.Category{
		UserID: middleware.Principal(c).ID,
		Title:  req.Title,
	}
	if err := a.Store.Categories.Create(c.Request.Context(), &category); err != nil {
		a.Log.WithError(err).Error("create category failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// GetAllCategories is public.
func (a *API) GetAllCategories(c *gin.Context) {
	categories, err := a.Store.Categories.FindAll(c.Request.Context())
	if err != nil {
		a.Log.WithError(err).Error("list categories failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// DeleteCategory is admin only. Categories have no dependents, so no
// cascade is involved.
func (a *API) DeleteCategory(c *gin.Context) {
	if !a.authorize(c, auth.AdminOnly, primitive.NilObjectID) {
		return
	}

	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if _, err := a.Store.Categories.FindByID(ctx, id); err != nil {
		respondStoreError(c, err, "category not found")
		return
	}

	if err := a.Store.Categories.DeleteByID(ctx, id); err != nil {
		respondStoreError(c, err, "category not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category removed", "categoryId": id.Hex()})
}
