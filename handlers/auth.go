package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"inkwell/models"
	"inkwell/store"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,min=5,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account. The first login happens separately; no
// token is issued here.
func (a *API) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
		return
	}

	ctx := c.Request.Context()

	_, err := a.Store.Users.FindByEmail(ctx, req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		Password:     string(hashed),
		ProfilePhoto: models.Image{URL: models.DefaultProfilePhotoURL},
	}
	if err := a.Store.Users.Create(ctx, &user); err != nil {
		a.Log.WithError(err).Error("register: create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "you registered successfully, please log in"})
}

func (a *API) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
		return
	}

	ctx := c.Request.Context()

	user, err := a.Store.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}

	token, err := a.Tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		a.Log.WithError(err).Error("login: issue token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID.Hex(),
		"username":     user.Username,
		"isAdmin":      user.IsAdmin,
		"profilePhoto": user.ProfilePhoto,
		"token":        token,
	})
}
