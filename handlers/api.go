// Package handlers holds the HTTP controllers for users, posts, comments
// and categories. Each handler validates the payload, resolves the target
// record, asks the authorization guard, then performs the mutation.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/auth"
	"inkwell/cascade"
	"inkwell/media"
	"inkwell/middleware"
	"inkwell/store"
)

// API bundles the dependencies the controllers need.
type API struct {
	Store   *store.Store
	Media   media.Store
	Tokens  *auth.TokenService
	Cascade *cascade.Coordinator
	Log     *logrus.Logger
}

func New(s *store.Store, m media.Store, tokens *auth.TokenService, log *logrus.Logger) *API {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &API{
		Store:   s,
		Media:   m,
		Tokens:  tokens,
		Cascade: cascade.New(s, m, log),
		Log:     log,
	}
}

// authorize runs the guard for the current caller and writes the denial
// response itself. Returns true when the request may proceed.
func (a *API) authorize(c *gin.Context, tier auth.Tier, ownerID primitive.ObjectID) bool {
	decision := auth.Decide(middleware.Principal(c), tier, ownerID)
	if decision.Allowed {
		return true
	}
	status := http.StatusForbidden
	if decision.Reason == auth.ReasonUnauthenticated {
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"message": decision.Reason})
	return false
}

// objectIDParam parses the :name path parameter, answering 400 itself on
// malformed ids.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// bindingMessage turns a binding failure into the first field error,
// phrased for the client.
func bindingMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func respondStoreError(c *gin.Context, err error, notFoundMessage string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMessage})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}
