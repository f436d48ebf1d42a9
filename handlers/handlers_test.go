package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"inkwell/auth"
	"inkwell/handlers"
	"inkwell/media"
	"inkwell/models"
	"inkwell/routes"
	"inkwell/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	store  *store.Store
	media  *media.Memory
	tokens *auth.TokenService
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemory()
	m := media.NewMemory()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	log := logrus.New()
	log.SetOutput(io.Discard)
	api := handlers.New(s, m, tokens, log)
	return &fixture{store: s, media: m, tokens: tokens, router: routes.SetupRouter(api)}
}

func (f *fixture) seedUser(t *testing.T, username string, isAdmin bool) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		Password:     string(hashed),
		ProfilePhoto: models.Image{URL: models.DefaultProfilePhotoURL},
		IsAdmin:      isAdmin,
	}
	require.NoError(t, f.store.Users.Create(context.Background(), user))
	return user
}

func (f *fixture) seedPost(t *testing.T, owner primitive.ObjectID) *models.Post {
	t.Helper()
	asset, err := f.media.Upload(context.Background(), strings.NewReader("img"))
	require.NoError(t, err)
	post := &models.Post{
		UserID:      owner,
		Title:       "a title",
		Description: "a long enough description",
		Category:    "go",
		Image:       models.Image{URL: asset.URL, PublicID: asset.PublicID},
	}
	require.NoError(t, f.store.Posts.Create(context.Background(), post))
	return post
}

func (f *fixture) seedComment(t *testing.T, postID, owner primitive.ObjectID) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: postID, UserID: owner, Text: "nice post", Username: "someone"}
	require.NoError(t, f.store.Comments.Create(context.Background(), comment))
	return comment
}

func (f *fixture) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := f.tokens.Issue(user.ID, user.IsAdmin)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) doMultipart(t *testing.T, method, path, token string, fields map[string]string, withImage bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if withImage {
		part, err := writer.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

// ----- auth -----

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "newuser",
		"email":    "new@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "new@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	principal, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.False(t, principal.IsAdmin)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "taken", false)

	w := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "other",
		"email":    "taken@example.com",
		"password": "supersecret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidationSurfacesFirstMessage(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "bad@example.com",
		"password": "supersecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username is required", message(t, w))
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "victim", false)

	w := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "victim@example.com",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ----- users -----

func TestUpdateProfileUnauthenticatedMakesNoStoreCall(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)

	w := f.do(t, http.MethodPut, "/api/users/profile/"+user.ID.Hex(), "", gin.H{"bio": "hacked"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	got, err := f.store.Users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Bio)
}

func TestAdminCannotEditAnotherProfile(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)
	admin := f.seedUser(t, "root", true)

	w := f.do(t, http.MethodPut, "/api/users/profile/"+user.ID.Hex(), f.token(t, admin), gin.H{"bio": "edited by admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, auth.ReasonForbidden, message(t, w))

	got, err := f.store.Users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Bio)
}

func TestOwnerEditsOwnProfile(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)

	w := f.do(t, http.MethodPut, "/api/users/profile/"+user.ID.Hex(), f.token(t, user), gin.H{"bio": "gopher"})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := f.store.Users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "gopher", got.Bio)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)
	admin := f.seedUser(t, "root", true)

	w := f.do(t, http.MethodGet, "/api/users/profile", f.token(t, user), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/users/profile", f.token(t, admin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminDeletesUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.seedUser(t, "root", true)
	target := f.seedUser(t, "bob", false)

	// give bob a real profile photo so its asset is cleaned up too
	photo, err := f.media.Upload(ctx, strings.NewReader("avatar"))
	require.NoError(t, err)
	_, err = f.store.Users.SetProfilePhoto(ctx, target.ID, models.Image{URL: photo.URL, PublicID: photo.PublicID})
	require.NoError(t, err)

	post1 := f.seedPost(t, target.ID)
	post2 := f.seedPost(t, target.ID)
	f.seedComment(t, post1.ID, admin.ID)
	f.seedComment(t, post2.ID, admin.ID)
	f.seedComment(t, post2.ID, target.ID)

	w := f.do(t, http.MethodDelete, "/api/users/profile/"+target.ID.Hex(), f.token(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err = f.store.Users.FindByID(ctx, target.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	posts, err := f.store.Posts.Find(ctx, store.PostFilter{OwnerID: target.ID}, store.FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, posts)

	for _, postID := range []primitive.ObjectID{post1.ID, post2.ID} {
		comments, err := f.store.Comments.FindByPost(ctx, postID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	}

	// one media removal per post image plus one for the profile photo
	assert.ElementsMatch(t,
		[]string{post1.Image.PublicID, post2.Image.PublicID, photo.PublicID},
		f.media.Removed)
}

func TestStrangerCannotDeleteUser(t *testing.T) {
	f := newFixture(t)
	target := f.seedUser(t, "bob", false)
	stranger := f.seedUser(t, "mallory", false)

	w := f.do(t, http.MethodDelete, "/api/users/profile/"+target.ID.Hex(), f.token(t, stranger), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := f.store.Users.FindByID(context.Background(), target.ID)
	assert.NoError(t, err)
}

func TestProfilePhotoReplacementRemovesOldAfterUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice", false)

	old, err := f.media.Upload(ctx, strings.NewReader("old"))
	require.NoError(t, err)
	_, err = f.store.Users.SetProfilePhoto(ctx, user.ID, models.Image{URL: old.URL, PublicID: old.PublicID})
	require.NoError(t, err)

	w := f.doMultipart(t, http.MethodPost, "/api/users/profile/profile-photo-upload", f.token(t, user), nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := f.store.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, old.PublicID, got.ProfilePhoto.PublicID)
	assert.NotEmpty(t, got.ProfilePhoto.PublicID)
	assert.Contains(t, f.media.Removed, old.PublicID)
}

// ----- posts -----

func TestCreatePostRequiresImage(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)

	w := f.doMultipart(t, http.MethodPost, "/api/posts", f.token(t, user), map[string]string{
		"title":       "a title",
		"description": "a long enough description",
		"category":    "go",
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no image provided", message(t, w))
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)

	w := f.doMultipart(t, http.MethodPost, "/api/posts", f.token(t, user), map[string]string{
		"title":       "a title",
		"description": "a long enough description",
		"category":    "go",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	posts, err := f.store.Posts.Find(context.Background(), store.PostFilter{OwnerID: user.ID}, store.FindOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.NotEmpty(t, posts[0].Image.PublicID)
}

func TestNonOwnerCannotDeletePost(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "bob", false)
	stranger := f.seedUser(t, "mallory", false)
	post := f.seedPost(t, owner.ID)

	w := f.do(t, http.MethodDelete, "/api/posts/"+post.ID.Hex(), f.token(t, stranger), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, auth.ReasonForbidden, message(t, w))

	// no store mutation happened
	_, err := f.store.Posts.FindByID(context.Background(), post.ID)
	assert.NoError(t, err)
	assert.Empty(t, f.media.Removed)
}

func TestAdminCanDeleteAnyPost(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "bob", false)
	admin := f.seedUser(t, "root", true)
	post := f.seedPost(t, owner.ID)
	f.seedComment(t, post.ID, owner.ID)

	w := f.do(t, http.MethodDelete, "/api/posts/"+post.ID.Hex(), f.token(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := f.store.Posts.FindByID(context.Background(), post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	comments, err := f.store.Comments.FindByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestAdminCannotEditAnotherPost(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "bob", false)
	admin := f.seedUser(t, "root", true)
	post := f.seedPost(t, owner.ID)

	w := f.do(t, http.MethodPut, "/api/posts/"+post.ID.Hex(), f.token(t, admin), gin.H{"title": "edited"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	got, err := f.store.Posts.FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "a title", got.Title)
}

func TestToggleLikeTwiceReturnsToOriginalState(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "bob", false)
	liker := f.seedUser(t, "alice", false)
	post := f.seedPost(t, owner.ID)

	w := f.do(t, http.MethodPut, "/api/posts/like/"+post.ID.Hex(), f.token(t, liker), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "post liked", message(t, w))

	w = f.do(t, http.MethodPut, "/api/posts/like/"+post.ID.Hex(), f.token(t, liker), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "post unliked", message(t, w))

	got, err := f.store.Posts.FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
}

func TestToggleLikeMissingPost(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)

	w := f.do(t, http.MethodPut, "/api/posts/like/"+primitive.NewObjectID().Hex(), f.token(t, user), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPostsPagination(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "bob", false)
	for i := 0; i < 5; i++ {
		f.seedPost(t, owner.ID)
	}

	w := f.do(t, http.MethodGet, "/api/posts?pageNumber=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	assert.Len(t, posts, 2)
}

func TestUpdatePostImageReplacesAsset(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "bob", false)
	post := f.seedPost(t, owner.ID)
	oldID := post.Image.PublicID

	w := f.doMultipart(t, http.MethodPut, "/api/posts/update-image/"+post.ID.Hex(), f.token(t, owner), nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := f.store.Posts.FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldID, got.Image.PublicID)
	assert.Contains(t, f.media.Removed, oldID)
}

// ----- comments -----

func TestCreateCommentSnapshotsUsername(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "bob", false)
	commenter := f.seedUser(t, "alice", false)
	post := f.seedPost(t, owner.ID)

	w := f.do(t, http.MethodPost, "/api/comments", f.token(t, commenter), gin.H{
		"postId": post.ID.Hex(),
		"text":   "great write-up",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	comments, err := f.store.Comments.FindByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "alice", comments[0].Username)
	assert.Equal(t, commenter.ID, comments[0].UserID)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)

	w := f.do(t, http.MethodPost, "/api/comments", f.token(t, user), gin.H{
		"postId": primitive.NewObjectID().Hex(),
		"text":   "into the void",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCanDeleteButNotEditComment(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "bob", false)
	admin := f.seedUser(t, "root", true)
	post := f.seedPost(t, owner.ID)
	comment := f.seedComment(t, post.ID, owner.ID)

	w := f.do(t, http.MethodPut, "/api/comments/"+comment.ID.Hex(), f.token(t, admin), gin.H{"text": "rewritten"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodDelete, "/api/comments/"+comment.ID.Hex(), f.token(t, admin), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := f.store.Comments.FindByID(context.Background(), comment.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOwnerEditsOwnComment(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "bob", false)
	post := f.seedPost(t, owner.ID)
	comment := f.seedComment(t, post.ID, owner.ID)

	w := f.do(t, http.MethodPut, "/api/comments/"+comment.ID.Hex(), f.token(t, owner), gin.H{"text": "edited"})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := f.store.Comments.FindByID(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
}

func TestListCommentsRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)

	w := f.do(t, http.MethodGet, "/api/comments", f.token(t, user), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ----- categories -----

func TestCategoryLifecycleAdminOnly(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "alice", false)
	admin := f.seedUser(t, "root", true)

	w := f.do(t, http.MethodPost, "/api/categories", f.token(t, user), gin.H{"title": "go"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/api/categories", f.token(t, admin), gin.H{"title": "go"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// listing is public
	w = f.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/api/categories/"+created.ID.Hex(), f.token(t, user), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodDelete, "/api/categories/"+created.ID.Hex(), f.token(t, admin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
