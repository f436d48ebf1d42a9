package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

// NewMemory builds a fully in-memory Store. It backs the test suites and
// local development without a running MongoDB. All operations are guarded
// by a single mutex, so per-document updates (including ToggleLike) are
// atomic just as Mongo's single-document updates are.
func NewMemory() *Store {
	m := &memory{
		users:      map[primitive.ObjectID]models.User{},
		posts:      map[primitive.ObjectID]models.Post{},
		comments:   map[primitive.ObjectID]models.Comment{},
		categories: map[primitive.ObjectID]models.Category{},
	}
	return &Store{
		Users:      (*memUsers)(m),
		Posts:      (*memPosts)(m),
		Comments:   (*memComments)(m),
		Categories: (*memCategories)(m),
	}
}

type memory struct {
	mu         sync.Mutex
	users      map[primitive.ObjectID]models.User
	posts      map[primitive.ObjectID]models.Post
	comments   map[primitive.ObjectID]models.Comment
	categories map[primitive.ObjectID]models.Category
}

// ----- users -----

type memUsers memory

func (s *memUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memUsers) FindAll(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *memUsers) UpdateByID(_ context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Password != nil {
		user.Password = *patch.Password
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return &user, nil
}

func (s *memUsers) SetProfilePhoto(_ context.Context, id primitive.ObjectID, photo models.Image) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user.ProfilePhoto = photo
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return &user, nil
}

func (s *memUsers) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memUsers) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

// ----- posts -----

type memPosts memory

func (s *memPosts) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	s.posts[post.ID] = clonePost(*post)
	return nil
}

func (s *memPosts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := clonePost(post)
	return &p, nil
}

func (s *memPosts) Find(_ context.Context, filter PostFilter, opts FindOptions) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []models.Post
	for _, post := range s.posts {
		if filter.Category != "" && post.Category != filter.Category {
			continue
		}
		if !filter.OwnerID.IsZero() && post.UserID != filter.OwnerID {
			continue
		}
		posts = append(posts, clonePost(post))
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	if opts.Skip > 0 {
		if opts.Skip >= int64(len(posts)) {
			return []models.Post{}, nil
		}
		posts = posts[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < int64(len(posts)) {
		posts = posts[:opts.Limit]
	}
	return posts, nil
}

func (s *memPosts) UpdateByID(_ context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Description != nil {
		post.Description = *patch.Description
	}
	if patch.Category != nil {
		post.Category = *patch.Category
	}
	post.UpdatedAt = time.Now()
	s.posts[id] = post
	p := clonePost(post)
	return &p, nil
}

func (s *memPosts) SetImage(_ context.Context, id primitive.ObjectID, image models.Image) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	post.Image = image
	post.UpdatedAt = time.Now()
	s.posts[id] = post
	p := clonePost(post)
	return &p, nil
}

func (s *memPosts) ToggleLike(_ context.Context, postID, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return false, ErrNotFound
	}
	for i, id := range post.Likes {
		if id == userID {
			post.Likes = append(post.Likes[:i:i], post.Likes[i+1:]...)
			post.UpdatedAt = time.Now()
			s.posts[postID] = post
			return false, nil
		}
	}
	post.Likes = append(post.Likes[:len(post.Likes):len(post.Likes)], userID)
	post.UpdatedAt = time.Now()
	s.posts[postID] = post
	return true, nil
}

func (s *memPosts) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *memPosts) DeleteManyByOwner(_ context.Context, ownerID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, post := range s.posts {
		if post.UserID == ownerID {
			delete(s.posts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memPosts) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.posts)), nil
}

func clonePost(p models.Post) models.Post {
	p.Likes = append([]primitive.ObjectID(nil), p.Likes...)
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	return p
}

// ----- comments -----

type memComments memory

func (s *memComments) Create(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	s.comments[comment.ID] = *comment
	return nil
}

func (s *memComments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &comment, nil
}

func (s *memComments) FindAll(_ context.Context) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(models.Comment) bool { return true }), nil
}

func (s *memComments) FindByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(c models.Comment) bool { return c.PostID == postID }), nil
}

func (s *memComments) collect(keep func(models.Comment) bool) []models.Comment {
	comments := []models.Comment{}
	for _, comment := range s.comments {
		if keep(comment) {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	return comments
}

func (s *memComments) UpdateByID(_ context.Context, id primitive.ObjectID, patch models.CommentPatch) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Text != nil {
		comment.Text = *patch.Text
	}
	comment.UpdatedAt = time.Now()
	s.comments[id] = comment
	return &comment, nil
}

func (s *memComments) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *memComments) DeleteManyByPost(_ context.Context, postIDs ...primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, comment := range s.comments {
		for _, postID := range postIDs {
			if comment.PostID == postID {
				delete(s.comments, id)
				deleted++
				break
			}
		}
	}
	return deleted, nil
}

func (s *memComments) DeleteManyByOwner(_ context.Context, ownerID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, comment := range s.comments {
		if comment.UserID == ownerID {
			delete(s.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

// ----- categories -----

type memCategories memory

func (s *memCategories) Create(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	s.categories[category.ID] = *category
	return nil
}

func (s *memCategories) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &category, nil
}

func (s *memCategories) FindAll(_ context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories := []models.Category{}
	for _, category := range s.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].CreatedAt.After(categories[j].CreatedAt) })
	return categories, nil
}

func (s *memCategories) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	return nil
}
