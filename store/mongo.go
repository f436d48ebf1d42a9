package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/models"
)

// NewMongo wires the collection-backed stores against db.
func NewMongo(db *mongo.Database) *Store {
	return &Store{
		Users:      &mongoUsers{coll: db.Collection("users")},
		Posts:      &mongoPosts{coll: db.Collection("posts")},
		Comments:   &mongoComments{coll: db.Collection("comments")},
		Categories: &mongoCategories{coll: db.Collection("categories")},
	}
}

func translateErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

// ----- users -----

type mongoUsers struct {
	coll *mongo.Collection
}

func (s *mongoUsers) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, user)
	return err
}

func (s *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *mongoUsers) FindAll(ctx context.Context) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *mongoUsers) UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Password != nil {
		set["password"] = *patch.Password
	}
	if patch.Bio != nil {
		set["bio"] = *patch.Bio
	}

	var user models.User
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *mongoUsers) SetProfilePhoto(ctx context.Context, id primitive.ObjectID, photo models.Image) (*models.User, error) {
	var user models.User
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"profilePhoto": photo, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *mongoUsers) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUsers) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

// ----- posts -----

type mongoPosts struct {
	coll *mongo.Collection
}

func (s *mongoPosts) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, post)
	return err
}

func (s *mongoPosts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		return nil, translateErr(err)
	}
	return &post, nil
}

func (s *mongoPosts) Find(ctx context.Context, filter PostFilter, opts FindOptions) ([]models.Post, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if !filter.OwnerID.IsZero() {
		query["user"] = filter.OwnerID
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := s.coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *mongoPosts) UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}

	var post models.Post
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		return nil, translateErr(err)
	}
	return &post, nil
}

func (s *mongoPosts) SetImage(ctx context.Context, id primitive.ObjectID, image models.Image) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"image": image, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		return nil, translateErr(err)
	}
	return &post, nil
}

// ToggleLike flips like membership in one server-side update. The
// aggregation-pipeline update evaluates membership and rewrites the array
// atomically, so two concurrent toggles for the same pair cannot both
// observe "not liked" and double-add.
func (s *mongoPosts) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	likes := bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}
	update := bson.A{
		bson.M{"$set": bson.M{
			"likes": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{userID, likes}},
				bson.M{"$setDifference": bson.A{likes, bson.A{userID}}},
				bson.M{"$concatArrays": bson.A{likes, bson.A{userID}}},
			}},
			"updatedAt": "$$NOW",
		}},
	}

	var post models.Post
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": postID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		return false, translateErr(err)
	}
	return post.LikedBy(userID), nil
}

func (s *mongoPosts) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoPosts) DeleteManyByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"user": ownerID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (s *mongoPosts) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

// ----- comments -----

type mongoComments struct {
	coll *mongo.Collection
}

func (s *mongoComments) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, comment)
	return err
}

func (s *mongoComments) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		return nil, translateErr(err)
	}
	return &comment, nil
}

func (s *mongoComments) FindAll(ctx context.Context) ([]models.Comment, error) {
	return s.find(ctx, bson.M{})
}

func (s *mongoComments) FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	return s.find(ctx, bson.M{"postId": postID})
}

func (s *mongoComments) find(ctx context.Context, query bson.M) ([]models.Comment, error) {
	cursor, err := s.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *mongoComments) UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.CommentPatch) (*models.Comment, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}

	var comment models.Comment
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&comment)
	if err != nil {
		return nil, translateErr(err)
	}
	return &comment, nil
}

func (s *mongoComments) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoComments) DeleteManyByPost(ctx context.Context, postIDs ...primitive.ObjectID) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	result, err := s.coll.DeleteMany(ctx, bson.M{"postId": bson.M{"$in": postIDs}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (s *mongoComments) DeleteManyByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"user": ownerID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// ----- categories -----

type mongoCategories struct {
	coll *mongo.Collection
}

func (s *mongoCategories) Create(ctx context.Context, category *models.Category) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, category)
	return err
}

func (s *mongoCategories) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		return nil, translateErr(err)
	}
	return &category, nil
}

func (s *mongoCategories) FindAll(ctx context.Context) ([]models.Category, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *mongoCategories) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
