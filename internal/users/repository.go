package users

import (
	"context"
	"errors"
	"time"

	"github.com/versegallery/versegallery/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrNotFound      = errors.New("user not found")
	ErrBadPassword   = errors.New("bad password")
)

// Repository defines persistence operations for users. MergeMetadata must be
// atomic with respect to concurrent reads of the same username: readers see
// either the pre-merge or the fully merged record.
type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	MergeMetadata(ctx context.Context, username string, partial models.Metadata) (*models.User, error)
}

// MongoRepository implements Repository using MongoDB. Usernames are the
// document _id, so uniqueness is enforced by the collection itself.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *MongoRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": username}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoRepository) MergeMetadata(ctx context.Context, username string, partial models.Metadata) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if partial.EmailVerified != nil {
		set["metadata.emailVerified"] = *partial.EmailVerified
	}
	if partial.Country != nil {
		set["metadata.country"] = *partial.Country
	}
	if partial.DisplayName != nil {
		set["metadata.displayName"] = *partial.DisplayName
	}
	if partial.Color != nil {
		set["metadata.color"] = *partial.Color
	}
	if partial.Bio != nil {
		set["metadata.bio"] = *partial.Bio
	}
	if partial.ProfilePicture != nil {
		set["metadata.profilePicture"] = *partial.ProfilePicture
	}
	for k, v := range partial.Extra {
		set["metadata.extra."+k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": username}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}
