// internal/app/store/comments/commentstore.go
package commentstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// Store manages task comments. Bodies are stored as sanitized HTML;
// sanitizing is the caller's job so the store never re-escapes.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("comments")}
}

var errEmptyBody = errors.New("comment body is required")

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "task_id", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	return err
}

// Create appends a comment to a task's thread.
func (s *Store) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	if comment.Body == "" {
		return models.Comment{}, errEmptyBody
	}
	comment.ID = primitive.NewObjectID()
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, comment); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func (s *Store) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "org_id": orgID}).Decode(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByTask returns a task's comments oldest first.
func (s *Store) ListByTask(ctx context.Context, orgID, taskID primitive.ObjectID) ([]models.Comment, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"org_id": orgID, "task_id": taskID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateBody replaces a comment's body. Only the author may edit, so the
// filter includes user_id.
func (s *Store) UpdateBody(ctx context.Context, orgID, id, userID primitive.ObjectID, body string) (*models.Comment, error) {
	if body == "" {
		return nil, errEmptyBody
	}
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "org_id": orgID, "user_id": userID},
		bson.M{"$set": bson.M{"body": body, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var comment models.Comment
	if err := res.Decode(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *Store) Delete(ctx context.Context, orgID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "org_id": orgID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByTask removes a task's whole thread.
func (s *Store) DeleteByTask(ctx context.Context, orgID, taskID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID, "task_id": taskID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByTasks removes all comments on the given tasks. Used by the
// workspace delete cascade, where comments outlive their tasks otherwise.
func (s *Store) DeleteByTasks(ctx context.Context, orgID primitive.ObjectID, taskIDs []primitive.ObjectID) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID, "task_id": bson.M{"$in": taskIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
