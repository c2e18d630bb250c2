// internal/app/store/activity/activitystore.go
package activitystore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// Actions recorded in the org feed.
const (
	ActionTaskCreated  = "task.created"
	ActionTaskUpdated  = "task.updated"
	ActionTaskMoved    = "task.moved"
	ActionTaskAssigned = "task.assigned"
	ActionTaskDeleted  = "task.deleted"

	ActionCommentAdded   = "comment.added"
	ActionCommentDeleted = "comment.deleted"

	ActionProjectCreated  = "project.created"
	ActionProjectUpdated  = "project.updated"
	ActionProjectArchived = "project.archived"
	ActionProjectDeleted  = "project.deleted"

	ActionMemberJoined      = "member.joined"
	ActionMemberRemoved     = "member.removed"
	ActionMemberRoleChanged = "member.role_changed"

	ActionInviteSent    = "invite.sent"
	ActionInviteRevoked = "invite.revoked"
)

// QueryFilter narrows a feed query. Zero values are ignored.
type QueryFilter struct {
	TaskID    *primitive.ObjectID
	ProjectID *primitive.ObjectID
	UserID    *primitive.ObjectID
	Action    string
	Since     *time.Time
	Limit     int64
}

// Store is the append-only activity feed.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "org_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "task_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	})
	return err
}

// Log appends an entry to the feed.
func (s *Store) Log(ctx context.Context, entry models.ActivityEntry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// Query returns feed entries for an org, newest first.
func (s *Store) Query(ctx context.Context, orgID primitive.ObjectID, filter QueryFilter) ([]models.ActivityEntry, error) {
	query := bson.M{"org_id": orgID}
	if filter.TaskID != nil {
		query["task_id"] = filter.TaskID
	}
	if filter.ProjectID != nil {
		query["project_id"] = filter.ProjectID
	}
	if filter.UserID != nil {
		query["user_id"] = filter.UserID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.Since != nil {
		query["created_at"] = bson.M{"$gte": *filter.Since}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	cur, err := s.c.Find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.ActivityEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) Count(ctx context.Context, orgID primitive.ObjectID, filter QueryFilter) (int64, error) {
	query := bson.M{"org_id": orgID}
	if filter.TaskID != nil {
		query["task_id"] = filter.TaskID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	return s.c.CountDocuments(ctx, query)
}

func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
