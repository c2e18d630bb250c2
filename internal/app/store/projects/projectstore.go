// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flowdesk/flowdesk/internal/app/system/normalize"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

var (
	// ErrDuplicateSlug is returned when the slug is taken within the org.
	ErrDuplicateSlug = errors.New("a project with this slug already exists in the organization")
	errEmptyName     = errors.New("project name is required")
	errBadStatus     = errors.New(`status must be "ACTIVE", "ARCHIVED", or "DELETED"`)
)

func validStatus(st string) bool {
	switch st {
	case models.ProjectActive, models.ProjectArchived, models.ProjectDeleted:
		return true
	}
	return false
}

// EnsureIndexes creates the per-org unique slug index and list indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "org_id", Value: 1},
				{Key: "slug", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "workspace_id", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	})
	return err
}

// Create inserts a project in ACTIVE status.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	if p.Name == "" {
		return models.Project{}, errEmptyName
	}
	p.NameCI = normalize.Fold(p.Name)
	if p.Slug == "" {
		p.Slug = normalize.Slug(p.Name)
	} else {
		p.Slug = normalize.Slug(p.Slug)
	}
	p.Status = models.ProjectActive

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Project{}, ErrDuplicateSlug
		}
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a project scoped to its organization. Soft-deleted
// projects do not resolve.
func (s *Store) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	filter := bson.M{"_id": id, "org_id": orgID, "status": bson.M{"$ne": models.ProjectDeleted}}
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByWorkspace returns a workspace's projects. Status filters the
// result; empty status means everything except DELETED.
func (s *Store) ListByWorkspace(ctx context.Context, orgID, workspaceID primitive.ObjectID, status string) ([]models.Project, error) {
	filter := bson.M{"org_id": orgID, "workspace_id": workspaceID}
	if status != "" {
		if !validStatus(status) {
			return nil, errBadStatus
		}
		filter["status"] = status
	} else {
		filter["status"] = bson.M{"$ne": models.ProjectDeleted}
	}

	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds editable project fields.
type Update struct {
	Name        string
	Description string
	Icon        string
}

func (s *Store) Update(ctx context.Context, orgID, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now()}
	if upd.Name != "" {
		name := normalize.Name(upd.Name)
		set["name"] = name
		set["name_ci"] = normalize.Fold(name)
	}
	if upd.Description != "" {
		set["description"] = upd.Description
	}
	if upd.Icon != "" {
		set["icon"] = upd.Icon
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "org_id": orgID, "status": bson.M{"$ne": models.ProjectDeleted}},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetStatus transitions a project between ACTIVE, ARCHIVED, and DELETED.
// DELETED is a soft delete; tasks stay in place for history but the
// project stops resolving in reads.
func (s *Store) SetStatus(ctx context.Context, orgID, id primitive.ObjectID, status string) error {
	if !validStatus(status) {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "org_id": orgID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByWorkspace hard-deletes every project in a workspace, soft
// deleted ones included, and returns their ids so callers can cascade
// task removal.
func (s *Store) DeleteByWorkspace(ctx context.Context, orgID, workspaceID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"org_id": orgID, "workspace_id": workspaceID}
	cur, err := s.c.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	if _, err := s.c.DeleteMany(ctx, filter); err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteByOrg removes all projects of an organization.
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
