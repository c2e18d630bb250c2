// internal/app/store/workspaces/workspacestore.go
package workspacestore

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
	return &Store{c: db.Collection("workspaces")}
}

var (
	// ErrDuplicateSlug is returned when the slug is taken within the org.
	ErrDuplicateSlug = errors.New("a workspace with this slug already exists in the organization")
	errEmptyName     = errors.New("workspace name is required")
)

// EnsureIndexes creates the per-org unique slug index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "org_id", Value: 1},
			{Key: "slug", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create inserts a workspace. Slug defaults to the folded name.
func (s *Store) Create(ctx context.Context, ws models.Workspace) (models.Workspace, error) {
	ws.ID = primitive.NewObjectID()
	ws.Name = normalize.Name(ws.Name)
	if ws.Name == "" {
		return models.Workspace{}, errEmptyName
	}
	ws.NameCI = normalize.Fold(ws.Name)
	if ws.Slug == "" {
		ws.Slug = normalize.Slug(ws.Name)
	} else {
		ws.Slug = normalize.Slug(ws.Slug)
	}

	now := time.Now()
	ws.CreatedAt = now
	ws.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ws); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Workspace{}, ErrDuplicateSlug
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

// GetByID loads a workspace scoped to its organization. The org filter
// keeps a guessed id in another tenant from resolving.
func (s *Store) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "org_id": orgID}).Decode(&ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// ListByOrg returns the organization's workspaces sorted by name.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Workspace, error) {
	cur, err := s.c.Find(ctx, bson.M{"org_id": orgID},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Workspace
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds editable workspace fields.
type Update struct {
	Name  string
	Color string
}

func (s *Store) Update(ctx context.Context, orgID, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now()}
	if upd.Name != "" {
		name := normalize.Name(upd.Name)
		set["name"] = name
		set["name_ci"] = normalize.Fold(name)
	}
	if upd.Color != "" {
		set["color"] = upd.Color
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "org_id": orgID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a workspace. Callers cascade project and task deletion.
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

// DeleteByOrg removes all workspaces of an organization.
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
