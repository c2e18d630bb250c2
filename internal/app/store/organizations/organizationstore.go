// internal/app/store/organizations/organizationstore.go
package organizationstore

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
	return &Store{c: db.Collection("organizations")}
}

var (
	// ErrDuplicateSlug is returned when the slug is already taken.
	ErrDuplicateSlug = errors.New("an organization with this slug already exists")
	errEmptySlug     = errors.New("organization slug is required")
	errBadPlan       = errors.New(`plan must be "FREE", "PRO", or "TEAM"`)
)

// EnsureIndexes creates the unique slug index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "name_ci", Value: 1}},
		},
	})
	return err
}

func validPlan(p string) bool {
	switch p {
	case models.PlanFree, models.PlanPro, models.PlanTeam:
		return true
	}
	return false
}

// Create inserts a new organization. Slug is globally unique.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	org.ID = primitive.NewObjectID()
	org.Name = normalize.Name(org.Name)
	org.NameCI = normalize.Fold(org.Name)
	org.Slug = normalize.Slug(org.Slug)
	if org.Slug == "" {
		return models.Organization{}, errEmptySlug
	}
	if org.Plan == "" {
		org.Plan = models.PlanFree
	}
	if !validPlan(org.Plan) {
		return models.Organization{}, errBadPlan
	}

	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateSlug
		}
		return models.Organization{}, err
	}
	return org, nil
}

// GetByID loads an organization by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		return nil, err
	}
	return &org, nil
}

// GetBySlug loads an organization by its public slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"slug": normalize.Slug(slug)}).Decode(&org); err != nil {
		return nil, err
	}
	return &org, nil
}

// Update holds editable organization fields.
type Update struct {
	Name    string
	LogoURL string
	Plan    string
}

// Update modifies the editable organization fields. The slug is immutable
// once assigned.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now()}
	if upd.Name != "" {
		name := normalize.Name(upd.Name)
		set["name"] = name
		set["name_ci"] = normalize.Fold(name)
	}
	if upd.LogoURL != "" {
		set["logo_url"] = upd.LogoURL
	}
	if upd.Plan != "" {
		if !validPlan(upd.Plan) {
			return errBadPlan
		}
		set["plan"] = upd.Plan
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the organization document. Callers cascade to the other
// collections inside a transaction.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetMany loads organizations by id, sorted by name.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}
