// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/app/system/normalize"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// DefaultTTL is how long an invitation stays redeemable.
const DefaultTTL = 7 * 24 * time.Hour

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invitations")}
}

var (
	// ErrNotRedeemable is returned when the invitation is expired or already accepted.
	ErrNotRedeemable = errors.New("invitation is expired or already used")
	errBadRole       = errors.New(`role must be "OWNER", "ADMIN", "MEMBER", or "VIEWER"`)
	errEmptyEmail    = errors.New("invitation email is required")
)

// EnsureIndexes creates the unique token index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "org_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	})
	return err
}

// Create issues a new invitation token for an email address. The token is
// returned to the inviter; delivery happens out of band.
func (s *Store) Create(ctx context.Context, orgID, invitedBy primitive.ObjectID, email, role string, ttl time.Duration) (models.Invitation, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.Invitation{}, errEmptyEmail
	}
	if !authz.IsValid(authz.Role(role)) {
		return models.Invitation{}, errBadRole
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	inv := models.Invitation{
		ID:        primitive.NewObjectID(),
		OrgID:     orgID,
		Email:     email,
		Role:      role,
		Token:     uuid.NewString(),
		InvitedBy: invitedBy,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// GetByID loads an invitation scoped to an organization.
func (s *Store) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "org_id": orgID}).Decode(&inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByToken loads an invitation by its token.
func (s *Store) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Redeem marks the invitation accepted. The conditional update makes
// redemption single-use even under concurrent accepts: only one caller
// sees the document with accepted_at unset.
func (s *Store) Redeem(ctx context.Context, token string) (*models.Invitation, error) {
	now := time.Now()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"token":       token,
			"accepted_at": bson.M{"$exists": false},
			"expires_at":  bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"accepted_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var inv models.Invitation
	if err := res.Decode(&inv); err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish unknown tokens from dead ones.
			if _, lookupErr := s.GetByToken(ctx, token); lookupErr == nil {
				return nil, ErrNotRedeemable
			}
			return nil, mongo.ErrNoDocuments
		}
		return nil, err
	}
	return &inv, nil
}

// ListPendingByOrg returns open invitations for an organization.
func (s *Store) ListPendingByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Invitation, error) {
	cur, err := s.c.Find(ctx,
		bson.M{
			"org_id":      orgID,
			"accepted_at": bson.M{"$exists": false},
			"expires_at":  bson.M{"$gt": time.Now()},
		},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var invs []models.Invitation
	if err := cur.All(ctx, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// Revoke deletes a pending invitation.
func (s *Store) Revoke(ctx context.Context, orgID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "org_id": orgID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByOrg removes all invitations of an organization.
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
