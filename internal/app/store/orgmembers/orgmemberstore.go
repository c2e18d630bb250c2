// internal/app/store/orgmembers/orgmemberstore.go
package orgmemberstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("org_members")}
}

var (
	// ErrDuplicateMembership is returned when the user already belongs to the org.
	ErrDuplicateMembership = errors.New("user is already a member of this organization")
	// ErrLastOwner is returned when removing or demoting the org's only owner.
	ErrLastOwner = errors.New("organization must keep at least one owner")
	errBadRole   = errors.New(`role must be "OWNER", "ADMIN", "MEMBER", or "VIEWER"`)
)

// EnsureIndexes creates the unique (org, user) index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "org_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	return err
}

// Add creates a membership. One document per (org, user).
func (s *Store) Add(ctx context.Context, orgID, userID primitive.ObjectID, role string, invitedBy *primitive.ObjectID) (models.OrgMember, error) {
	if !authz.IsValid(authz.Role(role)) {
		return models.OrgMember{}, errBadRole
	}
	m := models.OrgMember{
		ID:        primitive.NewObjectID(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      role,
		InvitedBy: invitedBy,
		JoinedAt:  time.Now(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.OrgMember{}, ErrDuplicateMembership
		}
		return models.OrgMember{}, err
	}
	return m, nil
}

// Get loads the membership for (orgID, userID).
func (s *Store) Get(ctx context.Context, orgID, userID primitive.ObjectID) (*models.OrgMember, error) {
	var m models.OrgMember
	if err := s.c.FindOne(ctx, bson.M{"org_id": orgID, "user_id": userID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByOrg returns all memberships in an organization.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.OrgMember, error) {
	cur, err := s.c.Find(ctx, bson.M{"org_id": orgID},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var members []models.OrgMember
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// ListByUser returns all of a user's memberships.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrgMember, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var members []models.OrgMember
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// ListMemberships adapts ListByUser to the authorization middleware's
// string-keyed view. The userID is the hex form from the session.
func (s *Store) ListMemberships(ctx context.Context, userID string) ([]authz.Membership, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}
	members, err := s.ListByUser(ctx, oid)
	if err != nil {
		return nil, err
	}
	out := make([]authz.Membership, 0, len(members))
	for _, m := range members {
		out = append(out, authz.Membership{
			OrgID: m.OrgID.Hex(),
			Role:  authz.Role(m.Role),
		})
	}
	return out, nil
}

// CountOwners returns how many members hold OWNER in the org.
func (s *Store) CountOwners(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"org_id": orgID, "role": string(authz.RoleOwner)})
}

// UpdateRole changes a member's role. Demoting the only owner fails with
// ErrLastOwner.
func (s *Store) UpdateRole(ctx context.Context, orgID, userID primitive.ObjectID, role string) error {
	if !authz.IsValid(authz.Role(role)) {
		return errBadRole
	}

	var m models.OrgMember
	if err := s.c.FindOne(ctx, bson.M{"org_id": orgID, "user_id": userID}).Decode(&m); err != nil {
		return err
	}
	if m.Role == string(authz.RoleOwner) && role != string(authz.RoleOwner) {
		owners, err := s.CountOwners(ctx, orgID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	_, err := s.c.UpdateOne(ctx,
		bson.M{"org_id": orgID, "user_id": userID},
		bson.M{"$set": bson.M{"role": role}})
	return err
}

// Remove deletes a membership. Removing the only owner fails with
// ErrLastOwner.
func (s *Store) Remove(ctx context.Context, orgID, userID primitive.ObjectID) error {
	var m models.OrgMember
	if err := s.c.FindOne(ctx, bson.M{"org_id": orgID, "user_id": userID}).Decode(&m); err != nil {
		return err
	}
	if m.Role == string(authz.RoleOwner) {
		owners, err := s.CountOwners(ctx, orgID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	_, err := s.c.DeleteOne(ctx, bson.M{"org_id": orgID, "user_id": userID})
	return err
}

// DeleteByOrg removes all memberships of an organization. Used by the
// org delete cascade.
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByOrg returns the member count, optionally filtered by role.
func (s *Store) CountByOrg(ctx context.Context, orgID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"org_id": orgID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}
