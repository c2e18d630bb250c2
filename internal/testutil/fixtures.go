// internal/testutil/fixtures.go

package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/flowdesk/flowdesk/internal/app/system/normalize"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// WithChiURLParam attaches a chi URL parameter to the request so handlers
// reading chi.URLParam work without a full router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts domain documents directly, bypassing the stores, so
// tests can arrange state without exercising store validation.
type Fixtures struct {
	t  *testing.T
	db *mongo.Database
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	now := time.Now()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: normalize.Fold(fullName),
		Email:      normalize.Email(email),
		EmailCI:    normalize.Fold(email),
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("fixture CreateUser: %v", err)
	}
	return u
}

func (f *Fixtures) CreateOrganization(ctx context.Context, name, slug string, createdBy primitive.ObjectID) models.Organization {
	f.t.Helper()
	now := time.Now()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    normalize.Fold(name),
		Slug:      normalize.Slug(slug),
		Plan:      models.PlanFree,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("fixture CreateOrganization: %v", err)
	}
	return org
}

func (f *Fixtures) CreateOrgMember(ctx context.Context, orgID, userID primitive.ObjectID, role string) models.OrgMember {
	f.t.Helper()
	m := models.OrgMember{
		ID:       primitive.NewObjectID(),
		OrgID:    orgID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	if _, err := f.db.Collection("org_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("fixture CreateOrgMember: %v", err)
	}
	return m
}

func (f *Fixtures) CreateWorkspace(ctx context.Context, orgID primitive.ObjectID, name string) models.Workspace {
	f.t.Helper()
	now := time.Now()
	ws := models.Workspace{
		ID:        primitive.NewObjectID(),
		OrgID:     orgID,
		Name:      name,
		NameCI:    normalize.Fold(name),
		Slug:      normalize.Slug(name),
		Color:     "#4f46e5",
		CreatedBy: primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("workspaces").InsertOne(ctx, ws); err != nil {
		f.t.Fatalf("fixture CreateWorkspace: %v", err)
	}
	return ws
}

func (f *Fixtures) CreateProject(ctx context.Context, orgID, workspaceID primitive.ObjectID, name string) models.Project {
	f.t.Helper()
	now := time.Now()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		OrgID:       orgID,
		Name:        name,
		NameCI:      normalize.Fold(name),
		Slug:        normalize.Slug(name),
		Status:      models.ProjectActive,
		CreatedBy:   primitive.NewObjectID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("fixture CreateProject: %v", err)
	}
	return p
}

func (f *Fixtures) CreateTask(ctx context.Context, orgID, projectID primitive.ObjectID, title, status string, position int) models.Task {
	f.t.Helper()
	now := time.Now()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		OrgID:     orgID,
		Title:     title,
		Status:    status,
		Priority:  models.PriorityNone,
		Position:  position,
		CreatedBy: primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("fixture CreateTask: %v", err)
	}
	return task
}

func (f *Fixtures) CreateInvitation(ctx context.Context, orgID, invitedBy primitive.ObjectID, email, role string, expiresAt time.Time) models.Invitation {
	f.t.Helper()
	inv := models.Invitation{
		ID:        primitive.NewObjectID(),
		OrgID:     orgID,
		Email:     normalize.Email(email),
		Role:      role,
		Token:     uuid.NewString(),
		InvitedBy: invitedBy,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if _, err := f.db.Collection("invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("fixture CreateInvitation: %v", err)
	}
	return inv
}
