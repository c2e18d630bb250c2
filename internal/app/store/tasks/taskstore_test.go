// internal/app/store/tasks/taskstore_test.go
package taskstore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/domain/models"
	"github.com/flowdesk/flowdesk/internal/testutil"
)

func newBoard(t *testing.T, s *Store, orgID, projectID, userID primitive.ObjectID, titles map[string][]string) map[string]models.Task {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	tasks := make(map[string]models.Task)
	for _, status := range models.TaskStatuses {
		for _, title := range titles[status] {
			task, err := s.Create(ctx, models.Task{
				ProjectID: projectID,
				OrgID:     orgID,
				Title:     title,
				Status:    status,
				CreatedBy: userID,
			})
			if err != nil {
				t.Fatalf("Create(%q): %v", title, err)
			}
			tasks[title] = task
		}
	}
	return tasks
}

func boardState(t *testing.T, s *Store, orgID, projectID primitive.ObjectID) map[string][2]interface{} {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	tasks, err := s.ListByProject(ctx, orgID, projectID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	state := make(map[string][2]interface{}, len(tasks))
	for _, task := range tasks {
		state[task.Title] = [2]interface{}{task.Status, task.Position}
	}
	return state
}

func TestCreateAppendsToColumn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	first, err := s.Create(ctx, models.Task{
		ProjectID: projectID, OrgID: orgID, Title: "  Write docs  ", CreatedBy: userID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Title != "Write docs" {
		t.Errorf("title = %q, want trimmed", first.Title)
	}
	if first.Status != models.StatusTodo {
		t.Errorf("status = %q, want default TODO", first.Status)
	}
	if first.Priority != models.PriorityNone {
		t.Errorf("priority = %q, want default NONE", first.Priority)
	}
	if first.Position != 0 {
		t.Errorf("position = %d, want 0", first.Position)
	}

	second, err := s.Create(ctx, models.Task{
		ProjectID: projectID, OrgID: orgID, Title: "Ship it", CreatedBy: userID,
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.Position != 1 {
		t.Errorf("second position = %d, want 1", second.Position)
	}

	other, err := s.Create(ctx, models.Task{
		ProjectID: projectID, OrgID: orgID, Title: "Review PR",
		Status: models.StatusInReview, CreatedBy: userID,
	})
	if err != nil {
		t.Fatalf("Create in other column: %v", err)
	}
	if other.Position != 0 {
		t.Errorf("other column position = %d, want 0", other.Position)
	}
}

func TestCreateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := models.Task{
		ProjectID: primitive.NewObjectID(),
		OrgID:     primitive.NewObjectID(),
		CreatedBy: primitive.NewObjectID(),
	}

	tests := []struct {
		name string
		mut  func(*models.Task)
	}{
		{"empty title", func(tk *models.Task) { tk.Title = "   " }},
		{"bad status", func(tk *models.Task) { tk.Title = "x"; tk.Status = "BACKLOG" }},
		{"bad priority", func(tk *models.Task) { tk.Title = "x"; tk.Priority = "ASAP" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := base
			tt.mut(&task)
			if _, err := s.Create(ctx, task); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGetByIDOrgScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	task, err := s.Create(ctx, models.Task{
		ProjectID: primitive.NewObjectID(), OrgID: orgID,
		Title: "Secret work", CreatedBy: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := s.GetByID(ctx, orgID, task.ID); err != nil {
		t.Errorf("GetByID own org: %v", err)
	}
	if _, err := s.GetByID(ctx, primitive.NewObjectID(), task.ID); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID other org: got %v, want mongo.ErrNoDocuments", err)
	}
}

func TestUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	task, err := s.Create(ctx, models.Task{
		ProjectID: primitive.NewObjectID(), OrgID: orgID,
		Title: "Draft", CreatedBy: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Final"
	prio := models.PriorityHigh
	got, err := s.Update(ctx, orgID, task.ID, Update{Title: &title, Priority: &prio})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "Final" || got.Priority != models.PriorityHigh {
		t.Errorf("got title=%q priority=%q", got.Title, got.Priority)
	}
	if got.Status != task.Status || got.Position != task.Position {
		t.Errorf("Update touched board placement: %q/%d", got.Status, got.Position)
	}

	bad := "LATER"
	if _, err := s.Update(ctx, orgID, task.ID, Update{Priority: &bad}); err == nil {
		t.Error("bad priority accepted")
	}
	if _, err := s.Update(ctx, orgID, primitive.NewObjectID(), Update{Title: &title}); err != mongo.ErrNoDocuments {
		t.Errorf("missing task: got %v, want mongo.ErrNoDocuments", err)
	}
}

func TestAssign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	task, err := s.Create(ctx, models.Task{
		ProjectID: primitive.NewObjectID(), OrgID: orgID,
		Title: "Fix flaky test", CreatedBy: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	assignee := primitive.NewObjectID()
	got, err := s.Assign(ctx, orgID, task.ID, &assignee)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got.AssigneeID == nil || *got.AssigneeID != assignee {
		t.Errorf("assignee = %v, want %s", got.AssigneeID, assignee.Hex())
	}

	got, err = s.Assign(ctx, orgID, task.ID, nil)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if got.AssigneeID != nil {
		t.Errorf("assignee after unassign = %v, want nil", got.AssigneeID)
	}
}

func TestMoveCrossColumn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	tasks := newBoard(t, s, orgID, projectID, userID, map[string][]string{
		models.StatusTodo:       {"a", "b", "c"},
		models.StatusInProgress: {"x", "y"},
	})

	// Move "b" (TODO pos 1) to IN_PROGRESS pos 1, between x and y.
	moved, err := s.Move(ctx, orgID, tasks["b"].ID, models.StatusInProgress, 1)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.Status != models.StatusInProgress || moved.Position != 1 {
		t.Fatalf("moved to %q/%d, want IN_PROGRESS/1", moved.Status, moved.Position)
	}

	want := map[string][2]interface{}{
		"a": {models.StatusTodo, 0},
		"c": {models.StatusTodo, 1},
		"x": {models.StatusInProgress, 0},
		"b": {models.StatusInProgress, 1},
		"y": {models.StatusInProgress, 2},
	}
	got := boardState(t, s, orgID, projectID)
	for title, exp := range want {
		if got[title] != exp {
			t.Errorf("%s = %v, want %v", title, got[title], exp)
		}
	}
}

func TestMoveSameColumn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	t.Run("down", func(t *testing.T) {
		projectID := primitive.NewObjectID()
		tasks := newBoard(t, s, orgID, projectID, userID, map[string][]string{
			models.StatusTodo: {"a", "b", "c", "d"},
		})
		if _, err := s.Move(ctx, orgID, tasks["a"].ID, models.StatusTodo, 2); err != nil {
			t.Fatalf("Move: %v", err)
		}
		want := map[string][2]interface{}{
			"b": {models.StatusTodo, 0},
			"c": {models.StatusTodo, 1},
			"a": {models.StatusTodo, 2},
			"d": {models.StatusTodo, 3},
		}
		got := boardState(t, s, orgID, projectID)
		for title, exp := range want {
			if got[title] != exp {
				t.Errorf("%s = %v, want %v", title, got[title], exp)
			}
		}
	})

	t.Run("up", func(t *testing.T) {
		projectID := primitive.NewObjectID()
		tasks := newBoard(t, s, orgID, projectID, userID, map[string][]string{
			models.StatusTodo: {"a", "b", "c", "d"},
		})
		if _, err := s.Move(ctx, orgID, tasks["d"].ID, models.StatusTodo, 1); err != nil {
			t.Fatalf("Move: %v", err)
		}
		want := map[string][2]interface{}{
			"a": {models.StatusTodo, 0},
			"d": {models.StatusTodo, 1},
			"b": {models.StatusTodo, 2},
			"c": {models.StatusTodo, 3},
		}
		got := boardState(t, s, orgID, projectID)
		for title, exp := range want {
			if got[title] != exp {
				t.Errorf("%s = %v, want %v", title, got[title], exp)
			}
		}
	})

	t.Run("no-op", func(t *testing.T) {
		projectID := primitive.NewObjectID()
		tasks := newBoard(t, s, orgID, projectID, userID, map[string][]string{
			models.StatusTodo: {"a", "b", "c"},
		})
		if _, err := s.Move(ctx, orgID, tasks["b"].ID, models.StatusTodo, 1); err != nil {
			t.Fatalf("Move: %v", err)
		}
		want := map[string][2]interface{}{
			"a": {models.StatusTodo, 0},
			"b": {models.StatusTodo, 1},
			"c": {models.StatusTodo, 2},
		}
		got := boardState(t, s, orgID, projectID)
		for title, exp := range want {
			if got[title] != exp {
				t.Errorf("%s = %v, want %v", title, got[title], exp)
			}
		}
	})
}

func TestMoveSetsCompletedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	task, err := s.Create(ctx, models.Task{
		ProjectID: primitive.NewObjectID(), OrgID: orgID,
		Title: "Finish line", CreatedBy: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done, err := s.Move(ctx, orgID, task.ID, models.StatusDone, 0)
	if err != nil {
		t.Fatalf("Move to DONE: %v", err)
	}
	if done.CompletedAt == nil {
		t.Error("CompletedAt not set on move to DONE")
	}

	back, err := s.Move(ctx, orgID, task.ID, models.StatusTodo, 0)
	if err != nil {
		t.Fatalf("Move back: %v", err)
	}
	if back.CompletedAt != nil {
		t.Error("CompletedAt not cleared on move out of DONE")
	}
}

func TestMoveValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	if _, err := s.Move(ctx, orgID, primitive.NewObjectID(), "BACKLOG", 0); err == nil {
		t.Error("bad status accepted")
	}
	if _, err := s.Move(ctx, orgID, primitive.NewObjectID(), models.StatusTodo, -1); err == nil {
		t.Error("negative position accepted")
	}
	if _, err := s.Move(ctx, orgID, primitive.NewObjectID(), models.StatusTodo, 0); err != mongo.ErrNoDocuments {
		t.Errorf("missing task: got %v, want mongo.ErrNoDocuments", err)
	}
}

func TestDeleteClosesGap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	tasks := newBoard(t, s, orgID, projectID, primitive.NewObjectID(), map[string][]string{
		models.StatusTodo: {"a", "b", "c"},
	})

	if err := s.Delete(ctx, orgID, tasks["b"].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := map[string][2]interface{}{
		"a": {models.StatusTodo, 0},
		"c": {models.StatusTodo, 1},
	}
	got := boardState(t, s, orgID, projectID)
	if len(got) != 2 {
		t.Fatalf("board has %d tasks, want 2", len(got))
	}
	for title, exp := range want {
		if got[title] != exp {
			t.Errorf("%s = %v, want %v", title, got[title], exp)
		}
	}

	if err := s.Delete(ctx, orgID, tasks["b"].ID); err != mongo.ErrNoDocuments {
		t.Errorf("second delete: got %v, want mongo.ErrNoDocuments", err)
	}
}
