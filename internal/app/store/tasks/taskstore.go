// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flowdesk/flowdesk/internal/app/system/normalize"
	"github.com/flowdesk/flowdesk/internal/app/system/txn"
	"github.com/flowdesk/flowdesk/internal/domain/models"
	"go.uber.org/zap"
)

type Store struct {
	db  *mongo.Database
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{db: db, c: db.Collection("tasks"), log: log}
}

var (
	errEmptyTitle  = errors.New("task title is required")
	errBadStatus   = errors.New(`status must be "TODO", "IN_PROGRESS", "IN_REVIEW", or "DONE"`)
	errBadPriority = errors.New(`priority must be "URGENT", "HIGH", "MEDIUM", "LOW", or "NONE"`)
	errBadPosition = errors.New("position must be >= 0")
)

// EnsureIndexes creates the board ordering index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "position", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "assignee_id", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	})
	return err
}

// Create inserts a task at the bottom of its status column.
func (s *Store) Create(ctx context.Context, task models.Task) (models.Task, error) {
	task.ID = primitive.NewObjectID()
	task.Title = normalize.Name(task.Title)
	if task.Title == "" {
		return models.Task{}, errEmptyTitle
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if !models.IsValidTaskStatus(task.Status) {
		return models.Task{}, errBadStatus
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNone
	}
	if !models.IsValidTaskPriority(task.Priority) {
		return models.Task{}, errBadPriority
	}

	n, err := s.c.CountDocuments(ctx, bson.M{
		"project_id": task.ProjectID,
		"status":     task.Status,
	})
	if err != nil {
		return models.Task{}, err
	}
	task.Position = int(n)

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// GetByID loads a task scoped to its organization.
func (s *Store) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "org_id": orgID}).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByProject returns a project's tasks in board order (status column,
// then position).
func (s *Store) ListByProject(ctx context.Context, orgID, projectID primitive.ObjectID) ([]models.Task, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"org_id": orgID, "project_id": projectID},
		options.Find().SetSort(bson.D{
			{Key: "status", Value: 1},
			{Key: "position", Value: 1},
		}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update holds editable task fields. Nil pointer means "leave unchanged".
type Update struct {
	Title       *string
	Description *string // sanitized by the caller
	Priority    *string
	DueDate     *time.Time
	ClearDue    bool
}

func (s *Store) Update(ctx context.Context, orgID, id primitive.ObjectID, upd Update) (*models.Task, error) {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}
	if upd.Title != nil {
		title := normalize.Name(*upd.Title)
		if title == "" {
			return nil, errEmptyTitle
		}
		set["title"] = title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Priority != nil {
		if !models.IsValidTaskPriority(*upd.Priority) {
			return nil, errBadPriority
		}
		set["priority"] = *upd.Priority
	}
	if upd.DueDate != nil {
		set["due_date"] = *upd.DueDate
	} else if upd.ClearDue {
		unset["due_date"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "org_id": orgID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var task models.Task
	if err := res.Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Assign sets or clears the assignee. Pass nil to unassign.
func (s *Store) Assign(ctx context.Context, orgID, id primitive.ObjectID, assignee *primitive.ObjectID) (*models.Task, error) {
	update := bson.M{"$set": bson.M{"updated_at": time.Now()}}
	if assignee != nil {
		update["$set"].(bson.M)["assignee_id"] = *assignee
	} else {
		update["$unset"] = bson.M{"assignee_id": ""}
	}

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "org_id": orgID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var task models.Task
	if err := res.Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Move relocates a task to (status, position) and shifts neighbors so
// each column keeps a dense 0..n-1 ordering. The writes run in a
// transaction where the deployment supports one.
//
// Cross-column move: close the gap in the old column past the old
// position, open a gap in the new column at or past the target.
// Same-column move: shift only the tasks between the two positions.
func (s *Store) Move(ctx context.Context, orgID, id primitive.ObjectID, status string, position int) (*models.Task, error) {
	if !models.IsValidTaskStatus(status) {
		return nil, errBadStatus
	}
	if position < 0 {
		return nil, errBadPosition
	}

	var moved models.Task
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var task models.Task
		if err := s.c.FindOne(ctx, bson.M{"_id": id, "org_id": orgID}).Decode(&task); err != nil {
			return err
		}

		oldStatus := task.Status
		oldPosition := task.Position

		switch {
		case oldStatus != status:
			if _, err := s.c.UpdateMany(ctx,
				bson.M{"project_id": task.ProjectID, "status": oldStatus, "position": bson.M{"$gt": oldPosition}},
				bson.M{"$inc": bson.M{"position": -1}}); err != nil {
				return err
			}
			if _, err := s.c.UpdateMany(ctx,
				bson.M{"project_id": task.ProjectID, "status": status, "position": bson.M{"$gte": position}},
				bson.M{"$inc": bson.M{"position": 1}}); err != nil {
				return err
			}
		case oldPosition < position:
			if _, err := s.c.UpdateMany(ctx,
				bson.M{"project_id": task.ProjectID, "status": status,
					"position": bson.M{"$gt": oldPosition, "$lte": position}},
				bson.M{"$inc": bson.M{"position": -1}}); err != nil {
				return err
			}
		case oldPosition > position:
			if _, err := s.c.UpdateMany(ctx,
				bson.M{"project_id": task.ProjectID, "status": status,
					"position": bson.M{"$gte": position, "$lt": oldPosition}},
				bson.M{"$inc": bson.M{"position": 1}}); err != nil {
				return err
			}
		}

		set := bson.M{
			"status":     status,
			"position":   position,
			"updated_at": time.Now(),
		}
		if status == models.StatusDone && oldStatus != models.StatusDone {
			set["completed_at"] = time.Now()
		} else if status != models.StatusDone && oldStatus == models.StatusDone {
			set["completed_at"] = nil
		}

		res := s.c.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After))
		return res.Decode(&moved)
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}

// Delete removes a task and closes the position gap in its column.
func (s *Store) Delete(ctx context.Context, orgID, id primitive.ObjectID) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var task models.Task
		if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id, "org_id": orgID}).Decode(&task); err != nil {
			return err
		}
		_, err := s.c.UpdateMany(ctx,
			bson.M{"project_id": task.ProjectID, "status": task.Status, "position": bson.M{"$gt": task.Position}},
			bson.M{"$inc": bson.M{"position": -1}})
		return err
	})
}

// DeleteByProject removes all tasks of a project.
func (s *Store) DeleteByProject(ctx context.Context, orgID, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID, "project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByProjects removes every task in the given projects and returns
// the deleted task ids so callers can cascade comment removal.
func (s *Store) DeleteByProjects(ctx context.Context, orgID primitive.ObjectID, projectIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{"org_id": orgID, "project_id": bson.M{"$in": projectIDs}}
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

// DeleteByOrg removes all tasks of an organization.
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
