// internal/boardsync/board.go

// Package boardsync keeps a client-side snapshot of a project board in
// step with the server. Drag interactions apply an optimistic overlay
// immediately, commit at most one mutation per drop, and revert on
// failure. Fan-out events merge into the snapshot by task id unless the
// task has a local interaction in flight.
package boardsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

var (
	// ErrUnknownTask is returned when the task id is not in the snapshot.
	ErrUnknownTask = errors.New("task not in board snapshot")
	// ErrNoDrag is returned by hover/drop/cancel calls outside a drag.
	ErrNoDrag = errors.New("no drag in progress")
	// ErrDragInProgress is returned by BeginDrag while another drag is active.
	ErrDragInProgress = errors.New("another drag is in progress")
	// ErrCommitInFlight is returned by BeginDrag while the same task has an
	// unsettled commit.
	ErrCommitInFlight = errors.New("task has a commit in flight")
)

// Mutator issues the single board mutation of a drag-drop commit.
type Mutator interface {
	MoveTask(ctx context.Context, taskID, status string, position int) error
}

type dragState struct {
	taskID    string
	origStat  string
	origPos   int
	candidate string
}

// Board is the synchronizer for one project board. Methods are safe for
// use from the UI and the event-stream reader concurrently.
type Board struct {
	mutator Mutator
	log     *zap.Logger

	mu         sync.Mutex
	tasks      map[string]models.Task
	drag       *dragState
	committing map[string]struct{}
}

func New(mutator Mutator, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	return &Board{
		mutator:    mutator,
		log:        log,
		tasks:      make(map[string]models.Task),
		committing: make(map[string]struct{}),
	}
}

// Load replaces the snapshot with an authoritative task list, keeping
// any in-flight local interaction's overlay intact.
func (b *Board) Load(tasks []models.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := make(map[string]models.Task, len(tasks))
	for _, task := range tasks {
		id := task.ID.Hex()
		if b.inFlightLocked(id) {
			if cur, ok := b.tasks[id]; ok {
				next[id] = cur
				continue
			}
		}
		next[id] = task
	}
	b.tasks = next
}

// Task returns the snapshot's view of one task.
func (b *Board) Task(id string) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	task, ok := b.tasks[id]
	return task, ok
}

// Column returns the tasks of one status column ordered by position.
func (b *Board) Column(status string) []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	var col []models.Task
	for _, task := range b.tasks {
		if task.Status == status {
			col = append(col, task)
		}
	}
	sort.Slice(col, func(i, j int) bool {
		if col[i].Position != col[j].Position {
			return col[i].Position < col[j].Position
		}
		return col[i].ID.Hex() < col[j].ID.Hex()
	})
	return col
}

// Len returns the number of tasks in the snapshot.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

// BeginDrag starts a drag and captures the task's original placement.
// One drag at a time per board; a task with an unsettled commit cannot
// be re-dragged.
func (b *Board) BeginDrag(taskID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drag != nil {
		return ErrDragInProgress
	}
	if _, ok := b.committing[taskID]; ok {
		return ErrCommitInFlight
	}
	task, ok := b.tasks[taskID]
	if !ok {
		return ErrUnknownTask
	}
	b.drag = &dragState{
		taskID:    taskID,
		origStat:  task.Status,
		origPos:   task.Position,
		candidate: task.Status,
	}
	return nil
}

// HoverColumn projects the hovered column's status onto the dragged
// task. Pure local overlay, no I/O.
func (b *Board) HoverColumn(status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drag == nil {
		return ErrNoDrag
	}
	if !models.IsValidTaskStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}
	b.overlayLocked(status)
	return nil
}

// HoverTask projects the hovered task's status onto the dragged task.
func (b *Board) HoverTask(overTaskID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drag == nil {
		return ErrNoDrag
	}
	over, ok := b.tasks[overTaskID]
	if !ok {
		return ErrUnknownTask
	}
	b.overlayLocked(over.Status)
	return nil
}

func (b *Board) overlayLocked(status string) {
	b.drag.candidate = status
	task := b.tasks[b.drag.taskID]
	task.Status = status
	b.tasks[b.drag.taskID] = task
}

// Drop settles the drag. When the candidate status equals the original
// the drop is a no-op and no mutation is issued. Otherwise exactly one
// commit goes through the Mutator; on failure the overlay reverts to
// the captured original and the error is returned. Single attempt, no
// retry.
func (b *Board) Drop(ctx context.Context, position int) error {
	b.mu.Lock()
	if b.drag == nil {
		b.mu.Unlock()
		return ErrNoDrag
	}
	drag := *b.drag
	b.drag = nil

	if drag.candidate == drag.origStat {
		b.mu.Unlock()
		return nil
	}

	b.committing[drag.taskID] = struct{}{}
	b.mu.Unlock()

	err := b.mutator.MoveTask(ctx, drag.taskID, drag.candidate, position)

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.committing, drag.taskID)

	task, ok := b.tasks[drag.taskID]
	if !ok {
		// Deleted out from under us while committing.
		if err != nil {
			return fmt.Errorf("commit move: %w", err)
		}
		return nil
	}
	if err != nil {
		task.Status = drag.origStat
		task.Position = drag.origPos
		b.tasks[drag.taskID] = task
		return fmt.Errorf("commit move: %w", err)
	}
	task.Status = drag.candidate
	task.Position = position
	b.tasks[drag.taskID] = task
	return nil
}

// CancelDrag reverts the overlay and returns to idle. Never issues I/O.
func (b *Board) CancelDrag() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drag == nil {
		return ErrNoDrag
	}
	drag := b.drag
	b.drag = nil

	if task, ok := b.tasks[drag.taskID]; ok {
		task.Status = drag.origStat
		task.Position = drag.origPos
		b.tasks[drag.taskID] = task
	}
	return nil
}

// ApplyEvent merges a fan-out event into the snapshot by task id,
// overwriting the task's fields with the event payload. A task with a
// local drag or unsettled commit is left untouched until it settles, so
// a stale self-echo cannot clobber an in-progress interaction.
// Duplicate and out-of-order events are safe: last arrival wins.
func (b *Board) ApplyEvent(ev realtime.Event) error {
	switch ev.Name {
	case realtime.EventTaskCreated, realtime.EventTaskUpdated,
		realtime.EventTaskMoved, realtime.EventTaskAssigned:
		var task models.Task
		if err := json.Unmarshal(ev.Payload, &task); err != nil {
			return fmt.Errorf("decode %s payload: %w", ev.Name, err)
		}
		b.merge(task)
		return nil
	case realtime.EventTaskDeleted:
		var task models.Task
		if err := json.Unmarshal(ev.Payload, &task); err != nil {
			return fmt.Errorf("decode %s payload: %w", ev.Name, err)
		}
		b.remove(task.ID.Hex())
		return nil
	default:
		// Not a board event; nothing to merge.
		return nil
	}
}

func (b *Board) merge(task models.Task) {
	id := task.ID.Hex()
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inFlightLocked(id) {
		b.log.Debug("skipping event for in-flight task", zap.String("task_id", id))
		return
	}
	b.tasks[id] = task
}

func (b *Board) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inFlightLocked(id) {
		b.log.Debug("skipping delete for in-flight task", zap.String("task_id", id))
		return
	}
	delete(b.tasks, id)
}

func (b *Board) inFlightLocked(id string) bool {
	if b.drag != nil && b.drag.taskID == id {
		return true
	}
	_, ok := b.committing[id]
	return ok
}
