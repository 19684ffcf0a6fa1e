// Package board implements the mutation engine: every state transition the
// UI shell can trigger, the completion grace-period archiver, and the
// decoupling of mutations from persistence and event publishing.
package board

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/courseflow/board/internal"
)

const otelName = "github.com/courseflow/board/internal/board"

// archiveDelay is the grace period before a completed overdue-or-undated
// task leaves the active set.
const archiveDelay = 3 * time.Second

// Persister receives the latest snapshot after every mutation. It is called
// with the board lock held so snapshots arrive in application order;
// implementations must not block.
type Persister interface {
	Enqueue(snapshot internal.Snapshot)
}

// EventPublisher defines the broker notified of board changes. Completed
// doubles as the celebratory "task completed" signal.
type EventPublisher interface {
	Created(ctx context.Context, task internal.Task) error
	Updated(ctx context.Context, task internal.Task) error
	Deleted(ctx context.Context, id string) error
	Completed(ctx context.Context, task internal.Task) error
}

// Board owns the session's snapshot. All access goes through its methods;
// no other component may write to the state (the remote document is an
// unlocked shared resource, the in-memory snapshot is not).
type Board struct {
	logger    *zap.Logger
	events    EventPublisher
	persister Persister

	now   func() time.Time
	delay time.Duration
	newID func() string

	mu     sync.Mutex
	snap   internal.Snapshot
	filter internal.Filter
	timers map[string]*time.Timer
}

// NewBoard instantiates the mutation engine around an initial snapshot.
func NewBoard(logger *zap.Logger, events EventPublisher, persister Persister, initial internal.Snapshot) *Board {
	return &Board{
		logger:    logger,
		events:    events,
		persister: persister,
		now:       time.Now,
		delay:     archiveDelay,
		newID:     func() string { return uuid.NewString() },
		snap:      initial,
		filter:    internal.FilterAll,
		timers:    make(map[string]*time.Timer),
	}
}

// Snapshot returns a copy of the current state.
func (b *Board) Snapshot() internal.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.snap.Clone()
}

// Filter returns the active board filter.
func (b *Board) Filter() internal.Filter {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.filter
}

// SetFilter sets the active board filter.
func (b *Board) SetFilter(f internal.Filter) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.filter = f
}

// AddTask creates a task. The course must exist; the new task starts in
// NotStarted with the course's color.
func (b *Board) AddTask(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.AddTask")
	defer span.End()

	b.mu.Lock()

	next, task, err := addTask(b.snap, params, b.newID())
	if err != nil {
		b.mu.Unlock()
		return internal.Task{}, err
	}

	b.snap = next
	b.persister.Enqueue(next)
	b.mu.Unlock()

	_ = b.events.Created(ctx, task)

	return task, nil
}

// EditTask replaces a task wholesale. Changing the course re-copies its
// color onto the task; a pending archival for the task is dropped.
func (b *Board) EditTask(ctx context.Context, params internal.EditTaskParams) (internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.EditTask")
	defer span.End()

	b.mu.Lock()

	next, task, err := editTask(b.snap, params)
	if err != nil {
		b.mu.Unlock()
		return internal.Task{}, err
	}

	b.snap = next
	b.cancelArchiveLocked(task.ID)
	b.persister.Enqueue(next)
	b.mu.Unlock()

	_ = b.events.Updated(ctx, task)

	return task, nil
}

// DeleteTask removes a task. Absent ids are a silent no-op.
func (b *Board) DeleteTask(ctx context.Context, id string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.DeleteTask")
	defer span.End()

	b.mu.Lock()

	next, removed := deleteTask(b.snap, id)
	if !removed {
		b.mu.Unlock()
		return nil
	}

	b.snap = next
	b.cancelArchiveLocked(id)
	b.persister.Enqueue(next)
	b.mu.Unlock()

	_ = b.events.Deleted(ctx, id)

	return nil
}

// MoveTask transitions a task between columns. Any transition is legal
// here; the Done pin is a UI capability exposed through Task.Movable.
func (b *Board) MoveTask(ctx context.Context, id string, status internal.Status) (internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.MoveTask")
	defer span.End()

	b.mu.Lock()

	next, res, err := moveTask(b.snap, id, status, b.now())
	if err != nil {
		b.mu.Unlock()
		return internal.Task{}, err
	}

	b.snap = next
	// Any move invalidates a pending archival; re-completing below arms a
	// fresh one.
	b.cancelArchiveLocked(id)
	if res.archive {
		b.scheduleArchiveLocked(id)
	}
	b.persister.Enqueue(next)
	b.mu.Unlock()

	_ = b.events.Updated(ctx, res.task)

	if res.completed {
		_ = b.events.Completed(ctx, res.task)
	}

	return res.task, nil
}

// AddGroup creates a group.
func (b *Board) AddGroup(ctx context.Context, params internal.CreateGroupParams) (internal.Group, error) {
	_, span := otel.Tracer(otelName).Start(ctx, "Board.AddGroup")
	defer span.End()

	b.mu.Lock()

	next, group, err := addGroup(b.snap, params, b.newID())
	if err != nil {
		b.mu.Unlock()
		return internal.Group{}, err
	}

	b.snap = next
	b.persister.Enqueue(next)
	b.mu.Unlock()

	return group, nil
}

// DeleteGroup cascade-deletes a group, its courses and their tasks. When
// the active filter pointed at the group it resets to "all".
func (b *Board) DeleteGroup(ctx context.Context, id string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.DeleteGroup")
	defer span.End()

	b.mu.Lock()

	if _, ok := b.snap.GroupByID(id); !ok {
		b.mu.Unlock()
		return nil
	}

	gone := b.snap.CourseIDsOfGroup(id)

	removed := make([]string, 0)
	for _, t := range b.snap.Tasks {
		if _, ok := gone[t.CourseID]; ok {
			removed = append(removed, t.ID)
		}
	}

	next := b.snap.RemoveGroup(id)

	b.snap = next
	if b.filter == internal.Filter(id) {
		b.filter = internal.FilterAll
	}
	for _, taskID := range removed {
		b.cancelArchiveLocked(taskID)
	}
	b.persister.Enqueue(next)
	b.mu.Unlock()

	for _, taskID := range removed {
		_ = b.events.Deleted(ctx, taskID)
	}

	return nil
}

// AddCourse creates a course under an existing group.
func (b *Board) AddCourse(ctx context.Context, params internal.CreateCourseParams) (internal.Course, error) {
	_, span := otel.Tracer(otelName).Start(ctx, "Board.AddCourse")
	defer span.End()

	b.mu.Lock()

	next, course, err := addCourse(b.snap, params, b.newID())
	if err != nil {
		b.mu.Unlock()
		return internal.Course{}, err
	}

	b.snap = next
	b.persister.Enqueue(next)
	b.mu.Unlock()

	return course, nil
}

// DeleteCourse cascade-deletes a course and its tasks. Absent ids are a
// silent no-op.
func (b *Board) DeleteCourse(ctx context.Context, id string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.DeleteCourse")
	defer span.End()

	b.mu.Lock()

	if _, ok := b.snap.CourseByID(id); !ok {
		b.mu.Unlock()
		return nil
	}

	removed := make([]string, 0)
	for _, t := range b.snap.Tasks {
		if t.CourseID == id {
			removed = append(removed, t.ID)
		}
	}

	next := b.snap.RemoveCourse(id)

	b.snap = next
	for _, taskID := range removed {
		b.cancelArchiveLocked(taskID)
	}
	b.persister.Enqueue(next)
	b.mu.Unlock()

	for _, taskID := range removed {
		_ = b.events.Deleted(ctx, taskID)
	}

	return nil
}

// Close drops any pending archival timers.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
}
