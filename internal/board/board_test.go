package board

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courseflow/board/internal"
)

type fakePersister struct {
	mu        sync.Mutex
	snapshots []internal.Snapshot
}

func (f *fakePersister) Enqueue(snapshot internal.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.snapshots = append(f.snapshots, snapshot)
}

func (f *fakePersister) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.snapshots)
}

func (f *fakePersister) last() internal.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.snapshots[len(f.snapshots)-1]
}

type fakeEvents struct {
	mu        sync.Mutex
	created   []string
	updated   []string
	deleted   []string
	completed []string
}

func (f *fakeEvents) Created(_ context.Context, task internal.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, task.ID)

	return nil
}

func (f *fakeEvents) Updated(_ context.Context, task internal.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updated = append(f.updated, task.ID)

	return nil
}

func (f *fakeEvents) Deleted(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, id)

	return nil
}

func (f *fakeEvents) Completed(_ context.Context, task internal.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.completed = append(f.completed, task.ID)

	return nil
}

func newTestBoard(t *testing.T) (*Board, *fakePersister, *fakeEvents) {
	t.Helper()

	persister := &fakePersister{}
	events := &fakeEvents{}

	b := NewBoard(zap.NewNop(), events, persister, internal.DefaultSnapshot(time.Now()))
	b.delay = 10 * time.Millisecond

	id := 0
	b.newID = func() string {
		id++
		return "new-" + string(rune('0'+id))
	}

	t.Cleanup(b.Close)

	return b, persister, events
}

func TestBoard_AddTask(t *testing.T) {
	t.Parallel()

	b, persister, events := newTestBoard(t)

	task, err := b.AddTask(context.Background(), internal.CreateTaskParams{
		Title:    "Read chapter 4",
		CourseID: "course-2",
	})
	require.NoError(t, err)

	assert.Equal(t, internal.StatusNotStarted, task.Status)
	assert.Equal(t, "#5FFBF1", task.Color)

	snap := b.Snapshot()
	_, ok := snap.TaskByID(task.ID)
	assert.True(t, ok)

	assert.Equal(t, 1, persister.count())
	assert.Equal(t, []string{task.ID}, events.created)
}

func TestBoard_AddTask_UnknownCourse(t *testing.T) {
	t.Parallel()

	b, persister, _ := newTestBoard(t)

	_, err := b.AddTask(context.Background(), internal.CreateTaskParams{
		Title:    "Orphan",
		CourseID: "course-gone",
	})
	require.Error(t, err)

	var ierr *internal.Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, internal.ErrorCodeInvalidArgument, ierr.Code())

	assert.Zero(t, persister.count())
}

func TestBoard_EditTask_CourseChangeRecolors(t *testing.T) {
	t.Parallel()

	b, _, events := newTestBoard(t)

	task, err := b.EditTask(context.Background(), internal.EditTaskParams{
		ID:       "task-1",
		Title:    "Define the final project scope",
		Status:   internal.StatusInProgress,
		CourseID: "course-4",
	})
	require.NoError(t, err)

	assert.Equal(t, "#FF6961", task.Color)
	assert.Equal(t, []string{"task-1"}, events.updated)
}

func TestBoard_EditTask_SameCourseKeepsColor(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	task, err := b.EditTask(context.Background(), internal.EditTaskParams{
		ID:       "task-1",
		Title:    "Renamed",
		Status:   internal.StatusNotStarted,
		CourseID: "course-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "#86A8E7", task.Color)
}

func TestBoard_DeleteTask_AbsentIsNoOp(t *testing.T) {
	t.Parallel()

	b, persister, events := newTestBoard(t)

	require.NoError(t, b.DeleteTask(context.Background(), "task-gone"))

	assert.Zero(t, persister.count())
	assert.Empty(t, events.deleted)
}

func TestBoard_MoveTask_NotFound(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	_, err := b.MoveTask(context.Background(), "task-gone", internal.StatusDone)
	require.Error(t, err)

	var ierr *internal.Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, internal.ErrorCodeNotFound, ierr.Code())
}

func TestBoard_MoveTask_CompletionPublishes(t *testing.T) {
	t.Parallel()

	b, _, events := newTestBoard(t)

	// task-1 is due in the future, so completing it must not archive it.
	task, err := b.MoveTask(context.Background(), "task-1", internal.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusDone, task.Status)

	assert.Equal(t, []string{"task-1"}, events.updated)
	assert.Equal(t, []string{"task-1"}, events.completed)

	time.Sleep(50 * time.Millisecond)

	_, ok := b.Snapshot().TaskByID("task-1")
	assert.True(t, ok)
}

func TestBoard_MoveTask_UndatedDoneIsArchived(t *testing.T) {
	t.Parallel()

	b, persister, _ := newTestBoard(t)

	// task-5 has no due date: completing it schedules archival.
	_, err := b.MoveTask(context.Background(), "task-5", internal.StatusDone)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := b.Snapshot().TaskByID("task-5")
		return !ok
	}, time.Second, 5*time.Millisecond)

	// Move itself plus the archival each persisted a snapshot.
	assert.GreaterOrEqual(t, persister.count(), 2)
}

func TestBoard_MoveTask_OverdueDoneIsArchived(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	past := time.Now().AddDate(0, 0, -1)
	_, err := b.EditTask(context.Background(), internal.EditTaskParams{
		ID:       "task-2",
		Title:    "Implement Dijkstra's algorithm",
		DueDate:  &past,
		Status:   internal.StatusInProgress,
		CourseID: "course-2",
	})
	require.NoError(t, err)

	_, err = b.MoveTask(context.Background(), "task-2", internal.StatusDone)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := b.Snapshot().TaskByID("task-2")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestBoard_MoveTask_ArchivalCancelledByMoveBack(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)
	b.delay = 50 * time.Millisecond

	_, err := b.MoveTask(context.Background(), "task-5", internal.StatusDone)
	require.NoError(t, err)

	// Revert before the grace period elapses.
	_, err = b.MoveTask(context.Background(), "task-5", internal.StatusInProgress)
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)

	task, ok := b.Snapshot().TaskByID("task-5")
	require.True(t, ok)
	assert.Equal(t, internal.StatusInProgress, task.Status)
}

func TestBoard_MoveTask_ArchivalCancelledByDelete(t *testing.T) {
	t.Parallel()

	b, _, events := newTestBoard(t)
	b.delay = 50 * time.Millisecond

	_, err := b.MoveTask(context.Background(), "task-5", internal.StatusDone)
	require.NoError(t, err)

	require.NoError(t, b.DeleteTask(context.Background(), "task-5"))

	time.Sleep(150 * time.Millisecond)

	_, ok := b.Snapshot().TaskByID("task-5")
	assert.False(t, ok)
	assert.Equal(t, []string{"task-5"}, events.deleted)
}

func TestBoard_DeleteGroup_CascadesAndResetsFilter(t *testing.T) {
	t.Parallel()

	b, persister, events := newTestBoard(t)

	b.SetFilter(internal.Filter("group-1"))

	require.NoError(t, b.DeleteGroup(context.Background(), "group-1"))

	snap := b.Snapshot()

	_, ok := snap.GroupByID("group-1")
	assert.False(t, ok)
	assert.Len(t, snap.Tasks, 2)
	assert.Len(t, snap.Courses, 2)

	assert.Equal(t, internal.FilterAll, b.Filter())
	assert.Equal(t, 1, persister.count())

	// One Deleted event per cascaded task.
	assert.ElementsMatch(t, []string{"task-1", "task-2", "task-3", "task-4", "task-7"}, events.deleted)
}

func TestBoard_DeleteGroup_KeepsUnrelatedFilter(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	b.SetFilter(internal.Filter("group-2"))

	require.NoError(t, b.DeleteGroup(context.Background(), "group-3"))

	assert.Equal(t, internal.Filter("group-2"), b.Filter())
}

func TestBoard_DeleteCourse_Cascades(t *testing.T) {
	t.Parallel()

	b, _, events := newTestBoard(t)

	require.NoError(t, b.DeleteCourse(context.Background(), "course-3"))

	snap := b.Snapshot()

	_, ok := snap.CourseByID("course-3")
	assert.False(t, ok)
	assert.Len(t, snap.Tasks, 5)

	assert.ElementsMatch(t, []string{"task-3", "task-7"}, events.deleted)
}

func TestBoard_AddCourse_UnknownGroup(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	_, err := b.AddCourse(context.Background(), internal.CreateCourseParams{
		Name:    "Chemistry",
		Color:   "#ABCDEF",
		GroupID: "group-gone",
	})
	require.Error(t, err)
}

func TestBoard_AddGroupAndCourse(t *testing.T) {
	t.Parallel()

	b, persister, _ := newTestBoard(t)

	group, err := b.AddGroup(context.Background(), internal.CreateGroupParams{Name: "Side Projects"})
	require.NoError(t, err)

	course, err := b.AddCourse(context.Background(), internal.CreateCourseParams{
		Name:    "Home Lab",
		Color:   "#ABCDEF",
		GroupID: group.ID,
	})
	require.NoError(t, err)

	task, err := b.AddTask(context.Background(), internal.CreateTaskParams{
		Title:    "Rack the new switch",
		CourseID: course.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "#ABCDEF", task.Color)
	assert.Equal(t, 3, persister.count())
}

func TestBoard_ConcurrentMutations_PersistInApplicationOrder(t *testing.T) {
	t.Parallel()

	b, persister, _ := newTestBoard(t)

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			status := internal.StatusInProgress
			if i%2 == 0 {
				status = internal.StatusNotStarted
			}

			for j := 0; j < 25; j++ {
				_, err := b.MoveTask(context.Background(), "task-1", status)
				assert.NoError(t, err)
			}
		}(i)
	}

	wg.Wait()

	// The newest enqueued snapshot is the board's final state: no older
	// snapshot can be queued behind it.
	require.NotZero(t, persister.count())
	assert.Equal(t, b.Snapshot(), persister.last())
}
