package board

import (
	"time"

	"go.uber.org/zap"

	"github.com/courseflow/board/internal"
)

// scheduleArchiveLocked arms the grace-period removal of a freshly
// completed task. Caller holds b.mu.
func (b *Board) scheduleArchiveLocked(id string) {
	b.timers[id] = time.AfterFunc(b.delay, func() {
		b.archive(id)
	})
}

// cancelArchiveLocked drops a pending removal, if any. Caller holds b.mu.
// A deleted or re-moved task must not be archived against stale state.
func (b *Board) cancelArchiveLocked(id string) {
	if timer, ok := b.timers[id]; ok {
		timer.Stop()
		delete(b.timers, id)
	}
}

// archive removes a completed task from the active set once its grace
// period elapsed. The timer may have fired while a cancellation was waiting
// on the lock, so the task's presence and status are re-checked here.
func (b *Board) archive(id string) {
	b.mu.Lock()

	if _, armed := b.timers[id]; !armed {
		b.mu.Unlock()
		return
	}
	delete(b.timers, id)

	task, ok := b.snap.TaskByID(id)
	if !ok || task.Status != internal.StatusDone {
		b.mu.Unlock()
		return
	}

	next, removed := deleteTask(b.snap, id)
	if !removed {
		b.mu.Unlock()
		return
	}

	b.snap = next
	b.persister.Enqueue(next)
	b.mu.Unlock()

	b.logger.Info("archived completed task", zap.String("task_id", id))
}
