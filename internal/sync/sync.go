// Package sync keeps the in-memory snapshot and the remote document
// aligned: load-or-seed at session start, and a coalescing single-flight
// save queue afterwards. The remote store has no transactions and no
// locking; the last full-document write wins, and two devices writing
// concurrently is a documented lost-update race.
package sync

import (
	"context"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/courseflow/board/internal"
	"github.com/courseflow/board/internal/document"
)

// now is a hook so tests can pin the seed's relative due dates.
var now = time.Now

// DocumentStore is the external blob store holding the single board
// document. FindOrCreate must create the document with the given seed
// payload when it does not exist yet.
type DocumentStore interface {
	FindOrCreate(ctx context.Context, seed []byte) (handle string, created bool, err error)
	Read(ctx context.Context, handle string) ([]byte, error)
	Write(ctx context.Context, handle string, payload []byte) error
}

// Status describes the synchronizer's observable flags for the shell:
// whether a save is in flight and what the last save attempt produced.
type Status struct {
	Saving        bool
	LastSaveError string
	LocalOnly     bool
}

// Synchronizer owns the remote side of the session. Mutations hand it
// snapshots through Enqueue; it serializes the writes, always shipping the
// newest snapshot and dropping the ones superseded while a save was in
// flight.
type Synchronizer struct {
	logger *zap.Logger
	store  DocumentStore

	pending chan internal.Snapshot
	stop    chan struct{}
	wg      stdsync.WaitGroup

	mu      stdsync.Mutex
	handle  string
	saving  bool
	saveErr error
}

// NewSynchronizer instantiates the persistence synchronizer.
func NewSynchronizer(logger *zap.Logger, store DocumentStore) *Synchronizer {
	return &Synchronizer{
		logger:  logger,
		store:   store,
		pending: make(chan internal.Snapshot, 1),
		stop:    make(chan struct{}),
	}
}

// Load locates or creates the remote document and returns the session's
// starting snapshot. It always returns a usable snapshot: any remote
// failure or structurally incomplete document degrades to the fixed seed
// dataset held only in memory, with the returned error describing the
// degradation. An incomplete remote document is deliberately left
// untouched so a transient read glitch cannot destroy data.
func (s *Synchronizer) Load(ctx context.Context) (internal.Snapshot, error) {
	seed := internal.DefaultSnapshot(now())

	seedRaw, err := document.Encode(seed)
	if err != nil {
		return seed, err
	}

	handle, created, err := s.store.FindOrCreate(ctx, seedRaw)
	if err != nil {
		s.logger.Warn("document lookup failed, using local seed data", zap.Error(err))
		return seed, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "store.FindOrCreate")
	}

	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()

	if created {
		return seed, nil
	}

	raw, err := s.store.Read(ctx, handle)
	if err != nil {
		s.logger.Warn("document read failed, using local seed data", zap.Error(err))
		return seed, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "store.Read")
	}

	doc, err := document.Decode(raw)
	if err != nil {
		s.logger.Warn("document is not valid JSON, using local seed data", zap.Error(err))
		return seed, nil
	}

	if !doc.Complete() {
		s.logger.Warn("document is structurally incomplete, using local seed data")
		return seed, nil
	}

	snap, err := doc.Snapshot()
	if err != nil {
		s.logger.Warn("document contains invalid records, using local seed data", zap.Error(err))
		return seed, nil
	}

	return snap, nil
}

// Start launches the save worker. Call after Load.
func (s *Synchronizer) Start() {
	s.wg.Add(1)

	go s.worker()
}

// Stop flushes any pending snapshot and shuts the worker down.
func (s *Synchronizer) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// Enqueue schedules the snapshot for persistence. Never blocks: a snapshot
// already waiting is replaced by this newer one.
func (s *Synchronizer) Enqueue(snapshot internal.Snapshot) {
	for {
		select {
		case s.pending <- snapshot:
			return
		default:
		}

		select {
		case <-s.pending:
		default:
		}
	}
}

// Status returns the flags the shell renders next to the board.
func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Saving:    s.saving,
		LocalOnly: s.handle == "",
	}

	if s.saveErr != nil {
		st.LastSaveError = s.saveErr.Error()
	}

	return st
}

func (s *Synchronizer) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stop:
			// Last chance for a snapshot enqueued after the final save.
			select {
			case snapshot := <-s.pending:
				s.save(snapshot)
			default:
			}

			return
		case snapshot := <-s.pending:
			s.save(snapshot)
		}
	}
}

// save writes one snapshot. Failures surface as a warning and a status
// flag only: in-memory state is never rolled back and the board stays
// interactive.
func (s *Synchronizer) save(snapshot internal.Snapshot) {
	s.mu.Lock()
	handle := s.handle
	s.saving = handle != ""
	s.mu.Unlock()

	if handle == "" {
		return
	}

	err := s.write(snapshot, handle)

	s.mu.Lock()
	s.saving = false
	s.saveErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("saving board to remote store failed, changes kept locally", zap.Error(err))
	}
}

func (s *Synchronizer) write(snapshot internal.Snapshot, handle string) error {
	raw, err := document.Encode(snapshot)
	if err != nil {
		return err
	}

	if err := s.store.Write(context.Background(), handle, raw); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "store.Write")
	}

	return nil
}
