// Package userstore owns the user list shown by the form: the ordered
// records, the editing cursor, and persistence of the whole list into a
// single key-value slot.
//
// Every mutation rewrites the full snapshot. That keeps the slot trivially
// consistent but makes writes grow with the list; it is meant for a personal
// address list, not a dataset.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/smileynet/userbook/internal/kv"
	"github.com/smileynet/userbook/internal/logr"
	"github.com/smileynet/userbook/internal/record"
)

// DefaultKey is the storage slot holding the user list.
const DefaultKey = "users_mvvm_app"

var (
	// ErrNotFound indicates no record has the given ID.
	ErrNotFound = errors.New("userstore: record not found")
	// ErrOutOfRange indicates a list index outside [0, Len()).
	ErrOutOfRange = errors.New("userstore: index out of range")
	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("userstore: store is closed")
)

// Store holds the working copy of the user list. The persisted snapshot is
// the durable copy and is replaced after every mutation.
type Store struct {
	storage kv.Storage
	key     string
	logger  logr.Logger
	sync    bool

	mu      sync.Mutex
	users   []record.UserRecord
	editing string // ID of the record loaded into the form, "" for none.
	closed  bool
	subs    map[int]chan Change
	nextSub int

	lifecycle sync.RWMutex
	persister *persister

	errMu   sync.Mutex
	saveErr error
	loadErr error
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage slot name. Defaults to DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used to report persistence failures.
func WithLogger(l logr.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSyncPersist makes every mutation write its snapshot before returning,
// instead of handing it to the background writer.
func WithSyncPersist() Option {
	return func(s *Store) { s.sync = true }
}

// New creates an empty Store persisting into storage. Call Load to read the
// existing snapshot and Close to stop the background writer.
func New(storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		logger:  logr.Discard(),
		subs:    make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.sync {
		s.persister = newPersister(s.save)
	}
	return s
}

// Load replaces the in-memory list with the persisted snapshot and clears
// the editing cursor. A missing slot yields an empty list. Read and decode
// failures also yield an empty list; they are logged, not returned, and a
// read failure is kept for LoadErr.
// It returns the number of records loaded.
func (s *Store) Load(ctx context.Context) int {
	// Pending writes belong to the list being replaced.
	_ = s.Flush(ctx)

	users, err := s.read(ctx)
	s.errMu.Lock()
	s.loadErr = err
	s.errMu.Unlock()

	s.mu.Lock()
	s.users = users
	s.editing = ""
	s.notifyLocked(Change{Kind: ChangeLoaded})
	s.mu.Unlock()

	s.logger.V(1).Info("loaded users", "key", s.key, "count", len(users))
	return len(users)
}

// read returns the stored list. Only a failed GetItem is returned as an
// error; an undecodable snapshot is logged and treated as empty.
func (s *Store) read(ctx context.Context) ([]record.UserRecord, error) {
	raw, found, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		s.logger.Error(err, "failed to load users", "key", s.key)
		return nil, err
	}
	if !found {
		return nil, nil
	}
	users, err := record.DecodeSnapshot([]byte(raw))
	if err != nil {
		s.logger.Error(err, "failed to load users", "key", s.key)
		return nil, nil
	}
	return users, nil
}

// Add appends a new record with a fresh ID and persists the list.
func (s *Store) Add(f record.Fields) record.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := record.New(f)
	s.users = append(s.users, r)
	s.commitLocked(Change{Kind: ChangeAdded, ID: r.ID})
	return r.Clone()
}

// Update replaces the values of the record with id, keeping its ID and
// position, and persists the list.
func (s *Store) Update(id string, f record.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.users[i] = record.WithID(id, f)
	s.commitLocked(Change{Kind: ChangeUpdated, ID: id})
	return nil
}

// Remove deletes the record with id and persists the list. If the record
// was being edited the cursor is cleared; any other cursor keeps pointing at
// the same record.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.users = append(s.users[:i:i], s.users[i+1:]...)
	if s.editing == id {
		s.editing = ""
	}
	s.commitLocked(Change{Kind: ChangeRemoved, ID: id})
	return nil
}

// StartEdit sets the editing cursor to the record with id.
func (s *Store) StartEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.editing = id
	s.notifyLocked(Change{Kind: ChangeEditing, ID: id})
	return nil
}

// ClearEdit clears the editing cursor.
func (s *Store) ClearEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == "" {
		return
	}
	s.editing = ""
	s.notifyLocked(Change{Kind: ChangeEditing})
}

// Submit adds f as a new record when nothing is being edited, or saves it
// over the edited record and clears the cursor.
func (s *Store) Submit(f record.Fields) (record.UserRecord, error) {
	s.mu.Lock()
	id := s.editing
	s.mu.Unlock()

	if id == "" {
		return s.Add(f), nil
	}
	if err := s.Update(id, f); err != nil {
		return record.UserRecord{}, err
	}
	s.ClearEdit()
	return record.WithID(id, f), nil
}

// Users returns a copy of the list in order.
func (s *Store) Users() []record.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]record.UserRecord, len(s.users))
	for i, r := range s.users {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Get returns the record with id.
func (s *Store) Get(id string) (record.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return record.UserRecord{}, false
	}
	return s.users[i].Clone(), true
}

// Editing returns the record under the editing cursor, if any.
func (s *Store) Editing() (record.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(s.editing)
	if i < 0 {
		return record.UserRecord{}, false
	}
	return s.users[i].Clone(), true
}

// EditingID returns the ID under the editing cursor, or "".
func (s *Store) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// SaveErr returns the error of the most recent snapshot write, or nil if it
// succeeded.
func (s *Store) SaveErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.saveErr
}

// LoadErr returns the storage error that made the last Load fall back to an
// empty list, or nil. Decode failures are not reported here.
func (s *Store) LoadErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.loadErr
}

// Flush waits until every snapshot queued so far has been written.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return s.persister.flush(ctx)
}

// Close writes any queued snapshots, stops the background writer and closes
// subscriber channels. Mutations after Close are kept in memory only.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()

	if s.persister == nil {
		return nil
	}
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return s.persister.close(ctx)
}

// commitLocked persists the current list and notifies subscribers.
func (s *Store) commitLocked(c Change) {
	s.notifyLocked(c)

	data, err := record.EncodeSnapshot(s.users)
	if err != nil {
		s.setSaveErr(err)
		s.logger.Error(err, "failed to save users", "key", s.key)
		return
	}
	switch {
	case s.closed:
		s.logger.Info("store closed, change not persisted", "key", s.key)
	case s.sync:
		s.save(context.Background(), string(data))
	default:
		s.persister.enqueue(string(data))
	}
}

// save writes one snapshot, logging failures.
func (s *Store) save(ctx context.Context, snapshot string) {
	err := s.storage.SetItem(ctx, s.key, snapshot)
	s.setSaveErr(err)
	if err != nil {
		s.logger.Error(err, "failed to save users", "key", s.key)
	}
}

func (s *Store) setSaveErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.saveErr = err
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, r := range s.users {
		if r.ID == id {
			return i
		}
	}
	return -1
}
