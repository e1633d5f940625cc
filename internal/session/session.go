// Package session tracks per-user packing state: the pending chapter list
// accumulated before a run and the single-flight guard that keeps one run
// per user at a time.
//
// Sessions live in memory for the life of the process; only the run guard
// touches disk, as a lock file, so concurrent processes sharing a staging
// area cannot start overlapping runs for the same user.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"tankobon/internal/logging"
)

// ErrRunActive reports that a packing run is already in flight for the user.
var ErrRunActive = errors.New("session: a packing run is already active")

// Session is one user's accumulated state between runs.
type Session struct {
	UserID  int64
	Title   string
	Pending []string

	lock *flock.Flock
}

// Active reports whether this session currently holds the run guard.
func (s *Session) Active() bool {
	return s.lock != nil
}

// AddPending appends chapter archive paths in arrival order.
func (s *Session) AddPending(paths ...string) {
	s.Pending = append(s.Pending, paths...)
}

// Store owns all sessions for this process, keyed by user identity.
type Store struct {
	dir    string
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewStore creates a Store whose run-guard lock files live under dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:      dir,
		logger:   logging.NewComponentLogger(logger, "session"),
		sessions: make(map[int64]*Session),
	}
}

// Get returns the user's session, creating it on first interaction.
func (s *Store) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{UserID: userID}
		s.sessions[userID] = sess
	}
	return sess
}

// Begin acquires the user's run guard. It fails with ErrRunActive when a
// run is already in flight for the user, in this process or another one
// sharing the lock directory.
func (s *Store) Begin(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{UserID: userID}
		s.sessions[userID] = sess
	}
	if sess.lock != nil {
		return ErrRunActive
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(s.lockPath(userID))
	held, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run guard: %w", err)
	}
	if !held {
		return ErrRunActive
	}
	sess.lock = lock
	s.logger.Debug("run guard acquired", logging.Int64(logging.FieldUserID, userID))
	return nil
}

// End releases the user's run guard. Safe to call when no run is active.
func (s *Store) End(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || sess.lock == nil {
		return
	}
	if err := sess.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release run guard",
			logging.Int64(logging.FieldUserID, userID),
			logging.Error(err),
		)
	}
	sess.lock = nil
	if err := os.Remove(s.lockPath(userID)); err != nil && !os.IsNotExist(err) {
		s.logger.Debug("lock file left behind", logging.Error(err))
	}
}

// Clear tears the session down: the pending list is dropped and any pending
// archives still on disk are deleted. An active run guard is released.
func (s *Store) Clear(userID int64) {
	s.End(userID)
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if !ok {
		return
	}
	for _, path := range sess.Pending {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove pending archive",
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
}

func (s *Store) lockPath(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("user-%d.lock", userID))
}
