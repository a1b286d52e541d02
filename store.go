package auth

import (
	"context"
	"sync"
	"time"
)

// Persister saves the session and the remembered login email to local
// storage. Load calls return zero values, not errors, when nothing is
// stored. Implementations must tolerate being called from the store's
// write path; failures are logged and never fail the caller.
type Persister interface {
	SaveSession(ctx context.Context, session *Session) error
	ClearSession(ctx context.Context) error
	LoadSession(ctx context.Context) (*Session, error)
	SaveRememberedEmail(ctx context.Context, email string) error
	ClearRememberedEmail(ctx context.Context) error
	LoadRememberedEmail(ctx context.Context) (string, error)
}

// SessionStore holds at most one active session. It has exactly one writer
// (the AuthFlow controller) and many readers; every write replaces the
// whole value and is visible to readers before Set returns.
//
// The remembered email lives alongside the session but has an independent
// lifecycle: it survives Clear so the login form can be pre-filled after
// logout.
type SessionStore struct {
	mu        sync.RWMutex
	current   *Session
	remember  string
	persister Persister
	logger    Logger
	now       func() time.Time
}

type SessionStoreOption func(*SessionStore)

// WithStorePersister attaches local storage to the store.
func WithStorePersister(p Persister) SessionStoreOption {
	return func(s *SessionStore) {
		s.persister = p
	}
}

// WithStoreLogger overrides the logger used for persistence failures.
func WithStoreLogger(logger Logger) SessionStoreOption {
	return func(s *SessionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

func NewSessionStore(opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		logger: defLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Set atomically replaces the current session. Passing nil clears it.
// A partially populated session is rejected without touching the store.
func (s *SessionStore) Set(session *Session) error {
	if session != nil {
		if err := session.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.persist(session)
	return nil
}

// Get returns the current session, or nil when logged out. Never blocks on I/O.
func (s *SessionStore) Get() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Clear drops the current session. Calling it on an empty store is a no-op,
// so clearing twice leaves the same state as clearing once.
func (s *SessionStore) Clear() {
	// Set(nil) cannot fail
	_ = s.Set(nil)
}

// RememberEmail stores the email used to pre-fill the login form.
func (s *SessionStore) RememberEmail(email string) {
	s.mu.Lock()
	s.remember = email
	s.mu.Unlock()

	if s.persister == nil {
		return
	}
	var err error
	if email == "" {
		err = s.persister.ClearRememberedEmail(context.Background())
	} else {
		err = s.persister.SaveRememberedEmail(context.Background(), email)
	}
	if err != nil {
		s.logger.Error("failed to persist remembered email: %v", err)
	}
}

// RememberedEmail returns the stored login email, if any.
func (s *SessionStore) RememberedEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remember
}

// ForgetEmail removes the remembered login email.
func (s *SessionStore) ForgetEmail() {
	s.RememberEmail("")
}

// Restore reloads persisted state at startup. Sessions whose token has
// expired are discarded and removed from storage, leaving the client
// logged out.
func (s *SessionStore) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	if email, err := s.persister.LoadRememberedEmail(ctx); err != nil {
		s.logger.Error("failed to load remembered email: %v", err)
	} else if email != "" {
		s.mu.Lock()
		s.remember = email
		s.mu.Unlock()
	}

	session, err := s.persister.LoadSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	if err := session.Validate(); err != nil {
		s.logger.Info("dropping invalid persisted session: %v", err)
		return s.persister.ClearSession(ctx)
	}

	if session.Expired(s.now()) {
		s.logger.Info("dropping expired persisted session for %s", session.Profile.Email)
		return s.persister.ClearSession(ctx)
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) persist(session *Session) {
	if s.persister == nil {
		return
	}
	var err error
	if session == nil {
		err = s.persister.ClearSession(context.Background())
	} else {
		err = s.persister.SaveSession(context.Background(), session)
	}
	if err != nil {
		s.logger.Error("failed to persist session: %v", err)
	}
}
