package scout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"pkt.systems/pslog"
	"pkt.systems/scout/api"
)

// DefaultLockPrefix is the key prefix lock keys are created under.
const DefaultLockPrefix = "scout/locks"

// Lock provides mutual exclusion backed by the key/value store. Acquire
// creates a dedicated session with release-on-invalidation behavior and
// takes the lock on a key under the configured prefix; Release undoes all
// of it. One Lock tracks at most one held lock at a time and is safe for
// concurrent use.
type Lock struct {
	kv      *KV
	session *Session
	logger  pslog.Base

	mu        sync.Mutex
	prefix    string
	key       string
	sessionID string
}

func newLock(kv *KV, session *Session, logger pslog.Base) *Lock {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Lock{kv: kv, session: session, logger: logger, prefix: DefaultLockPrefix}
}

// SetPrefix changes the key prefix used for subsequent acquisitions.
func (l *Lock) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = cleanKey(prefix)
}

// Key returns the full key of the currently held lock, or an empty string
// when no lock is held.
func (l *Lock) Key() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key
}

// SessionID returns the session backing the currently held lock, or an
// empty string when no lock is held.
func (l *Lock) SessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionID
}

// Acquire takes the lock named key under the lock prefix, storing value in
// the locked key. An empty key gets a generated UUID. When another session
// holds the lock, the freshly created session is destroyed and Acquire
// returns a *LockError matching ErrLockHeld.
func (l *Lock) Acquire(ctx context.Context, key string, value any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sessionID != "" {
		return fmt.Errorf("scout: lock %q already held", l.key)
	}
	sessionID, err := l.session.Create(ctx, api.SessionOptions{
		Name:     "scout-lock-" + xid.New().String(),
		Behavior: api.SessionBehaviorRelease,
	})
	if err != nil {
		return err
	}
	if key == "" {
		key = uuid.NewString()
	}
	item := l.prefix + "/" + cleanKey(key)
	granted, err := l.kv.AcquireLock(ctx, item, sessionID, value)
	if err != nil || !granted {
		if _, derr := l.session.Destroy(ctx, sessionID); derr != nil {
			l.logger.Debug("client.lock.session_destroy_failed", "session", sessionID, "error", derr)
		}
		if err != nil {
			return err
		}
		l.logger.Debug("client.lock.contended", "key", item)
		return &LockError{Key: item}
	}
	l.key = item
	l.sessionID = sessionID
	l.logger.Debug("client.lock.acquired", "key", item, "session", sessionID)
	return nil
}

// Release releases the held lock, removes the lock key and destroys the
// backing session. The cleanup steps run even when an earlier one fails;
// the first failure is returned.
func (l *Lock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sessionID == "" {
		return fmt.Errorf("scout: no lock held")
	}
	var firstErr error
	if _, err := l.kv.ReleaseLock(ctx, l.key, l.sessionID); err != nil {
		firstErr = err
	}
	if err := l.kv.Delete(ctx, l.key, false); err != nil && firstErr == nil {
		firstErr = err
	}
	if _, err := l.session.Destroy(ctx, l.sessionID); err != nil && firstErr == nil {
		firstErr = err
	}
	l.logger.Debug("client.lock.released", "key", l.key, "session", l.sessionID)
	l.key = ""
	l.sessionID = ""
	return firstErr
}

// Do acquires the lock, runs fn and releases the lock when fn returns.
// The error from fn wins over a release failure.
func (l *Lock) Do(ctx context.Context, key string, value any, fn func(context.Context) error) error {
	if err := l.Acquire(ctx, key, value); err != nil {
		return err
	}
	err := fn(ctx)
	if relErr := l.Release(ctx); err == nil {
		err = relErr
	}
	return err
}
