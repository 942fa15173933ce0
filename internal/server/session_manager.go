package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionLock tracks per-session serialization state for cleanup
type sessionLock struct {
	mu         sync.Mutex
	lastAccess time.Time
}

// Evictor removes conversation contexts that have been idle longer than ttl.
// engine.MemoryStore satisfies it.
type Evictor interface {
	Evict(ttl time.Duration, now time.Time) int
}

// SessionManager hands out session IDs and serializes turns within each
// session. Two messages for the same session ID never run concurrently,
// while distinct sessions proceed in parallel. It also evicts idle
// conversation contexts from the store on a timer.
type SessionManager struct {
	locks         map[string]*sessionLock
	mu            sync.Mutex
	evictor       Evictor
	cleanupTicker *time.Ticker
	cleanupDone   chan bool
	stopOnce      sync.Once
	sessionTTL    time.Duration
	logger        *slog.Logger
}

// NewSessionManager creates a session manager that expires idle sessions
// after ttl. evictor may be nil when the store handles its own expiry.
func NewSessionManager(ttl time.Duration, evictor Evictor, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	m := &SessionManager{
		locks:         make(map[string]*sessionLock),
		evictor:       evictor,
		cleanupTicker: time.NewTicker(time.Minute),
		cleanupDone:   make(chan bool),
		sessionTTL:    ttl,
		logger:        logger,
	}

	go m.cleanupExpiredSessions()

	return m
}

// ErrNoAuthorizationHeader is returned when no Authorization header is provided
var ErrNoAuthorizationHeader = errors.New("no authorization header provided")

// Mint returns a fresh session ID for callers that do not bring one.
func (m *SessionManager) Mint() string {
	return uuid.NewString()
}

// ResolveSessionID resolves the session ID from an HTTP request.
// The Authorization header (Bearer token) identifies the caller, so the
// same token always lands in the same conversation.
func (m *SessionManager) ResolveSessionID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthorizationHeader
	}

	hash := sha256.Sum256([]byte(authHeader))
	return hex.EncodeToString(hash[:]), nil
}

// Acquire takes the lock for one session and returns the release function.
// Callers must invoke release when the turn is finished.
func (m *SessionManager) Acquire(sessionID string) (release func()) {
	m.mu.Lock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		m.locks[sessionID] = lock
	}
	lock.lastAccess = time.Now()
	m.mu.Unlock()

	lock.mu.Lock()
	return lock.mu.Unlock
}

// RemoveSession drops a session's lock state
func (m *SessionManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, sessionID)
}

// ListSessions returns all session IDs the manager has seen recently
func (m *SessionManager) ListSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]string, 0, len(m.locks))
	for sessionID := range m.locks {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// cleanupExpiredSessions periodically drops idle lock state and evicts the
// matching conversation contexts from the store
func (m *SessionManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			now := time.Now()

			m.mu.Lock()
			expiredLocks := 0
			for sessionID, lock := range m.locks {
				if now.Sub(lock.lastAccess) > m.sessionTTL {
					delete(m.locks, sessionID)
					expiredLocks++
				}
			}
			m.mu.Unlock()

			evicted := 0
			if m.evictor != nil {
				evicted = m.evictor.Evict(m.sessionTTL, now)
			}

			if expiredLocks > 0 || evicted > 0 {
				m.logger.Info("Cleaned up expired sessions",
					"locks", expiredLocks, "contexts", evicted)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop stops the session cleanup goroutine. Safe to call more than once.
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		if m.cleanupTicker != nil {
			m.cleanupTicker.Stop()
		}
		if m.cleanupDone != nil {
			close(m.cleanupDone)
		}
	})
}
