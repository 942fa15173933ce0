package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/meetwise/meetwise/internal/engine"
	"github.com/meetwise/meetwise/internal/instrumentation"
)

// ServerContext holds the context for the MCP server: the scheduling engine,
// the session manager, and shutdown state shared by all tools.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	engine      *engine.Engine
	sessions    *SessionManager
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, eng *engine.Engine, sessions *SessionManager) (*ServerContext, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager cannot be nil")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		engine:   eng,
		sessions: sessions,
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Engine returns the scheduling engine.
func (sc *ServerContext) Engine() *engine.Engine {
	return sc.engine
}

// Sessions returns the session manager.
func (sc *ServerContext) Sessions() *SessionManager {
	return sc.sessions
}

// SetInstrumentation attaches a metrics recorder and audit logger. Both are
// optional; tools skip recording when they are nil.
func (sc *ServerContext) SetInstrumentation(metrics *instrumentation.Metrics, auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
	sc.auditLogger = auditLogger
}

// Metrics returns the metrics recorder, or nil when none is configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when none is configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// HandleMessage runs one conversation turn with per-session serialization:
// overlapping messages for the same session id are queued, never
// interleaved, while distinct sessions proceed concurrently.
func (sc *ServerContext) HandleMessage(ctx context.Context, sessionID, utterance string) (*engine.Reply, error) {
	if sc.IsShutdown() {
		return nil, fmt.Errorf("server is shutting down")
	}

	release := sc.sessions.Acquire(sessionID)
	defer release()

	return sc.engine.HandleMessage(ctx, sessionID, utterance)
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context and stops the session manager.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.sessions.Stop()
	sc.cancel()
	return nil
}
