package agent

import (
	"context"
	"sync"
)

// StateReadWriter provides read/write access to session state using the
// context for routing.
type StateReadWriter interface {
	InitState(ctx context.Context) *State
	Read(ctx context.Context) (*State, error)
	Write(ctx context.Context, state *State) error
	Remove(ctx context.Context) error
}

type sessionIDContext struct{}

const defaultSessionID = "default"

// WithSessionID sets the routing key for state storage in the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDContext{}, id)
}

// SessionIDFromContext gets the routing key from the context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionIDContext{})
	if value == nil {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}

func sessionIDOrDefault(ctx context.Context) string {
	if id, ok := SessionIDFromContext(ctx); ok && id != "" {
		return id
	}
	return defaultSessionID
}

// MemoryStateReadWriter is an in-memory implementation for testing and
// single-process usage.
type MemoryStateReadWriter struct {
	mu     sync.RWMutex
	states map[string]*State
}

func NewMemoryStateReadWriter() *MemoryStateReadWriter {
	return &MemoryStateReadWriter{states: map[string]*State{}}
}

func (m *MemoryStateReadWriter) InitState(ctx context.Context) *State {
	return NewSession(sessionIDOrDefault(ctx)).State()
}

func (m *MemoryStateReadWriter) Read(ctx context.Context) (*State, error) {
	m.mu.RLock()
	state, ok := m.states[sessionIDOrDefault(ctx)]
	m.mu.RUnlock()
	if ok {
		return state, nil
	}
	return m.InitState(ctx), nil
}

func (m *MemoryStateReadWriter) Write(ctx context.Context, state *State) error {
	m.mu.Lock()
	m.states[sessionIDOrDefault(ctx)] = state
	m.mu.Unlock()
	return nil
}

func (m *MemoryStateReadWriter) Remove(ctx context.Context) error {
	m.mu.Lock()
	delete(m.states, sessionIDOrDefault(ctx))
	m.mu.Unlock()
	return nil
}
