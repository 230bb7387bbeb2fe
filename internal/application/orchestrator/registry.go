package orchestrator

import (
	"sync"

	"github.com/google/uuid"
)

// Registry hands out one orchestrator per user.
type Registry struct {
	mu    sync.Mutex
	users map[uuid.UUID]*Orchestrator
	opts  []Option
}

// NewRegistry creates a registry whose orchestrators share opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		users: make(map[uuid.UUID]*Orchestrator),
		opts:  opts,
	}
}

// For returns the user's orchestrator, creating it on first use.
func (r *Registry) For(userID uuid.UUID) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.users[userID]; ok {
		return o
	}
	o := New(r.opts...)
	o.logger = o.logger.WithUserID(userID.String())
	r.users[userID] = o
	return o
}

// Forget drops the user's orchestrator, e.g. on sign-out.
func (r *Registry) Forget(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
}
