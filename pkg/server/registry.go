package server

import (
	"errors"
	"strings"
	"sync"

	"github.com/NicolasHaas/wirechat/pkg/model"
	"github.com/google/uuid"
)

var ErrUsernameTaken = errors.New("server: username already taken")

// Registry is the process-wide table of live connections, keyed by the
// session's opaque connection identity. It also maintains a case-insensitive
// username index over authenticated sessions, which serves LOGIN uniqueness
// checks, WHO listings, and DM target resolution. All mutation goes through
// the registry mutex; connection goroutines never touch the maps directly.
type Registry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client // every live connection, anonymous included
	byName  map[string]*client    // lower-cased username -> authenticated client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[uuid.UUID]*client),
		byName:  make(map[string]*client),
	}
}

// Add inserts a freshly accepted, still-anonymous connection.
func (r *Registry) Add(c *client) {
	r.mu.Lock()
	r.clients[c.sess.ID] = c
	r.mu.Unlock()
}

// Bind attempts the Anonymous -> Authenticated transition for c under the
// registry lock, so that of two connections racing to LOGIN with the same
// name exactly one wins. On success the username is set (never to change
// again) and the client becomes visible to WHO, DM, and broadcast fan-out.
func (r *Registry) Bind(c *client, name string) error {
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[key]; taken {
		return ErrUsernameTaken
	}
	c.sess.Username = name
	c.sess.State = model.StateAuthenticated
	r.byName[key] = c
	return nil
}

// Remove deletes a connection from the registry and reports whether it had
// been authenticated, which decides whether a disconnect notice is owed.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return false
	}
	delete(r.clients, id)
	if c.sess.Username == "" {
		return false
	}
	delete(r.byName, strings.ToLower(c.sess.Username))
	return true
}

// FindByUsername resolves a username case-insensitively against
// authenticated sessions only.
func (r *Registry) FindByUsername(name string) (*client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[strings.ToLower(name)]
	return c, ok
}

// Usernames returns the canonical usernames of all authenticated sessions.
// Order follows map iteration and is deliberately unspecified.
func (r *Registry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for _, c := range r.byName {
		names = append(names, c.sess.Username)
	}
	return names
}

// Broadcast queues line for every authenticated session except the one
// identified by except. Delivery is best-effort: a client whose outbound
// buffer is full is detached rather than allowed to stall the rest.
func (r *Registry) Broadcast(line string, except uuid.UUID) int {
	r.mu.RLock()
	targets := make([]*client, 0, len(r.byName))
	for _, c := range r.byName {
		if c.sess.ID != except {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.deliver(line) {
			delivered++
		}
	}
	return delivered
}

// All returns a snapshot of every live connection, anonymous included.
// Used by the shutdown drain, which must reach clients that never logged in.
func (r *Registry) All() []*client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*client, 0, len(r.clients))
	for _, c := range r.clients {
		all = append(all, c)
	}
	return all
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CountAuthenticated returns the number of authenticated sessions.
func (r *Registry) CountAuthenticated() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
