package realtime

import "sync"

// Registry is the in-process presence map: user identity to the set of live
// connection ids and back. A user with several devices holds several
// connections; they are online while at least one remains. Constructed at
// process start and shared by every connection handler, so all access is
// mutex-synchronized.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]map[string]struct{} // userID -> set of connection ids
	users       map[string]string              // connectionID -> userID
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]map[string]struct{}),
		users:       make(map[string]string),
	}
}

// Register records a live connection for the user.
func (r *Registry) Register(userID, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.connections[userID]
	if set == nil {
		set = make(map[string]struct{})
		r.connections[userID] = set
	}
	set[connectionID] = struct{}{}
	r.users[connectionID] = userID
}

// Unregister drops a connection. Unknown ids are a no-op so disconnect paths
// can call it unconditionally.
func (r *Registry) Unregister(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.users[connectionID]
	if !ok {
		return
	}
	delete(r.users, connectionID)

	set := r.connections[userID]
	delete(set, connectionID)
	if len(set) == 0 {
		delete(r.connections, userID)
	}
}

// IsOnline reports whether the user has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections[userID]) > 0
}

// ConnectionsFor returns the user's live connection ids.
func (r *Registry) ConnectionsFor(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.connections[userID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
