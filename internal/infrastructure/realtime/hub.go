package realtime

import "sync"

// Hub coordinates live sessions and logical rooms (one room per
// conversation). Unlike presence, room membership is per session: two devices
// of one user may sit in different rooms. Presence registration is kept in
// lockstep with attach/detach so the delivery path and the fan-out path never
// disagree about who is online.
//
// The hub is single-process; sharing rooms across nodes would hang a pub/sub
// backend off Broadcast.
type Hub struct {
	presence *Registry

	mu           sync.RWMutex
	sessions     map[string]Session             // sessionID -> session
	rooms        map[string]map[string]Session  // conversationID -> sessionID -> session
	sessionRooms map[string]map[string]struct{} // sessionID -> set of conversationIDs
}

// NewHub constructs a Hub bound to the given presence registry.
func NewHub(presence *Registry) *Hub {
	return &Hub{
		presence:     presence,
		sessions:     make(map[string]Session),
		rooms:        make(map[string]map[string]Session),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Presence exposes the registry the hub keeps in sync.
func (h *Hub) Presence() *Registry { return h.presence }

// Attach registers a session and marks its user online. Multiple sessions per
// user are allowed.
func (h *Hub) Attach(sess Session) {
	h.mu.Lock()
	h.sessions[sess.SessionID()] = sess
	h.sessionRooms[sess.SessionID()] = make(map[string]struct{})
	h.mu.Unlock()

	h.presence.Register(sess.UserID(), sess.SessionID())
}

// Detach removes a session from every room and unregisters its presence.
func (h *Hub) Detach(sess Session) {
	h.mu.Lock()
	h.detachLocked(sess.SessionID())
	h.mu.Unlock()

	h.presence.Unregister(sess.SessionID())
}

// Join adds the session to the conversation room.
func (h *Hub) Join(conversationID string, sess Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[sess.SessionID()]; !ok {
		return
	}
	room := h.rooms[conversationID]
	if room == nil {
		room = make(map[string]Session)
		h.rooms[conversationID] = room
	}
	room[sess.SessionID()] = sess
	h.sessionRooms[sess.SessionID()][conversationID] = struct{}{}
}

// Leave removes the session from the conversation room.
func (h *Hub) Leave(conversationID string, sess Session) {
	h.mu.Lock()
	h.leaveLocked(conversationID, sess.SessionID())
	h.mu.Unlock()
}

// InRoom reports whether any of the user's sessions is subscribed to the room.
func (h *Hub) InRoom(conversationID, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sess := range h.rooms[conversationID] {
		if sess.UserID() == userID {
			return true
		}
	}
	return false
}

// Broadcast writes payload to all members in the conversation room.
// excludeUserID, when non-empty, skips every session of that user. Returns
// the number of sessions the payload was handed to.
func (h *Hub) Broadcast(conversationID string, payload []byte, excludeUserID string) int {
	h.mu.RLock()
	room := h.rooms[conversationID]
	targets := make([]Session, 0, len(room))
	for _, sess := range room {
		if excludeUserID != "" && sess.UserID() == excludeUserID {
			continue
		}
		targets = append(targets, sess)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sess := range targets {
		if err := sess.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUser delivers payload to every live session of the given user.
func (h *Hub) NotifyUser(userID string, payload []byte) bool {
	h.mu.RLock()
	var targets []Session
	for _, sess := range h.sessions {
		if sess.UserID() == userID {
			targets = append(targets, sess)
		}
	}
	h.mu.RUnlock()

	ok := false
	for _, sess := range targets {
		if err := sess.Send(payload); err == nil {
			ok = true
		}
	}
	return ok
}

// Close clears all hub state. Connections are owned by their handlers and are
// closed there.
func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	for _, id := range ids {
		h.detachLocked(id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.presence.Unregister(id)
	}
}

func (h *Hub) detachLocked(sessionID string) {
	if _, ok := h.sessions[sessionID]; !ok {
		return
	}
	delete(h.sessions, sessionID)
	for roomID := range h.sessionRooms[sessionID] {
		h.leaveLocked(roomID, sessionID)
	}
	delete(h.sessionRooms, sessionID)
}

func (h *Hub) leaveLocked(conversationID, sessionID string) {
	room := h.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
	if memberships, ok := h.sessionRooms[sessionID]; ok {
		delete(memberships, conversationID)
	}
}
