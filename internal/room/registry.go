package room

import "sync"

// Registry creates and looks up rooms on demand. Rooms are never destroyed;
// an idle room is a few empty maps.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Get returns the room for a (raw, unsanitized) name, creating it lazily.
func (g *Registry) Get(raw string) *Room {
	id := SanitizeSlug(raw)

	g.mu.RLock()
	r, ok := g.rooms[id]
	g.mu.RUnlock()
	if ok {
		return r
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok = g.rooms[id]; !ok {
		r = newRoom(id)
		g.rooms[id] = r
	}
	return r
}

// All returns a snapshot of the current rooms, for the sweeper.
func (g *Registry) All() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	return out
}
