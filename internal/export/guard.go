package export

import "sync"

// inflight is the set of document IDs with an export in progress
type inflight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{ids: make(map[string]struct{})}
}

func (g *inflight) acquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.ids[id]; busy {
		return false
	}
	g.ids[id] = struct{}{}
	return true
}

func (g *inflight) release(id string) {
	g.mu.Lock()
	delete(g.ids, id)
	g.mu.Unlock()
}

func (g *inflight) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids)
}
