package registry

import (
	"sort"
	"sync"
)

// MemoryRegistry is a non-persistent Registry, primarily for tests.
type MemoryRegistry struct {
	mutex   sync.RWMutex
	entries map[int]Entry
}

func NewMemory() *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[int]Entry)}
}

func (r *MemoryRegistry) Record(e Entry) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.entries[e.Port] = e
	return nil
}

func (r *MemoryRegistry) Lookup(port int) (Entry, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	e, ok := r.entries[port]
	return e, ok, nil
}

func (r *MemoryRegistry) Remove(port int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.entries, port)
	return nil
}

func (r *MemoryRegistry) List() ([]Entry, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Port < entries[j].Port })
	return entries, nil
}

func (r *MemoryRegistry) Close() error { return nil }
