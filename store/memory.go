package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store. It backs tests and single-node dev
// deployments where no external database is configured.
type Memory struct {
	mu   sync.Mutex
	root map[string]any
	subs map[int]*memSub
	next int
}

type memSub struct {
	path string
	fn   func(json.RawMessage)
}

// NewMemory returns an empty in-memory tree.
func NewMemory() *Memory {
	return &Memory{
		root: make(map[string]any),
		subs: make(map[int]*memSub),
	}
}

func (m *Memory) Get(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valueAt(path)
}

func (m *Memory) Set(_ context.Context, path string, value any) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		return fmt.Errorf("store: empty path")
	}

	// Normalize through JSON so the tree only ever holds plain
	// map[string]any / scalar nodes, whatever the caller passed in.
	buf, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	var node any
	if err := json.Unmarshal(buf, &node); err != nil {
		return fmt.Errorf("store: normalize %s: %w", path, err)
	}

	m.mu.Lock()
	cur := m.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := cur[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			cur[seg] = child
		}
		cur = child
	}
	cur[segs[len(segs)-1]] = node

	// Snapshot matching subscribers and their current values while
	// still holding the lock; invoke after releasing it so callbacks
	// may call back into the store.
	type pending struct {
		fn  func(json.RawMessage)
		raw json.RawMessage
	}
	var fire []pending
	for _, sub := range m.subs {
		if !overlaps(sub.path, path) {
			continue
		}
		raw, err := m.valueAt(sub.path)
		if err != nil {
			continue
		}
		fire = append(fire, pending{sub.fn, raw})
	}
	m.mu.Unlock()

	for _, p := range fire {
		p.fn(p.raw)
	}
	return nil
}

func (m *Memory) Subscribe(path string, fn func(json.RawMessage)) (func(), error) {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = &memSub{path: path, fn: fn}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}, nil
}

// valueAt marshals the node at path, or nil when absent. Caller holds mu.
func (m *Memory) valueAt(path string) (json.RawMessage, error) {
	var node any = m.root
	for _, seg := range splitPath(path) {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, nil
		}
		node, ok = obj[seg]
		if !ok {
			return nil, nil
		}
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", path, err)
	}
	return raw, nil
}
