package session

import (
	"sync"

	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

type EventKind string

const (
	EventBusinessChanged EventKind = "businessChanged"
	EventPropertyChanged EventKind = "propertyChanged"
)

// Event is the typed change notification delivered to subscribers after a
// context mutation has been persisted. Failed switch attempts never emit.
type Event struct {
	Kind     EventKind
	Business *model.Business
	Property *model.Property
}

type subscribers struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

// Subscribe registers fn for context change events and returns an
// unsubscribe function. Delivery is synchronous and in subscription order.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.subs.mu.Lock()
	defer m.subs.mu.Unlock()
	if m.subs.subs == nil {
		m.subs.subs = make(map[int]func(Event))
	}
	id := m.subs.next
	m.subs.next++
	m.subs.subs[id] = fn
	return func() {
		m.subs.mu.Lock()
		defer m.subs.mu.Unlock()
		delete(m.subs.subs, id)
	}
}

func (m *Manager) notify(e Event) {
	m.subs.mu.Lock()
	fns := make([]func(Event), 0, len(m.subs.subs))
	for i := 0; i < m.subs.next; i++ {
		if fn, ok := m.subs.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	m.subs.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
