package domain

import (
	"sync"
	"time"
)

type Event interface {
	Type() string
	PublishedAt() time.Time
}

// Aggregate collects domain events until a unit of work publishes them.
type Aggregate struct {
	mu     sync.Mutex
	events []Event
}

func (a *Aggregate) PopEvents() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	events := a.events
	a.events = make([]Event, 0)
	return events
}

func (a *Aggregate) PushEvent(e Event) {
	a.mu.Lock()
	a.events = append(a.events, e)
	a.mu.Unlock()
}
