// Package sse pushes shared-state changes (phase transitions, harvests)
// to connected clients over Server-Sent Events. Delivery is best-effort:
// polling remains the authoritative sync path, so a dropped event only
// means the client learns of the change on its next poll.
package sse

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/abenezer101/farmrush/internal/models"
)

const (
	// BufferSize is the per-client event channel capacity
	BufferSize = 10

	// sendTimeout bounds how long a broadcast waits on a slow client
	sendTimeout = 1 * time.Second
)

var debug bool

func init() {
	debug = os.Getenv("DEBUG") != ""
}

// Event is one server-sent event: a name and a JSON payload
type Event struct {
	Name string
	Data string
}

// Broadcaster fans events out to the subscribed clients of each instance
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]map[chan Event]struct{} // instance -> subscribers
}

// NewBroadcaster creates an empty Broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a new client channel for instance
func (b *Broadcaster) Subscribe(instance string) chan Event {
	ch := make(chan Event, BufferSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.clients[instance]
	if !ok {
		subs = make(map[chan Event]struct{})
		b.clients[instance] = subs
	}
	subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a client channel from instance
func (b *Broadcaster) Unsubscribe(instance string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients[instance], ch)
	if len(b.clients[instance]) == 0 {
		delete(b.clients, instance)
	}
}

// ClientCount returns the number of subscribers for instance
func (b *Broadcaster) ClientCount(instance string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[instance])
}

func (b *Broadcaster) broadcast(instance string, ev Event) {
	b.mu.RLock()
	// Collect channels while holding the lock
	chans := make([]chan Event, 0, len(b.clients[instance]))
	for ch := range b.clients[instance] {
		chans = append(chans, ch)
	}
	b.mu.RUnlock()

	if debug {
		log.Printf("sse: event=%s instance=%s to %d clients", ev.Name, instance, len(chans))
	}

	// Send WITHOUT holding the lock
	for _, ch := range chans {
		select {
		case ch <- ev:
		case <-time.After(sendTimeout):
			if debug {
				log.Printf("sse: timeout sending %s to client", ev.Name)
			}
		}
	}
}

// PhaseChanged broadcasts a round phase transition
func (b *Broadcaster) PhaseChanged(instance string, phase models.RoundPhase) {
	data, _ := json.Marshal(struct {
		State models.RoundPhase `json:"state"`
	}{State: phase})
	b.broadcast(instance, Event{Name: EventPhaseChange, Data: string(data)})
}

// CellHarvested broadcasts a confirmed harvest
func (b *Broadcaster) CellHarvested(instance string, cell models.Cell) {
	data, _ := json.Marshal(cell)
	b.broadcast(instance, Event{Name: EventHarvest, Data: string(data)})
}
