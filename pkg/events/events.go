package events

import (
	"sync"
	"time"
)

// EventType represents the type of topology event the arbiter publishes.
type EventType string

const (
	EventNodeRegistered    EventType = "node.registered"
	EventNodeStateChanged  EventType = "node.state_changed"
	EventNodeReaped        EventType = "node.reaped"
	EventVersionAdvanced   EventType = "registry.version_advanced"
	EventMigrationRequired EventType = "node.migration_required"
)

// Event represents a single topology change. NodeAddr and State are set for
// node-scoped events; Version always carries the registry's arb_version at
// the time the event was produced, since every WatchTopology subscriber (a
// GroupShard node) needs it to detect whether it missed an update.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	NodeAddr  string
	State     string
	Version   uint64
	Metadata  map[string]string
}

// Subscriber is a channel that receives events. The arbiter's WatchTopology
// RPC handler subscribes one of these per connected shard node and streams
// whatever arrives on it back over gRPC.
type Subscriber chan *Event

// Broker manages event subscriptions and distribution for the arbiter's
// topology-change fan-out.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100), // Buffer up to 100 events
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50) // Buffer per subscriber
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers
func (b *Broker) Publish(event *Event) {
	// Set timestamp if not set
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
