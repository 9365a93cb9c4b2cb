package realtime

import (
	"log"
	"sync"
)

// Topic identifies one live-updating collection within a family
type Topic string

const (
	TopicMembers    Topic = "members"
	TopicAttendance Topic = "attendance"
	TopicNotes      Topic = "notes"
)

// Broker fans change notifications out to live subscribers, keyed by
// (family, topic). Stores publish after every mutation; each subscriber then
// recomputes its full snapshot and pushes it to its consumer. Notifications
// coalesce: a subscriber that is still processing sees at most one pending
// signal, which is fine because every delivery is a total snapshot.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[*subscription]struct{}
}

type subscription struct {
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewBroker creates an empty broker
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*subscription]struct{})}
}

func key(familyID string, topic Topic) string {
	return familyID + "|" + string(topic)
}

// Subscribe registers fn to run once immediately and again after every
// publish on (familyID, topic). It returns a disposer; calling it releases
// the subscription and is safe to call more than once. Overlapping
// subscriptions on the same topic are independent.
func (b *Broker) Subscribe(familyID string, topic Topic, fn func()) func() {
	sub := &subscription{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	// initial snapshot delivery
	sub.signal <- struct{}{}

	k := key(familyID, topic)
	b.mu.Lock()
	if b.subs[k] == nil {
		b.subs[k] = make(map[*subscription]struct{})
	}
	b.subs[k][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-sub.done:
				return
			case <-sub.signal:
				func() {
					defer logRecover()
					fn()
				}()
			}
		}
	}()

	return func() {
		sub.once.Do(func() {
			close(sub.done)
			b.mu.Lock()
			delete(b.subs[k], sub)
			if len(b.subs[k]) == 0 {
				delete(b.subs, k)
			}
			b.mu.Unlock()
		})
	}
}

// Publish signals every subscriber of (familyID, topic)
func (b *Broker) Publish(familyID string, topic Topic) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[key(familyID, topic)] {
		select {
		case sub.signal <- struct{}{}:
		default:
			// a refresh is already pending; it will pick up this change
		}
	}
}

// SubscriberCount reports active subscriptions for a topic, used by tests
// and the status endpoint
func (b *Broker) SubscriberCount(familyID string, topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[key(familyID, topic)])
}

// logRecover keeps a panicking consumer callback from killing the process
func logRecover() {
	if r := recover(); r != nil {
		log.Printf("realtime: subscriber callback panicked: %v", r)
	}
}
