package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	b := NewBroker()
	var calls atomic.Int32

	unsub := b.Subscribe("fam1", TopicMembers, func() {
		calls.Add(1)
	})
	defer unsub()

	waitFor(t, time.Second, func() bool { return calls.Load() == 1 })
}

func TestPublishNotifiesSubscribers(t *testing.T) {
	b := NewBroker()
	var calls atomic.Int32

	unsub := b.Subscribe("fam1", TopicAttendance, func() {
		calls.Add(1)
	})
	defer unsub()

	waitFor(t, time.Second, func() bool { return calls.Load() == 1 })

	b.Publish("fam1", TopicAttendance)
	waitFor(t, time.Second, func() bool { return calls.Load() == 2 })
}

func TestPublishScopedByFamilyAndTopic(t *testing.T) {
	b := NewBroker()
	var fam1Calls, fam2Calls atomic.Int32

	unsub1 := b.Subscribe("fam1", TopicNotes, func() { fam1Calls.Add(1) })
	defer unsub1()
	unsub2 := b.Subscribe("fam2", TopicNotes, func() { fam2Calls.Add(1) })
	defer unsub2()

	waitFor(t, time.Second, func() bool {
		return fam1Calls.Load() == 1 && fam2Calls.Load() == 1
	})

	b.Publish("fam1", TopicNotes)
	b.Publish("fam1", TopicMembers) // different topic, no subscriber

	waitFor(t, time.Second, func() bool { return fam1Calls.Load() == 2 })
	if fam2Calls.Load() != 1 {
		t.Errorf("fam2 saw fam1's publish: %d calls", fam2Calls.Load())
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker()
	var calls atomic.Int32

	unsub := b.Subscribe("fam1", TopicMembers, func() { calls.Add(1) })
	waitFor(t, time.Second, func() bool { return calls.Load() == 1 })

	unsub()
	if got := b.SubscriberCount("fam1", TopicMembers); got != 0 {
		t.Errorf("subscriber count after unsubscribe = %d, want 0", got)
	}

	b.Publish("fam1", TopicMembers)
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("callback ran after unsubscribe: %d calls", calls.Load())
	}

	// Double unsubscribe is safe
	unsub()
}

func TestPublishCoalescesWhileBusy(t *testing.T) {
	b := NewBroker()
	var calls atomic.Int32
	release := make(chan struct{})
	var once sync.Once

	unsub := b.Subscribe("fam1", TopicMembers, func() {
		if calls.Add(1) == 1 {
			<-release // block the first delivery
		}
	})
	defer unsub()

	waitFor(t, time.Second, func() bool { return calls.Load() == 1 })

	// Many publishes while the consumer is busy collapse into one refresh
	for i := 0; i < 10; i++ {
		b.Publish("fam1", TopicMembers)
	}
	once.Do(func() { close(release) })

	waitFor(t, time.Second, func() bool { return calls.Load() == 2 })
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 2 {
		t.Errorf("expected coalesced single refresh, got %d calls", calls.Load()-1)
	}
}

func TestSubscriberPanicDoesNotKillLoop(t *testing.T) {
	b := NewBroker()
	var calls atomic.Int32

	unsub := b.Subscribe("fam1", TopicMembers, func() {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	})
	defer unsub()

	waitFor(t, time.Second, func() bool { return calls.Load() == 1 })
	b.Publish("fam1", TopicMembers)
	waitFor(t, time.Second, func() bool { return calls.Load() == 2 })
}

// flakyPinger fails after a configurable number of successes
type flakyPinger struct {
	mu        sync.Mutex
	successes int
}

func (p *flakyPinger) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.successes > 0 {
		p.successes--
		return nil
	}
	return errors.New("connection refused")
}

func TestStatusMonitorReportsTransitions(t *testing.T) {
	pinger := &flakyPinger{successes: 1}
	monitor := NewStatusMonitor(pinger, 10*time.Millisecond)

	var mu sync.Mutex
	var states []bool
	unsub := monitor.Subscribe(func(connected bool) {
		mu.Lock()
		states = append(states, connected)
		mu.Unlock()
	})
	defer unsub()

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) >= 2
	})

	mu.Lock()
	defer mu.Unlock()
	if !states[0] {
		t.Error("first probe should succeed")
	}
	if states[len(states)-1] {
		t.Error("later probes should report disconnected")
	}
	if monitor.Connected() {
		t.Error("Connected() should reflect the failed probe")
	}
}
