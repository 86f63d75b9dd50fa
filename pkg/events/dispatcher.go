package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	OutcomePublished = "published"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

type envelope struct {
	topic   string
	key     string
	payload map[string]any
}

// Dispatcher hands events to a Publisher from a single background worker so
// request handlers never wait on the broker. Delivery is best effort.
type Dispatcher struct {
	pub Publisher
	log *slog.Logger

	// OnResult, when set, is told how each event ended up.
	OnResult func(topic, outcome string)

	mu     sync.RWMutex
	closed bool
	ch     chan envelope
	wg     sync.WaitGroup
}

func NewDispatcher(pub Publisher, buffer int, log *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{pub: pub, log: log, ch: make(chan envelope, buffer)}
	d.wg.Add(1)
	go d.run()
	return d
}

// Emit enqueues an event. "type", "event_id" and "occurred_at" are added to
// the payload. A full buffer or a closed dispatcher drops the event.
func (d *Dispatcher) Emit(topic, key, eventType string, payload map[string]any) {
	msg := make(map[string]any, len(payload)+3)
	for k, v := range payload {
		msg[k] = v
	}
	msg["type"] = eventType
	msg["event_id"] = uuid.NewString()
	msg["occurred_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.result(topic, OutcomeDropped)
		return
	}
	select {
	case d.ch <- envelope{topic: topic, key: key, payload: msg}:
	default:
		d.log.Warn("event_dropped", "topic", topic, "type", eventType, "reason", "buffer full")
		d.result(topic, OutcomeDropped)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.ch {
		if err := d.pub.PublishEvent(context.Background(), ev.topic, ev.key, ev.payload); err != nil {
			d.log.Error("event_publish_failed", "topic", ev.topic, "type", ev.payload["type"], "error", err)
			d.result(ev.topic, OutcomeFailed)
			continue
		}
		d.result(ev.topic, OutcomePublished)
	}
}

func (d *Dispatcher) result(topic, outcome string) {
	if d.OnResult != nil {
		d.OnResult(topic, outcome)
	}
}

// Close stops accepting events, drains the queue and closes the publisher.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()

	d.wg.Wait()
	return d.pub.Close()
}
