package physics

import (
	"fmt"
	"sync"
)

type EventKind uint8

const (
	EventHit EventKind = iota
	EventUnHit
	EventLimitEOS
	EventLimitBOS
	EventSlingshot
	EventSpin
)

var eventKindNames = [...]string{
	EventHit:       "hit",
	EventUnHit:     "unhit",
	EventLimitEOS:  "limit_eos",
	EventLimitBOS:  "limit_bos",
	EventSlingshot: "slingshot",
	EventSpin:      "spin",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("event(%d)", k)
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EventKind) UnmarshalText(b []byte) error {
	for i, n := range eventKindNames {
		if n == string(b) {
			*k = EventKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", b)
}

// Event is a gameplay event produced during a frame.
type Event struct {
	Kind  EventKind `json:"kind"`
	Item  ItemID    `json:"item"`
	Ball  BallID    `json:"ball"`
	Speed float32   `json:"speed"` // impact normal speed, or angular speed in degrees for limit events
	Frame uint64    `json:"frame"`
	Time  float32   `json:"time"` // time into the frame
}

// EventQueue is an append-only, multi-producer event list drained once per
// frame by a single consumer.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

func NewEventQueue() *EventQueue {
	return &EventQueue{events: make([]Event, 0, 64)}
}

// Push appends an event. Safe for concurrent producers.
func (q *EventQueue) Push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain returns all pending events in push order and empties the queue.
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]Event, 0, cap(out))
	return out
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
