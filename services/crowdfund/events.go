package crowdfund

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a state transition or financial movement.
type EventType string

const (
	EventCampaignCreated   EventType = "campaign_created"
	EventDonationReceived  EventType = "donation_received"
	EventCampaignPaused    EventType = "campaign_paused"
	EventCampaignResumed   EventType = "campaign_resumed"
	EventCampaignSucceeded EventType = "campaign_succeeded"
	EventCampaignFailed    EventType = "campaign_failed"
	EventRefundIssued      EventType = "refund_issued"
)

// Event is one append-only record. Seq is a dense per-log sequence number;
// exactly one event is appended per accepted state-changing operation.
type Event struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	Type       EventType `json:"type"`
	CampaignID int64     `json:"campaign_id"`
	Actor      string    `json:"actor,omitempty"`
	Amount     int64     `json:"amount,omitempty"`

	// RecipientVerified carries the creation-time verification snapshot on
	// campaign_created events. Display only.
	RecipientVerified bool `json:"recipient_verified,omitempty"`

	At time.Time `json:"at"`
}

// EventLog is the ordered append-only record of accepted operations, with
// fan-out to live subscribers.
type EventLog struct {
	mu      sync.RWMutex
	events  []Event
	subs    map[int64]chan Event
	nextSub int64
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{subs: make(map[int64]chan Event)}
}

// Append records an event, assigning its sequence number and ID, and fans it
// out to subscribers. Slow subscribers are skipped rather than blocking the
// engine.
func (l *EventLog) Append(e Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.ID = uuid.New().String()
	e.Seq = int64(len(l.events))
	l.events = append(l.events, e)

	for _, ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return e
}

// Events returns a snapshot of all recorded events in order.
func (l *EventLog) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Subscribe registers a live event channel. The returned cancel function
// unregisters and closes it.
func (l *EventLog) Subscribe() (<-chan Event, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	ch := make(chan Event, 64)
	l.subs[id] = ch

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if sub, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
