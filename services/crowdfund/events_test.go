package crowdfund

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogAppendAssignsSequence(t *testing.T) {
	l := NewEventLog()

	first := l.Append(Event{Type: EventCampaignCreated, CampaignID: 0})
	second := l.Append(Event{Type: EventDonationReceived, CampaignID: 0, Amount: 4})

	assert.Equal(t, int64(0), first.Seq)
	assert.Equal(t, int64(1), second.Seq)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	events := l.Events()
	require.Len(t, events, 2)
	assert.Equal(t, first, events[0])
	assert.Equal(t, second, events[1])
}

func TestEventLogSnapshotIsolation(t *testing.T) {
	l := NewEventLog()
	l.Append(Event{Type: EventCampaignCreated})

	snapshot := l.Events()
	l.Append(Event{Type: EventDonationReceived})

	assert.Len(t, snapshot, 1)
	assert.Len(t, l.Events(), 2)
}

func TestEventLogSubscribe(t *testing.T) {
	l := NewEventLog()

	ch, cancel := l.Subscribe()
	defer cancel()

	l.Append(Event{Type: EventDonationReceived, Amount: 4})

	select {
	case event := <-ch:
		assert.Equal(t, EventDonationReceived, event.Type)
		assert.Equal(t, int64(4), event.Amount)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestEventLogCancelClosesChannel(t *testing.T) {
	l := NewEventLog()

	ch, cancel := l.Subscribe()
	cancel()
	// Idempotent.
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// Appending after cancel must not panic.
	l.Append(Event{Type: EventCampaignCreated})
}

func TestEventLogSlowSubscriberDoesNotBlock(t *testing.T) {
	l := NewEventLog()

	ch, cancel := l.Subscribe()
	defer cancel()

	// Overflow the buffer; Append must never block the engine.
	for i := 0; i < 200; i++ {
		l.Append(Event{Type: EventDonationReceived, Amount: int64(i)})
	}

	assert.Len(t, l.Events(), 200)
	assert.Equal(t, 64, len(ch))
}
