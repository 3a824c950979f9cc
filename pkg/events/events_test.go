package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	broker := NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)
	assert.Equal(t, 1, broker.SubscriberCount())

	broker.Publish(New(EventDeviceParsed, "parsed core-sw1", map[string]string{
		"project_id": "p1",
		"device":     "core-sw1",
	}))

	select {
	case ev := <-sub:
		assert.Equal(t, EventDeviceParsed, ev.Type)
		assert.Equal(t, "core-sw1", ev.Metadata["device"])
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBrokerSlowSubscriberDoesNotBlock(t *testing.T) {
	broker := NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	// Overfill the per-subscriber buffer; publishes must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			broker.Publish(New(EventDocumentUploaded, "upload", nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}

	// Drain whatever made it through.
	received := 0
	for {
		select {
		case <-sub:
			received++
		case <-time.After(100 * time.Millisecond):
			require.Greater(t, received, 0)
			return
		}
	}
}
