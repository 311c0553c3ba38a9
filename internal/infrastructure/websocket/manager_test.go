package websocket

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound/internal/domain/entity"
)

func testMessage(id, itemID, sender, receiver, content string) *entity.Message {
	return &entity.Message{
		ID:         id,
		ItemID:     itemID,
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		CreatedAt:  time.Now(),
	}
}

func TestSubscribeValidation(t *testing.T) {
	m := NewManager()

	_, err := m.Subscribe("", "u1", "u2")
	assert.Error(t, err)

	_, err = m.Subscribe("item-1", "u1", "")
	assert.Error(t, err)

	_, err = m.Subscribe("item-1", "u1", "u1")
	assert.Error(t, err)
}

func TestSubscribeBecomesActive(t *testing.T) {
	m := NewManager()

	sub, err := m.Subscribe("item-1", "u1", "u2")
	require.NoError(t, err)

	assert.Equal(t, StateActive, sub.State())
	assert.Equal(t, 1, m.SubscriberCount("item-1", "u1", "u2"))
}

func TestPublishReachesExactConversationOnly(t *testing.T) {
	m := NewManager()

	sub, err := m.Subscribe("item-1", "u1", "u2")
	require.NoError(t, err)

	// Same item, different counterpart; different item, same pair.
	otherPair, err := m.Subscribe("item-1", "u1", "u3")
	require.NoError(t, err)
	otherItem, err := m.Subscribe("item-2", "u1", "u2")
	require.NoError(t, err)

	m.Publish(testMessage("m1", "item-1", "u1", "u2", "hello"))

	select {
	case got := <-sub.Events():
		assert.Equal(t, "m1", got.ID)
	case <-time.After(time.Second):
		t.Fatal("expected event on matching subscription")
	}

	select {
	case got := <-otherPair.Events():
		t.Fatalf("event leaked to other counterpart: %v", got)
	default:
	}

	select {
	case got := <-otherItem.Events():
		t.Fatalf("event leaked to other item: %v", got)
	default:
	}
}

func TestPublishMatchesUnorderedPair(t *testing.T) {
	m := NewManager()

	// Subscribed as (u2, u1); message flows u1 -> u2.
	sub, err := m.Subscribe("item-1", "u2", "u1")
	require.NoError(t, err)

	m.Publish(testMessage("m1", "item-1", "u1", "u2", "hello"))

	select {
	case got := <-sub.Events():
		assert.Equal(t, "u1", got.SenderID)
	case <-time.After(time.Second):
		t.Fatal("expected event for reversed pair ordering")
	}
}

func TestPublishPreservesOrder(t *testing.T) {
	m := NewManager()

	sub, err := m.Subscribe("item-1", "u1", "u2")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		m.Publish(testMessage(fmt.Sprintf("m%d", i), "item-1", "u1", "u2", "hi"))
	}

	for i := 0; i < 5; i++ {
		select {
		case got := <-sub.Events():
			assert.Equal(t, fmt.Sprintf("m%d", i), got.ID)
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	m := NewManager()

	sub, err := m.Subscribe("item-1", "u1", "u2")
	require.NoError(t, err)

	sub.Close()
	assert.Equal(t, StateClosed, sub.State())
	assert.Equal(t, 0, m.SubscriberCount("item-1", "u1", "u2"))

	// Safe to close again; no transition out of Closed.
	sub.Close()
	assert.Equal(t, StateClosed, sub.State())

	m.Publish(testMessage("m1", "item-1", "u1", "u2", "hello"))

	_, open := <-sub.Events()
	assert.False(t, open, "events channel should be closed")
}

func TestSlowSubscriberIsClosed(t *testing.T) {
	m := NewManager()

	sub, err := m.Subscribe("item-1", "u1", "u2")
	require.NoError(t, err)

	// Never drained: once the buffer overflows the transport is considered
	// dropped and the subscription closed.
	for i := 0; i <= subscriptionBuffer; i++ {
		m.Publish(testMessage(fmt.Sprintf("m%d", i), "item-1", "u1", "u2", "hi"))
	}

	assert.Equal(t, StateClosed, sub.State())
	assert.Equal(t, 0, m.SubscriberCount("item-1", "u1", "u2"))
}

func TestSubscribeConcurrentWithPublish(t *testing.T) {
	// A subscription must be Active by the time Publish can see it. Publishers
	// racing the registration must never close the fresh handle as a dead
	// transport, and a handle that does close must stay Closed.
	for i := 0; i < 200; i++ {
		m := NewManager()

		done := make(chan struct{})
		go func() {
			defer close(done)
			m.Publish(testMessage("m1", "item-1", "u1", "u2", "hi"))
		}()

		sub, err := m.Subscribe("item-1", "u1", "u2")
		require.NoError(t, err)
		<-done

		// Well under the buffer size, so the only way to end up Closed
		// would be the registration race.
		assert.Equal(t, StateActive, sub.State())
		sub.Close()
		assert.Equal(t, StateClosed, sub.State())
	}
}

func TestMultipleSubscribersSameConversation(t *testing.T) {
	m := NewManager()

	a, err := m.Subscribe("item-1", "u1", "u2")
	require.NoError(t, err)
	b, err := m.Subscribe("item-1", "u2", "u1")
	require.NoError(t, err)

	m.Publish(testMessage("m1", "item-1", "u1", "u2", "hello"))

	for _, sub := range []*Subscription{a, b} {
		select {
		case got := <-sub.Events():
			assert.Equal(t, "m1", got.ID)
		case <-time.After(time.Second):
			t.Fatal("both subscribers should receive the event")
		}
	}
}
