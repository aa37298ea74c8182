package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, s *Subscription) *Message {
	t.Helper()
	select {
	case m, ok := <-s.Channel():
		require.True(t, ok, "channel closed")
		return m
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func expectNone(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case m := <-s.Channel():
		t.Fatalf("unexpected message on %v: %v", m.Topic, m.Payload)
	default:
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		filter, topic Topic
		want          bool
	}{
		{Topic{"a", "b"}, Topic{"a", "b"}, true},
		{Topic{"a", "b"}, Topic{"a"}, false},
		{Topic{"a"}, Topic{"a", "b"}, false},
		{Topic{"a", "+"}, Topic{"a", "x"}, true},
		{Topic{"a", "+"}, Topic{"a", "x", "y"}, false},
		{Topic{"a", "#"}, Topic{"a"}, true},
		{Topic{"a", "#"}, Topic{"a", "x", "y"}, true},
		{Topic{"#"}, Topic{"z"}, true},
		{Topic{"#", "a"}, Topic{"x", "a"}, false},
		{Topic{"+", "+", "value"}, Topic{"ad7745", "cap0", "value"}, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.filter.Match(tc.topic), "%v ~ %v", tc.filter, tc.topic)
	}
}

func TestPubSub(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")
	exact := c.Subscribe(Topic{"ad7745", "cap0", "value"})
	wild := c.Subscribe(Topic{"ad7745", "+", "value"})
	other := c.Subscribe(Topic{"ad7745", "cap1", "#"})

	c.Publish(b.NewMessage(Topic{"ad7745", "cap0", "value"}, 1.5, false))
	assert.Equal(t, 1.5, recv(t, exact).Payload)
	assert.Equal(t, 1.5, recv(t, wild).Payload)
	expectNone(t, other)
}

func TestRetained(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")
	topic := Topic{"ad7745", "cap0", "fault"}

	c.Publish(b.NewMessage(topic, "first", true))
	c.Publish(b.NewMessage(topic, "second", true))
	s := c.Subscribe(Topic{"ad7745", "#"})
	assert.Equal(t, "second", recv(t, s).Payload)
	expectNone(t, s)

	c.Publish(b.NewMessage(topic, nil, true))
	assert.Nil(t, recv(t, s).Payload)
	late := c.Subscribe(topic)
	expectNone(t, late)
}

func TestFullQueueDropsOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	s := c.Subscribe(Topic{"x"})
	for i := 1; i <= 3; i++ {
		c.Publish(b.NewMessage(Topic{"x"}, i, false))
	}
	assert.Equal(t, 2, recv(t, s).Payload)
	assert.Equal(t, 3, recv(t, s).Payload)
}

func TestUnsubscribeAndDisconnect(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	assert.Equal(t, "test", c.ID())
	s1 := c.Subscribe(Topic{"x"})
	s2 := c.Subscribe(Topic{"y"})

	s1.Unsubscribe()
	s1.Unsubscribe()
	_, ok := <-s1.Channel()
	assert.False(t, ok)

	c.Disconnect()
	_, ok = <-s2.Channel()
	assert.False(t, ok)

	// Publishing after disconnect must not panic on closed channels.
	c.Publish(b.NewMessage(Topic{"y"}, 1, false))
}
