package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*RedisPublisher, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisPublisher(client), client
}

func TestPublishToUser(t *testing.T) {
	pub, client := newTestPublisher(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, UserChannel("u1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = pub.PublishToUser(ctx, "u1", Event{
		Type:    EventOrderStatus,
		OrderID: "abc",
		Status:  "processing",
	})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, EventOrderStatus, ev.Type)
		assert.Equal(t, "abc", ev.OrderID)
		assert.Equal(t, "processing", ev.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("aucun message reçu sur le canal utilisateur")
	}
}

func TestBroadcast(t *testing.T) {
	pub, client := newTestPublisher(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, BroadcastChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = pub.Broadcast(ctx, Event{Type: EventOrderCreated, OrderID: "abc", TotalAmount: 30.97})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, EventOrderCreated, ev.Type)
		assert.InDelta(t, 30.97, ev.TotalAmount, 0.001)
	case <-time.After(2 * time.Second):
		t.Fatal("aucun message reçu sur le canal broadcast")
	}
}
