package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Canaux pub/sub. Les websockets connectés s'abonnent au canal de leur
// utilisateur ; les sockets admin s'abonnent en plus au canal broadcast.
const (
	BroadcastChannel  = "notify:admins"
	userChannelPrefix = "notify:user:"
)

// UserChannel retourne le canal direct d'un utilisateur.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// RedisPublisher publie les événements sur Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishToUser(ctx context.Context, userID string, event Event) error {
	return p.publish(ctx, UserChannel(userID), event)
}

func (p *RedisPublisher) Broadcast(ctx context.Context, event Event) error {
	return p.publish(ctx, BroadcastChannel, event)
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, payload).Err()
}
