package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/db"
	"storefront/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// DefaultChannel is the Redis channel catalog events are relayed on.
const DefaultChannel = "storefront:catalog-events"

const (
	publishTimeout = 2 * time.Second
	outboxSize     = 256
)

// Broadcaster delivers an event to the clients of this process.
type Broadcaster interface {
	Notify(event models.Event)
}

// RemoteApplier folds an event from another instance into the local catalog
// and passes it on to local. db.CatalogStore implements it.
type RemoteApplier interface {
	ApplyRemote(event models.Event, local db.Notifier) error
}

// RedisRelay fans catalog events out across server instances. Events are
// delivered to local clients immediately and queued for publishing, so a slow
// Redis never holds up the caller. Events received from other instances are
// applied to the local catalog, which then broadcasts them locally.
type RedisRelay struct {
	client     *redis.Client
	channel    string
	catalog    RemoteApplier
	local      Broadcaster
	instanceID string
	outbox     chan []byte
}

type relayMessage struct {
	Origin string          `json:"origin"`
	Event  models.RawEvent `json:"event"`
}

// NewRedisRelay connects to redisURL (redis://...) and verifies it with PING.
func NewRedisRelay(ctx context.Context, redisURL string, catalog RemoteApplier, local Broadcaster) (*RedisRelay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newRedisRelay(client, DefaultChannel, catalog, local), nil
}

func newRedisRelay(client *redis.Client, channel string, catalog RemoteApplier, local Broadcaster) *RedisRelay {
	return &RedisRelay{
		client:     client,
		channel:    channel,
		catalog:    catalog,
		local:      local,
		instanceID: uuid.NewString(),
		outbox:     make(chan []byte, outboxSize),
	}
}

// Notify delivers event locally and queues it for the other instances. It
// does not wait on Redis; when the queue is full the event is dropped for the
// other instances and logged.
func (r *RedisRelay) Notify(event models.Event) {
	r.local.Notify(event)

	payload, err := r.encode(event)
	if err != nil {
		log.WithError(err).WithField("event", event.Name).Error("Failed to encode relay message")
		return
	}
	select {
	case r.outbox <- payload:
	default:
		log.WithField("event", event.Name).Warn("Relay outbox full, event not published")
	}
}

// Run publishes queued events and subscribes to the relay channel until ctx
// is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	go r.publishLoop(ctx)

	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.channel, err)
	}
	log.WithFields(log.Fields{"channel": r.channel, "instance": r.instanceID}).Info("Redis relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-r.outbox:
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := r.client.Publish(pubCtx, r.channel, payload).Err(); err != nil {
				log.WithError(err).Warn("Failed to publish event to redis")
			}
			cancel()
		}
	}
}

// Close releases the Redis connection.
func (r *RedisRelay) Close() error {
	return r.client.Close()
}

func (r *RedisRelay) encode(event models.Event) ([]byte, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(relayMessage{
		Origin: r.instanceID,
		Event:  models.RawEvent{Name: event.Name, Data: data},
	})
}

// handle applies a message from another instance to the local catalog, which
// broadcasts it to local clients. Messages this instance published were
// already applied and are skipped.
func (r *RedisRelay) handle(payload string) {
	var msg relayMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		log.WithError(err).Warn("Discarding malformed relay message")
		return
	}
	if msg.Origin == r.instanceID || msg.Event.Name == "" {
		return
	}
	event, err := models.DecodeEvent(msg.Event)
	if err != nil {
		log.WithError(err).Warn("Discarding undecodable relay message")
		return
	}
	if err := r.catalog.ApplyRemote(event, r.local); err != nil {
		log.WithError(err).WithField("event", event.Name).Error("Failed to apply relayed event")
	}
}
