package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/events"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/platform/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(t *testing.T) *events.Event {
	t.Helper()
	event, err := events.NewEvent(events.ColumnReordered, uuid.New(), events.ColumnReorderedPayload{
		ColumnID:     uuid.New(),
		FromPosition: 0,
		ToPosition:   2,
	})
	require.NoError(t, err)
	return event
}

func TestPublisherPublishesEventJSON(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(config.RedisConfig{Addr: m.Addr()})
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "kanban.events")
	defer func() { _ = sub.Close() }()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	log, _ := logger.NewTestLogger()
	pub := redis.NewPublisher(client, "kanban.events", redis.BreakerSettings{}, log)
	require.NoError(t, pub.Ping(ctx))

	event := newEvent(t)
	require.NoError(t, pub.HandleEvent(ctx, event))

	select {
	case msg := <-sub.Channel():
		var got events.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, events.ColumnReordered, got.Type)

		var payload events.ColumnReorderedPayload
		require.NoError(t, got.UnmarshalPayload(&payload))
		assert.Equal(t, 2, payload.ToPosition)
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestPublisherOpensBreakerWhenRedisIsDown(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	addr := m.Addr()
	m.Close()

	client := goredis.NewClient(&goredis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer func() { _ = client.Close() }()

	log, buf := logger.NewTestLogger()
	pub := redis.NewPublisher(client, "kanban.events", redis.BreakerSettings{MaxFailures: 2, Timeout: time.Minute}, log)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := pub.HandleEvent(ctx, newEvent(t))
		require.Error(t, err)
		assert.NotErrorIs(t, err, redis.ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, pub.State())

	err = pub.HandleEvent(ctx, newEvent(t))
	assert.ErrorIs(t, err, redis.ErrUnavailable)
	assert.Contains(t, buf.Messages(), "circuit breaker state changed")
}
