// Package redis publishes board events to a redis pub/sub channel so other
// processes (notification and project-status services) can follow board
// activity. Publishing sits behind a circuit breaker: while redis is
// unreachable, events are dropped quickly instead of tying up workers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/events"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("event publisher unavailable")

// Publisher is an events.EventHandler that publishes each event as JSON.
type Publisher struct {
	client  goredis.UniversalClient
	channel string
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ events.EventHandler = (*Publisher)(nil)

// BreakerSettings controls when the publisher stops trying.
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the
	// breaker. Zero uses 5.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before letting a trial
	// through. Zero uses 30s.
	Timeout time.Duration
}

// NewClient creates a go-redis client from configuration.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewPublisher creates a Publisher on channel.
func NewPublisher(
	client goredis.UniversalClient,
	channel string,
	settings BreakerSettings,
	log *slog.Logger,
) *Publisher {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "redis_publisher"))

	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := settings.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-publisher",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &Publisher{client: client, channel: channel, breaker: breaker, logger: log}
}

// HandleEvent implements events.EventHandler.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.client.Publish(ctx, p.channel, body).Err()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("event published",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("channel", p.channel))
	return nil
}

// State returns the breaker state, for health reporting.
func (p *Publisher) State() gobreaker.State {
	return p.breaker.State()
}

// Ping checks the redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
