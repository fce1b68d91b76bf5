package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/events"
	"github.com/phrazzld/kanban-api/internal/platform/memory"
	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/phrazzld/kanban-api/internal/platform/redis"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// application holds the shared dependencies of a command and releases them
// on cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil for the memory backend
	db          *sql.DB
	redisClient *goredis.Client
	dispatcher  *events.Dispatcher

	boardService service.BoardService
}

// newApplication wires the storage backend, the board engine, the event
// pipeline and the board service from configuration.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}

	uow, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}

	policy, err := domain.StatusPolicyByName(cfg.Board.StatusPolicy)
	if err != nil {
		app.cleanup(ctx)
		return nil, err
	}
	engine := board.NewEngine(logger,
		board.WithStatusPolicy(policy),
		board.WithAggregationDepth(cfg.Board.AggregationDepth))

	emitter := app.newEventPipeline(ctx)

	app.boardService, err = service.NewBoardService(uow, engine, emitter, service.RetryConfig{
		MaxRetries: cfg.Board.MaxConflictRetries,
		BaseDelay:  cfg.Board.RetryBaseDelay,
	}, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}

	return app, nil
}

func (app *application) openStore(ctx context.Context) (store.UnitOfWork, error) {
	switch app.config.Database.Backend {
	case config.BackendMemory:
		app.logger.Warn("using the in-memory store; data is lost on exit")
		return memory.NewStore(app.logger), nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, app.config.Database.URL, app.config.Database.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.logger.Info("database connection established")
		return postgres.NewUnitOfWork(db, app.logger), nil

	default:
		return nil, fmt.Errorf("unknown database backend %q", app.config.Database.Backend)
	}
}

// newEventPipeline builds the asynchronous event path: a dispatcher queue in
// front of a fan-out emitter feeding the activity log and, when configured,
// the redis publisher.
func (app *application) newEventPipeline(ctx context.Context) events.EventEmitter {
	fanout := events.NewInMemoryEventEmitter(app.logger)
	fanout.RegisterHandler(events.NewActivityLogHandler(app.logger))

	if app.config.Redis.Enabled() {
		app.redisClient = redis.NewClient(app.config.Redis)
		publisher := redis.NewPublisher(app.redisClient, app.config.Redis.Channel, redis.BreakerSettings{
			MaxFailures: app.config.Redis.BreakerMaxFailures,
			Timeout:     app.config.Redis.BreakerTimeout,
		}, app.logger)
		if err := publisher.Ping(ctx); err != nil {
			app.logger.Warn("redis is not reachable; events will be dropped until it is",
				slog.String("addr", app.config.Redis.Addr),
				slog.String("error", err.Error()))
		}
		fanout.RegisterHandler(publisher)
	}

	app.dispatcher = events.NewDispatcher(fanout, events.DispatcherConfig{
		QueueSize: app.config.Events.QueueSize,
		Workers:   app.config.Events.Workers,
		Timeout:   app.config.Events.DispatchTimeout,
	}, app.logger)
	app.dispatcher.Start()
	return app.dispatcher
}

// cleanup drains pending events and closes connections. It is safe to call
// on a partially initialized application.
func (app *application) cleanup(ctx context.Context) {
	if app.dispatcher != nil {
		if err := app.dispatcher.Stop(ctx); err != nil {
			app.logger.Warn("event dispatcher did not drain", slog.String("error", err.Error()))
		}
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}
}
