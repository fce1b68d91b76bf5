package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/kanban-api/internal/platform/logger"
)

// ActivityLogHandler records every event as a structured log line.
type ActivityLogHandler struct {
	logger *slog.Logger
}

var _ EventHandler = (*ActivityLogHandler)(nil)

// NewActivityLogHandler creates an ActivityLogHandler.
func NewActivityLogHandler(log *slog.Logger) *ActivityLogHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ActivityLogHandler{logger: log.With(slog.String("component", "activity_log"))}
}

// HandleEvent implements EventHandler.
func (h *ActivityLogHandler) HandleEvent(ctx context.Context, event *Event) error {
	logger.FromContextOrDefault(ctx, h.logger).Info("board activity",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("board_id", event.BoardID.String()),
		slog.Time("occurred_at", event.OccurredAt),
		slog.String("payload", string(event.Payload)))
	return nil
}
