package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/kanban-api/internal/api/middleware"
	"github.com/phrazzld/kanban-api/internal/service"
)

// RouterConfig holds the settings the handlers need beyond the service.
type RouterConfig struct {
	// DefaultColumns is used for board creation requests that do not say
	// whether to add the default lanes.
	DefaultColumns bool
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(boardService service.BoardService, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))

	boardHandler := NewBoardHandler(boardService, cfg.DefaultColumns, logger)
	taskHandler := NewTaskHandler(boardService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/boards", boardHandler.CreateBoard)
		r.Route("/boards/{boardID}", func(r chi.Router) {
			r.Get("/", boardHandler.GetBoard)
			r.Post("/columns", boardHandler.CreateColumn)
			r.Put("/columns/{columnID}/position", boardHandler.ReorderColumn)
		})

		r.Route("/columns/{columnID}", func(r chi.Router) {
			r.Patch("/", boardHandler.UpdateColumn)
			r.Delete("/", boardHandler.DeleteColumn)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks", taskHandler.CreateTask)
		})

		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTask)
			r.Delete("/", taskHandler.DeleteTask)
			r.Get("/subtasks", taskHandler.GetSubtasks)
			r.Post("/move", taskHandler.MoveTask)
			r.Put("/status", taskHandler.UpdateTaskStatus)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
