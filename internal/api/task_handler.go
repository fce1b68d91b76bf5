package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/service"
)

// TaskHandler handles task requests.
type TaskHandler struct {
	boardService service.BoardService
	logger       *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(boardService service.BoardService, logger *slog.Logger) *TaskHandler {
	if boardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("boardService cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		boardService: boardService,
		logger:       logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /columns/{columnID}/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	columnID, ok := handlePathUUID(w, r, "columnID", log)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	spec := board.TaskSpec{Title: req.Title, Subtasks: req.Subtasks}
	if req.ParentID != nil {
		// validated as a uuid by the request tags
		parentID := uuid.MustParse(*req.ParentID)
		spec.ParentID = &parentID
	}

	result, err := h.boardService.CreateTask(r.Context(), columnID, spec)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, CreateTaskResponse{
		Task:             taskToResponse(result.Task),
		Subtasks:         tasksToResponse(result.Subtasks),
		Ancestors:        tasksToResponse(result.Ancestors),
		CapacityExceeded: result.CapacityExceeded,
	})
}

// ListTasks handles GET /columns/{columnID}/tasks requests.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	columnID, ok := handlePathUUID(w, r, "columnID", log)
	if !ok {
		return
	}

	tasks, err := h.boardService.ListTasks(r.Context(), columnID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /tasks/{taskID} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "taskID", log)
	if !ok {
		return
	}

	task, err := h.boardService.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// GetSubtasks handles GET /tasks/{taskID}/subtasks requests.
func (h *TaskHandler) GetSubtasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "taskID", log)
	if !ok {
		return
	}

	subtasks, err := h.boardService.GetSubtasks(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load subtasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(subtasks))
}

// MoveTask handles POST /tasks/{taskID}/move requests.
func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "taskID", log)
	if !ok {
		return
	}
	var req MoveTaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	columnID := uuid.MustParse(req.ColumnID)

	result, err := h.boardService.MoveTask(r.Context(), taskID, columnID, req.Position)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move task")
		return
	}

	log.Debug("task moved",
		slog.String("task_id", taskID.String()),
		slog.String("column_id", columnID.String()),
		slog.Int("position", result.Task.Position),
		slog.Bool("moved", result.Moved))
	shared.RespondWithJSON(w, r, http.StatusOK, MoveTaskResponse{
		Task:             taskToResponse(result.Task),
		FromColumnID:     result.FromColumnID,
		FromPosition:     result.FromPosition,
		FromStatus:       result.FromStatus,
		Moved:            result.Moved,
		CapacityExceeded: result.CapacityExceeded,
		Ancestors:        tasksToResponse(result.Ancestors),
	})
}

// UpdateTaskStatus handles PUT /tasks/{taskID}/status requests.
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "taskID", log)
	if !ok {
		return
	}
	var req UpdateTaskStatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.boardService.UpdateTaskStatus(r.Context(), taskID, domain.TaskStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskStatusResponse{
		Task:       taskToResponse(result.Task),
		FromStatus: result.FromStatus,
		Ancestors:  tasksToResponse(result.Ancestors),
	})
}

// DeleteTask handles DELETE /tasks/{taskID} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "taskID", log)
	if !ok {
		return
	}

	result, err := h.boardService.DeleteTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	removed := make([]uuid.UUID, 0, len(result.Removed))
	for _, t := range result.Removed {
		removed = append(removed, t.ID)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteTaskResponse{
		RemovedIDs: removed,
		Ancestors:  tasksToResponse(result.Ancestors),
	})
}
