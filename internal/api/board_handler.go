package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/service"
)

// BoardHandler handles board and column requests.
type BoardHandler struct {
	boardService   service.BoardService
	defaultColumns bool
	logger         *slog.Logger
}

// NewBoardHandler creates a new BoardHandler. defaultColumns is used when a
// create request does not say whether to add the default lanes.
func NewBoardHandler(boardService service.BoardService, defaultColumns bool, logger *slog.Logger) *BoardHandler {
	if boardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("boardService cannot be nil for BoardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardHandler{
		boardService:   boardService,
		defaultColumns: defaultColumns,
		logger:         logger.With(slog.String("component", "board_handler")),
	}
}

// CreateBoard handles POST /boards requests.
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req CreateBoardRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	withDefaults := h.defaultColumns
	if req.DefaultColumns != nil {
		withDefaults = *req.DefaultColumns
	}

	view, err := h.boardService.CreateBoard(r.Context(), req.Name, withDefaults)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create board")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, boardToResponse(view))
}

// GetBoard handles GET /boards/{boardID} requests.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	boardID, ok := handlePathUUID(w, r, "boardID", log)
	if !ok {
		return
	}

	view, err := h.boardService.GetBoard(r.Context(), boardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load board")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, boardToResponse(view))
}

// CreateColumn handles POST /boards/{boardID}/columns requests.
func (h *BoardHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	boardID, ok := handlePathUUID(w, r, "boardID", log)
	if !ok {
		return
	}
	var req CreateColumnRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	column, err := h.boardService.CreateColumn(r.Context(), boardID, board.ColumnSpec{
		Name:       req.Name,
		IsTerminal: req.IsTerminal,
		Capacity:   req.Capacity,
	}, req.Position)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create column")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, columnToResponse(column))
}

// ReorderColumn handles PUT /boards/{boardID}/columns/{columnID}/position requests.
func (h *BoardHandler) ReorderColumn(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	boardID, ok := handlePathUUID(w, r, "boardID", log)
	if !ok {
		return
	}
	columnID, ok := handlePathUUID(w, r, "columnID", log)
	if !ok {
		return
	}
	var req ReorderColumnRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.boardService.ReorderColumn(r.Context(), boardID, columnID, *req.Position)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reorder column")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ReorderColumnResponse{
		Column:  columnToResponse(result.Column),
		Moved:   result.Moved,
		Columns: columnsToResponse(result.Columns),
	})
}

// UpdateColumn handles PATCH /columns/{columnID} requests.
func (h *BoardHandler) UpdateColumn(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	columnID, ok := handlePathUUID(w, r, "columnID", log)
	if !ok {
		return
	}
	var req UpdateColumnRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	column, err := h.boardService.UpdateColumn(r.Context(), columnID, board.ColumnPatch{
		Name:          req.Name,
		Capacity:      req.Capacity,
		ClearCapacity: req.ClearCapacity,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update column")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, columnToResponse(column))
}

// DeleteColumn handles DELETE /columns/{columnID} requests.
func (h *BoardHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	columnID, ok := handlePathUUID(w, r, "columnID", log)
	if !ok {
		return
	}

	if err := h.boardService.DeleteColumn(r.Context(), columnID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete column")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
