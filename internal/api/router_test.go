package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/api"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/memory"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	svc, err := service.NewBoardService(
		memory.NewStore(nil),
		board.NewEngine(nil),
		nil,
		service.DefaultRetryConfig(),
		nil,
	)
	require.NoError(t, err)
	return &testServer{t: t, handler: api.NewRouter(svc, api.RouterConfig{DefaultColumns: true}, nil)}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) createBoard() api.BoardResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/boards", api.CreateBoardRequest{Name: "Sprint"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[api.BoardResponse](s.t, w)
}

func (s *testServer) createTask(columnID uuid.UUID, title string) api.TaskResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/columns/"+columnID.String()+"/tasks", api.CreateTaskRequest{Title: title})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[api.CreateTaskResponse](s.t, w).Task
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestCreateAndGetBoard(t *testing.T) {
	s := newTestServer(t)
	created := s.createBoard()

	require.Len(t, created.Columns, 4)
	assert.Equal(t, "To Do", created.Columns[0].Name)
	assert.True(t, created.Columns[3].IsTerminal)

	w := s.do(http.MethodGet, "/api/boards/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	loaded := decode[api.BoardResponse](t, w)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Len(t, loaded.Columns, 4)
	assert.NotEmpty(t, w.Header().Get(shared.TraceIDHeader))
}

func TestCreateBoard_WithoutDefaults(t *testing.T) {
	s := newTestServer(t)
	withDefaults := false
	w := s.do(http.MethodPost, "/api/boards", api.CreateBoardRequest{Name: "Bare", DefaultColumns: &withDefaults})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, decode[api.BoardResponse](t, w).Columns)
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)
	b := s.createBoard()
	todo := b.Columns[0]

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		errMsg string
	}{
		{
			name:   "malformed board id",
			method: http.MethodGet,
			path:   "/api/boards/not-a-uuid",
			status: http.StatusBadRequest,
			errMsg: "Invalid ID format",
		},
		{
			name:   "unknown board",
			method: http.MethodGet,
			path:   "/api/boards/" + uuid.NewString(),
			status: http.StatusNotFound,
			errMsg: "Board not found",
		},
		{
			name:   "invalid json",
			method: http.MethodPost,
			path:   "/api/boards",
			body:   `{"name":`,
			status: http.StatusBadRequest,
			errMsg: "Invalid request format",
		},
		{
			name:   "missing board name",
			method: http.MethodPost,
			path:   "/api/boards",
			body:   `{}`,
			status: http.StatusBadRequest,
			errMsg: "Invalid Name: required field",
		},
		{
			name:   "unknown task",
			method: http.MethodGet,
			path:   "/api/tasks/" + uuid.NewString(),
			status: http.StatusNotFound,
			errMsg: "Task not found",
		},
		{
			name:   "unknown status",
			method: http.MethodPut,
			path:   "/api/tasks/" + uuid.NewString() + "/status",
			body:   api.UpdateTaskStatusRequest{Status: "archived"},
			status: http.StatusBadRequest,
			errMsg: "Invalid Status: invalid value",
		},
		{
			name:   "move without column",
			method: http.MethodPost,
			path:   "/api/tasks/" + uuid.NewString() + "/move",
			body:   `{"position": 0}`,
			status: http.StatusBadRequest,
			errMsg: "Invalid ColumnID: required field",
		},
		{
			name:   "reorder without position",
			method: http.MethodPut,
			path:   "/api/boards/" + b.ID.String() + "/columns/" + todo.ID.String() + "/position",
			body:   `{}`,
			status: http.StatusBadRequest,
			errMsg: "Invalid Position: required field",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, w.Code, w.Body.String())
			resp := decode[shared.ErrorResponse](t, w)
			assert.Equal(t, tc.errMsg, resp.Error)
			assert.NotEmpty(t, resp.TraceID)
		})
	}
}

func TestMoveTask(t *testing.T) {
	s := newTestServer(t)
	b := s.createBoard()
	todo, inProgress, done := b.Columns[0], b.Columns[1], b.Columns[3]

	a := s.createTask(todo.ID, "a")
	s.createTask(todo.ID, "b")
	s.createTask(inProgress.ID, "c")

	t.Run("cross column with position", func(t *testing.T) {
		zero := 0
		w := s.do(http.MethodPost, "/api/tasks/"+a.ID.String()+"/move",
			api.MoveTaskRequest{ColumnID: inProgress.ID.String(), Position: &zero})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[api.MoveTaskResponse](t, w)
		assert.True(t, resp.Moved)
		assert.Equal(t, todo.ID, resp.FromColumnID)
		assert.Equal(t, 0, resp.Task.Position)
		assert.Equal(t, domain.TaskStatusInProgress, resp.Task.Status)
	})

	t.Run("positions stay contiguous", func(t *testing.T) {
		for _, columnID := range []uuid.UUID{todo.ID, inProgress.ID} {
			w := s.do(http.MethodGet, "/api/columns/"+columnID.String()+"/tasks", nil)
			require.Equal(t, http.StatusOK, w.Code)
			for i, task := range decode[[]api.TaskResponse](t, w) {
				assert.Equal(t, i, task.Position)
			}
		}
	})

	t.Run("to terminal column", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/tasks/"+a.ID.String()+"/move",
			api.MoveTaskRequest{ColumnID: done.ID.String()})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[api.MoveTaskResponse](t, w)
		assert.Equal(t, domain.TaskStatusDone, resp.Task.Status)
		assert.NotNil(t, resp.Task.CompletedAt)
	})

	t.Run("position out of range", func(t *testing.T) {
		far := 10
		w := s.do(http.MethodPost, "/api/tasks/"+a.ID.String()+"/move",
			api.MoveTaskRequest{ColumnID: todo.ID.String(), Position: &far})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("column on another board", func(t *testing.T) {
		other := s.createBoard()
		w := s.do(http.MethodPost, "/api/tasks/"+a.ID.String()+"/move",
			api.MoveTaskRequest{ColumnID: other.Columns[0].ID.String()})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaskStatusAndDeletion(t *testing.T) {
	s := newTestServer(t)
	b := s.createBoard()
	todo, done := b.Columns[0], b.Columns[3]

	w := s.do(http.MethodPost, "/api/columns/"+todo.ID.String()+"/tasks",
		api.CreateTaskRequest{Title: "release", Subtasks: []string{"tag", "announce"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[api.CreateTaskResponse](t, w)
	require.Len(t, created.Subtasks, 2)

	w = s.do(http.MethodGet, "/api/tasks/"+created.Task.ID.String()+"/subtasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]api.TaskResponse](t, w), 2)

	w = s.do(http.MethodPut, "/api/tasks/"+created.Subtasks[0].ID.String()+"/status",
		api.UpdateTaskStatusRequest{Status: "blocked"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.TaskStatusBlocked, decode[api.TaskStatusResponse](t, w).Task.Status)

	w = s.do(http.MethodPut, "/api/tasks/"+created.Subtasks[0].ID.String()+"/status",
		api.UpdateTaskStatusRequest{Status: "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/tasks/"+created.Subtasks[1].ID.String()+"/move",
		api.MoveTaskRequest{ColumnID: done.ID.String()})
	require.Equal(t, http.StatusOK, w.Code)
	moved := decode[api.MoveTaskResponse](t, w)
	require.Len(t, moved.Ancestors, 1)
	assert.Equal(t, 50, moved.Ancestors[0].CompletionPercentage)

	w = s.do(http.MethodDelete, "/api/tasks/"+created.Task.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[api.DeleteTaskResponse](t, w).RemovedIDs, 3)

	w = s.do(http.MethodGet, "/api/tasks/"+created.Task.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestColumnEndpoints(t *testing.T) {
	s := newTestServer(t)
	b := s.createBoard()

	one := 1
	w := s.do(http.MethodPost, "/api/boards/"+b.ID.String()+"/columns",
		api.CreateColumnRequest{Name: "Blocked", Position: &one})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	blocked := decode[api.ColumnResponse](t, w)
	assert.Equal(t, 1, blocked.Position)

	last := 4
	w = s.do(http.MethodPut, "/api/boards/"+b.ID.String()+"/columns/"+blocked.ID.String()+"/position",
		api.ReorderColumnRequest{Position: &last})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reordered := decode[api.ReorderColumnResponse](t, w)
	require.Len(t, reordered.Columns, 5)
	assert.Equal(t, "Blocked", reordered.Columns[4].Name)
	for i, c := range reordered.Columns {
		assert.Equal(t, i, c.Position)
	}

	limit := 1
	w = s.do(http.MethodPatch, "/api/columns/"+blocked.ID.String(), api.UpdateColumnRequest{Capacity: &limit})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, decode[api.ColumnResponse](t, w).Capacity)

	s.createTask(blocked.ID, "one")
	w = s.do(http.MethodPost, "/api/columns/"+blocked.ID.String()+"/tasks", api.CreateTaskRequest{Title: "two"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode[api.CreateTaskResponse](t, w).CapacityExceeded)

	w = s.do(http.MethodGet, "/api/boards/"+b.ID.String(), nil)
	view := decode[api.BoardResponse](t, w)
	assert.True(t, view.Columns[4].OverCapacity)
	assert.Equal(t, 2, view.Columns[4].TaskCount)

	w = s.do(http.MethodDelete, "/api/columns/"+blocked.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Column still contains tasks", decode[shared.ErrorResponse](t, w).Error)

	w = s.do(http.MethodDelete, "/api/columns/"+b.Columns[2].ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
