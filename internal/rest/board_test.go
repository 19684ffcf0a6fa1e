package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/board/internal"
)

type fakeBoard struct {
	snap   internal.Snapshot
	filter internal.Filter

	addTaskErr  error
	moveTaskErr error
	lastMove    internal.Status
}

func (f *fakeBoard) Snapshot() internal.Snapshot      { return f.snap }
func (f *fakeBoard) Filter() internal.Filter          { return f.filter }
func (f *fakeBoard) SetFilter(filter internal.Filter) { f.filter = filter }

func (f *fakeBoard) DeleteTask(context.Context, string) error   { return nil }
func (f *fakeBoard) DeleteGroup(context.Context, string) error  { return nil }
func (f *fakeBoard) DeleteCourse(context.Context, string) error { return nil }

func (f *fakeBoard) AddTask(_ context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	if f.addTaskErr != nil {
		return internal.Task{}, f.addTaskErr
	}

	return internal.Task{
		ID:          "task-new",
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Status:      internal.StatusNotStarted,
		CourseID:    params.CourseID,
		Color:       "#86A8E7",
	}, nil
}

func (f *fakeBoard) EditTask(_ context.Context, params internal.EditTaskParams) (internal.Task, error) {
	return internal.Task{ID: params.ID, Title: params.Title, Status: params.Status, CourseID: params.CourseID}, nil
}

func (f *fakeBoard) MoveTask(_ context.Context, id string, status internal.Status) (internal.Task, error) {
	if f.moveTaskErr != nil {
		return internal.Task{}, f.moveTaskErr
	}

	f.lastMove = status

	return internal.Task{ID: id, Status: status}, nil
}

func (f *fakeBoard) AddGroup(_ context.Context, params internal.CreateGroupParams) (internal.Group, error) {
	return internal.Group{ID: "group-new", Name: params.Name}, nil
}

func (f *fakeBoard) AddCourse(_ context.Context, params internal.CreateCourseParams) (internal.Course, error) {
	return internal.Course{ID: "course-new", Name: params.Name, Color: params.Color, GroupID: params.GroupID}, nil
}

func newTestRouter(svc BoardService) *chi.Mux {
	router := chi.NewRouter()
	NewBoardHandler(svc).Register(router)

	return router
}

func TestBoardHandler_GetBoard(t *testing.T) {
	t.Parallel()

	svc := &fakeBoard{
		snap:   internal.DefaultSnapshot(time.Now()),
		filter: internal.FilterAll,
	}

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp BoardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Len(t, resp.Tasks, 7)
	assert.Len(t, resp.Courses, 5)
	assert.Len(t, resp.Groups, 3)
	assert.Equal(t, "all", resp.Filter)
}

func TestBoardHandler_GetBoard_GroupFilterApplied(t *testing.T) {
	t.Parallel()

	svc := &fakeBoard{
		snap:   internal.DefaultSnapshot(time.Now()),
		filter: internal.Filter("group-2"),
	}

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp BoardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "task-6", resp.Tasks[0].ID)
}

func TestBoardHandler_CreateTask(t *testing.T) {
	t.Parallel()

	svc := &fakeBoard{}
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"title":"Read chapter 4","courseId":"course-2","dueDate":"2024-03-10T18:30:00Z"}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", body))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "task-new", resp.Task.ID)
	assert.Equal(t, "not_started", resp.Task.Status)
	assert.Equal(t, "2024-03-10T18:30:00Z", resp.Task.DueDate)
}

func TestBoardHandler_CreateTask_InvalidBody(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeBoard{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoardHandler_CreateTask_InvalidDueDate(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeBoard{})

	body := bytes.NewBufferString(`{"title":"x","courseId":"c","dueDate":"tomorrow"}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoardHandler_CreateTask_ValidationError(t *testing.T) {
	t.Parallel()

	svc := &fakeBoard{
		addTaskErr: internal.NewErrorf(internal.ErrorCodeInvalidArgument, "course does not exist"),
	}

	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"title":"x","courseId":"course-gone"}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoardHandler_MoveTask(t *testing.T) {
	t.Parallel()

	svc := &fakeBoard{}
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"status":"done"}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks/task-1/move", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, internal.StatusDone, svc.lastMove)
}

func TestBoardHandler_MoveTask_NotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeBoard{
		moveTaskErr: internal.NewErrorf(internal.ErrorCodeNotFound, "task does not exist"),
	}

	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"status":"done"}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks/task-gone/move", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoardHandler_SetFilter(t *testing.T) {
	t.Parallel()

	svc := &fakeBoard{filter: internal.FilterAll}
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"filter":"this-week"}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/board/filter", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, internal.FilterThisWeek, svc.filter)
}

func TestBoardHandler_KeyTasks(t *testing.T) {
	t.Parallel()

	svc := &fakeBoard{snap: internal.DefaultSnapshot(time.Now())}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board/key-tasks?groupId=group-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp KeyTasksResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, "task-1", resp.Tasks[0].ID)
	assert.Equal(t, "task-3", resp.Tasks[1].ID)
}
