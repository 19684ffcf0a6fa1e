package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courseflow/board/internal"
	"github.com/courseflow/board/internal/views"
)

// BoardService is the mutation engine surface the handler calls into.
type BoardService interface {
	Snapshot() internal.Snapshot
	Filter() internal.Filter
	SetFilter(f internal.Filter)
	AddTask(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	EditTask(ctx context.Context, params internal.EditTaskParams) (internal.Task, error)
	DeleteTask(ctx context.Context, id string) error
	MoveTask(ctx context.Context, id string, status internal.Status) (internal.Task, error)
	AddGroup(ctx context.Context, params internal.CreateGroupParams) (internal.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	AddCourse(ctx context.Context, params internal.CreateCourseParams) (internal.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

// BoardHandler serves the board state and its mutations.
type BoardHandler struct {
	svc BoardService
}

// NewBoardHandler instantiates the handler.
func NewBoardHandler(svc BoardService) *BoardHandler {
	return &BoardHandler{
		svc: svc,
	}
}

// Register connects the handlers to the router.
func (h *BoardHandler) Register(r chi.Router) {
	r.Get("/board", h.board)
	r.Get("/board/filter", h.getFilter)
	r.Put("/board/filter", h.setFilter)
	r.Get("/board/key-tasks", h.keyTasks)

	r.Post("/tasks", h.createTask)
	r.Put("/tasks/{id}", h.editTask)
	r.Delete("/tasks/{id}", h.deleteTask)
	r.Post("/tasks/{id}/move", h.moveTask)

	r.Post("/groups", h.createGroup)
	r.Delete("/groups/{id}", h.deleteGroup)

	r.Post("/courses", h.createCourse)
	r.Delete("/courses/{id}", h.deleteCourse)
}

// Task is one unit of work as rendered on a board column.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Status      string `json:"status"`
	CourseID    string `json:"courseId"`
	Color       string `json:"color"`
	IsUrgent    bool   `json:"isUrgent"`
	Movable     bool   `json:"movable"`
}

// Course groups tasks under a named, colored category.
type Course struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	GroupID string `json:"groupId"`
}

// Group is the top category level.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTask(t views.AnnotatedTask) Task {
	res := Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CourseID:    t.CourseID,
		Color:       t.Color,
		IsUrgent:    t.IsUrgent,
		Movable:     t.Movable(),
	}

	if t.DueDate != nil {
		res.DueDate = t.DueDate.UTC().Format(time.RFC3339Nano)
	}

	return res
}

func newTasks(tasks []views.AnnotatedTask) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = newTask(t)
	}

	return out
}

// BoardResponse defines the response returned for the full board view.
type BoardResponse struct {
	Tasks   []Task   `json:"tasks"`
	Courses []Course `json:"courses"`
	Groups  []Group  `json:"groups"`
	Filter  string   `json:"filter"`
}

func (h *BoardHandler) board(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Snapshot()
	filter := h.svc.Filter()
	now := time.Now()

	annotated := views.Filter(views.AnnotateUrgency(snap.Tasks, now), snap.Courses, filter, now)

	resp := BoardResponse{
		Tasks:   newTasks(annotated),
		Courses: make([]Course, len(snap.Courses)),
		Groups:  make([]Group, len(snap.Groups)),
		Filter:  string(filter),
	}

	for i, c := range snap.Courses {
		resp.Courses[i] = Course{ID: c.ID, Name: c.Name, Color: c.Color, GroupID: c.GroupID}
	}

	for i, g := range snap.Groups {
		resp.Groups[i] = Group{ID: g.ID, Name: g.Name}
	}

	renderResponse(w, r, &resp, http.StatusOK)
}

// FilterResponse defines the response carrying the active filter.
type FilterResponse struct {
	Filter string `json:"filter"`
}

func (h *BoardHandler) getFilter(w http.ResponseWriter, r *http.Request) {
	renderResponse(w, r, &FilterResponse{Filter: string(h.svc.Filter())}, http.StatusOK)
}

// SetFilterRequest defines the request used for changing the active filter.
type SetFilterRequest struct {
	Filter string `json:"filter"`
}

func (h *BoardHandler) setFilter(w http.ResponseWriter, r *http.Request) {
	var req SetFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid request", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	h.svc.SetFilter(internal.Filter(req.Filter))

	renderResponse(w, r, &FilterResponse{Filter: req.Filter}, http.StatusOK)
}

// KeyTasksResponse defines the response for the dated-task sidebar.
type KeyTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

func (h *BoardHandler) keyTasks(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Snapshot()

	groupID := r.URL.Query().Get("groupId")
	courseID := r.URL.Query().Get("courseId")

	key := views.KeyTasks(snap.Tasks, snap.Courses, groupID, courseID)

	renderResponse(w, r, &KeyTasksResponse{
		Tasks: newTasks(views.AnnotateUrgency(key, time.Now())),
	}, http.StatusOK)
}

// CreateTaskRequest defines the request used for creating tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	CourseID    string `json:"courseId"`
}

// TaskResponse defines the response wrapping a single task.
type TaskResponse struct {
	Task Task `json:"task"`
}

func (h *BoardHandler) createTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid request", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid dueDate", err)
		return
	}

	task, err := h.svc.AddTask(r.Context(), internal.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		CourseID:    req.CourseID,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "create failed", err)
		return
	}

	renderResponse(w, r, &TaskResponse{
		Task: newTask(views.AnnotatedTask{Task: task, IsUrgent: task.IsUrgent(time.Now())}),
	}, http.StatusCreated)
}

// EditTaskRequest defines the full replacement values for a task.
type EditTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	CourseID    string `json:"courseId"`
}

func (h *BoardHandler) editTask(w http.ResponseWriter, r *http.Request) {
	var req EditTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid request", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid dueDate", err)
		return
	}

	task, err := h.svc.EditTask(r.Context(), internal.EditTaskParams{
		ID:          chi.URLParam(r, "id"),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Status:      internal.Status(req.Status),
		CourseID:    req.CourseID,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "update failed", err)
		return
	}

	renderResponse(w, r, &TaskResponse{
		Task: newTask(views.AnnotatedTask{Task: task, IsUrgent: task.IsUrgent(time.Now())}),
	}, http.StatusOK)
}

func (h *BoardHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		renderErrorResponse(r.Context(), w, r, "delete failed", err)
		return
	}

	renderResponse(w, r, struct{}{}, http.StatusOK)
}

// MoveTaskRequest defines the request used for moving a task between
// columns.
type MoveTaskRequest struct {
	Status string `json:"status"`
}

func (h *BoardHandler) moveTask(w http.ResponseWriter, r *http.Request) {
	var req MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid request", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	task, err := h.svc.MoveTask(r.Context(), chi.URLParam(r, "id"), internal.Status(req.Status))
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "move failed", err)
		return
	}

	renderResponse(w, r, &TaskResponse{
		Task: newTask(views.AnnotatedTask{Task: task, IsUrgent: task.IsUrgent(time.Now())}),
	}, http.StatusOK)
}

// CreateGroupRequest defines the request used for creating groups.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// GroupResponse defines the response wrapping a single group.
type GroupResponse struct {
	Group Group `json:"group"`
}

func (h *BoardHandler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid request", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	group, err := h.svc.AddGroup(r.Context(), internal.CreateGroupParams{Name: req.Name})
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "create failed", err)
		return
	}

	renderResponse(w, r, &GroupResponse{
		Group: Group{ID: group.ID, Name: group.Name},
	}, http.StatusCreated)
}

func (h *BoardHandler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		renderErrorResponse(r.Context(), w, r, "delete failed", err)
		return
	}

	renderResponse(w, r, struct{}{}, http.StatusOK)
}

// CreateCourseRequest defines the request used for creating courses.
type CreateCourseRequest struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	GroupID string `json:"groupId"`
}

// CourseResponse defines the response wrapping a single course.
type CourseResponse struct {
	Course Course `json:"course"`
}

func (h *BoardHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid request", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	course, err := h.svc.AddCourse(r.Context(), internal.CreateCourseParams{
		Name:    req.Name,
		Color:   req.Color,
		GroupID: req.GroupID,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "create failed", err)
		return
	}

	renderResponse(w, r, &CourseResponse{
		Course: Course{ID: course.ID, Name: course.Name, Color: course.Color, GroupID: course.GroupID},
	}, http.StatusCreated)
}

func (h *BoardHandler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
		renderErrorResponse(r.Context(), w, r, "delete failed", err)
		return
	}

	renderResponse(w, r, struct{}{}, http.StatusOK)
}

func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "time.Parse")
	}

	t = t.UTC()

	return &t, nil
}
