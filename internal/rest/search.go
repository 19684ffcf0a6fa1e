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

// TaskSearcher queries the search index fed by the event indexers.
type TaskSearcher interface {
	Search(ctx context.Context, args internal.SearchParams) (internal.SearchResults, error)
}

// SearchHandler serves full text task search.
type SearchHandler struct {
	searcher TaskSearcher
}

// NewSearchHandler instantiates the handler.
func NewSearchHandler(searcher TaskSearcher) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
	}
}

// Register connects the handlers to the router.
func (h *SearchHandler) Register(r chi.Router) {
	r.Post("/search/tasks", h.search)
}

// SearchTasksRequest defines the request used for searching tasks.
type SearchTasksRequest struct {
	Title    *string `json:"title"`
	CourseID *string `json:"courseId"`
	Status   *string `json:"status"`
	From     int64   `json:"from"`
	Size     int64   `json:"size"`
}

// SearchTasksResponse defines the response returned back after searching.
type SearchTasksResponse struct {
	Tasks []Task `json:"tasks"`
	Total int64  `json:"total"`
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request) {
	var req SearchTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid request", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	args := internal.SearchParams{
		Title:    req.Title,
		CourseID: req.CourseID,
		From:     req.From,
		Size:     req.Size,
	}

	if args.Size == 0 {
		args.Size = 10
	}

	if req.Status != nil {
		status := internal.Status(*req.Status)
		if err := status.Validate(); err != nil {
			renderErrorResponse(r.Context(), w, r, "invalid status", err)
			return
		}

		args.Status = &status
	}

	res, err := h.searcher.Search(r.Context(), args)
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "search failed", err)
		return
	}

	renderResponse(w, r, &SearchTasksResponse{
		Tasks: newTasks(views.AnnotateUrgency(res.Tasks, time.Now())),
		Total: res.Total,
	}, http.StatusOK)
}
