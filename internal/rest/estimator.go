package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courseflow/board/internal"
	"github.com/courseflow/board/internal/estimator"
)

// EstimatorService turns a task description into an effort suggestion.
type EstimatorService interface {
	Estimate(ctx context.Context, description string) (estimator.Estimate, error)
}

// EstimatorHandler serves effort estimation for the task form.
type EstimatorHandler struct {
	svc EstimatorService
}

// NewEstimatorHandler instantiates the handler.
func NewEstimatorHandler(svc EstimatorService) *EstimatorHandler {
	return &EstimatorHandler{
		svc: svc,
	}
}

// Register connects the handlers to the router.
func (h *EstimatorHandler) Register(r chi.Router) {
	r.Post("/estimates", h.estimate)
}

// EstimateRequest defines the request used for estimating a task.
type EstimateRequest struct {
	Description string `json:"description"`
}

// EstimateResponse defines the response returned back after estimating.
type EstimateResponse struct {
	EstimatedEffort   string `json:"estimatedEffort"`
	SuggestedDeadline string `json:"suggestedDeadline"`
	Reasoning         string `json:"reasoning"`
}

func (h *EstimatorHandler) estimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid request", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	if req.Description == "" {
		renderErrorResponse(r.Context(), w, r, "invalid request",
			internal.NewErrorf(internal.ErrorCodeInvalidArgument, "description is required"))
		return
	}

	res, err := h.svc.Estimate(r.Context(), req.Description)
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "estimate failed", err)
		return
	}

	renderResponse(w, r, &EstimateResponse{
		EstimatedEffort:   res.EstimatedEffort,
		SuggestedDeadline: res.SuggestedDeadline,
		Reasoning:         res.Reasoning,
	}, http.StatusOK)
}
