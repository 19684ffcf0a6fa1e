package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courseflow/board/internal/sync"
)

// SyncStatus reports the persistence flags the shell renders.
type SyncStatus interface {
	Status() sync.Status
}

// StatusHandler serves the save-state indicator.
type StatusHandler struct {
	sync SyncStatus
}

// NewStatusHandler instantiates the handler.
func NewStatusHandler(s SyncStatus) *StatusHandler {
	return &StatusHandler{
		sync: s,
	}
}

// Register connects the handlers to the router.
func (h *StatusHandler) Register(r chi.Router) {
	r.Get("/sync/status", h.status)
}

// SyncStatusResponse defines the response for the save-state indicator.
type SyncStatusResponse struct {
	Saving        bool   `json:"saving"`
	LastSaveError string `json:"lastSaveError,omitempty"`
	LocalOnly     bool   `json:"localOnly"`
}

func (h *StatusHandler) status(w http.ResponseWriter, r *http.Request) {
	st := h.sync.Status()

	renderResponse(w, r, &SyncStatusResponse{
		Saving:        st.Saving,
		LastSaveError: st.LastSaveError,
		LocalOnly:     st.LocalOnly,
	}, http.StatusOK)
}
