package estimator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Estimate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/estimate", r.URL.Path)

		var req struct {
			Description string `json:"description"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Write the quarterly report", req.Description)

		_ = json.NewEncoder(w).Encode(map[string]string{
			"estimatedEffort":   "medium",
			"suggestedDeadline": "2024-03-15",
			"reasoning":         "Reports of this size usually take a few days.",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)

	got, err := client.Estimate(context.Background(), "Write the quarterly report")
	require.NoError(t, err)

	assert.Equal(t, "medium", got.EstimatedEffort)
	assert.Equal(t, "2024-03-15", got.SuggestedDeadline)
	assert.NotEmpty(t, got.Reasoning)

	due, err := got.SuggestedDueDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), due)
}

func TestClient_Estimate_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)

	_, err := client.Estimate(context.Background(), "anything")
	require.Error(t, err)
}

func TestEstimate_SuggestedDueDate_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Estimate{SuggestedDeadline: "soon"}.SuggestedDueDate()
	require.Error(t, err)
}
