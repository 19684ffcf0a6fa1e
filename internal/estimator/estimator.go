// Package estimator calls the effort estimation service: it turns a free
// text task description into an effort label, a suggested deadline and the
// reasoning behind both.
package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/courseflow/board/internal"
)

const otelName = "github.com/courseflow/board/internal/estimator"

// Estimate is the service's answer for one description.
type Estimate struct {
	EstimatedEffort   string
	SuggestedDeadline string
	Reasoning         string
}

// SuggestedDueDate parses the deadline into an instant at midnight UTC.
func (e Estimate) SuggestedDueDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", e.SuggestedDeadline)
	if err != nil {
		return time.Time{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "time.Parse")
	}

	return t, nil
}

// Client talks to the estimation endpoint.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient instantiates the estimator client.
func NewClient(client *http.Client, baseURL string) *Client {
	return &Client{
		client:  client,
		baseURL: baseURL,
	}
}

type estimateRequest struct {
	Description string `json:"description"`
}

type estimateResponse struct {
	EstimatedEffort   string `json:"estimatedEffort"`
	SuggestedDeadline string `json:"suggestedDeadline"`
	Reasoning         string `json:"reasoning"`
}

// Estimate submits the description and returns the service's suggestion.
func (c *Client) Estimate(ctx context.Context, description string) (Estimate, error) {
	ctx, span := newOTELSpan(ctx, "Client.Estimate")
	defer span.End()

	var body bytes.Buffer

	if err := json.NewEncoder(&body).Encode(estimateRequest{Description: description}); err != nil {
		return Estimate{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Encode")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/estimate", &body)
	if err != nil {
		return Estimate{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "http.NewRequest")
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Estimate{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Estimate{}, internal.NewErrorf(internal.ErrorCodeUnknown, "estimate: status %d", resp.StatusCode)
	}

	var decoded estimateResponse

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Estimate{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Decode")
	}

	return Estimate{
		EstimatedEffort:   decoded.EstimatedEffort,
		SuggestedDeadline: decoded.SuggestedDeadline,
		Reasoning:         decoded.Reasoning,
	}, nil
}

func newOTELSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(otelName).Start(ctx, name)
}
