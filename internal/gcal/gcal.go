// Package gcal reads the Google Calendar API as the board's external event
// feed: the account's calendar list plus each calendar's events for a time
// window. It is a read-only collaborator; the engine never writes events.
package gcal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/courseflow/board/internal"
	"github.com/courseflow/board/internal/calendar"
)

const otelName = "github.com/courseflow/board/internal/gcal"

const apiBase = "https://www.googleapis.com/calendar/v3"

// TokenSource yields a valid bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client implements calendar.Source against the Calendar v3 REST API.
type Client struct {
	client *http.Client
	tokens TokenSource
}

// NewClient instantiates the calendar feed client.
func NewClient(client *http.Client, tokens TokenSource) *Client {
	return &Client{
		client: client,
		tokens: tokens,
	}
}

type calendarList struct {
	Items []struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
		Primary bool   `json:"primary"`
	} `json:"items"`
}

type eventList struct {
	Items []eventResource `json:"items"`
}

type eventResource struct {
	ID      string        `json:"id"`
	Summary string        `json:"summary"`
	Start   eventDateTime `json:"start"`
	End     eventDateTime `json:"end"`
}

// eventDateTime carries either a timestamp or a date-only marker; the
// latter denotes an all-day event.
type eventDateTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

func (dt eventDateTime) resolve() (time.Time, bool, error) {
	if dt.Date != "" {
		t, err := time.Parse("2006-01-02", dt.Date)
		return t, true, err
	}

	t, err := time.Parse(time.RFC3339, dt.DateTime)

	return t, false, err
}

// ListCalendars returns every calendar of the signed-in account.
func (c *Client) ListCalendars(ctx context.Context) ([]calendar.CalendarInfo, error) {
	ctx, span := newOTELSpan(ctx, "Client.ListCalendars")
	defer span.End()

	var list calendarList

	if err := c.get(ctx, apiBase+"/users/me/calendarList", &list); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "calendarList.list")
	}

	out := make([]calendar.CalendarInfo, len(list.Items))
	for i, item := range list.Items {
		out[i] = calendar.CalendarInfo{ID: item.ID, Summary: item.Summary, Primary: item.Primary}
	}

	return out, nil
}

// ListEvents returns one calendar's events in [timeMin, timeMax), expanded
// to single instances and ordered by start time.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]calendar.Event, error) {
	ctx, span := newOTELSpan(ctx, "Client.ListEvents")
	defer span.End()

	query := url.Values{}
	query.Set("timeMin", timeMin.Format(time.RFC3339))
	query.Set("timeMax", timeMax.Format(time.RFC3339))
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")
	query.Set("maxResults", "100")

	target := apiBase + "/calendars/" + url.PathEscape(calendarID) + "/events?" + query.Encode()

	var list eventList

	if err := c.get(ctx, target, &list); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "events.list")
	}

	out := make([]calendar.Event, 0, len(list.Items))

	for _, item := range list.Items {
		start, allDay, err := item.Start.resolve()
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "event %q: start", item.ID)
		}

		end, _, err := item.End.resolve()
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "event %q: end", item.ID)
		}

		out = append(out, calendar.Event{
			ID:         item.ID,
			CalendarID: calendarID,
			Title:      item.Summary,
			Start:      start,
			End:        end,
			AllDay:     allDay,
		})
	}

	return out, nil
}

func (c *Client) get(ctx context.Context, target string, out interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnauthorized, "tokens.Token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "http.NewRequest")
	}

	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return internal.NewErrorf(internal.ErrorCodeUnknown, "GET %s: status %d", req.URL.Path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Decode")
	}

	return nil
}

func newOTELSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(otelName).Start(ctx, name)
}
