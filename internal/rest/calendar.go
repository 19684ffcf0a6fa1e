package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courseflow/board/internal"
	"github.com/courseflow/board/internal/calendar"
	"github.com/courseflow/board/internal/views"
)

// CalendarFeed is the aggregated external event source for a week.
type CalendarFeed interface {
	Week(ctx context.Context, weekStart time.Time, courses []internal.Course) ([]calendar.Event, error)
}

// CalendarHandler serves the week grid and the merged day list.
type CalendarHandler struct {
	feed CalendarFeed
	svc  BoardService
}

// NewCalendarHandler instantiates the handler.
func NewCalendarHandler(feed CalendarFeed, svc BoardService) *CalendarHandler {
	return &CalendarHandler{
		feed: feed,
		svc:  svc,
	}
}

// Register connects the handlers to the router.
func (h *CalendarHandler) Register(r chi.Router) {
	r.Get("/calendar/week", h.week)
	r.Get("/calendar/day", h.day)
}

// Event is one calendar event as rendered in the week grid.
type Event struct {
	ID         string `json:"id"`
	CalendarID string `json:"calendarId"`
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end"`
	AllDay     bool   `json:"allDay"`
	Color      string `json:"color"`
}

// PositionedEvent is a timed event with its computed column geometry.
type PositionedEvent struct {
	Event

	Column           int     `json:"column"`
	Columns          int     `json:"columns"`
	Left             float64 `json:"left"`
	Width            float64 `json:"width"`
	StartOffsetHours float64 `json:"startOffsetHours"`
	DurationMinutes  int     `json:"durationMinutes"`
}

// DayColumn is one day of the week view: the all-day lane plus the packed
// timed grid.
type DayColumn struct {
	Date   string            `json:"date"`
	AllDay []Event           `json:"allDay"`
	Timed  []PositionedEvent `json:"timed"`
}

// WeekResponse defines the response for the week view.
type WeekResponse struct {
	WeekStart string      `json:"weekStart"`
	Days      []DayColumn `json:"days"`
}

func (h *CalendarHandler) week(w http.ResponseWriter, r *http.Request) {
	weekStart, err := parseDay(r.URL.Query().Get("start"))
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid start", err)
		return
	}

	weekStart = views.StartOfWeek(weekStart)

	snap := h.svc.Snapshot()

	events, err := h.feed.Week(r.Context(), weekStart, snap.Courses)
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "calendar feed failed", err)
		return
	}

	resp := WeekResponse{
		WeekStart: weekStart.Format("2006-01-02"),
		Days:      make([]DayColumn, 7),
	}

	for i := range resp.Days {
		day := weekStart.AddDate(0, 0, i)
		allDay, timed := calendar.PartitionDay(events, day)

		col := DayColumn{
			Date:   day.Format("2006-01-02"),
			AllDay: make([]Event, len(allDay)),
			Timed:  make([]PositionedEvent, 0, len(timed)),
		}

		for j, e := range allDay {
			col.AllDay[j] = newEvent(e)
		}

		for _, p := range calendar.Layout(timed) {
			col.Timed = append(col.Timed, PositionedEvent{
				Event:            newEvent(p.Event),
				Column:           p.Column,
				Columns:          p.Columns,
				Left:             p.Left,
				Width:            p.Width,
				StartOffsetHours: p.StartOffsetHours,
				DurationMinutes:  p.DurationMinutes,
			})
		}

		resp.Days[i] = col
	}

	renderResponse(w, r, &resp, http.StatusOK)
}

// DayItem is one entry of the merged single-list day view.
type DayItem struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Color   string `json:"color"`
	Instant string `json:"instant"`
}

// DayResponse defines the response for the merged day list.
type DayResponse struct {
	Date  string    `json:"date"`
	Items []DayItem `json:"items"`
}

func (h *CalendarHandler) day(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "invalid date", err)
		return
	}

	snap := h.svc.Snapshot()

	events, err := h.feed.Week(r.Context(), views.StartOfWeek(day), snap.Courses)
	if err != nil {
		renderErrorResponse(r.Context(), w, r, "calendar feed failed", err)
		return
	}

	merged := calendar.MergeDay(day, events, snap.Tasks)

	resp := DayResponse{
		Date:  day.Format("2006-01-02"),
		Items: make([]DayItem, len(merged)),
	}

	for i, item := range merged {
		resp.Items[i] = DayItem{
			Kind:    string(item.Kind),
			ID:      item.ID,
			Title:   item.Title,
			Color:   item.Color,
			Instant: item.Instant.UTC().Format(time.RFC3339Nano),
		}
	}

	renderResponse(w, r, &resp, http.StatusOK)
}

func newEvent(e calendar.Event) Event {
	return Event{
		ID:         e.ID,
		CalendarID: e.CalendarID,
		Title:      e.Title,
		Start:      e.Start.UTC().Format(time.RFC3339Nano),
		End:        e.End.UTC().Format(time.RFC3339Nano),
		AllDay:     e.AllDay,
		Color:      e.Color,
	}
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "time.Parse")
	}

	return t, nil
}
