package calendar

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/courseflow/board/internal"
)

const otelName = "github.com/courseflow/board/internal/calendar"

// Source is the external calendar API the feed reads from.
type Source interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error)
}

// Feed aggregates every calendar of the signed-in account into one event
// list for a displayed week.
type Feed struct {
	logger *zap.Logger
	source Source
}

// NewFeed instantiates the feed aggregator.
func NewFeed(logger *zap.Logger, source Source) *Feed {
	return &Feed{
		logger: logger,
		source: source,
	}
}

// Week fetches all events in [weekStart, weekStart+7d), resolves each
// event's display color (per-calendar pastel, overridden by a matching
// course name in the title) and returns them sorted by start instant. A
// single calendar failing to load is skipped with a warning; only the
// calendar list itself failing is an error.
func (f *Feed) Week(ctx context.Context, weekStart time.Time, courses []internal.Course) ([]Event, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Feed.Week")
	defer span.End()

	calendars, err := f.source.ListCalendars(ctx)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "source.ListCalendars")
	}

	timeMin := midnight(weekStart)
	timeMax := timeMin.AddDate(0, 0, 7)

	var all []Event

	for _, cal := range calendars {
		events, err := f.source.ListEvents(ctx, cal.ID, timeMin, timeMax)
		if err != nil {
			f.logger.Warn("skipping calendar, events failed to load",
				zap.String("calendar", cal.Summary),
				zap.Error(err),
			)

			continue
		}

		fallback := PastelColor(cal.ID)

		for _, e := range events {
			e.CalendarID = cal.ID
			e.Color = ResolveColor(e.Title, fallback, courses)
			all = append(all, e)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Start.Before(all[j].Start)
	})

	return all, nil
}
