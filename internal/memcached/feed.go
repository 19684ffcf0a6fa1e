package memcached

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"go.uber.org/zap"

	"github.com/courseflow/board/internal"
	"github.com/courseflow/board/internal/calendar"
)

// Feed wraps a calendar source with cache-aside caching. Calendar lists and
// per-window event lists are cached under short expirations; the feed is a
// read-only mirror of the remote account, so staleness self-heals.
type Feed struct {
	client     *memcache.Client
	orig       calendar.Source
	expiration time.Duration
	logger     *zap.Logger
}

// NewFeed instantiates the cached calendar source.
func NewFeed(client *memcache.Client, orig calendar.Source, logger *zap.Logger) *Feed {
	return &Feed{
		client:     client,
		orig:       orig,
		expiration: 5 * time.Minute,
		logger:     logger,
	}
}

// ListCalendars returns the cached calendar list, fetching and caching it on
// a miss.
func (f *Feed) ListCalendars(ctx context.Context) ([]calendar.CalendarInfo, error) {
	defer newOTELSpan(ctx, "Feed.ListCalendars").End()

	var res []calendar.CalendarInfo

	if err := getValue(ctx, f.client, "calendars", &res); err == nil {
		return res, nil
	}

	f.logger.Info("ListCalendars: not cached, fetching")

	res, err := f.orig.ListCalendars(ctx)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "orig.ListCalendars")
	}

	setValue(ctx, f.client, "calendars", &res, f.expiration)

	return res, nil
}

// ListEvents returns the cached events of one calendar window, fetching and
// caching them on a miss.
func (f *Feed) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]calendar.Event, error) {
	defer newOTELSpan(ctx, "Feed.ListEvents").End()

	key := eventsKey(calendarID, timeMin, timeMax)

	var res []calendar.Event

	if err := getValue(ctx, f.client, key, &res); err == nil {
		return res, nil
	}

	f.logger.Info("ListEvents: not cached, fetching", zap.String("calendar", calendarID))

	res, err := f.orig.ListEvents(ctx, calendarID, timeMin, timeMax)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "orig.ListEvents")
	}

	setValue(ctx, f.client, key, &res, f.expiration)

	return res, nil
}

// Invalidate drops the cached calendar list so the next read refetches it.
func (f *Feed) Invalidate(ctx context.Context) {
	defer newOTELSpan(ctx, "Feed.Invalidate").End()

	deleteValue(ctx, f.client, "calendars")
}

func eventsKey(calendarID string, timeMin, timeMax time.Time) string {
	return "events:" + calendarID + ":" + timeMin.UTC().Format(time.RFC3339) + ":" + timeMax.UTC().Format(time.RFC3339)
}
