package calendar

import (
	"sort"
	"time"

	"github.com/courseflow/board/internal"
)

// Kind tags entries in a merged day list.
type Kind string

const (
	KindAllDayEvent Kind = "all_day_event"
	KindTimedEvent  Kind = "timed_event"
	KindTask        Kind = "task"
)

// ListItem is one entry of the combined single-list day view: calendar
// events and due tasks interleaved on a shared timeline.
type ListItem struct {
	Kind    Kind
	ID      string
	Title   string
	Color   string
	Instant time.Time
}

// MergeDay builds the combined list for one day: the day's all-day events
// first, then timed events and tasks due that day ordered by instant. Ties
// keep their source order.
func MergeDay(day time.Time, events []Event, tasks []internal.Task) []ListItem {
	allDay, timed := PartitionDay(events, day)

	out := make([]ListItem, 0, len(allDay)+len(timed)+len(tasks))

	for _, e := range allDay {
		out = append(out, ListItem{
			Kind:    KindAllDayEvent,
			ID:      e.ID,
			Title:   e.Title,
			Color:   e.Color,
			Instant: midnight(day),
		})
	}

	dated := make([]ListItem, 0, len(timed)+len(tasks))

	for _, e := range timed {
		dated = append(dated, ListItem{
			Kind:    KindTimedEvent,
			ID:      e.ID,
			Title:   e.Title,
			Color:   e.Color,
			Instant: e.Start,
		})
	}

	for _, t := range tasks {
		if t.DueDate == nil || !sameDay(*t.DueDate, day) {
			continue
		}

		dated = append(dated, ListItem{
			Kind:    KindTask,
			ID:      t.ID,
			Title:   t.Title,
			Color:   t.Color,
			Instant: *t.DueDate,
		})
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Instant.Before(dated[j].Instant)
	})

	return append(out, dated...)
}
