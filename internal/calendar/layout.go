package calendar

import (
	"sort"
	"time"
)

// Positioned is an event placed on the day grid. Left and Width are
// percentages of the day column; StartOffsetHours and DurationMinutes are
// the exact geometry inputs, leaving the pixels-per-hour scale to the
// renderer.
type Positioned struct {
	Event

	Column  int
	Columns int
	Left    float64
	Width   float64

	StartOffsetHours float64
	DurationMinutes  int
}

// Layout packs one day's timed events into non-overlapping columns using
// greedy first-fit: events are taken in ascending start order (feed order
// breaking ties) and each goes into the first column whose last event it
// does not overlap, opening a new column otherwise. Greedy first-fit is not
// an optimal interval coloring in adversarial cases, but it is the layout
// calendar users expect.
func Layout(events []Event) []Positioned {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var columns [][]Event

	for _, e := range sorted {
		placed := false

		for i, col := range columns {
			last := col[len(col)-1]
			if !Overlaps(e.Start, e.End, last.Start, last.End) {
				columns[i] = append(col, e)
				placed = true

				break
			}
		}

		if !placed {
			columns = append(columns, []Event{e})
		}
	}

	total := len(columns)
	width := 100.0 / float64(total)

	out := make([]Positioned, 0, len(sorted))

	for colIndex, col := range columns {
		for _, e := range col {
			out = append(out, Positioned{
				Event:            e,
				Column:           colIndex,
				Columns:          total,
				Left:             float64(colIndex) * width,
				Width:            width,
				StartOffsetHours: hoursFromMidnight(e.Start),
				DurationMinutes:  int(e.End.Sub(e.Start).Minutes()),
			})
		}
	}

	return out
}

func hoursFromMidnight(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}
