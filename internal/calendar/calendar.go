// Package calendar merges an external calendar-event feed with the board's
// dated tasks for one displayed week, and computes the side-by-side column
// layout for overlapping timed events.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/courseflow/board/internal"
)

// CalendarInfo identifies one source calendar in the feed.
type CalendarInfo struct {
	ID      string
	Summary string
	Primary bool
}

// Event is one calendar event, already resolved to a display color. An
// all-day event carries date-only precision: Start and End are midnights.
type Event struct {
	ID         string
	CalendarID string
	Title      string
	Start      time.Time
	End        time.Time
	AllDay     bool
	Color      string
}

// PastelColor derives a stable pastel from a calendar identifier: the
// identifier hashes to a hue, saturation and lightness are fixed. The hash
// is the classic JavaScript djb2 variant over UTF-16 code units, kept
// bit-compatible so colors match what the web shell always showed.
func PastelColor(id string) string {
	var hash int32

	for _, u := range utf16.Encode([]rune(id)) {
		hash = int32(u) + ((hash << 5) - hash)
	}

	hue := ((int(hash) % 360) + 360) % 360

	return fmt.Sprintf("hsl(%d, 70%%, 85%%)", hue)
}

// ResolveColor picks an event's display color: a course whose name appears
// in the event title (case-insensitive) overrides the calendar's default
// pastel. The first matching course in course order wins.
func ResolveColor(title, fallback string, courses []internal.Course) string {
	lower := strings.ToLower(title)

	for _, c := range courses {
		if strings.Contains(lower, strings.ToLower(c.Name)) {
			return c.Color
		}
	}

	return fallback
}

// PartitionDay splits the feed into the day's all-day lane and its timed
// grid. An all-day event belongs to the day when it starts on it or spans
// it (multi-day); a timed event belongs to the day it starts on.
func PartitionDay(events []Event, day time.Time) (allDay, timed []Event) {
	day = midnight(day)

	for _, e := range events {
		if e.AllDay {
			if sameDay(e.Start, day) || (e.Start.Before(day) && e.End.After(day)) {
				allDay = append(allDay, e)
			}

			continue
		}

		if sameDay(e.Start, day) {
			timed = append(timed, e)
		}
	}

	return allDay, timed
}

// Overlaps is the strict interval test used everywhere in the layout:
// [aStart,aEnd) and [bStart,bEnd) overlap iff aStart < bEnd && bStart < aEnd.
// Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()

	return y1 == y2 && m1 == m2 && d1 == d2
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
