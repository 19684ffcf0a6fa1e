package internal

import "time"

// DefaultSnapshot is the fixed dataset a brand-new board starts from, and
// the in-memory fallback when the remote document cannot be used. Due dates
// are offsets from the given instant so the sample board always has
// something upcoming.
func DefaultSnapshot(now time.Time) Snapshot {
	due := func(days int) *time.Time {
		d := now.AddDate(0, 0, days)
		return &d
	}

	return Snapshot{
		Groups: []Group{
			{ID: "group-1", Name: "University"},
			{ID: "group-2", Name: "Work"},
			{ID: "group-3", Name: "Personal"},
		},
		Courses: []Course{
			{ID: "course-1", Name: "Project Management", Color: "#86A8E7", GroupID: "group-1"},
			{ID: "course-2", Name: "Algorithmics", Color: "#5FFBF1", GroupID: "group-1"},
			{ID: "course-3", Name: "UX/UI Design", Color: "#F2B880", GroupID: "group-1"},
			{ID: "course-4", Name: "Quarterly Reports", Color: "#FF6961", GroupID: "group-2"},
			{ID: "course-5", Name: "Errands", Color: "#D4A5A5", GroupID: "group-3"},
		},
		Tasks: []Task{
			{
				ID:          "task-1",
				Title:       "Define the final project scope",
				Description: "Write the scope document and get it approved.",
				DueDate:     due(5),
				Status:      StatusNotStarted,
				CourseID:    "course-1",
				Color:       "#86A8E7",
			},
			{
				ID:          "task-2",
				Title:       "Implement Dijkstra's algorithm",
				Description: "Shortest path over a weighted graph.",
				Status:      StatusInProgress,
				CourseID:    "course-2",
				Color:       "#5FFBF1",
			},
			{
				ID:       "task-3",
				Title:    "Sketch the app wireframes",
				DueDate:  due(10),
				Status:   StatusInProgress,
				CourseID: "course-3",
				Color:    "#F2B880",
			},
			{
				ID:       "task-4",
				Title:    "Finish sprint planning",
				Status:   StatusDone,
				CourseID: "course-1",
				Color:    "#86A8E7",
			},
			{
				ID:       "task-5",
				Title:    "Do the weekly groceries",
				Status:   StatusNotStarted,
				CourseID: "course-5",
				Color:    "#D4A5A5",
			},
			{
				ID:          "task-6",
				Title:       "Prepare the Q2 sales report",
				Description: "Collect the numbers and build the deck for Friday.",
				DueDate:     due(2),
				Status:      StatusInProgress,
				CourseID:    "course-4",
				Color:       "#FF6961",
			},
			{
				ID:       "task-7",
				Title:    "Research drag-and-drop libraries",
				Status:   StatusDone,
				CourseID: "course-3",
				Color:    "#F2B880",
			},
		},
	}
}
