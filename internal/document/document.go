// Package document defines the persisted shape of a board snapshot: the
// single JSON blob written to and read from the remote store. The format is
// whole-document only; there is no partial read or write.
package document

import (
	"encoding/json"
	"time"

	"github.com/courseflow/board/internal"
)

// TaskRecord is the persisted form of a task. DueDate is an ISO-8601
// string; an absent field means "no due date", never a zero date.
type TaskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Color       string `json:"color"`
	Status      string `json:"status"`
	CourseID    string `json:"courseId"`
}

// CourseRecord is the persisted form of a course.
type CourseRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	GroupID string `json:"groupId"`
}

// GroupRecord is the persisted form of a group.
type GroupRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Document is the full persisted snapshot.
type Document struct {
	Tasks   []TaskRecord   `json:"tasks"`
	Courses []CourseRecord `json:"courses"`
	Groups  []GroupRecord  `json:"groups"`
}

// Complete reports whether all three collections were present in the
// decoded payload. A document missing any of them is structurally
// incomplete and must not be trusted.
func (d Document) Complete() bool {
	return d.Tasks != nil && d.Courses != nil && d.Groups != nil
}

// FromSnapshot converts an in-memory snapshot to its persisted form.
func FromSnapshot(s internal.Snapshot) Document {
	doc := Document{
		Tasks:   make([]TaskRecord, len(s.Tasks)),
		Courses: make([]CourseRecord, len(s.Courses)),
		Groups:  make([]GroupRecord, len(s.Groups)),
	}

	for i, t := range s.Tasks {
		rec := TaskRecord{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Color:       t.Color,
			Status:      string(t.Status),
			CourseID:    t.CourseID,
		}

		if t.DueDate != nil {
			rec.DueDate = t.DueDate.UTC().Format(time.RFC3339Nano)
		}

		doc.Tasks[i] = rec
	}

	for i, c := range s.Courses {
		doc.Courses[i] = CourseRecord{ID: c.ID, Name: c.Name, Color: c.Color, GroupID: c.GroupID}
	}

	for i, g := range s.Groups {
		doc.Groups[i] = GroupRecord{ID: g.ID, Name: g.Name}
	}

	return doc
}

// Snapshot converts the persisted form back into the in-memory one.
func (d Document) Snapshot() (internal.Snapshot, error) {
	s := internal.Snapshot{
		Tasks:   make([]internal.Task, len(d.Tasks)),
		Courses: make([]internal.Course, len(d.Courses)),
		Groups:  make([]internal.Group, len(d.Groups)),
	}

	for i, rec := range d.Tasks {
		status := internal.Status(rec.Status)
		if err := status.Validate(); err != nil {
			return internal.Snapshot{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "task %q", rec.ID)
		}

		task := internal.Task{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Status:      status,
			CourseID:    rec.CourseID,
			Color:       rec.Color,
		}

		if rec.DueDate != "" {
			due, err := time.Parse(time.RFC3339Nano, rec.DueDate)
			if err != nil {
				return internal.Snapshot{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "task %q: time.Parse", rec.ID)
			}

			task.DueDate = &due
		}

		s.Tasks[i] = task
	}

	for i, rec := range d.Courses {
		s.Courses[i] = internal.Course{ID: rec.ID, Name: rec.Name, Color: rec.Color, GroupID: rec.GroupID}
	}

	for i, rec := range d.Groups {
		s.Groups[i] = internal.Group{ID: rec.ID, Name: rec.Name}
	}

	return s, nil
}

// Encode renders the document as JSON.
func Encode(s internal.Snapshot) ([]byte, error) {
	b, err := json.Marshal(FromSnapshot(s))
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Marshal")
	}

	return b, nil
}

// Decode parses raw JSON into a document. Completeness is the caller's
// decision: a syntactically valid payload missing collections still decodes.
func Decode(raw []byte) (Document, error) {
	var doc Document

	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Unmarshal")
	}

	return doc, nil
}
