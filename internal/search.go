package internal

// SearchParams defines the optional filters for searching indexed tasks.
type SearchParams struct {
	Title    *string
	CourseID *string
	Status   *Status
	From     int64
	Size     int64
}

// IsZero determines whether any filter is set at all.
func (p SearchParams) IsZero() bool {
	return p.Title == nil && p.CourseID == nil && p.Status == nil
}

// SearchResults are the tasks matching a search, plus the total hit count.
type SearchResults struct {
	Tasks []Task
	Total int64
}
