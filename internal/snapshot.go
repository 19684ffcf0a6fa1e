package internal

// Snapshot is the full in-memory state of a board session: every task,
// course and group. Mutations never modify a Snapshot in place; they return
// a fresh one so the owning shell can swap and re-render.
type Snapshot struct {
	Tasks   []Task
	Courses []Course
	Groups  []Group
}

// Clone returns a deep copy with freshly allocated slices.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Tasks:   make([]Task, len(s.Tasks)),
		Courses: make([]Course, len(s.Courses)),
		Groups:  make([]Group, len(s.Groups)),
	}

	copy(out.Tasks, s.Tasks)
	copy(out.Courses, s.Courses)
	copy(out.Groups, s.Groups)

	return out
}

// TaskByID returns the task with the given id, if present.
func (s Snapshot) TaskByID(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}

	return Task{}, false
}

// CourseByID returns the course with the given id, if present.
func (s Snapshot) CourseByID(id string) (Course, bool) {
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}

	return Course{}, false
}

// GroupByID returns the group with the given id, if present.
func (s Snapshot) GroupByID(id string) (Group, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}

	return Group{}, false
}

// CourseIDsOfGroup returns the ids of every course owned by the group.
func (s Snapshot) CourseIDsOfGroup(groupID string) map[string]struct{} {
	ids := make(map[string]struct{})

	for _, c := range s.Courses {
		if c.GroupID == groupID {
			ids[c.ID] = struct{}{}
		}
	}

	return ids
}

// RemoveGroup returns a new snapshot without the group, without any course
// it owned, and without any task belonging to one of those courses. Removing
// an absent group is a no-op.
func (s Snapshot) RemoveGroup(groupID string) Snapshot {
	orphaned := s.CourseIDsOfGroup(groupID)

	out := Snapshot{
		Tasks:   make([]Task, 0, len(s.Tasks)),
		Courses: make([]Course, 0, len(s.Courses)),
		Groups:  make([]Group, 0, len(s.Groups)),
	}

	for _, g := range s.Groups {
		if g.ID != groupID {
			out.Groups = append(out.Groups, g)
		}
	}

	for _, c := range s.Courses {
		if _, gone := orphaned[c.ID]; !gone {
			out.Courses = append(out.Courses, c)
		}
	}

	for _, t := range s.Tasks {
		if _, gone := orphaned[t.CourseID]; !gone {
			out.Tasks = append(out.Tasks, t)
		}
	}

	return out
}

// RemoveCourse returns a new snapshot without the course and without any
// task that belonged to it. Removing an absent course is a no-op.
func (s Snapshot) RemoveCourse(courseID string) Snapshot {
	out := Snapshot{
		Tasks:   make([]Task, 0, len(s.Tasks)),
		Courses: make([]Course, 0, len(s.Courses)),
		Groups:  make([]Group, len(s.Groups)),
	}

	copy(out.Groups, s.Groups)

	for _, c := range s.Courses {
		if c.ID != courseID {
			out.Courses = append(out.Courses, c)
		}
	}

	for _, t := range s.Tasks {
		if t.CourseID != courseID {
			out.Tasks = append(out.Tasks, t)
		}
	}

	return out
}
