// Package doc describes the architecture of the system using the C4 model,
// rendered with mdl (see goa.design/model).
package doc

import (
	. "goa.design/model/dsl"
)

var _ = Design("CourseFlow Board", "Client-side kanban engine with cloud persistence", func() {
	var System = SoftwareSystem("Board System", "Kanban board for course work", func() {
		URL("https://github.com/courseflow/board")

		Container("Board Server", "Owns the session snapshot, mutations and derived views", "Go", func() {
			Component("Mutation Engine", "State transitions, cascades and the archival grace period", "Go package")
			Component("Synchronizer", "Coalescing whole-document persistence", "Go package")
			Component("Calendar Feed", "Week aggregation, color resolution and column layout", "Go package")
			Tag("service")
		})

		Container("Search Indexer", "Consumes task events and maintains the search index", "Go", func() {
			Tag("service")
		})
	})

	Person("User", "A student organizing course work", func() {
		Uses(System, "Reads and mutates the board", "HTTPS", Synchronous)
		Tag("person")
	})

	SoftwareSystem("Google Drive", "Holds the board document in the app data folder", func() {
		Tag("external")
	})

	SoftwareSystem("Google Calendar", "Supplies the external event feed", func() {
		Tag("external")
	})

	Views(func() {
		SystemContextView(System, "System", "System context diagram", func() {
			AddAll()
			AutoLayout(RankLeftRight)
		})

		Styles(func() {
			ElementStyle("person", func() {
				Shape(ShapePerson)
			})
			ElementStyle("external", func() {
				Background("#999999")
			})
		})
	})
})
