package internal

// Filter selects which tasks the board shows. Besides the three literal
// values, any known group id is a valid filter and restricts the board to
// tasks whose course belongs to that group.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterThisWeek  Filter = "this-week"
	FilterThisMonth Filter = "this-month"
)
