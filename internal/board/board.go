// Package board derives the rendered kanban view from a flat task list and
// the UI's filter/sort/lock state. Pure transformation: no network, no
// storage, no mutation of the input slice.
package board

import (
	"sort"
	"time"

	"github.com/Kodestorel007/fun-kanban/internal/api"
)

// Column is one of the four fixed board columns.
type Column struct {
	ID    string
	Title string
	Icon  string
}

// Columns in display order. Tasks with any other status are dropped from
// the board; there is no catch-all column.
var Columns = [4]Column{
	{ID: api.StatusTodo, Title: "To Do", Icon: "📋"},
	{ID: api.StatusInProgress, Title: "In Progress", Icon: "⚡"},
	{ID: api.StatusDone, Title: "Done", Icon: "✅"},
	{ID: api.StatusArchived, Title: "Archived", Icon: "📦"},
}

// ValidStatus reports whether s is one of the four column statuses.
func ValidStatus(s string) bool {
	for _, c := range Columns {
		if c.ID == s {
			return true
		}
	}
	return false
}

// Project filter sentinels. Any other value is matched against task
// project IDs as a string.
const (
	FilterAll  = "all"
	FilterNone = "none"
)

// Sortable fields.
const (
	SortDueDate   = "due_date"
	SortUpdatedAt = "updated_at"
)

// SortState is the tri-state sort control: off, ascending, descending.
type SortState struct {
	Field string // "" when sorting is off
	Desc  bool
}

// Toggle advances the state for a field click: a new field starts
// ascending, a second click flips to descending, a third clears sorting.
func (s *SortState) Toggle(field string) {
	if s.Field != field {
		s.Field = field
		s.Desc = false
		return
	}
	if !s.Desc {
		s.Desc = true
		return
	}
	s.Field = ""
	s.Desc = false
}

// Active reports whether a sort field is in effect.
func (s SortState) Active() bool { return s.Field != "" }

// View is the derived board: per-column ordered task lists plus counts.
// Counts come from the post-filter, pre-sort buckets, so they depend on the
// filter but never on the sort.
type View struct {
	Columns map[string][]api.Task
	Counts  map[string]int
}

// Derive runs the full pipeline: filter, bucket, then sort (globally per
// column, or within first-seen project groups when projectLock is on and
// the filter is "all").
func Derive(tasks []api.Task, filterProject string, sortState SortState, projectLock bool) *View {
	filtered := Filter(tasks, filterProject)

	v := &View{
		Columns: make(map[string][]api.Task, len(Columns)),
		Counts:  make(map[string]int, len(Columns)),
	}
	for _, c := range Columns {
		v.Columns[c.ID] = nil
	}
	for _, t := range filtered {
		if _, ok := v.Columns[t.Status]; ok {
			v.Columns[t.Status] = append(v.Columns[t.Status], t)
		}
	}
	for _, c := range Columns {
		v.Counts[c.ID] = len(v.Columns[c.ID])
	}

	if sortState.Active() {
		grouped := projectLock && filterProject == FilterAll
		for _, c := range Columns {
			v.Columns[c.ID] = sortColumn(v.Columns[c.ID], sortState, grouped)
		}
	}
	return v
}

// Filter applies the project filter. IDs are compared as strings to
// tolerate mixed numeric/string identifiers.
func Filter(tasks []api.Task, filterProject string) []api.Task {
	switch filterProject {
	case FilterAll, "":
		return tasks
	case FilterNone:
		var out []api.Task
		for _, t := range tasks {
			if t.ProjectID == "" {
				out = append(out, t)
			}
		}
		return out
	default:
		var out []api.Task
		for _, t := range tasks {
			if t.ProjectID.String() == filterProject {
				out = append(out, t)
			}
		}
		return out
	}
}

// sortColumn orders one column's tasks. With grouping, tasks are bucketed
// by project in the order each project is first seen, sorted within each
// group, and the groups concatenated back.
func sortColumn(tasks []api.Task, s SortState, grouped bool) []api.Task {
	out := make([]api.Task, len(tasks))
	copy(out, tasks)

	if !grouped {
		sort.SliceStable(out, func(i, j int) bool {
			return less(out[i], out[j], s)
		})
		return out
	}

	var order []api.ID
	groups := make(map[api.ID][]api.Task)
	for _, t := range out {
		key := t.ProjectID // "" groups the no-project tasks together
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	out = out[:0]
	for _, key := range order {
		g := groups[key]
		sort.SliceStable(g, func(i, j int) bool {
			return less(g[i], g[j], s)
		})
		out = append(out, g...)
	}
	return out
}

// less is the column comparator. A task missing the active field always
// sorts after one that has it, regardless of direction.
func less(a, b api.Task, s SortState) bool {
	av, aok := fieldValue(a, s.Field)
	bv, bok := fieldValue(b, s.Field)

	if !aok && !bok {
		return false
	}
	if !aok {
		return false // a goes after b
	}
	if !bok {
		return true
	}
	if s.Desc {
		return av.After(bv)
	}
	return av.Before(bv)
}

func fieldValue(t api.Task, field string) (time.Time, bool) {
	switch field {
	case SortDueDate:
		if t.DueDate == nil || t.DueDate.IsZero() {
			return time.Time{}, false
		}
		return t.DueDate.Time, true
	case SortUpdatedAt:
		if t.UpdatedAt.IsZero() {
			return time.Time{}, false
		}
		return t.UpdatedAt, true
	default:
		return time.Time{}, false
	}
}
