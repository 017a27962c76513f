package ui

import (
	"fmt"
	"io"

	"github.com/Kodestorel007/fun-kanban/internal/api"
	"github.com/Kodestorel007/fun-kanban/internal/board"
)

// BoardOptions controls how the derived board is rendered.
type BoardOptions struct {
	Projects         []api.Project
	ShowArchived     bool // archived column is collapsed to a count by default
	ShowDescriptions bool
}

// RenderBoard writes the four columns of a derived view.
func RenderBoard(w io.Writer, v *board.View, opts BoardOptions) {
	byID := make(map[string]api.Project, len(opts.Projects))
	for _, p := range opts.Projects {
		byID[p.ID.String()] = p
	}

	for _, col := range board.Columns {
		tasks := v.Columns[col.ID]

		if col.ID == api.StatusArchived && !opts.ShowArchived {
			fmt.Fprintf(w, "%s %s %s\n\n", col.Icon, Bold(col.Title),
				Dim(fmt.Sprintf("(%d, collapsed — use --archived)", v.Counts[col.ID])))
			continue
		}

		fmt.Fprintf(w, "%s %s %s\n", col.Icon, Bold(col.Title),
			Dim(fmt.Sprintf("(%d)", v.Counts[col.ID])))
		if len(tasks) == 0 {
			fmt.Fprintf(w, "   %s\n\n", Dim("No tasks"))
			continue
		}

		for _, t := range tasks {
			fmt.Fprintln(w, renderCard(t, byID, opts))
		}
		fmt.Fprintln(w)
	}
}

func renderCard(t api.Task, projects map[string]api.Project, opts BoardOptions) string {
	title := t.Title
	if p, ok := projects[t.ProjectID.String()]; ok {
		title = Swatch(p.Color, t.Title) + " " + Dim("["+p.Name+"]")
	}

	line := fmt.Sprintf("   %s %s", PriorityDot(t.Priority), title)
	if b := Badge(t); b != "" {
		line += " " + b
	}
	if t.DueDate != nil && !t.DueDate.IsZero() {
		line += " " + Dim("due "+t.DueDate.Format("Jan 2 2006"))
	}
	line += " " + Dim(RelTime(t.UpdatedAt))

	if opts.ShowDescriptions && t.Description != "" {
		desc := t.Description
		if len(desc) > 220 {
			desc = desc[:220] + "..."
		}
		line += "\n     " + Dim(desc)
	}
	return line
}
