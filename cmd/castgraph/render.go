package main

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/castgraph/internal/graphview"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/session"
)

// printState writes a text rendering of the session: the banner, then the
// focal node and its connections.
func printState(w io.Writer, st session.State) {
	if !st.Banner.IsZero() {
		fmt.Fprintf(w, "[%s] %s\n", st.Banner.Kind, st.Banner.Message)
	}
	switch o := st.Outcome.(type) {
	case session.Idle:
		fmt.Fprintf(w, "Search by %s.\n", st.Role)
	case session.Loading:
		fmt.Fprintf(w, "Loading %s %q...\n", o.Query.Role, o.Query.Text)
	case session.Found:
		printGraph(w, o.View, st.Selected)
	}
}

func printGraph(w io.Writer, view models.GraphView, selected string) {
	focal, ok := view.Focal()
	if !ok {
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", focal.Label, focal.Role)
	for _, n := range view.Nodes[1:] {
		style := graphview.Paint(n, selected)
		mark := " "
		if style.Stroke != "" {
			mark = "*"
		}
		if n.Year != "" {
			fmt.Fprintf(w, " %s %s (%s)\n", mark, style.Label, n.Year)
			continue
		}
		fmt.Fprintf(w, " %s %s\n", mark, style.Label)
	}
}

func printEntity(w io.Writer, e models.Entity) {
	fmt.Fprintf(w, "%s", e.Name)
	if e.Year != "" {
		fmt.Fprintf(w, " (%s)", e.Year)
	}
	if e.Gender != "" {
		fmt.Fprintf(w, " | %s", e.Gender)
	}
	if e.DateOfBirth != "" {
		fmt.Fprintf(w, " | born %s", e.DateOfBirth)
	}
	if e.DateOfDeath != "" {
		fmt.Fprintf(w, " | died %s", e.DateOfDeath)
	}
	fmt.Fprintln(w)
}
