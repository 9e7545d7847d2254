package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/roster/internal/model"
)

const maxCell = 32

// Box frames inner with the current theme's border.
func Box(inner string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(inner)
}

// Panel writes lines framed in a box.
func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, Box(strings.Join(lines, "\n")))
}

// Truncate shortens s to at most n cells, marking the cut with "…".
func Truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// Columns returns the widths of the name, email and to-do columns.
func Columns(records []model.Record) [3]int {
	w := [3]int{len("Name"), len("Email"), len("To-Do")}
	for _, r := range records {
		for i, s := range []string{r.Name, r.Email, r.ToDo} {
			w[i] = max(w[i], min(lipgloss.Width(s), maxCell))
		}
	}
	return w
}

// Row renders one record as padded columns.
func Row(r model.Record, cols [3]int) string {
	cells := []string{r.Name, r.Email, r.ToDo}
	for i, c := range cells {
		c = Truncate(c, cols[i])
		cells[i] = c + strings.Repeat(" ", cols[i]-lipgloss.Width(c))
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}

// Header renders the column titles for cols.
func Header(cols [3]int) string {
	return Row(model.Record{Name: "Name", Email: "Email", ToDo: "To-Do"}, cols)
}

// RecordLines renders records as a numbered table (1-based, as typed on the
// command line).
func RecordLines(records []model.Record) []string {
	t := Current()
	if len(records) == 0 {
		return []string{t.Muted.Render("no students")}
	}
	cols := Columns(records)
	out := make([]string, 0, len(records)+1)
	out = append(out, t.Muted.Render("    "+Header(cols)))
	for i, r := range records {
		idx := fmt.Sprintf("%2d.", i+1)
		out = append(out, t.Muted.Render(idx)+" "+Row(r, cols))
	}
	return out
}
