// Package report renders paths and layouts for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	Brand  = color.New(color.FgHiGreen, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// Path prints a route as "A → B → C" followed by its cost. An empty ids
// slice is reported as unreachable.
func Path(w io.Writer, from, to string, ids []string, cost float64) {
	if len(ids) == 0 {
		fmt.Fprintf(w, "%s no path from %s to %s\n", Bad.Sprint("✗"), Info.Sprint(from), Info.Sprint(to))
		return
	}
	hops := make([]string, len(ids))
	for i, id := range ids {
		hops[i] = Info.Sprint(id)
	}
	fmt.Fprintf(w, "%s %s\n", Good.Sprint("✓"), strings.Join(hops, Subtle.Sprint(" → ")))
	fmt.Fprintf(w, "  %s %s  %s %d\n",
		Subtle.Sprint("cost"), Brand.Sprint(formatCost(cost)),
		Subtle.Sprint("hops"), len(ids)-1)
}

func formatCost(c float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", c), "0"), ".")
}

// Position is one row of a layout table.
type Position struct {
	ID      string
	Title   string
	X, Y, Z float64
}

// Layout prints node positions as an aligned table with a convergence
// summary.
func Layout(w io.Writer, rows []Position, ticks int, converged bool) {
	state := Bad.Sprint("still moving")
	if converged {
		state = Good.Sprint("converged")
	}
	fmt.Fprintf(w, "%s %d nodes, %d ticks, %s\n\n", Brand.Sprint("layout"), len(rows), ticks, state)

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			r.ID,
			r.Title,
			fmt.Sprintf("%.1f", r.X),
			fmt.Sprintf("%.1f", r.Y),
			fmt.Sprintf("%.1f", r.Z),
		}
	}
	table(w, []string{"ID", "TITLE", "X", "Y", "Z"}, cells)
}

func table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	header := "  "
	sep := "  "
	for i, h := range headers {
		header += fmt.Sprintf("%-*s  ", widths[i], h)
		sep += strings.Repeat("─", widths[i]) + "  "
	}
	Subtle.Fprintln(w, strings.TrimRight(header, " "))
	Subtle.Fprintln(w, strings.TrimRight(sep, " "))

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += fmt.Sprintf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}
