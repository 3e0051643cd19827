package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/poker-equity/internal/ranges"
	"github.com/lox/poker-equity/internal/simulation"
	"github.com/lox/poker-equity/poker"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Faint(true)
)

func percent(x float64) string {
	return fmt.Sprintf("%.1f%%", x*100)
}

// renderResult prints a run summary followed by the winning-category
// breakdown, strongest category first.
func renderResult(w io.Writer, players []simulation.Player, board []poker.Card, res *simulation.Result) {
	if len(board) > 0 {
		fmt.Fprintf(w, "%s\n", headerStyle.Render("board"))
		fmt.Fprintf(w, "%s\n\n", poker.FormatCards(board))
	}

	seats := make([]string, len(players))
	for i, p := range players {
		seats[i] = p.String()
	}
	fmt.Fprintf(w, "%s %s\n\n", headerStyle.Render("players"), handStyle.Render(strings.Join(seats, " ")))

	lo, hi := res.Stats.ConfidenceInterval()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("equity"),
		headerStyle.Render("95% interval"),
		headerStyle.Render("ties"),
		headerStyle.Render("allowed"))
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		winStyle.Render(percent(res.Equity)),
		fmt.Sprintf("%s to %s", percent(lo), percent(hi)),
		tieStyle.Render(percent(res.Stats.TieRate())),
		fmt.Sprintf("%d/%d", res.AllowedHands, poker.NumStartingHands))
	tw.Flush()

	if len(res.Distribution) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\t%s\n", categoryStyle.Render("won with"), headerStyle.Render("share"))
		for _, c := range slices.Backward(poker.Categories[:]) {
			share, ok := res.Distribution[c]
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\n", categoryStyle.Render(c.Label()), percentStyle.Render(percent(share)))
		}
		tw.Flush()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d trials, %d rejected draws, %s in %v (seed %d)",
		res.Stats.Trials, res.Stats.Passes, res.State, res.Duration.Truncate(time.Millisecond), res.Seed)))
}

// renderAllowed prints the hands in a range, strongest first
func renderAllowed(w io.Writer, table *ranges.Table, fraction float64, set ranges.AllowedSet) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		headerStyle.Render("#"),
		headerStyle.Render("hand"),
		headerStyle.Render("win rate"))

	n := 0
	for _, h := range table.Strongest() {
		if !set.Contains(h) {
			continue
		}
		n++
		fmt.Fprintf(tw, "%d\t%s\t%s\n", n, handStyle.Render(h.String()), winStyle.Render(percent(table.WinRate(h))))
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d of %d hands (%d combos) in the top %s",
		set.Len(), poker.NumStartingHands, set.Combos(), percent(fraction))))
}
