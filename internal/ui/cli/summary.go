package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"camelize/internal/core/app"
	"camelize/internal/core/decision"
	"camelize/internal/data/history"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Width(11)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

func row(label, value string) string {
	return "  " + labelStyle.Render(label) + value + "\n"
}

func renderSummary(w io.Writer, r *app.Report) {
	var sb strings.Builder
	title := "camelize run " + r.RunID
	if r.DryRun {
		title += " (dry run)"
	}
	sb.WriteString(titleStyle.Render(title) + "\n")

	files := humanize.Comma(int64(r.Loaded)) + " loaded"
	if len(r.Failed) > 0 {
		files += ", " + errorStyle.Render(humanize.Comma(int64(len(r.Failed)))+" failed")
	}
	sb.WriteString(row("files", files))
	sb.WriteString(row("renamed", successStyle.Render(humanize.Comma(int64(r.Stats.Renamed)))))

	skipped := humanize.Comma(int64(r.Stats.Skipped))
	if reasons := formatReasons(r.SkippedByReason); reasons != "" {
		skipped += " " + statusStyle.Render("("+reasons+")")
	}
	if r.Stats.Skipped > 0 {
		skipped = warnStyle.Render(skipped)
	}
	sb.WriteString(row("skipped", skipped))
	sb.WriteString(row("shorthand", humanize.Comma(int64(r.Stats.ShorthandRewrites))))

	changed := fmt.Sprintf("%s %s", humanize.Comma(int64(len(r.Dirty))), plural(len(r.Dirty), "file", "files"))
	if r.DryRun {
		changed += " " + statusStyle.Render("(not written)")
	}
	sb.WriteString(row("changed", changed))
	sb.WriteString(row("duration", r.Duration.Round(time.Millisecond).String()))

	for _, f := range r.Failed {
		sb.WriteString("  " + errorStyle.Render("!") + " " + f.Path + ": " + f.Err.Error() + "\n")
	}
	fmt.Fprint(w, sb.String())
}

// formatReasons lists skip reasons by count, most frequent first, ties in gate order.
func formatReasons(counts map[decision.Reason]int) string {
	var reasons []decision.Reason
	for _, reason := range decision.Reasons() {
		if counts[reason] > 0 {
			reasons = append(reasons, reason)
		}
	}
	sort.SliceStable(reasons, func(i, j int) bool {
		return counts[reasons[i]] > counts[reasons[j]]
	})
	parts := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		parts = append(parts, fmt.Sprintf("%s %d", reason, counts[reason]))
	}
	return strings.Join(parts, ", ")
}

func renderRuns(w io.Writer, runs []history.Run, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, statusStyle.Render("no runs recorded"))
		return
	}
	for _, run := range runs {
		mode := ""
		if run.DryRun {
			mode = statusStyle.Render(" dry run")
		}
		fmt.Fprintf(w, "%s  %s%s\n", titleStyle.Render(run.ID), humanize.RelTime(run.StartedAt, now, "ago", "from now"), mode)
		fmt.Fprintf(w, "  %s files, %s renamed, %s skipped, %s changed in %s\n",
			humanize.Comma(int64(run.Files)),
			humanize.Comma(int64(run.Renamed)),
			humanize.Comma(int64(run.Skipped)),
			humanize.Comma(int64(run.DirtyFiles)),
			run.Duration().Round(time.Millisecond),
		)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
