// Package view renders a results document as a styled terminal report.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crimson-sun/sieve/internal/results"
)

// evidenceLines caps how many raw log lines are shown per group.
const evidenceLines = 5

// Options controls rendering.
type Options struct {
	// TopN limits how many groups are shown. Zero shows all.
	TopN int
	// NoColor strips all styling.
	NoColor bool
}

type styles struct {
	title    lipgloss.Style
	rule     lipgloss.Style
	count    lipgloss.Style
	pattern  lipgloss.Style
	evidence lipgloss.Style
	meta     lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		rule:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		count:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		pattern:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		evidence: lipgloss.NewStyle().Faint(true),
		meta:     lipgloss.NewStyle().Faint(true),
	}
}

// Render formats the document for terminal display.
func Render(doc results.Document, opts Options) string {
	st := newStyles(opts.NoColor)
	var b strings.Builder

	b.WriteString(st.title.Render("Clustering Results"))
	b.WriteString("\n")
	if doc.Run.LogFile != "" {
		b.WriteString(st.meta.Render(fmt.Sprintf("source: %s", doc.Run.LogFile)))
		b.WriteString("\n")
	}
	if doc.Run.TimestampUTC != "" {
		b.WriteString(st.meta.Render(fmt.Sprintf("run: %s", doc.Run.TimestampUTC)))
		b.WriteString("\n")
	}
	b.WriteString(st.meta.Render(fmt.Sprintf(
		"records=%d logic_groups=%d groups=%d ai=%v",
		doc.Run.Counts.Records, doc.Run.Counts.LogicGroups,
		doc.Run.Counts.SuperGroups, doc.Run.AI.Enabled)))
	b.WriteString("\n")
	for _, w := range doc.Run.AI.Warnings {
		b.WriteString(st.meta.Render("warning: " + w))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	groups := doc.Groups
	if opts.TopN > 0 && len(groups) > opts.TopN {
		groups = groups[:opts.TopN]
	}

	for i, g := range groups {
		b.WriteString(fmt.Sprintf("%s %s  %s\n",
			st.meta.Render(fmt.Sprintf("%3d.", i+1)),
			st.rule.Render(g.RuleID),
			st.count.Render(fmt.Sprintf("x%d (%d variants)", g.TotalCount, g.MergedVariantsCount)),
		))
		b.WriteString("     " + g.RepresentativeTemplate + "\n")
		if g.RepresentativePattern != "" {
			b.WriteString("     " + st.pattern.Render(g.RepresentativePattern) + "\n")
		}
		for j, line := range g.OriginalLogs {
			if j >= evidenceLines {
				b.WriteString(st.evidence.Render(fmt.Sprintf(
					"       ... %d more", len(g.OriginalLogs)-evidenceLines)))
				b.WriteString("\n")
				break
			}
			b.WriteString(st.evidence.Render("       | " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if opts.TopN > 0 && len(doc.Groups) > opts.TopN {
		b.WriteString(st.meta.Render(fmt.Sprintf(
			"showing %d of %d groups", opts.TopN, len(doc.Groups))))
		b.WriteString("\n")
	}
	return b.String()
}
