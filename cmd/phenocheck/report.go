package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/phenocheck/internal/store"
)

// reportStyles are bound to the output's renderer so color is dropped
// automatically when writing to a pipe or file.
type reportStyles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	pass    lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	section lipgloss.Style
	item    lipgloss.Style
}

func newReportStyles(w io.Writer) reportStyles {
	r := lipgloss.NewRenderer(w)
	return reportStyles{
		title:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		pass:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		fail:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warn:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		section: r.NewStyle().Bold(true).Underline(true).MarginTop(1),
		item:    r.NewStyle().PaddingLeft(2),
	}
}

// renderReport writes a human readable summary of run to w.
func renderReport(w io.Writer, run store.Run) error {
	st := newReportStyles(w)
	var b strings.Builder

	b.WriteString(st.title.Render(run.FileName))
	b.WriteString(" ")
	b.WriteString(st.muted.Render(fmt.Sprintf("(%s, %s, dictionary %s)",
		run.Format, plural(run.Rows, "data row"), run.DictionaryName)))
	b.WriteString("\n")

	counts := fmt.Sprintf("%s, %s", plural(len(run.Errors), "error"), plural(len(run.Warnings), "warning"))
	switch {
	case !run.Passed():
		b.WriteString(st.fail.Render("FAILED") + "  " + counts)
	case len(run.Warnings) > 0:
		b.WriteString(st.warn.Render("PASSED WITH WARNINGS") + "  " + counts)
	default:
		b.WriteString(st.pass.Render("PASSED") + "  " + counts)
	}
	b.WriteString("\n")

	writeFindings(&b, st, st.fail, "Errors", run.Errors)
	writeFindings(&b, st, st.warn, "Warnings", run.Warnings)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFindings(b *strings.Builder, st reportStyles, marker lipgloss.Style, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(st.section.Render(title))
	b.WriteString("\n")
	for i, item := range items {
		b.WriteString(st.item.Render(marker.Render(fmt.Sprintf("%d.", i+1)) + " " + item))
		b.WriteString("\n")
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
