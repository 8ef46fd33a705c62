package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/phenocheck/internal/core"
	"github.com/JonMunkholm/phenocheck/internal/store"
)

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:60rem;margin:2rem auto;padding:0 1rem;color:#1f2933}
h1{font-size:1.4rem}h2{font-size:1.1rem;margin-top:1.5rem}
.pass{color:#18794e}.fail{color:#c62828}.warn{color:#8a6d00}
table{border-collapse:collapse;width:100%}td,th{text-align:left;padding:.3rem .5rem;border-bottom:1px solid #e4e7eb}
li{margin:.25rem 0}.muted{color:#616e7c;font-size:.9rem}`

// render writes c as an HTML page with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "path", r.URL.Path, "error", err)
	}
}

// htmlWriter accumulates the first write error so components can write
// sequentially without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

// page wraps body in the shared document layout.
func page(title string, body func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(`</title><style>` + pageStyle + `</style></head><body>`)
		body(h)
		h.raw(`</body></html>`)
		return h.err
	})
}

func findingList(h *htmlWriter, class string, items []string) {
	h.rawf(`<ol class="%s">`, class)
	for _, item := range items {
		h.raw(`<li>`)
		h.text(item)
		h.raw(`</li>`)
	}
	h.raw(`</ol>`)
}

func statusLabel(run store.Run) (class, label string) {
	switch {
	case !run.Passed():
		return "fail", "Failed"
	case len(run.Warnings) > 0:
		return "warn", "Passed with warnings"
	default:
		return "pass", "Passed"
	}
}

// runReport renders the findings of one run.
func runReport(run store.Run) templ.Component {
	return page("Validation report: "+run.FileName, func(h *htmlWriter) {
		class, label := statusLabel(run)

		h.raw(`<p><a href="/">All runs</a></p><h1>`)
		h.text(run.FileName)
		h.rawf(` <span class="%s">%s</span></h1>`, class, label)

		h.raw(`<p class="muted">Dictionary `)
		h.text(run.DictionaryName)
		h.rawf(` &middot; %s &middot; %d data rows &middot; %s &middot; run %s</p>`,
			templ.EscapeString(run.Format), run.Rows,
			run.CreatedAt.Format(time.RFC3339), run.ID)

		h.rawf(`<h2>Errors (%d)</h2>`, len(run.Errors))
		if len(run.Errors) == 0 {
			h.raw(`<p class="pass">No errors.</p>`)
		} else {
			findingList(h, "fail", run.Errors)
		}

		h.rawf(`<h2>Warnings (%d)</h2>`, len(run.Warnings))
		if len(run.Warnings) == 0 {
			h.raw(`<p>No warnings.</p>`)
		} else {
			findingList(h, "warn", run.Warnings)
		}
	})
}

// runList renders the recent runs table.
func runList(runs []store.Run) templ.Component {
	return page("Validation runs", func(h *htmlWriter) {
		h.raw(`<h1>Validation runs</h1>`)
		if len(runs) == 0 {
			h.raw(`<p class="muted">No runs yet. POST a data file and dictionary to /api/validate.</p>`)
			return
		}

		h.raw(`<table><thead><tr><th>File</th><th>Dictionary</th><th>Status</th><th>Errors</th><th>Warnings</th><th>Created</th></tr></thead><tbody>`)
		for _, run := range runs {
			class, label := statusLabel(run)
			h.rawf(`<tr><td><a href="/runs/%s">`, run.ID)
			h.text(run.FileName)
			h.raw(`</a></td><td>`)
			h.text(run.DictionaryName)
			h.rawf(`</td><td class="%s">%s</td><td>%d</td><td>%d</td><td>%s</td></tr>`,
				class, label, len(run.Errors), len(run.Warnings), run.CreatedAt.Format(time.RFC3339))
		}
		h.raw(`</tbody></table>`)
	})
}

// errorPage renders a user-facing error.
func errorPage(msg core.UserMessage) templ.Component {
	return page("Error", func(h *htmlWriter) {
		h.raw(`<h1 class="fail">`)
		h.text(msg.Message)
		h.raw(`</h1><p>`)
		h.text(msg.Action)
		h.raw(`</p><p class="muted">Code: `)
		h.text(msg.Code)
		h.raw(`</p><p><a href="/">All runs</a></p>`)
	})
}
