// Package templates renders the HTML pages of the fleet console.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

// NavGroup is one group of datasets in the navigation.
type NavGroup struct {
	Name     string
	Datasets []core.DatasetInfo
}

// TableView is the data needed to render a dataset page.
type TableView struct {
	Info    core.DatasetInfo
	Nav     []NavGroup
	Columns []core.ColumnSpec // visible columns, in display order
	Widths  map[string]int
	Result  *core.QueryResult
	Query   url.Values // current request parameters, reused by links
}

// writer accumulates the first write error so components can render
// without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) component(ctx context.Context, c templ.Component) {
	if w.err == nil {
		w.err = c.Render(ctx, w.w)
	}
}

// Layout wraps body in the page shell with the dataset navigation.
func Layout(title string, nav []NavGroup, active string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw(`<title>`)
		w.text(title)
		w.raw(` | Fleetdesk</title></head><body><nav class="sidebar"><a class="brand" href="/">Fleetdesk</a>`)
		for _, g := range nav {
			w.raw(`<section><h2>`)
			w.text(g.Name)
			w.raw(`</h2><ul>`)
			for _, ds := range g.Datasets {
				w.raw(`<li`)
				if ds.Key == active {
					w.raw(` class="active"`)
				}
				w.raw(`><a href="/datasets/`)
				w.text(url.PathEscape(ds.Key))
				w.raw(`">`)
				w.text(ds.Label)
				w.raw(`</a></li>`)
			}
			w.raw(`</ul></section>`)
		}
		w.raw(`</nav><main>`)
		w.component(ctx, body)
		w.raw(`</main></body></html>`)
		return w.err
	})
}

// IndexPage lists every dataset by group.
func IndexPage(nav []NavGroup) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<h1>Datasets</h1>`)
		for _, g := range nav {
			w.raw(`<h2>`)
			w.text(g.Name)
			w.raw(`</h2><div class="cards">`)
			for _, ds := range g.Datasets {
				w.raw(`<a class="card" href="/datasets/`)
				w.text(url.PathEscape(ds.Key))
				w.raw(`">`)
				w.text(ds.Label)
				w.raw(`</a>`)
			}
			w.raw(`</div>`)
		}
		return w.err
	})
	return Layout("Datasets", nav, "", body)
}

// DatasetPage renders one page of a filtered dataset.
func DatasetPage(v TableView) templ.Component {
	return Layout(v.Info.Label, v.Nav, v.Info.Key, datasetBody(v))
}

func datasetBody(v TableView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		res := v.Result

		w.raw(`<header><h1>`)
		w.text(v.Info.Label)
		w.raw(`</h1><p class="summary">`)
		w.text(fmt.Sprintf("%d of %d rows", res.TotalRows, res.UnfilteredRows))
		if res.ActiveFilters > 0 {
			w.text(fmt.Sprintf(", %d active filters", res.ActiveFilters))
		}
		w.raw(`</p><form method="get"><input type="search" name="search" value="`)
		w.text(res.SearchQuery)
		w.raw(`" placeholder="Search"></form></header>`)

		w.raw(`<table><thead><tr>`)
		for _, c := range v.Columns {
			w.raw(`<th`)
			if width := v.Widths[c.Key]; width > 0 {
				w.raw(` style="width:` + strconv.Itoa(width) + `px"`)
			}
			w.raw(`>`)
			if c.Sortable {
				w.raw(`<a href="?`)
				w.text(sortQuery(v.Query, c.Key, res.Sorts))
				w.raw(`">`)
				w.text(c.Label)
				w.raw(sortIndicator(c.Key, res.Sorts))
				w.raw(`</a>`)
			} else {
				w.text(c.Label)
			}
			w.raw(`</th>`)
		}
		w.raw(`</tr></thead><tbody>`)

		if len(res.Rows) == 0 {
			w.raw(`<tr><td class="empty" colspan="` + strconv.Itoa(len(v.Columns)) + `">No matching rows</td></tr>`)
		}
		for _, row := range res.Rows {
			w.raw(`<tr>`)
			for _, c := range v.Columns {
				w.raw(`<td>`)
				w.text(FormatCell(row[c.Key]))
				w.raw(`</td>`)
			}
			w.raw(`</tr>`)
		}
		w.raw(`</tbody>`)

		if len(res.Aggregations) > 0 {
			w.raw(`<tfoot><tr>`)
			for _, c := range v.Columns {
				w.raw(`<td>`)
				if agg := res.Aggregations[c.Key]; agg != nil && agg.Sum != nil {
					w.text("Σ " + filter.Stringify(*agg.Sum))
				}
				w.raw(`</td>`)
			}
			w.raw(`</tr></tfoot>`)
		}
		w.raw(`</table>`)

		if res.TotalPages > 1 {
			w.raw(`<nav class="pager">`)
			if res.Page > 1 {
				w.raw(`<a href="?`)
				w.text(pageQuery(v.Query, res.Page-1))
				w.raw(`">Previous</a>`)
			}
			w.text(fmt.Sprintf(" Page %d of %d ", res.Page, res.TotalPages))
			if res.Page < res.TotalPages {
				w.raw(`<a href="?`)
				w.text(pageQuery(v.Query, res.Page+1))
				w.raw(`">Next</a>`)
			}
			w.raw(`</nav>`)
		}
		return w.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div class="alert alert-error" role="alert"><p class="message">`)
		w.text(message)
		w.raw(`</p>`)
		if action != "" {
			w.raw(`<p class="action">`)
			w.text(action)
			w.raw(`</p>`)
		}
		w.raw(`<p class="code">Error code: `)
		w.text(code)
		w.raw(`</p></div>`)
		return w.err
	})
}

// FormatCell renders a display value for a table cell.
func FormatCell(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "Yes"
		}
		return "No"
	}
	return filter.Stringify(v)
}

// sortQuery toggles the direction of key when it is the primary sort.
func sortQuery(q url.Values, key string, sorts []core.SortSpec) string {
	dir := "asc"
	if len(sorts) > 0 && sorts[0].Column == key && sorts[0].Dir == "asc" {
		dir = "desc"
	}
	next := cloneValues(q)
	next.Set("sort", key)
	next.Set("dir", dir)
	next.Del("page")
	return next.Encode()
}

func sortIndicator(key string, sorts []core.SortSpec) string {
	if len(sorts) == 0 || sorts[0].Column != key {
		return ""
	}
	if strings.EqualFold(sorts[0].Dir, "desc") {
		return " ▼"
	}
	return " ▲"
}

func pageQuery(q url.Values, page int) string {
	next := cloneValues(q)
	next.Set("page", strconv.Itoa(page))
	return next.Encode()
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
