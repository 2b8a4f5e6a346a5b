package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/adminactions/internal/services/admin/actions"
)

// ActionOption is one entry of the bulk action select.
type ActionOption struct {
	Name  string
	Label string
}

// ChangeListRow is one selectable table row.
type ChangeListRow struct {
	ID       string
	Cells    []string
	Selected bool
}

// ChangeListView provides data for a collection list page with bulk actions.
type ChangeListView struct {
	// FormAction is the POST target, carrying the list query.
	FormAction  string
	Filter      string
	FilterError string
	Columns     []string
	Rows        []ChangeListRow
	// Actions is empty when the view offers no bulk actions; the action bar and
	// row checkboxes are then omitted.
	Actions []ActionOption
	// Error is the localized rejection message of the last dispatch.
	Error       string
	Empty       string
	NextPageURL string
}

// ChangeListPage renders a full list page.
func ChangeListPage(page PageContext, view ChangeListView) templ.Component {
	return Layout(page, ChangeList(page, view))
}

// ChangeList renders the filter form, action bar and result table.
func ChangeList(page PageContext, view ChangeListView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<section class="changelist"><h1>`)
		h.text(page.Title)
		h.raw(`</h1>`)

		h.raw(`<form method="GET" class="filter" action="`)
		h.url(page.CurrentPath)
		h.raw(`"><label for="filter">`)
		h.text(T(page.Loc, "admin.articles.filter.label"))
		h.raw(`</label><input type="search" id="filter" name="`)
		h.text(actions.FilterField)
		h.raw(`" value="`)
		h.text(view.Filter)
		h.raw(`"><button type="submit">`)
		h.text(T(page.Loc, "admin.articles.filter.apply"))
		h.raw(`</button></form>`)
		h.component(errorNote(view.FilterError))
		h.component(errorNote(view.Error))

		bulk := len(view.Actions) > 0
		h.raw(`<form method="POST" id="changelist-form" action="`)
		h.url(view.FormAction)
		h.raw(`" hx-post="`)
		h.url(view.FormAction)
		h.raw(`" hx-target="#content" hx-swap="innerHTML">`)
		if bulk {
			actionBar(h, page, view)
		}

		h.raw(`<table class="table"><thead><tr>`)
		if bulk {
			h.raw(`<th scope="col"><input type="checkbox" id="action-toggle" aria-label="`)
			h.text(T(page.Loc, "admin.actions.toggle_all"))
			h.raw(`"></th>`)
		}
		for _, column := range view.Columns {
			h.raw(`<th scope="col">`)
			h.text(column)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		if len(view.Rows) == 0 {
			colspan := len(view.Columns)
			if bulk {
				colspan++
			}
			h.raw(`<tr><td class="empty" colspan="`)
			h.text(strconv.Itoa(colspan))
			h.raw(`">`)
			h.text(view.Empty)
			h.raw(`</td></tr>`)
		}
		for _, row := range view.Rows {
			h.raw(`<tr data-id="`)
			h.text(row.ID)
			h.raw(`">`)
			if bulk {
				h.raw(`<td><input type="checkbox" class="action-select" name="`)
				h.text(actions.SelectionField)
				h.raw(`" value="`)
				h.text(row.ID)
				h.raw(`"`)
				if row.Selected {
					h.raw(` checked`)
				}
				h.raw(`></td>`)
			}
			for _, cell := range row.Cells {
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></form>`)

		if strings.TrimSpace(view.NextPageURL) != "" {
			h.raw(`<nav class="pagination"><a rel="next" href="`)
			h.url(view.NextPageURL)
			h.raw(`">`)
			h.text(T(page.Loc, "admin.articles.next_page"))
			h.raw(`</a></nav>`)
		}
		h.raw(`</section>`)
		return h.err
	})
}

func actionBar(h *htmlWriter, page PageContext, view ChangeListView) {
	h.raw(`<div class="actions"><label>`)
	h.text(T(page.Loc, "admin.actions.label"))
	h.raw(` <select name="`)
	h.text(actions.ActionField)
	h.raw(`" required><option value="">`)
	h.text(T(page.Loc, "admin.actions.placeholder"))
	h.raw(`</option>`)
	for _, option := range view.Actions {
		h.raw(`<option value="`)
		h.text(option.Name)
		h.raw(`">`)
		h.text(option.Label)
		h.raw(`</option>`)
	}
	h.raw(`</select></label>`)
	h.hidden(actions.IndexField, "0")
	h.raw(`<label class="select-across"><input type="checkbox" name="`)
	h.text(actions.SelectAcrossField)
	h.raw(`" value="1"> `)
	h.text(T(page.Loc, "admin.actions.select_across"))
	h.raw(`</label><button type="submit" class="button" title="`)
	h.text(T(page.Loc, "admin.actions.go"))
	h.raw(`">`)
	h.text(T(page.Loc, "admin.actions.go"))
	h.raw(`</button></div>`)
}
