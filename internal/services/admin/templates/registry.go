package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// RegistryRow describes one global action on the management page.
type RegistryRow struct {
	Name        string
	Description string
	Permissions string
	Disabled    bool
	// ToggleURL is the POST target flipping the disabled state.
	ToggleURL string
}

// ActionLogRow is one audit entry.
type ActionLogRow struct {
	When     string
	View     string
	Action   string
	Identity string
	Count    string
	Outcome  string
}

// ActionsPageView provides data for the action registry page.
type ActionsPageView struct {
	Rows []RegistryRow
	Log  []ActionLogRow
}

// ActionsPage renders the registry management page.
func ActionsPage(page PageContext, view ActionsPageView) templ.Component {
	return Layout(page, actionsContent(page, view))
}

func actionsContent(page PageContext, view ActionsPageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<section class="registry"><h1>`)
		h.text(page.Title)
		h.raw(`</h1>`)
		if len(view.Rows) == 0 {
			h.raw(`<p class="empty">`)
			h.text(T(page.Loc, "admin.registry.empty"))
			h.raw(`</p>`)
		} else {
			h.raw(`<table class="table" id="registry"><thead><tr>`)
			for _, key := range []string{
				"admin.registry.column.name",
				"admin.registry.column.description",
				"admin.registry.column.permissions",
				"admin.registry.column.state",
			} {
				h.raw(`<th scope="col">`)
				h.text(T(page.Loc, key))
				h.raw(`</th>`)
			}
			h.raw(`<th></th></tr></thead><tbody>`)
			for _, row := range view.Rows {
				registryRow(h, page, row)
			}
			h.raw(`</tbody></table>`)
		}

		h.raw(`<h2>`)
		h.text(T(page.Loc, "admin.registry.log.title"))
		h.raw(`</h2>`)
		if len(view.Log) == 0 {
			h.raw(`<p class="empty">`)
			h.text(T(page.Loc, "admin.registry.log.empty"))
			h.raw(`</p></section>`)
			return h.err
		}
		h.raw(`<table class="table" id="action-log"><thead><tr>`)
		for _, key := range []string{
			"admin.registry.log.column.when",
			"admin.registry.log.column.view",
			"admin.registry.log.column.action",
			"admin.registry.log.column.identity",
			"admin.registry.log.column.count",
			"admin.registry.log.column.outcome",
		} {
			h.raw(`<th scope="col">`)
			h.text(T(page.Loc, key))
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, entry := range view.Log {
			h.raw(`<tr>`)
			for _, cell := range []string{entry.When, entry.View, entry.Action, entry.Identity, entry.Count, entry.Outcome} {
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	})
}

func registryRow(h *htmlWriter, page PageContext, row RegistryRow) {
	h.raw(`<tr data-action="`)
	h.text(row.Name)
	h.raw(`"><td><code>`)
	h.text(row.Name)
	h.raw(`</code></td><td>`)
	h.text(row.Description)
	h.raw(`</td><td>`)
	h.text(row.Permissions)
	h.raw(`</td><td>`)
	state, toggle := "admin.registry.state.enabled", "admin.registry.disable"
	if row.Disabled {
		state, toggle = "admin.registry.state.disabled", "admin.registry.enable"
	}
	h.text(T(page.Loc, state))
	h.raw(`</td><td><form method="POST" action="`)
	h.url(row.ToggleURL)
	h.raw(`"><button type="submit" class="button">`)
	h.text(T(page.Loc, toggle))
	h.raw(`</button></form></td></tr>`)
}
