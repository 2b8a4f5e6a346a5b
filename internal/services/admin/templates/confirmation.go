package templates

import (
	"context"
	"io"
	"net/url"
	"sort"

	"github.com/a-h/templ"
)

// DeleteConfirmationView provides data for the intermediate delete page.
type DeleteConfirmationView struct {
	FormAction string
	// Items are the labels of the records about to be deleted.
	Items []string
	// Hidden re-submits the action, the encoded selection and the confirmation.
	Hidden    url.Values
	CancelURL string
}

// DeleteConfirmationPage renders the "are you sure" page for delete_selected.
func DeleteConfirmationPage(page PageContext, view DeleteConfirmationView) templ.Component {
	return Layout(page, deleteConfirmation(page, view))
}

func deleteConfirmation(page PageContext, view DeleteConfirmationView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<section class="delete-confirmation"><h1>`)
		h.text(T(page.Loc, "admin.delete.title"))
		h.raw(`</h1><p>`)
		h.text(T(page.Loc, "admin.delete.summary", len(view.Items)))
		h.raw(`</p><ul class="deleted-objects">`)
		for _, item := range view.Items {
			h.raw(`<li>`)
			h.text(item)
			h.raw(`</li>`)
		}
		h.raw(`</ul><form method="POST" action="`)
		h.url(view.FormAction)
		h.raw(`">`)
		keys := make([]string, 0, len(view.Hidden))
		for key := range view.Hidden {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, value := range view.Hidden[key] {
				h.hidden(key, value)
			}
		}
		h.raw(`<button type="submit" class="button danger">`)
		h.text(T(page.Loc, "admin.delete.confirm"))
		h.raw(`</button> <a class="button cancel-link" href="`)
		h.url(view.CancelURL)
		h.raw(`">`)
		h.text(T(page.Loc, "admin.delete.cancel"))
		h.raw(`</a></form></section>`)
		return h.err
	})
}
