package templates

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Tag    string
	Label  string
	URL    string
	Active bool
}

var languageLabels = []struct {
	tag string
	key string
}{
	{tag: "en", key: "core.language.en"},
	{tag: "pt-BR", key: "core.language.pt_br"},
}

// LanguageOptions returns supported language options with active selection.
func LanguageOptions(page PageContext) []LanguageOption {
	options := make([]LanguageOption, 0, len(languageLabels))
	for _, entry := range languageLabels {
		options = append(options, LanguageOption{
			Tag:    entry.tag,
			Label:  T(page.Loc, entry.key),
			URL:    LanguageURL(page, entry.tag),
			Active: strings.EqualFold(page.Lang, entry.tag) || (entry.tag == "en" && strings.HasPrefix(strings.ToLower(page.Lang), "en")),
		})
	}
	return options
}

// LanguageURL returns the current URL with the language param updated.
func LanguageURL(page PageContext, tag string) string {
	query, err := url.ParseQuery(page.CurrentQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set("lang", tag)
	path := page.CurrentPath
	if path == "" {
		path = "/"
	}
	return path + "?" + query.Encode()
}

// Layout wraps body in the admin page chrome.
func Layout(page PageContext, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		title := strings.TrimSpace(page.Title)
		appName := T(page.Loc, "core.app_name")
		if title == "" {
			title = appName
		} else {
			title = title + " | " + appName
		}

		h.raw(`<!DOCTYPE html><html lang="`)
		h.text(page.Lang)
		h.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(title)
		h.raw(`</title><script src="https://unpkg.com/htmx.org@2.0.4" defer></script></head><body>`)

		h.raw(`<nav class="navbar"><a class="brand" href="/">`)
		h.text(appName)
		h.raw(`</a><ul class="menu">`)
		navLink(h, page, "/articles", T(page.Loc, "admin.nav.articles"))
		navLink(h, page, "/actions", T(page.Loc, "admin.nav.actions"))
		h.raw(`</ul><ul class="languages" aria-label="`)
		h.text(T(page.Loc, "core.language.label"))
		h.raw(`">`)
		for _, option := range LanguageOptions(page) {
			h.raw(`<li><a href="`)
			h.url(option.URL)
			h.raw(`"`)
			if option.Active {
				h.raw(` aria-current="true"`)
			}
			h.raw(`>`)
			h.text(option.Label)
			h.raw(`</a></li>`)
		}
		h.raw(`</ul></nav>`)

		h.raw(`<main id="content">`)
		h.component(flashMessages(page.Messages))
		h.component(body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

func navLink(h *htmlWriter, page PageContext, href string, label string) {
	h.raw(`<li><a href="`)
	h.url(href)
	h.raw(`"`)
	if page.CurrentPath == href || strings.HasPrefix(page.CurrentPath, href+"/") {
		h.raw(` class="active"`)
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</a></li>`)
}
