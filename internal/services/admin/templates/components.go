package templates

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// AppendQueryParam appends a single query parameter to a URL.
func AppendQueryParam(baseURL string, key string, value string) string {
	encodedKey := url.QueryEscape(key)
	encodedValue := url.QueryEscape(value)
	if strings.Contains(baseURL, "?") {
		return baseURL + "&" + encodedKey + "=" + encodedValue
	}
	return baseURL + "?" + encodedKey + "=" + encodedValue
}

// htmlWriter writes markup and keeps the first write error.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTMLWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (h *htmlWriter) raw(parts ...string) {
	for _, part := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, part)
	}
}

// text writes escaped text, safe for element bodies and quoted attributes.
func (h *htmlWriter) text(value string) {
	h.raw(templ.EscapeString(value))
}

// url writes a sanitized, escaped URL attribute value.
func (h *htmlWriter) url(value string) {
	h.text(string(templ.URL(value)))
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// hidden writes a hidden input.
func (h *htmlWriter) hidden(name string, value string) {
	h.raw(`<input type="hidden" name="`)
	h.text(name)
	h.raw(`" value="`)
	h.text(value)
	h.raw(`">`)
}

// flashMessages renders queued messages as alerts.
func flashMessages(messages []FlashMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(messages) == 0 {
			return nil
		}
		h := newHTMLWriter(ctx, w)
		h.raw(`<ul class="messagelist" role="status">`)
		for _, msg := range messages {
			level := strings.TrimSpace(msg.Level)
			if level == "" {
				level = "info"
			}
			h.raw(`<li class="alert alert-`)
			h.text(level)
			h.raw(`" data-level="`)
			h.text(level)
			h.raw(`">`)
			h.text(msg.Text)
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
		return h.err
	})
}

// errorNote renders a rejected dispatch message.
func errorNote(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		h := newHTMLWriter(ctx, w)
		h.raw(`<p class="alert alert-error errornote" role="alert">`)
		h.text(text)
		h.raw(`</p>`)
		return h.err
	})
}
