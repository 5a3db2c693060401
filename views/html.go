package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTML(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes s escaped for element content.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// open writes a start tag. attrs are name/value pairs; an empty value for an
// attribute other than the boolean ones is skipped.
func (h *htmlWriter) open(tag string, attrs ...string) {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		name, val := attrs[i], attrs[i+1]
		if val == "" && !booleanAttr[name] {
			continue
		}
		b.WriteString(" ")
		b.WriteString(name)
		if booleanAttr[name] {
			continue
		}
		if name == "href" || name == "action" || name == "src" {
			val = string(templ.URL(val))
		}
		b.WriteString(`="`)
		b.WriteString(templ.EscapeString(val))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	h.raw(b.String())
}

func (h *htmlWriter) close(tag string) {
	h.raw("</" + tag + ">")
}

// el writes a complete element with escaped text content.
func (h *htmlWriter) el(tag, body string, attrs ...string) {
	h.open(tag, attrs...)
	h.text(body)
	h.close(tag)
}

func (h *htmlWriter) render(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

var booleanAttr = map[string]bool{
	"required": true,
	"hidden":   true,
	"open":     true,
	"defer":    true,
}

// component adapts a writer func into a templ.Component.
func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		fn(h)
		return h.err
	})
}
