package views

import "github.com/a-h/templ"

// NotFound is the 404 page. It is also exported as 404.html.
func NotFound(ch Chrome) templ.Component {
	meta := PageMeta{
		Title:       "Page not found | " + ch.Site.Name,
		Description: "The page you were looking for is not part of the guide.",
		OGType:      "website",
		NoIndex:     true,
	}
	return Layout(ch, meta, nil, component(func(h *htmlWriter) {
		h.open("article", "class", "page page-error")
		h.open("header", "id", "hero", "class", "hero")
		h.el("h1", "Page not found")
		h.el("p", "The page may have moved or never existed.", "class", "intro")
		h.close("header")
		h.open("p")
		h.el("a", "Back to the start", "href", "/")
		h.close("p")
		h.close("article")
	}))
}

// ServerError is shown when rendering fails.
func ServerError(ch Chrome) templ.Component {
	meta := PageMeta{
		Title:   "Something went wrong | " + ch.Site.Name,
		OGType:  "website",
		NoIndex: true,
	}
	return Layout(ch, meta, nil, component(func(h *htmlWriter) {
		h.open("article", "class", "page page-error")
		h.open("header", "id", "hero", "class", "hero")
		h.el("h1", "Something went wrong")
		h.el("p", "Please try again in a moment.", "class", "intro")
		h.close("header")
		h.close("article")
	}))
}
