package views

import (
	"github.com/a-h/templ"

	"github.com/saltaire-guide/site/content"
)

// Layout wraps body in the document shell: head metadata, header
// navigation, footer and the JSON-LD blocks.
func Layout(ch Chrome, meta PageMeta, jsonLD []string, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		locale := ch.Site.Locale
		if locale == "" {
			locale = "en-GB"
		}
		h.raw("<!DOCTYPE html>")
		h.open("html", "lang", locale)
		head(h, ch, meta, jsonLD)
		h.open("body")
		h.el("a", label(ch.Manifest, "skip"), "class", "skip-link", "href", "#main")
		header(h, ch)
		h.open("main", "id", "main")
		h.render(body)
		h.close("main")
		footer(h, ch)
		h.close("body")
		h.close("html")
	})
}

func head(h *htmlWriter, ch Chrome, meta PageMeta, jsonLD []string) {
	h.open("head")
	h.raw(`<meta charset="utf-8">`)
	h.open("meta", "name", "viewport", "content", "width=device-width, initial-scale=1")
	h.el("title", meta.Title)
	h.open("meta", "name", "description", "content", meta.Description)
	if meta.NoIndex {
		h.open("meta", "name", "robots", "content", "noindex")
	}
	if meta.URL != "" {
		h.open("link", "rel", "canonical", "href", meta.URL)
	}
	h.open("meta", "property", "og:site_name", "content", ch.Site.Name)
	h.open("meta", "property", "og:title", "content", meta.Title)
	h.open("meta", "property", "og:description", "content", meta.Description)
	h.open("meta", "property", "og:type", "content", meta.OGType)
	h.open("meta", "property", "og:url", "content", meta.URL)
	h.open("meta", "property", "og:locale", "content", ogLocale(ch.Site.Locale))
	if meta.Image != "" {
		h.open("meta", "property", "og:image", "content", meta.Image)
		h.open("meta", "property", "og:image:width", "content", "1200")
		h.open("meta", "property", "og:image:height", "content", "630")
		h.open("meta", "name", "twitter:card", "content", "summary_large_image")
	}
	if meta.Modified != "" {
		h.open("meta", "property", "article:modified_time", "content", meta.Modified)
	}
	h.open("link", "rel", "icon", "type", "image/svg+xml", "href", "/public/favicon.svg")
	h.open("link", "rel", "stylesheet", "href", "/public/site.css")
	h.open("link", "rel", "alternate", "type", "application/rss+xml", "title", ch.Site.Name, "href", "/feed.xml")
	for _, block := range jsonLD {
		h.raw(`<script type="application/ld+json">`)
		h.raw(block)
		h.raw(`</script>`)
	}
	h.close("head")
}

func header(h *htmlWriter, ch Chrome) {
	h.open("header", "class", "site-header")
	h.open("a", "class", "site-name", "href", "/")
	h.text(ch.Site.Name)
	h.close("a")
	if ch.Manifest.Tagline != "" {
		h.el("p", ch.Manifest.Tagline, "class", "tagline")
	}
	navList(h, ch.Manifest.Nav, ch.CurrentPath, "Main")
	h.close("header")
}

func footer(h *htmlWriter, ch Chrome) {
	h.open("footer", "class", "site-footer")
	navList(h, ch.Manifest.Footer, ch.CurrentPath, "Footer")
	if email := ch.Manifest.Organization.Email; email != "" {
		h.open("p")
		h.open("a", "href", "mailto:"+email)
		h.text(email)
		h.close("a")
		h.close("p")
	}
	h.close("footer")
}

func navList(h *htmlWriter, items []content.NavItem, current, name string) {
	if len(items) == 0 {
		return
	}
	h.open("nav", "aria-label", name)
	h.open("ul")
	for _, it := range items {
		h.open("li")
		if isCurrent(it.Path, current) {
			h.open("a", "href", content.Href(it.Path), "aria-current", "page")
		} else {
			h.open("a", "href", content.Href(it.Path))
		}
		h.text(it.Label)
		h.close("a")
		h.close("li")
	}
	h.close("ul")
	h.close("nav")
}

// ogLocale converts "en-GB" into OpenGraph's "en_GB".
func ogLocale(l string) string {
	if l == "" {
		return "en_GB"
	}
	b := []byte(l)
	for i := range b {
		if b[i] == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}
