package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/saltaire-guide/site/content"
)

// Page renders a content page inside the layout. Sections appear in a fixed
// order and only when the page has data for them. Without a current path in
// ch, navigation is highlighted for p.
func Page(ch Chrome, meta PageMeta, p *content.Page, children []*content.Page, form FormState, jsonLD []string) templ.Component {
	if ch.CurrentPath == "" {
		ch.CurrentPath = p.Path
	}
	body := component(func(h *htmlWriter) {
		h.open("article", "class", "page page-"+p.Kind)
		h.render(Breadcrumbs(ch.Manifest, p.Crumbs))
		h.render(Hero(p))
		if p.Body != "" {
			h.open("div", "class", "prose")
			h.raw(string(p.Body))
			h.close("div")
		}
		for _, sec := range p.Sections {
			h.render(Cards(sec))
		}
		if len(p.Sections) == 0 {
			h.render(ChildList(children))
		}
		h.render(Steps(ch.Manifest, p.Steps))
		h.render(Timeline(ch.Manifest, p.Timeline))
		h.render(WalkDetails(ch.Manifest, p.Walk))
		h.render(FAQList(ch.Manifest, p.FAQs))
		if p.Form != "" {
			h.render(Form(ch.Manifest, p.Form, form))
		}
		h.render(Related(ch.Manifest, p.Related))
		if p.Updated != "" {
			h.open("p", "class", "updated")
			h.text(label(ch.Manifest, "updated") + " ")
			h.el("time", p.Updated, "datetime", p.Updated)
			h.close("p")
		}
		h.close("article")
	})
	return Layout(ch, meta, jsonLD, body)
}

// Breadcrumbs renders the trail. The home page has a single crumb and gets
// no trail at all.
func Breadcrumbs(m content.Manifest, crumbs []content.Breadcrumb) templ.Component {
	return component(func(h *htmlWriter) {
		if len(crumbs) < 2 {
			return
		}
		h.open("nav", "class", "breadcrumbs", "aria-label", label(m, "breadcrumb"))
		h.open("ol")
		for i, c := range crumbs {
			h.open("li")
			if i == len(crumbs)-1 {
				h.el("span", c.Name, "aria-current", "page")
			} else {
				h.el("a", c.Name, "href", content.Href(c.Path))
			}
			h.close("li")
		}
		h.close("ol")
		h.close("nav")
	})
}

// Hero is the page heading and intro.
func Hero(p *content.Page) templ.Component {
	return component(func(h *htmlWriter) {
		h.open("header", "id", "hero", "class", "hero")
		h.el("h1", p.Title)
		if p.Intro != "" {
			h.el("p", p.Intro, "class", "intro")
		}
		h.close("header")
	})
}

// Cards renders one card section. An empty section renders nothing.
func Cards(sec content.CardSection) templ.Component {
	return component(func(h *htmlWriter) {
		if len(sec.Items) == 0 {
			return
		}
		h.open("section", "id", sec.ID, "class", "cards")
		h.el("h2", sec.Heading)
		h.open("ul", "class", "card-grid")
		for _, c := range sec.Items {
			h.open("li", "class", cardClass(sec.Kind))
			h.open("h3")
			if c.Href != "" {
				h.el("a", c.Title, "href", content.Href(c.Href))
			} else {
				h.text(c.Title)
			}
			h.close("h3")
			h.el("p", c.Body)
			h.close("li")
		}
		h.close("ul")
		h.close("section")
	})
}

// ChildList links to the direct children of a collection page that declares
// no card sections of its own.
func ChildList(children []*content.Page) templ.Component {
	return component(func(h *htmlWriter) {
		if len(children) == 0 {
			return
		}
		h.open("section", "id", "contents", "class", "cards")
		h.open("ul", "class", "card-grid")
		for _, c := range children {
			h.open("li", "class", "card")
			h.open("h3")
			h.el("a", c.Title, "href", content.Href(c.Path))
			h.close("h3")
			h.el("p", c.Description)
			h.close("li")
		}
		h.close("ul")
		h.close("section")
	})
}

// Steps renders numbered steps with stable #step-N anchors.
func Steps(m content.Manifest, steps []content.Step) templ.Component {
	return component(func(h *htmlWriter) {
		if len(steps) == 0 {
			return
		}
		h.open("section", "id", "steps", "class", "steps")
		h.el("h2", label(m, "steps"))
		h.open("ol")
		for i, st := range steps {
			h.open("li", "id", "step-"+strconv.Itoa(i+1))
			h.el("h3", st.Title)
			h.el("p", st.Body)
			h.close("li")
		}
		h.close("ol")
		h.close("section")
	})
}

// Timeline renders dated entries in source order.
func Timeline(m content.Manifest, entries []content.TimelineEntry) templ.Component {
	return component(func(h *htmlWriter) {
		if len(entries) == 0 {
			return
		}
		h.open("section", "id", "timeline", "class", "timeline")
		h.el("h2", label(m, "timeline"))
		h.open("ol")
		for _, e := range entries {
			h.open("li")
			h.el("time", e.Date, "datetime", e.ISODate())
			h.el("h3", e.Title)
			h.el("p", e.Summary)
			if len(e.Links) > 0 {
				h.open("ul", "class", "links")
				for _, l := range e.Links {
					h.open("li")
					h.el("a", l.Label, "href", content.Href(l.Href))
					h.close("li")
				}
				h.close("ul")
			}
			h.close("li")
		}
		h.close("ol")
		h.close("section")
	})
}

// WalkDetails renders the facts, route table and points of interest.
func WalkDetails(m content.Manifest, w *content.Walk) templ.Component {
	return component(func(h *htmlWriter) {
		if w == nil {
			return
		}
		h.open("section", "id", "route", "class", "walk")
		h.el("h2", label(m, "route"))
		h.open("dl", "class", "facts")
		for _, f := range [][2]string{
			{label(m, "distance"), w.Distance},
			{label(m, "duration"), w.Duration},
			{label(m, "start"), w.Start},
		} {
			if f[1] == "" {
				continue
			}
			h.el("dt", f[0])
			h.el("dd", f[1])
		}
		h.close("dl")
		if len(w.Segments) > 0 {
			h.open("table")
			h.open("thead")
			h.open("tr")
			h.el("th", "Section", "scope", "col")
			h.el("th", label(m, "distance"), "scope", "col")
			h.el("th", "Description", "scope", "col")
			h.close("tr")
			h.close("thead")
			h.open("tbody")
			for _, s := range w.Segments {
				h.open("tr")
				h.el("th", s.Name, "scope", "row")
				h.el("td", s.Distance)
				h.el("td", s.Description)
				h.close("tr")
			}
			h.close("tbody")
			h.close("table")
		}
		h.close("section")

		if len(w.Points) == 0 {
			return
		}
		h.open("section", "id", "points", "class", "cards")
		h.el("h2", label(m, "points"))
		h.open("ul", "class", "card-grid")
		for _, pt := range w.Points {
			if pt.HasGeo() {
				h.open("li", "class", "card card-place",
					"data-lat", strconv.FormatFloat(*pt.Lat, 'f', -1, 64),
					"data-lng", strconv.FormatFloat(*pt.Lng, 'f', -1, 64))
			} else {
				h.open("li", "class", "card card-place")
			}
			h.el("h3", pt.Name)
			h.el("p", pt.Description)
			h.close("li")
		}
		h.close("ul")
		h.close("section")
	})
}

// FAQList renders questions as disclosure widgets under #faq.
func FAQList(m content.Manifest, faqs []content.FAQ) templ.Component {
	return component(func(h *htmlWriter) {
		if len(faqs) == 0 {
			return
		}
		h.open("section", "id", "faq", "class", "faq")
		h.el("h2", label(m, "faq"))
		for _, f := range faqs {
			h.open("details")
			h.el("summary", f.Q)
			h.el("div", f.A, "class", "answer")
			h.close("details")
		}
		h.close("section")
	})
}

// Related renders the page's see-also links.
func Related(m content.Manifest, links []content.Link) templ.Component {
	return component(func(h *htmlWriter) {
		if len(links) == 0 {
			return
		}
		h.open("nav", "id", "related", "class", "related", "aria-label", label(m, "related"))
		h.el("h2", label(m, "related"))
		h.open("ul")
		for _, l := range links {
			h.open("li")
			h.el("a", l.Label, "href", content.Href(l.Href))
			h.close("li")
		}
		h.close("ul")
		h.close("nav")
	})
}
