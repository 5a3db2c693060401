package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saltaire-guide/site/formbridge"
)

var knownKinds = map[string]bool{
	KindHome: true, KindArticle: true, KindCollection: true, KindFAQ: true,
	KindTimeline: true, KindWalk: true, KindHowTo: true, KindForm: true,
	KindProfile: true,
}

func validate(m Manifest, pages []*Page) error {
	var errs []error
	if strings.TrimSpace(m.Name) == "" {
		errs = append(errs, errors.New("site.yaml: name is required"))
	}
	seen := make(map[string]string, len(pages))
	for _, p := range pages {
		if prev, dup := seen[p.Path]; dup {
			errs = append(errs, fmt.Errorf("%s: path %s already defined by %s", p.Source, p.Path, prev))
			continue
		}
		seen[p.Path] = p.Source
		if problems := p.problems(); len(problems) > 0 {
			errs = append(errs, &ValidationError{Source: p.Source, Problems: problems})
		}
	}
	for _, n := range append(append([]NavItem{}, m.Nav...), m.Footer...) {
		if _, ok := seen[NormalizePath(n.Path)]; !ok {
			errs = append(errs, fmt.Errorf("site.yaml: nav item %q points to unknown page %s", n.Label, n.Path))
		}
	}
	return errors.Join(errs...)
}

// problems reports required fields that are empty.
func (p *Page) problems() []string {
	var out []string
	missing := func(what string) { out = append(out, what+" is required") }
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	if blank(p.Title) {
		missing("title")
	}
	if blank(p.Description) {
		missing("description")
	}
	if !knownKinds[p.Kind] {
		out = append(out, fmt.Sprintf("unknown kind %q", p.Kind))
	}
	if p.Updated != "" && p.UpdatedTime().IsZero() {
		out = append(out, "updated must be YYYY-MM-DD")
	}
	if _, ok := formbridge.Lookup(p.Form); p.Form != "" && !ok {
		out = append(out, fmt.Sprintf("unknown form %q", p.Form))
	}
	for i, s := range p.Sections {
		if blank(s.Heading) {
			missing(fmt.Sprintf("sections[%d].heading", i))
		}
		for j, c := range s.Items {
			if blank(c.Title) || blank(c.Body) {
				missing(fmt.Sprintf("sections[%d].items[%d] title and body", i, j))
			}
		}
	}
	for i, st := range p.Steps {
		if blank(st.Title) || blank(st.Body) {
			missing(fmt.Sprintf("steps[%d] title and body", i))
		}
	}
	for i, f := range p.FAQs {
		if blank(f.Q) || blank(f.A) {
			missing(fmt.Sprintf("faqs[%d] q and a", i))
		}
	}
	for i, e := range p.Timeline {
		if blank(e.Date) || blank(e.Title) || blank(e.Summary) {
			missing(fmt.Sprintf("timeline[%d] date, title and summary", i))
		}
		for j, l := range e.Links {
			if blank(l.Label) || blank(l.Href) {
				missing(fmt.Sprintf("timeline[%d].links[%d] label and href", i, j))
			}
		}
	}
	if p.Walk != nil {
		for i, s := range p.Walk.Segments {
			if blank(s.Name) || blank(s.Description) {
				missing(fmt.Sprintf("walk.segments[%d] name and description", i))
			}
		}
		for i, pt := range p.Walk.Points {
			if blank(pt.Name) || blank(pt.Description) {
				missing(fmt.Sprintf("walk.points[%d] name and description", i))
			}
			if (pt.Lat == nil) != (pt.Lng == nil) {
				out = append(out, fmt.Sprintf("walk.points[%d] needs both lat and lng", i))
			}
		}
	}
	for i, l := range p.Related {
		if blank(l.Label) || blank(l.Href) {
			missing(fmt.Sprintf("related[%d] label and href", i))
		}
	}
	if p.Author != nil && blank(p.Author.Name) {
		missing("author.name")
	}
	return out
}
