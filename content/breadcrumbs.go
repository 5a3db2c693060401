package content

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.BritishEnglish)

// trail builds the breadcrumb trail for p. Ancestors without a page of their
// own are named after their path segment.
func (s *Site) trail(p *Page) []Breadcrumb {
	crumbs := []Breadcrumb{{Name: s.homeLabel(), Path: "/"}}
	if p.Path == "/" {
		return crumbs
	}
	segments := strings.Split(strings.Trim(p.Path, "/"), "/")
	for i := range segments {
		path := "/" + strings.Join(segments[:i+1], "/")
		name := SegmentTitle(segments[i])
		if page, ok := s.byPath[path]; ok {
			name = page.Label()
		}
		crumbs = append(crumbs, Breadcrumb{Name: name, Path: path})
	}
	return crumbs
}

func (s *Site) homeLabel() string {
	if home, ok := s.byPath["/"]; ok && home.NavLabel != "" {
		return home.NavLabel
	}
	if l := s.Manifest.Labels["home"]; l != "" {
		return l
	}
	return "Home"
}

// SegmentTitle turns a path segment such as "five-rise" into "Five Rise".
func SegmentTitle(segment string) string {
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	return titleCaser.String(segment)
}
