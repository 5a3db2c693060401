// Package content holds the page records of the guide and loads them from a
// file tree: a YAML site manifest plus one Markdown file with YAML
// frontmatter per page.
//
// Records are plain values. They are read once at load time and never
// mutated afterwards, so a loaded *Site may be shared freely between
// goroutines.
package content

import (
	"errors"
	"html/template"
	"sort"
	"strings"
	"time"
)

// ErrPageNotFound is returned by Site.Page for unknown paths.
var ErrPageNotFound = errors.New("content: page not found")

// Page kinds select the top-level schema.org type and a few layout details.
const (
	KindHome       = "home"
	KindArticle    = "article"
	KindCollection = "collection"
	KindFAQ        = "faq"
	KindTimeline   = "timeline"
	KindWalk       = "walk"
	KindHowTo      = "howto"
	KindForm       = "form"
	KindProfile    = "profile"
)

// Card section kinds. They only affect labelling; every kind renders as a grid.
const (
	CardHighlight = "highlight"
	CardTip       = "tip"
	CardCategory  = "category"
	CardStep      = "step"
)

// FAQ is a question/answer pair rendered into an accordion and duplicated
// into a FAQPage block.
type FAQ struct {
	Q string `yaml:"q"`
	A string `yaml:"a"`
}

// Card is the {title, body} record behind highlight, tip and category grids.
type Card struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Href  string `yaml:"href,omitempty"`
}

// CardSection is a headed grid of cards.
type CardSection struct {
	ID      string `yaml:"id"`
	Heading string `yaml:"heading"`
	Kind    string `yaml:"kind"`
	Items   []Card `yaml:"items"`
}

// Step is one ordered instruction of a HowTo page.
type Step struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Link is a labelled hyperlink.
type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// TimelineEntry is a dated fact on the history timeline.
type TimelineEntry struct {
	Date    string `yaml:"date"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Links   []Link `yaml:"links,omitempty"`
}

// ISODate returns the entry date in ISO 8601 form, or "" if it cannot be derived.
func (e TimelineEntry) ISODate() string {
	return normalizeDate(e.Date)
}

// RouteSegment is one leg of a walking route.
type RouteSegment struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Distance    string `yaml:"distance,omitempty"`
}

// PointOfInterest is a waypoint worth stopping at.
type PointOfInterest struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Lat         *float64 `yaml:"lat,omitempty"`
	Lng         *float64 `yaml:"lng,omitempty"`
}

// HasGeo reports whether both coordinates are set.
func (p PointOfInterest) HasGeo() bool {
	return p.Lat != nil && p.Lng != nil
}

// Walk describes a self-guided walking route.
type Walk struct {
	Distance string            `yaml:"distance"`
	Duration string            `yaml:"duration"`
	Start    string            `yaml:"start"`
	Segments []RouteSegment    `yaml:"segments"`
	Points   []PointOfInterest `yaml:"points"`
}

// Person is an author or contributor credited on a page.
type Person struct {
	Name     string `yaml:"name"`
	Role     string `yaml:"role,omitempty"`
	URL      string `yaml:"url,omitempty"`
	Bio      string `yaml:"bio,omitempty"`
	Location string `yaml:"location,omitempty"`
}

// Breadcrumb is one element of a page's breadcrumb trail.
type Breadcrumb struct {
	Name string
	Path string
}

// NavItem is a navigation entry from the site manifest.
type NavItem struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

// Organization is the publisher of the guide.
type Organization struct {
	Name       string   `yaml:"name"`
	Email      string   `yaml:"email"`
	Logo       string   `yaml:"logo"`
	Founded    string   `yaml:"founded"`
	SameAs     []string `yaml:"same_as"`
	AreaServed string   `yaml:"area_served"`
}

// Manifest is the site-wide content shared by every page.
type Manifest struct {
	Name         string            `yaml:"name"`
	Tagline      string            `yaml:"tagline"`
	Locale       string            `yaml:"locale"`
	Nav          []NavItem         `yaml:"nav"`
	Footer       []NavItem         `yaml:"footer"`
	Organization Organization      `yaml:"organization"`
	Labels       map[string]string `yaml:"labels"`
}

// Page is one route of the site.
type Page struct {
	Path        string          `yaml:"path"`
	Title       string          `yaml:"title"`
	NavLabel    string          `yaml:"nav_label"`
	Description string          `yaml:"description"`
	Kind        string          `yaml:"kind"`
	Updated     string          `yaml:"updated"`
	Intro       string          `yaml:"intro"`
	Sections    []CardSection   `yaml:"sections"`
	Steps       []Step          `yaml:"steps"`
	FAQs        []FAQ           `yaml:"faqs"`
	Timeline    []TimelineEntry `yaml:"timeline"`
	Walk        *Walk           `yaml:"walk"`
	Form        string          `yaml:"form"`
	Speakable   []string        `yaml:"speakable"`
	Related     []Link          `yaml:"related"`
	Author      *Person         `yaml:"author"`
	Hidden      bool            `yaml:"hidden"`

	// Body is the rendered Markdown below the frontmatter.
	Body template.HTML `yaml:"-"`
	// Source is the file the page was loaded from.
	Source string `yaml:"-"`
	// Crumbs is the breadcrumb trail from the root to this page.
	Crumbs []Breadcrumb `yaml:"-"`
}

// Slug returns a file-system friendly name for the page ("home" for the root).
func (p *Page) Slug() string {
	if p.Path == "/" {
		return "home"
	}
	return strings.ReplaceAll(strings.Trim(p.Path, "/"), "/", "-")
}

// Label is the short name used in navigation and breadcrumbs.
func (p *Page) Label() string {
	if p.NavLabel != "" {
		return p.NavLabel
	}
	return p.Title
}

// UpdatedTime parses Updated as YYYY-MM-DD. The zero time is returned when unset.
func (p *Page) UpdatedTime() time.Time {
	t, err := time.Parse("2006-01-02", p.Updated)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Site is a loaded, validated set of pages.
type Site struct {
	Manifest Manifest
	Pages    []*Page

	byPath map[string]*Page
}

// NewSite indexes pages by path and derives breadcrumb trails.
// Pages are kept sorted by path so that iteration order is stable.
func NewSite(m Manifest, pages []*Page) *Site {
	sorted := make([]*Page, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	s := &Site{
		Manifest: m,
		Pages:    sorted,
		byPath:   make(map[string]*Page, len(sorted)),
	}
	for _, p := range sorted {
		s.byPath[p.Path] = p
	}
	for _, p := range sorted {
		p.Crumbs = s.trail(p)
	}
	return s
}

// Page returns the page at path. Trailing slashes are ignored.
func (s *Site) Page(path string) (*Page, error) {
	p, ok := s.byPath[NormalizePath(path)]
	if !ok {
		return nil, ErrPageNotFound
	}
	return p, nil
}

// Has reports whether path is a known route.
func (s *Site) Has(path string) bool {
	_, ok := s.byPath[NormalizePath(path)]
	return ok
}

// Paths returns every route in sorted order.
func (s *Site) Paths() []string {
	out := make([]string, 0, len(s.Pages))
	for _, p := range s.Pages {
		out = append(out, p.Path)
	}
	return out
}

// Children returns the visible pages directly below path, sorted by path.
func (s *Site) Children(path string) []*Page {
	parent := NormalizePath(path)
	var out []*Page
	for _, p := range s.Pages {
		if p.Path == "/" || p.Hidden {
			continue
		}
		if parentPath(p.Path) == parent {
			out = append(out, p)
		}
	}
	return out
}

// ByUpdated returns pages ordered by Updated descending, undated pages last.
func (s *Site) ByUpdated() []*Page {
	out := make([]*Page, len(s.Pages))
	copy(out, s.Pages)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].UpdatedTime(), out[j].UpdatedTime()
		if ti.IsZero() {
			return false
		}
		if tj.IsZero() {
			return true
		}
		return ti.After(tj)
	})
	return out
}

// FormPage returns the page hosting the named form.
func (s *Site) FormPage(form string) (*Page, bool) {
	for _, p := range s.Pages {
		if p.Form == form {
			return p, true
		}
	}
	return nil, false
}

// NormalizePath lower-cases path, strips query, fragment and trailing slash,
// and guarantees a leading slash.
func NormalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.ToLower(strings.TrimSpace(path))
	path = strings.TrimRight(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func parentPath(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return "/"
	}
	return path[:i]
}
