// Package audit checks rendered pages for drift between what a visitor sees
// and what search engines read: broken internal links, FAQ and breadcrumb
// structured data that disagrees with the markup, wrong canonical URLs, and
// declared sections that rendered empty.
package audit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/saltaire-guide/site/content"
)

// Issue kinds.
const (
	BrokenLink         = "broken-link"
	FAQMismatch        = "faq-mismatch"
	BreadcrumbMismatch = "breadcrumb-mismatch"
	CanonicalMismatch  = "canonical-mismatch"
	EmptySection       = "empty-section"
	UnexpectedSection  = "unexpected-section"
	SpeakableMissing   = "speakable-missing"
	InvalidStructured  = "invalid-json-ld"
	MissingTitle       = "missing-title"
	BrokenFragment     = "broken-fragment"
)

// Issue is one problem found on one page.
type Issue struct {
	Path   string
	Kind   string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Path, i.Kind, i.Detail)
}

// Report is the outcome of auditing a whole site.
type Report struct {
	Pages  int
	Issues []Issue
}

// OK reports whether no issues were found.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// RenderFunc writes the full HTML document for p.
type RenderFunc func(ctx context.Context, w io.Writer, p *content.Page) error

// Auditor checks pages of one site.
type Auditor struct {
	site *content.Site
	base string
	// Assets, when set, holds the files served under /public/.
	Assets fs.FS
}

// New returns an Auditor for site published at base.
func New(site *content.Site, base string) *Auditor {
	return &Auditor{site: site, base: strings.TrimSuffix(base, "/")}
}

// Check renders and audits every page. Issues are sorted by path.
func (a *Auditor) Check(ctx context.Context, render RenderFunc) (Report, error) {
	var rep Report
	var buf bytes.Buffer
	for _, p := range a.site.Pages {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		buf.Reset()
		if err := render(ctx, &buf, p); err != nil {
			return rep, fmt.Errorf("render %s: %w", p.Path, err)
		}
		issues, err := a.Page(p, &buf)
		if err != nil {
			return rep, err
		}
		rep.Pages++
		rep.Issues = append(rep.Issues, issues...)
	}
	sort.SliceStable(rep.Issues, func(i, j int) bool { return rep.Issues[i].Path < rep.Issues[j].Path })
	return rep, nil
}

// Page audits one rendered document of p.
func (a *Auditor) Page(p *content.Page, r io.Reader) ([]Issue, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.Path, err)
	}
	c := &pageCheck{a: a, p: p, doc: doc}
	c.blocks()
	c.head()
	c.links()
	c.faq()
	c.breadcrumbs()
	c.sections()
	c.speakable()
	return c.issues, nil
}

type pageCheck struct {
	a      *Auditor
	p      *content.Page
	doc    *goquery.Document
	ld     []gjson.Result
	issues []Issue
}

func (c *pageCheck) add(kind, format string, args ...any) {
	c.issues = append(c.issues, Issue{Path: c.p.Path, Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

func (c *pageCheck) pageURL() string {
	return c.a.urlFor(c.p.Path)
}

func (a *Auditor) urlFor(p string) string {
	p = content.NormalizePath(p)
	if p == "/" {
		return a.base + "/"
	}
	return a.base + p + "/"
}

// blocks parses every JSON-LD script on the page.
func (c *pageCheck) blocks() {
	c.doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		raw := s.Text()
		if !gjson.Valid(raw) {
			c.add(InvalidStructured, "block %d is not valid JSON", i+1)
			return
		}
		c.ld = append(c.ld, gjson.Parse(raw))
	})
}

// typeOf reads "@type"; gjson treats a leading @ in a path as a modifier.
func typeOf(r gjson.Result) string {
	return r.Map()["@type"].String()
}

func (c *pageCheck) block(typ string) (gjson.Result, bool) {
	for _, r := range c.ld {
		if typeOf(r) == typ {
			return r, true
		}
	}
	return gjson.Result{}, false
}

func (c *pageCheck) head() {
	want := c.pageURL()
	if got, _ := c.doc.Find(`link[rel="canonical"]`).Attr("href"); got != want {
		c.add(CanonicalMismatch, "canonical is %q, want %q", got, want)
	}
	if got, _ := c.doc.Find(`meta[property="og:url"]`).Attr("content"); got != want {
		c.add(CanonicalMismatch, "og:url is %q, want %q", got, want)
	}
	title := strings.TrimSpace(c.doc.Find("head title").Text())
	if title == "" || !strings.Contains(title, c.p.Title) {
		c.add(MissingTitle, "title %q does not name the page", title)
	}
	if h1 := strings.TrimSpace(c.doc.Find("h1").First().Text()); h1 != c.p.Title {
		c.add(MissingTitle, "h1 is %q, want %q", h1, c.p.Title)
	}
	for _, r := range c.ld {
		if u := r.Get("url"); u.Exists() && strings.HasSuffix(r.Map()["@id"].String(), "#webpage") && u.String() != want {
			c.add(CanonicalMismatch, "WebPage url is %q, want %q", u.String(), want)
		}
	}
}

// links checks every anchor that points inside the site.
func (c *pageCheck) links() {
	c.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "#") {
			id := strings.TrimPrefix(href, "#")
			if id != "" && c.doc.Find("#"+cssEscape(id)).Length() == 0 {
				c.add(BrokenFragment, "%s has no target on the page", href)
			}
			return
		}
		target, ok := c.a.internal(href)
		if !ok {
			return
		}
		if !c.a.resolves(target) {
			c.add(BrokenLink, "%s does not resolve to a page", href)
		}
	})
}

// internal returns the site path of href, or false for external links.
func (a *Auditor) internal(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	switch {
	case u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/"):
		return u.Path, true
	case u.Scheme != "" && a.base != "" && strings.HasPrefix(href, a.base+"/"):
		return u.Path, true
	}
	return "", false
}

func (a *Auditor) resolves(p string) bool {
	switch {
	case strings.HasPrefix(p, "/public/"):
		if a.Assets == nil {
			return true
		}
		_, err := fs.Stat(a.Assets, strings.TrimPrefix(p, "/public/"))
		return err == nil
	case p == "/feed.xml", p == "/sitemap.xml", p == "/robots.txt", strings.HasPrefix(p, "/og/"):
		return true
	}
	if p != "/" && !strings.HasSuffix(p, "/") {
		// Pages are always linked with a trailing slash.
		return false
	}
	return a.site.Has(p)
}

// faq compares the visible questions with the FAQPage block.
func (c *pageCheck) faq() {
	var visible []string
	c.doc.Find("#faq details > summary").Each(func(_ int, s *goquery.Selection) {
		visible = append(visible, strings.TrimSpace(s.Text()))
	})
	block, ok := c.block("FAQPage")
	if !ok {
		if len(visible) > 0 {
			c.add(FAQMismatch, "%d questions shown but no FAQPage block", len(visible))
		}
		return
	}
	var structured []string
	for _, q := range block.Get("mainEntity").Array() {
		structured = append(structured, q.Get("name").String())
	}
	if !equal(visible, structured) {
		c.add(FAQMismatch, "visible %q, structured %q", visible, structured)
	}
}

// breadcrumbs compares the visible trail with the BreadcrumbList block.
func (c *pageCheck) breadcrumbs() {
	type crumb struct{ name, url string }
	var visible []crumb
	c.doc.Find("nav.breadcrumbs li").Each(func(_ int, s *goquery.Selection) {
		cr := crumb{name: strings.TrimSpace(s.Text()), url: c.pageURL()}
		if href, ok := s.Find("a").Attr("href"); ok {
			if p, ok := c.a.internal(href); ok {
				cr.url = c.a.urlFor(p)
			}
		}
		visible = append(visible, cr)
	})
	block, ok := c.block("BreadcrumbList")
	if !ok {
		if len(visible) > 0 {
			c.add(BreadcrumbMismatch, "trail shown but no BreadcrumbList block")
		}
		return
	}
	items := block.Get("itemListElement").Array()
	if len(visible) == 0 && len(items) > 1 {
		c.add(BreadcrumbMismatch, "BreadcrumbList has %d items but no trail is shown", len(items))
		return
	}
	if len(visible) == 0 {
		return
	}
	if len(items) != len(visible) {
		c.add(BreadcrumbMismatch, "trail has %d crumbs, BreadcrumbList has %d", len(visible), len(items))
		return
	}
	for i, it := range items {
		if pos := it.Get("position").Int(); pos != int64(i+1) {
			c.add(BreadcrumbMismatch, "item %d has position %d", i+1, pos)
		}
		if name := it.Get("name").String(); name != visible[i].name {
			c.add(BreadcrumbMismatch, "item %d is %q, trail shows %q", i+1, name, visible[i].name)
		}
		if item := it.Get("item").String(); item != visible[i].url {
			c.add(BreadcrumbMismatch, "item %d links %q, trail links %q", i+1, item, visible[i].url)
		}
	}
}

// sections checks that every section the page declares rendered with
// content, and that empty declarations emitted no block.
func (c *pageCheck) sections() {
	p := c.p
	expect := func(id string, want bool) {
		sel := c.doc.Find("#" + cssEscape(id))
		switch {
		case want && sel.Length() == 0:
			c.add(EmptySection, "#%s is declared but not rendered", id)
		case want && strings.TrimSpace(sel.Children().Not("h2").Text()) == "":
			c.add(EmptySection, "#%s rendered without content", id)
		case !want && sel.Length() > 0:
			c.add(UnexpectedSection, "#%s rendered with nothing to show", id)
		}
	}
	for _, sec := range p.Sections {
		expect(sec.ID, len(sec.Items) > 0)
	}
	expect("faq", len(p.FAQs) > 0)
	expect("steps", len(p.Steps) > 0)
	expect("timeline", len(p.Timeline) > 0)
	expect("route", p.Walk != nil)
	expect("points", p.Walk != nil && len(p.Walk.Points) > 0)
	expect("form", p.Form != "")

	for _, b := range []struct {
		typ  string
		want bool
	}{
		{"FAQPage", len(p.FAQs) > 0},
		{"HowTo", len(p.Steps) > 0},
	} {
		if _, ok := c.block(b.typ); ok != b.want {
			c.add(UnexpectedSection, "%s block present=%v, want %v", b.typ, ok, b.want)
		}
	}
}

// speakable checks that every speakable selector matches the page.
func (c *pageCheck) speakable() {
	for _, r := range c.ld {
		for _, sel := range r.Get("speakable.cssSelector").Array() {
			if c.doc.Find(sel.String()).Length() == 0 {
				c.add(SpeakableMissing, "selector %q matches nothing", sel.String())
			}
		}
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// cssEscape makes an id usable in a selector. Ids here are slugs, so only
// a leading digit needs escaping.
func cssEscape(id string) string {
	if id != "" && id[0] >= '0' && id[0] <= '9' {
		return fmt.Sprintf(`\3%c `, id[0]) + id[1:]
	}
	return id
}
