// Package jsonld builds the schema.org structured-data blocks embedded in
// every page. Each builder maps over the same content records the views
// render, so the visible page and its structured data cannot drift apart.
package jsonld

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/saltaire-guide/site/content"
)

const schemaContext = "https://schema.org"

// Object is a single JSON-LD node.
type Object = map[string]interface{}

// Site carries the site-wide values every block needs.
type Site struct {
	Name   string
	URL    string
	Locale string
	Org    content.Organization
}

// URLFor returns the absolute, trailing-slash URL of a site path.
func (s Site) URLFor(p string) string {
	return content.BuildURL(s.URL, p)
}

// Marshal encodes obj. It returns "{}" if obj cannot be encoded.
// encoding/json escapes <, > and &, so the result is safe inside <script>.
func Marshal(obj Object) string {
	b, err := json.Marshal(obj)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ForPage returns every block for page, in the order they are emitted.
func ForPage(s Site, p *content.Page) []string {
	var objs []Object
	objs = append(objs, WebPage(s, p))
	if p.Kind == content.KindHome {
		objs = append(objs, WebSite(s), Organization(s))
	} else {
		objs = append(objs, BreadcrumbList(s, p.Crumbs))
	}
	if len(p.FAQs) > 0 {
		objs = append(objs, FAQPage(s, p))
	}
	for _, sec := range p.Sections {
		if len(sec.Items) > 0 {
			objs = append(objs, ItemList(s, p, sec))
		}
	}
	if len(p.Steps) > 0 {
		objs = append(objs, HowTo(s, p))
	}
	if len(p.Timeline) > 0 {
		objs = append(objs, Timeline(s, p))
	}
	if p.Walk != nil && len(p.Walk.Points) > 0 {
		objs = append(objs, Places(s, p))
	}
	if p.Author != nil {
		objs = append(objs, Person(*p.Author))
	}

	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, Marshal(o))
	}
	return out
}

// WebPage describes the page itself. Collection pages use CollectionPage.
func WebPage(s Site, p *content.Page) Object {
	typ := "WebPage"
	switch p.Kind {
	case content.KindCollection:
		typ = "CollectionPage"
	case content.KindProfile:
		typ = "AboutPage"
	case content.KindForm:
		typ = "ContactPage"
	}
	pageURL := s.URLFor(p.Path)
	obj := Object{
		"@context":    schemaContext,
		"@type":       typ,
		"@id":         pageURL + "#webpage",
		"url":         pageURL,
		"name":        p.Title,
		"description": p.Description,
		"inLanguage":  s.Locale,
		"isPartOf": Object{
			"@type": "WebSite",
			"name":  s.Name,
			"url":   s.URLFor("/"),
		},
	}
	if p.Updated != "" {
		obj["dateModified"] = p.Updated
	}
	if len(p.Crumbs) > 1 {
		obj["breadcrumb"] = Object{"@id": pageURL + "#breadcrumb"}
	}
	if len(p.Speakable) > 0 {
		obj["speakable"] = Speakable(p.Speakable)
	}
	return obj
}

// Speakable marks the CSS selectors suited to text-to-speech.
func Speakable(selectors []string) Object {
	return Object{
		"@type":       "SpeakableSpecification",
		"cssSelector": selectors,
	}
}

// WebSite is emitted on the home page only.
func WebSite(s Site) Object {
	return Object{
		"@context":   schemaContext,
		"@type":      "WebSite",
		"name":       s.Name,
		"url":        s.URLFor("/"),
		"inLanguage": s.Locale,
		"publisher":  Object{"@id": s.URLFor("/") + "#organization"},
	}
}

// Organization describes the publisher as a NewsMediaOrganization.
func Organization(s Site) Object {
	name := s.Org.Name
	if name == "" {
		name = s.Name
	}
	obj := Object{
		"@context": schemaContext,
		"@type":    "NewsMediaOrganization",
		"@id":      s.URLFor("/") + "#organization",
		"name":     name,
		"url":      s.URLFor("/"),
	}
	if s.Org.Email != "" {
		obj["email"] = s.Org.Email
	}
	if s.Org.Logo != "" {
		obj["logo"] = absolute(s.URL, s.Org.Logo)
	}
	if s.Org.Founded != "" {
		obj["foundingDate"] = s.Org.Founded
	}
	if s.Org.AreaServed != "" {
		obj["areaServed"] = s.Org.AreaServed
	}
	if len(s.Org.SameAs) > 0 {
		obj["sameAs"] = s.Org.SameAs
	}
	return obj
}

// BreadcrumbList mirrors the rendered trail; positions start at 1.
func BreadcrumbList(s Site, crumbs []content.Breadcrumb) Object {
	items := make([]Object, 0, len(crumbs))
	for i, c := range crumbs {
		items = append(items, Object{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     s.URLFor(c.Path),
		})
	}
	obj := Object{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	}
	if n := len(crumbs); n > 0 {
		obj["@id"] = s.URLFor(crumbs[n-1].Path) + "#breadcrumb"
	}
	return obj
}

// FAQPage holds one Question per visible FAQ, in page order.
func FAQPage(s Site, p *content.Page) Object {
	questions := make([]Object, 0, len(p.FAQs))
	for _, f := range p.FAQs {
		questions = append(questions, Object{
			"@type": "Question",
			"name":  f.Q,
			"acceptedAnswer": Object{
				"@type": "Answer",
				"text":  f.A,
			},
		})
	}
	return Object{
		"@context":   schemaContext,
		"@type":      "FAQPage",
		"url":        s.URLFor(p.Path),
		"mainEntity": questions,
	}
}

// ItemList lists the cards of one section.
func ItemList(s Site, p *content.Page, sec content.CardSection) Object {
	items := make([]Object, 0, len(sec.Items))
	for i, c := range sec.Items {
		item := Object{
			"@type":       "ListItem",
			"position":    i + 1,
			"name":        c.Title,
			"description": c.Body,
		}
		if c.Href != "" {
			item["url"] = absolute(s.URL, c.Href)
		}
		items = append(items, item)
	}
	return Object{
		"@context":        schemaContext,
		"@type":           "ItemList",
		"name":            sec.Heading,
		"url":             s.URLFor(p.Path) + "#" + sec.ID,
		"numberOfItems":   len(items),
		"itemListElement": items,
	}
}

// HowTo turns the page steps into HowToStep entries.
func HowTo(s Site, p *content.Page) Object {
	steps := make([]Object, 0, len(p.Steps))
	for i, st := range p.Steps {
		steps = append(steps, Object{
			"@type":    "HowToStep",
			"position": i + 1,
			"name":     st.Title,
			"text":     st.Body,
			"url":      s.URLFor(p.Path) + "#step-" + strconv.Itoa(i+1),
		})
	}
	obj := Object{
		"@context":    schemaContext,
		"@type":       "HowTo",
		"name":        p.Title,
		"description": p.Description,
		"step":        steps,
	}
	if p.Walk != nil {
		if d := isoDuration(p.Walk.Duration); d != "" {
			obj["timeRequired"] = d
		}
	}
	return obj
}

var durationPart = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(hours|hour|hrs|hr|h|minutes|minute|mins|min|m)`)

// durationFiller may surround the parts of a duration.
var durationFiller = map[string]bool{"and": true, "about": true, "around": true, "roughly": true, "approx": true, "approximately": true}

// isoDuration converts "2.5 hours", "1 hour 20 mins" or "1h30m" to ISO 8601
// ("PT2H30M"). ISO input passes through. Input with anything besides
// duration parts, such as a range, gives "".
func isoDuration(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "PT") || strings.HasPrefix(s, "P") && len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
		return s
	}
	rest := strings.ReplaceAll(durationPart.ReplaceAllString(s, " "), ",", " ")
	for _, w := range strings.Fields(strings.ToLower(rest)) {
		if !durationFiller[strings.TrimSuffix(w, ".")] {
			return ""
		}
	}
	total := 0.0
	for _, m := range durationPart.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(m[2]), "h") {
			n *= 60
		}
		total += n
	}
	mins := int(math.Round(total))
	if mins <= 0 {
		return ""
	}
	out := "PT"
	if h := mins / 60; h > 0 {
		out += strconv.Itoa(h) + "H"
	}
	if m := mins % 60; m > 0 {
		out += strconv.Itoa(m) + "M"
	}
	return out
}

// Timeline lists the entries as Event items.
func Timeline(s Site, p *content.Page) Object {
	items := make([]Object, 0, len(p.Timeline))
	for i, e := range p.Timeline {
		event := Object{
			"@type":       "Event",
			"name":        e.Title,
			"description": e.Summary,
		}
		if s.Org.AreaServed != "" {
			event["location"] = Object{"@type": "Place", "name": s.Org.AreaServed}
		}
		if d := e.ISODate(); d != "" {
			event["startDate"] = d
		}
		items = append(items, Object{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     event,
		})
	}
	return Object{
		"@context":        schemaContext,
		"@type":           "ItemList",
		"name":            p.Title,
		"url":             s.URLFor(p.Path),
		"itemListOrder":   "https://schema.org/ItemListOrderAscending",
		"numberOfItems":   len(items),
		"itemListElement": items,
	}
}

// Places lists the points of interest of a walk.
func Places(s Site, p *content.Page) Object {
	items := make([]Object, 0, len(p.Walk.Points))
	for i, pt := range p.Walk.Points {
		place := Object{
			"@type":       "Place",
			"name":        pt.Name,
			"description": pt.Description,
		}
		if pt.HasGeo() {
			place["geo"] = Object{
				"@type":     "GeoCoordinates",
				"latitude":  *pt.Lat,
				"longitude": *pt.Lng,
			}
		}
		items = append(items, Object{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     place,
		})
	}
	return Object{
		"@context":        schemaContext,
		"@type":           "ItemList",
		"name":            p.Title,
		"url":             s.URLFor(p.Path),
		"numberOfItems":   len(items),
		"itemListElement": items,
	}
}

// Person describes a page author.
func Person(a content.Person) Object {
	obj := Object{
		"@context": schemaContext,
		"@type":    "Person",
		"name":     a.Name,
	}
	if a.Role != "" {
		obj["jobTitle"] = a.Role
	}
	if a.Bio != "" {
		obj["description"] = a.Bio
	}
	if a.URL != "" {
		obj["url"] = a.URL
	}
	if a.Location != "" {
		obj["homeLocation"] = Object{"@type": "Place", "name": a.Location}
	}
	return obj
}

// absolute resolves site-relative hrefs against base and keeps fragments.
func absolute(base, href string) string {
	if !strings.HasPrefix(href, "/") {
		return href
	}
	frag := ""
	if i := strings.Index(href, "#"); i >= 0 {
		href, frag = href[:i], href[i:]
	}
	if strings.HasPrefix(href, "/public/") {
		return strings.TrimSuffix(base, "/") + href + frag
	}
	return content.BuildURL(base, href) + frag
}
