package jsonld

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/saltaire-guide/site/content"
)

var testSite = Site{
	Name:   "Saltaire Guide",
	URL:    "https://saltaire.guide",
	Locale: "en-GB",
	Org: content.Organization{
		Name:       "Saltaire Guide",
		Email:      "hello@saltaire.guide",
		Logo:       "/public/favicon.svg",
		AreaServed: "Saltaire",
	},
}

func buildSite(pages ...*content.Page) *content.Site {
	return content.NewSite(content.Manifest{Name: "Saltaire Guide"}, pages)
}

func findType(blocks []string, typ string) (gjson.Result, bool) {
	for _, b := range blocks {
		r := gjson.Parse(b)
		if typeOf(r) == typ {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// typeOf reads "@type" without going through a gjson path, where a leading
// '@' selects a modifier.
func typeOf(r gjson.Result) string {
	return r.Map()["@type"].String()
}

func TestFAQPageMirrorsVisibleQuestions(t *testing.T) {
	faq := &content.Page{
		Path:        "/faq",
		Title:       "FAQ",
		Description: "Answers",
		Kind:        content.KindFAQ,
		FAQs: []content.FAQ{
			{Q: "Is it free?", A: "Yes."},
			{Q: "Dogs?", A: "On leads."},
		},
	}
	buildSite(&content.Page{Path: "/", Title: "Home"}, faq)

	blocks := ForPage(testSite, faq)
	r, ok := findType(blocks, "FAQPage")
	if !ok {
		t.Fatal("FAQPage block missing")
	}
	qs := r.Get("mainEntity.#.name").Array()
	if len(qs) != 2 || qs[0].String() != "Is it free?" || qs[1].String() != "Dogs?" {
		t.Errorf("FAQ questions = %v, want [Is it free? Dogs?]", qs)
	}
	if got := r.Get("mainEntity.1.acceptedAnswer.text").String(); got != "On leads." {
		t.Errorf("answer = %q, want %q", got, "On leads.")
	}
}

func TestNoFAQBlockWithoutFAQs(t *testing.T) {
	p := &content.Page{Path: "/about", Title: "About", Kind: content.KindArticle}
	buildSite(p)
	if _, ok := findType(ForPage(testSite, p), "FAQPage"); ok {
		t.Error("FAQPage block should not be emitted for a page without FAQs")
	}
}

func TestBreadcrumbListPositions(t *testing.T) {
	timeline := &content.Page{Path: "/history/timeline", Title: "Saltaire timeline", Kind: content.KindTimeline}
	buildSite(
		&content.Page{Path: "/", Title: "Saltaire Guide", NavLabel: "Home"},
		&content.Page{Path: "/history", Title: "History of Saltaire", NavLabel: "History"},
		timeline,
	)
	r, ok := findType(ForPage(testSite, timeline), "BreadcrumbList")
	if !ok {
		t.Fatal("BreadcrumbList block missing")
	}
	items := r.Get("itemListElement").Array()
	want := []struct {
		name string
		item string
	}{
		{"Home", "https://saltaire.guide/"},
		{"History", "https://saltaire.guide/history/"},
		{"Saltaire timeline", "https://saltaire.guide/history/timeline/"},
	}
	if len(items) != len(want) {
		t.Fatalf("breadcrumb items = %d, want %d", len(items), len(want))
	}
	for i, w := range want {
		if got := items[i].Get("position").Int(); got != int64(i+1) {
			t.Errorf("item %d position = %d, want %d", i, got, i+1)
		}
		if got := items[i].Get("name").String(); got != w.name {
			t.Errorf("item %d name = %q, want %q", i, got, w.name)
		}
		if got := items[i].Get("item").String(); got != w.item {
			t.Errorf("item %d url = %q, want %q", i, got, w.item)
		}
	}
}

func TestHomeEmitsOrganization(t *testing.T) {
	home := &content.Page{Path: "/", Title: "Saltaire Guide", Kind: content.KindHome, Speakable: []string{"#hero"}}
	buildSite(home)
	blocks := ForPage(testSite, home)

	org, ok := findType(blocks, "NewsMediaOrganization")
	if !ok {
		t.Fatal("NewsMediaOrganization block missing")
	}
	if got := org.Get("logo").String(); got != "https://saltaire.guide/public/favicon.svg" {
		t.Errorf("logo = %q", got)
	}
	if _, ok := findType(blocks, "BreadcrumbList"); ok {
		t.Error("home page should not emit a BreadcrumbList")
	}
	page, _ := findType(blocks, "WebPage")
	if got := page.Get("speakable.cssSelector.0").String(); got != "#hero" {
		t.Errorf("speakable selector = %q, want #hero", got)
	}
}

func TestTimelineEvents(t *testing.T) {
	p := &content.Page{
		Path:  "/history/timeline",
		Title: "Timeline",
		Kind:  content.KindTimeline,
		Timeline: []content.TimelineEntry{
			{Date: "1853", Title: "Mill opens", Summary: "s"},
			{Date: "1850s", Title: "Building", Summary: "s"},
		},
	}
	buildSite(p)
	r, ok := findType(ForPage(testSite, p), "ItemList")
	if !ok {
		t.Fatal("timeline ItemList missing")
	}
	if got := typeOf(r.Get("itemListElement.0.item")); got != "Event" {
		t.Errorf("item type = %q, want Event", got)
	}
	if got := r.Get("itemListElement.0.item.startDate").String(); got != "1853" {
		t.Errorf("startDate = %q, want 1853", got)
	}
	if r.Get("itemListElement.1.item.startDate").Exists() {
		t.Error("undatable entry should have no startDate")
	}
	if got := r.Get("itemListElement.0.item.location.name").String(); got != "Saltaire" {
		t.Errorf("location name = %q, want Saltaire", got)
	}
}

func TestTimelineWithoutAreaHasNoLocation(t *testing.T) {
	p := &content.Page{
		Path:     "/history/timeline",
		Title:    "Timeline",
		Kind:     content.KindTimeline,
		Timeline: []content.TimelineEntry{{Date: "1853", Title: "Mill opens", Summary: "s"}},
	}
	buildSite(p)
	site := testSite
	site.Org.AreaServed = ""
	r, ok := findType(ForPage(site, p), "ItemList")
	if !ok {
		t.Fatal("timeline ItemList missing")
	}
	if r.Get("itemListElement.0.item.location").Exists() {
		t.Errorf("location = %s, want none", r.Get("itemListElement.0.item.location").Raw)
	}
}

func TestWalkPlacesAndHowTo(t *testing.T) {
	lat, lng := 53.8384, -1.7907
	p := &content.Page{
		Path:  "/walks/five-rise",
		Title: "Five Rise",
		Kind:  content.KindWalk,
		Walk: &content.Walk{
			Duration: "PT2H30M",
			Points: []content.PointOfInterest{
				{Name: "Salts Mill", Description: "d", Lat: &lat, Lng: &lng},
				{Name: "Locks", Description: "d"},
			},
		},
		Steps: []content.Step{{Title: "Go", Body: "Walk"}},
	}
	buildSite(p)
	blocks := ForPage(testSite, p)

	howto, ok := findType(blocks, "HowTo")
	if !ok {
		t.Fatal("HowTo block missing")
	}
	if got := howto.Get("step.0.url").String(); got != "https://saltaire.guide/walks/five-rise/#step-1" {
		t.Errorf("step url = %q", got)
	}
	if got := howto.Get("timeRequired").String(); got != "PT2H30M" {
		t.Errorf("timeRequired = %q", got)
	}

	var places gjson.Result
	for _, b := range blocks {
		r := gjson.Parse(b)
		if typeOf(r.Get("itemListElement.0.item")) == "Place" {
			places = r
		}
	}
	if !places.Exists() {
		t.Fatal("Place list missing")
	}
	if got := places.Get("itemListElement.0.item.geo.latitude").Float(); got != lat {
		t.Errorf("latitude = %v, want %v", got, lat)
	}
	if places.Get("itemListElement.1.item.geo").Exists() {
		t.Error("point without coordinates should have no geo")
	}
}

func TestItemListCardURLs(t *testing.T) {
	p := &content.Page{
		Path:  "/history",
		Title: "History",
		Kind:  content.KindCollection,
		Sections: []content.CardSection{{
			ID:      "themes",
			Heading: "Explore",
			Items: []content.Card{
				{Title: "Timeline", Body: "b", Href: "/history/timeline"},
				{Title: "Plan", Body: "b"},
			},
		}},
	}
	buildSite(p)
	blocks := ForPage(testSite, p)
	if _, ok := findType(blocks, "CollectionPage"); !ok {
		t.Error("collection page should be typed CollectionPage")
	}
	r, ok := findType(blocks, "ItemList")
	if !ok {
		t.Fatal("ItemList missing")
	}
	if got := r.Get("itemListElement.0.url").String(); got != "https://saltaire.guide/history/timeline/" {
		t.Errorf("card url = %q", got)
	}
	if r.Get("itemListElement.1.url").Exists() {
		t.Error("card without href should have no url")
	}
	if got := r.Get("numberOfItems").Int(); got != 2 {
		t.Errorf("numberOfItems = %d, want 2", got)
	}
}

func TestMarshalEscapesScriptClose(t *testing.T) {
	out := Marshal(Object{"name": "</script><b>"})
	if strings.Contains(out, "</script>") {
		t.Errorf("Marshal output %q should not contain a raw closing script tag", out)
	}
}

func TestMarshalFailureYieldsEmptyObject(t *testing.T) {
	if got := Marshal(Object{"bad": make(chan int)}); got != "{}" {
		t.Errorf("Marshal = %q, want {}", got)
	}
}

func TestISODuration(t *testing.T) {
	tests := []struct{ in, want string }{
		{"PT2H30M", "PT2H30M"},
		{"2.5 hours", "PT2H30M"},
		{"1 hour 20 mins", "PT1H20M"},
		{"45 minutes", "PT45M"},
		{"3h", "PT3H"},
		{"1h30m", "PT1H30M"},
		{"about 1 hr, 15 min", "PT1H15M"},
		{"2-3 hours", ""},
		{"5 miles", ""},
		{"a leisurely afternoon", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := isoDuration(tt.in); got != tt.want {
			t.Errorf("isoDuration(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
