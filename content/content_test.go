package content

import (
	"strings"
	"testing"
	"testing/fstest"
)

const testManifest = `name: Test Guide
nav:
  - label: Walks
    path: /walks
`

func testFS(pages map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{
		"site.yaml": {Data: []byte(testManifest)},
	}
	for name, body := range pages {
		fsys["pages/"+name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

func TestLoadEmbeddedSite(t *testing.T) {
	site, err := Load(Files)
	if err != nil {
		t.Fatalf("Load(Files) failed: %v", err)
	}
	for _, path := range []string{"/", "/faq", "/contribute", "/history/timeline", "/walks/five-rise"} {
		if !site.Has(path) {
			t.Errorf("embedded site missing route %s", path)
		}
	}
	if site.Manifest.Name == "" {
		t.Error("manifest name should be set")
	}
}

func TestLoadDerivesPathsFromFiles(t *testing.T) {
	fsys := testFS(map[string]string{
		"index.md":           "---\ntitle: Home\ndescription: d\nkind: home\n---\n",
		"walks/index.md":     "---\ntitle: Walks\ndescription: d\n---\n",
		"walks/five-rise.md": "---\ntitle: Five Rise\ndescription: d\nkind: walk\n---\nBody **text**.\n",
	})
	site, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := strings.Join(site.Paths(), ",")
	if got != "/,/walks,/walks/five-rise" {
		t.Errorf("Paths() = %q, want %q", got, "/,/walks,/walks/five-rise")
	}
	p, err := site.Page("/walks/five-rise/")
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if !strings.Contains(string(p.Body), "<strong>text</strong>") {
		t.Errorf("Body = %q, want rendered markdown", p.Body)
	}
	walks, _ := site.Page("/walks")
	if walks.Kind != KindArticle {
		t.Errorf("default Kind = %q, want %q", walks.Kind, KindArticle)
	}
}

func TestLoadAggregatesValidationErrors(t *testing.T) {
	fsys := testFS(map[string]string{
		"walks/index.md": "---\ntitle: Walks\ndescription: d\n---\n",
		"faq.md":         "---\ntitle: FAQ\ndescription: d\nkind: faq\nfaqs:\n  - q: Question?\n    a: \"\"\n---\n",
		"bad.md":         "---\ntitle: \"\"\ndescription: d\nkind: nonsense\n---\n",
	})
	_, err := Load(fsys)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !IsValidationError(err) {
		t.Errorf("IsValidationError(%v) = false, want true", err)
	}
	msg := err.Error()
	for _, want := range []string{"faqs[0] q and a is required", "title is required", `unknown kind "nonsense"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should mention %q", msg, want)
		}
	}
}

func TestLoadRejectsUnknownNavTarget(t *testing.T) {
	fsys := testFS(map[string]string{
		"index.md": "---\ntitle: Home\ndescription: d\nkind: home\n---\n",
	})
	_, err := Load(fsys)
	if err == nil || !strings.Contains(err.Error(), "unknown page /walks") {
		t.Errorf("expected unknown nav target error, got %v", err)
	}
}

func TestLoadRejectsDuplicatePaths(t *testing.T) {
	fsys := testFS(map[string]string{
		"walks/index.md": "---\ntitle: Walks\ndescription: d\n---\n",
		"walks.md":       "---\ntitle: Walks again\ndescription: d\n---\n",
	})
	_, err := Load(fsys)
	if err == nil || !strings.Contains(err.Error(), "already defined") {
		t.Errorf("expected duplicate path error, got %v", err)
	}
}

func TestBreadcrumbTrail(t *testing.T) {
	home := &Page{Path: "/", Title: "Saltaire Guide", NavLabel: "Home"}
	history := &Page{Path: "/history", Title: "History of Saltaire", NavLabel: "History"}
	timeline := &Page{Path: "/history/timeline", Title: "Saltaire timeline"}
	orphan := &Page{Path: "/walks/five-rise", Title: "Five Rise"}
	NewSite(Manifest{Name: "x"}, []*Page{timeline, home, history, orphan})

	tests := []struct {
		page *Page
		want string
	}{
		{home, "Home:/"},
		{timeline, "Home:/ > History:/history > Saltaire timeline:/history/timeline"},
		{orphan, "Home:/ > Walks:/walks > Five Rise:/walks/five-rise"},
	}
	for _, tt := range tests {
		var parts []string
		for _, c := range tt.page.Crumbs {
			parts = append(parts, c.Name+":"+c.Path)
		}
		if got := strings.Join(parts, " > "); got != tt.want {
			t.Errorf("Crumbs(%s) = %q, want %q", tt.page.Path, got, tt.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/", "/"},
		{"", "/"},
		{"/FAQ/", "/faq"},
		{"walks/five-rise", "/walks/five-rise"},
		{"/history/timeline/?ref=nav#top", "/history/timeline"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.input); got != tt.expected {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTimelineISODate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1853", "1853"},
		{"c. 1850", "1850"},
		{"1850s", ""},
		{"December 2001", "2001-12"},
		{"1853-09-20", "1853-09-20"},
		{"03/04/1853", "1853-04-03"},
		{"20/09/1853", "1853-09-20"},
		{"", ""},
		{"sometime", ""},
	}
	for _, tt := range tests {
		e := TimelineEntry{Date: tt.input}
		if got := e.ISODate(); got != tt.expected {
			t.Errorf("ISODate(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSegmentTitle(t *testing.T) {
	if got := SegmentTitle("five-rise"); got != "Five Rise" {
		t.Errorf("SegmentTitle = %q, want %q", got, "Five Rise")
	}
}

func TestChildrenAndByUpdated(t *testing.T) {
	site := NewSite(Manifest{Name: "x"}, []*Page{
		{Path: "/", Title: "Home"},
		{Path: "/walks", Title: "Walks", Updated: "2024-01-01"},
		{Path: "/walks/a", Title: "A", Updated: "2024-03-01"},
		{Path: "/walks/b", Title: "B", Hidden: true},
		{Path: "/walks/a/deep", Title: "Deep"},
	})
	kids := site.Children("/walks/")
	if len(kids) != 1 || kids[0].Path != "/walks/a" {
		t.Errorf("Children(/walks) = %v, want [/walks/a]", kids)
	}
	ordered := site.ByUpdated()
	if ordered[0].Path != "/walks/a" || ordered[1].Path != "/walks" {
		t.Errorf("ByUpdated first = %s, %s; want /walks/a, /walks", ordered[0].Path, ordered[1].Path)
	}
}

func TestPageNotFound(t *testing.T) {
	site := NewSite(Manifest{Name: "x"}, nil)
	if _, err := site.Page("/nope"); err != ErrPageNotFound {
		t.Errorf("Page(/nope) err = %v, want ErrPageNotFound", err)
	}
}
