package guide

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestExportWritesTree(t *testing.T) {
	a := New(SiteConfig{
		URL:          "https://saltaire.guide",
		FormEndpoint: "https://forms.example.net/saltaire",
		StaticDir:    t.TempDir(),
	})
	out := t.TempDir()
	stats, err := a.Export(context.Background(), out)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	site, _ := a.Cache.Site()
	if stats.Pages != len(site.Pages) || stats.Images != len(site.Pages) {
		t.Errorf("stats = %+v, want %d pages and images", stats, len(site.Pages))
	}
	if stats.Assets < 2 {
		t.Errorf("assets = %d, want at least the stylesheet and favicon", stats.Assets)
	}

	for _, name := range []string{
		"index.html",
		"faq/index.html",
		"walks/five-rise/index.html",
		"404.html",
		"robots.txt",
		"sitemap.xml",
		"feed.xml",
		"og/home.png",
		"og/history-timeline.png",
		"public/site.css",
		"public/favicon.svg",
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestExportFormsPostToEndpoint(t *testing.T) {
	a := New(SiteConfig{FormEndpoint: "https://forms.example.net/saltaire", StaticDir: t.TempDir()})
	out := t.TempDir()
	if _, err := a.Export(context.Background(), out); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(filepath.Join(out, "contact", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatal(err)
	}
	form := doc.Find("section#form form")
	if action, _ := form.Attr("action"); action != "https://forms.example.net/saltaire" {
		t.Errorf("action = %q", action)
	}
	if form.Find(`input[name="_csrf"]`).Length() != 0 {
		t.Error("static pages have no csrf token")
	}
	if v, _ := form.Find(`input[name="form"]`).Attr("value"); v != "contact" {
		t.Errorf("hidden form name = %q", v)
	}
}

func TestPageFile(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/", "index.html"},
		{"/faq", filepath.Join("faq", "index.html")},
		{"/history/timeline/", filepath.Join("history", "timeline", "index.html")},
	}
	for _, tt := range tests {
		if got := pageFile(tt.in); got != tt.want {
			t.Errorf("pageFile(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
