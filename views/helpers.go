package views

import (
	"strings"

	"github.com/saltaire-guide/site/content"
)

// MetaFor builds the head metadata for a content page.
func MetaFor(cfg SiteConfig, p *content.Page) PageMeta {
	title := p.Title
	if p.Path != "/" {
		title = p.Title + " | " + cfg.Name
	}
	ogType := "article"
	if p.Kind == content.KindHome || p.Kind == content.KindCollection {
		ogType = "website"
	}
	return PageMeta{
		Title:       title,
		Description: p.Description,
		URL:         content.BuildURL(cfg.URL, p.Path),
		OGType:      ogType,
		Image:       strings.TrimSuffix(cfg.URL, "/") + "/og/" + p.Slug() + ".png",
		Modified:    p.Updated,
	}
}

var defaultLabels = map[string]string{
	"breadcrumb": "Breadcrumb",
	"faq":        "Frequently asked questions",
	"steps":      "Step by step",
	"timeline":   "Timeline",
	"route":      "The route",
	"points":     "Points of interest",
	"related":    "Related pages",
	"distance":   "Distance",
	"duration":   "Time needed",
	"start":      "Start",
	"updated":    "Last updated",
	"sent":       "Thank you. Your message has been sent.",
	"failed":     "Please check the highlighted fields.",
	"skip":       "Skip to content",
}

// label returns the manifest override for key, or the default text.
func label(m content.Manifest, key string) string {
	if v := strings.TrimSpace(m.Labels[key]); v != "" {
		return v
	}
	return defaultLabels[key]
}

// isCurrent reports whether nav target belongs to the current page's branch.
func isCurrent(target, current string) bool {
	target = content.NormalizePath(target)
	current = content.NormalizePath(current)
	if target == "/" {
		return current == "/"
	}
	return current == target || strings.HasPrefix(current, target+"/")
}

func cardClass(kind string) string {
	if kind == "" {
		return "card"
	}
	return "card card-" + kind
}
