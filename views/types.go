package views

import "github.com/saltaire-guide/site/content"

// SiteConfig holds site-wide settings every component may need.
type SiteConfig struct {
	Name        string // SITE_NAME (default from site.yaml)
	URL         string // SITE_URL  (default "http://localhost:3000")
	Description string
	Locale      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // absolute og:image URL
	Modified    string
	NoIndex     bool
}

// Chrome is the shared frame around every page: header navigation, footer
// and the site identity.
type Chrome struct {
	Site        SiteConfig
	Manifest    content.Manifest
	CurrentPath string
}

// FormState is the state of a form on a single render.
type FormState struct {
	Action string // defaults to /forms/<name>/
	CSRF   string
	Values map[string]string
	Errors map[string]string
	Sent   bool
	Failed bool
}

// Submission is the admin inbox row.
type Submission struct {
	ID       string
	Form     string
	Status   string
	Attempts int
	Received string // humanized
	Error    string
	Fields   []Field
}

// Field is one submitted value, in form order.
type Field struct {
	Label string
	Value string
}

// Traffic is the page view summary shown to the admin.
type Traffic struct {
	Period    string // today, week, month or year
	Days      int
	Views     int
	BotViews  int
	TopPages  []Count
	Referrers []Count
	Devices   []Count
	Bots      []Count
	Daily     []Count
}

// Count is one labelled number in a Traffic breakdown.
type Count struct {
	Label string
	N     int
}
