package guide

import (
	"io/fs"
	"time"

	"github.com/saltaire-guide/site/formbridge"
)

// SiteConfig holds all configuration for a guide site.
type SiteConfig struct {
	Name        string // Site name (default: name from site.yaml)
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Feed description (default: site.yaml tagline)

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/submissions.db")
	ContentDir   string // Content directory on disk; empty uses the embedded content
	StaticDir    string // Static asset override directory (default "public")

	AdminPassword string // Enables the submissions inbox when set
	SessionSecret string // Required when AdminPassword is set
	CookieSecure  bool   // Set true for HTTPS

	FormEndpoint   string        // External form script URL; empty keeps submissions pending
	FormRateLimit  int           // Form posts per IP per minute (default 5)
	RetryInterval  time.Duration // Forward retry interval (default 5min)
	MaxAttempts    int           // Forward attempts before giving up (default 5)
	ContentTTL     time.Duration // Content cache TTL; zero keeps content until invalidated
	WatchContent   bool          // Reload ContentDir on change
	ForwardTimeout time.Duration // Per-forward timeout (default 15s)

	AnalyticsEnabled       bool // Count page views server-side
	AnalyticsRetentionDays int  // Days of counters to keep (default 365)
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/submissions.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.FormRateLimit == 0 {
		c.FormRateLimit = 5
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = 5 * time.Minute
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 5
	}
	if c.ForwardTimeout == 0 {
		c.ForwardTimeout = 15 * time.Second
	}
	if c.AnalyticsRetentionDays == 0 {
		c.AnalyticsRetentionDays = 365
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithContentFS replaces the content source. fsys must hold site.yaml and a
// pages directory.
func WithContentFS(fsys fs.FS) Option {
	return func(a *App) {
		a.contentFS = fsys
	}
}

// WithFormClient replaces the forwarding client built from FormEndpoint.
func WithFormClient(c *formbridge.Client) Option {
	return func(a *App) {
		a.Forms = c
	}
}

// WithViews replaces the default page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
