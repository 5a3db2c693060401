// Package guide serves the Saltaire Guide: content pages rendered with their
// JSON-LD, robots/sitemap/feed, generated Open Graph cards, the public forms
// and a small inbox for the submissions they collect.
//
// Page components are supplied through ViewFuncs so a deployment can restyle
// the site without touching the handlers; DefaultViews uses package views.
package guide

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/saltaire-guide/site/analytics"
	"github.com/saltaire-guide/site/content"
	"github.com/saltaire-guide/site/formbridge"
	"github.com/saltaire-guide/site/jsonld"
	"github.com/saltaire-guide/site/views"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Page         func(ch views.Chrome, meta views.PageMeta, p *content.Page, children []*content.Page, form views.FormState, jsonLD []string) templ.Component
	AdminLogin   func(ch views.Chrome, showError bool, csrfToken string) templ.Component
	AdminInbox   func(ch views.Chrome, subs []views.Submission, message, csrfToken string) templ.Component
	AdminTraffic func(ch views.Chrome, t views.Traffic) templ.Component
	NotFound     func(ch views.Chrome) templ.Component
	ServerError  func(ch views.Chrome) templ.Component
}

// DefaultViews returns the components from package views.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Page:         views.Page,
		AdminLogin:   views.AdminLogin,
		AdminInbox:   views.AdminInbox,
		AdminTraffic: views.AdminTraffic,
		NotFound:     views.NotFound,
		ServerError:  views.ServerError,
	}
}

// App wires together the content cache, submission store, forwarding client,
// handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *SiteCache
	Views  ViewFuncs
	Forms  *formbridge.Client

	// Analytics is nil unless AnalyticsEnabled is set.
	Analytics *analytics.Store

	recorder     *analytics.Recorder
	stopCleanup  func()
	loginLimiter *RateLimiter
	formLimiter  *RateLimiter
	ogImages     *ogCache
	contentFS    fs.FS
	customRoutes []func(*App)
	stopRetry    func()
	ready        bool
}

// New creates an App. Nothing is opened until Setup or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		Views:    DefaultViews(),
		ogImages: newOGCache(),
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetPrefix("guide")
	a.Echo.Logger.SetLevel(log.INFO)

	for _, opt := range opts {
		opt(a)
	}

	if a.contentFS == nil {
		if cfg.ContentDir != "" {
			a.contentFS = os.DirFS(cfg.ContentDir)
		} else {
			a.contentFS = content.Files
		}
	}
	if a.Forms == nil {
		a.Forms = formbridge.New(cfg.FormEndpoint,
			formbridge.WithHTTPClient(&http.Client{Timeout: cfg.ForwardTimeout}))
	}
	a.Cache = NewSiteCache(a.loadSite, cfg.ContentTTL)
	return a
}

// Logger is the application logger shared with Echo.
func (a *App) Logger() echo.Logger {
	return a.Echo.Logger
}

// LoadSite returns the current content tree and fills the site name and
// description from the manifest when they are not configured.
func (a *App) LoadSite() (*content.Site, error) {
	site, err := a.Cache.Site()
	if err != nil {
		return nil, fmt.Errorf("guide: load content: %w", err)
	}
	if a.Config.Name == "" {
		a.Config.Name = site.Manifest.Name
	}
	if a.Config.Description == "" {
		a.Config.Description = site.Manifest.Tagline
	}
	return site, nil
}

func (a *App) loadSite() (*content.Site, error) {
	site, err := content.Load(a.contentFS)
	if err != nil {
		return nil, err
	}
	a.ogImages.reset()
	return site, nil
}

// Setup loads content, opens the store and registers middleware and routes.
// It is safe to call more than once.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if _, err := a.LoadSite(); err != nil {
		return err
	}
	if a.Config.AdminPassword != "" && a.Config.SessionSecret == "" {
		return fmt.Errorf("guide: SessionSecret is required when AdminPassword is set")
	}
	if a.Config.SessionSecret == "" {
		a.Config.SessionSecret = randomSecret()
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("guide: init store: %w", err)
	}
	a.Store = store

	if a.Config.AnalyticsEnabled {
		a.Analytics, err = analytics.NewStore(store.DB())
		if err != nil {
			return fmt.Errorf("guide: init analytics: %w", err)
		}
		a.recorder = analytics.NewRecorder(a.Analytics, 256, a.Logger().Errorf)
	}

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.formLimiter = NewRateLimiter(a.Config.FormRateLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start runs Setup, starts the forward retry scheduler and the content
// watcher, and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if a.Forms.Enabled() {
		a.stopRetry = a.StartRetryScheduler(a.Config.RetryInterval)
	} else {
		a.Logger().Warnf("no form endpoint configured; submissions will stay pending")
	}
	if a.Analytics != nil {
		a.stopCleanup = a.Analytics.StartCleanupScheduler(a.Config.AnalyticsRetentionDays, 24*time.Hour, a.Logger().Errorf)
	}
	if a.Config.WatchContent && a.Config.ContentDir != "" {
		stop, err := a.WatchContent(a.Config.ContentDir)
		if err != nil {
			return fmt.Errorf("guide: watch content: %w", err)
		}
		defer stop()
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/*", a.handleAsset)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/og/:image", a.handleOGImage)

	e.POST("/forms/:form/", a.handleFormSubmit)

	if a.Config.AdminPassword != "" {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.POST("/admin/submissions/:id/retry/", a.handleAdminRetry)
		e.POST("/admin/submissions/:id/delete/", a.handleAdminDelete)
		e.DELETE("/admin/submissions/:id/", a.handleAdminDelete)
		if a.Analytics != nil {
			e.GET("/admin/analytics/", a.handleAdminTraffic)
		}
	}

	var track []echo.MiddlewareFunc
	if a.recorder != nil {
		track = append(track, analytics.Middleware(a.recorder))
	}
	e.GET("/", a.handlePage, track...)
	e.GET("/*", a.handlePage, track...)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopRetry != nil {
		a.stopRetry()
	}
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.formLimiter != nil {
		a.formLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// jsonldSite is the site identity used by the structured-data builders.
func (a *App) jsonldSite(site *content.Site) jsonld.Site {
	org := site.Manifest.Organization
	if org.Name == "" {
		org.Name = a.Config.Name
	}
	return jsonld.Site{
		Name:   a.Config.Name,
		URL:    a.Config.URL,
		Locale: site.Manifest.Locale,
		Org:    org,
	}
}

func (a *App) viewSite(site *content.Site) views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Locale:      site.Manifest.Locale,
	}
}

func (a *App) chrome(site *content.Site, current string) views.Chrome {
	return views.Chrome{
		Site:        a.viewSite(site),
		Manifest:    site.Manifest,
		CurrentPath: current,
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
