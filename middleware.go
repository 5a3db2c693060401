package guide

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName = "inbox_session"
	sessionTTL  = 12 * time.Hour
	signedInKey = "signed_in"
)

// contentSecurityPolicy allows nothing from other origins except images.
// Pages carry no inline script or style.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"img-src 'self' https: data:",
	"style-src 'self'",
	"script-src 'self'",
	"form-action 'self'",
	"frame-ancestors 'none'",
	"base-uri 'self'",
}, "; ")

// route classifies a request path for caching, compression and slash
// handling.
type route int

const (
	routePage route = iota
	routeAsset
	routeOGImage
	routeFeed
	routePrivate
)

func classify(path string) route {
	switch {
	case strings.HasPrefix(path, "/public/"):
		return routeAsset
	case strings.HasPrefix(path, "/og/"):
		return routeOGImage
	case path == "/sitemap.xml", path == "/feed.xml", path == "/robots.txt":
		return routeFeed
	case strings.HasPrefix(path, "/admin"), strings.HasPrefix(path, "/forms/"):
		return routePrivate
	}
	return routePage
}

var cacheControl = map[route]string{
	routePage:    "public, max-age=600",
	routeAsset:   "public, max-age=86400",
	routeOGImage: "public, max-age=86400",
	routeFeed:    "public, max-age=3600",
	routePrivate: "no-store",
}

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)
	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s %s -> %d (%s) id=%s", v.RemoteIP, v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// PNG cards are already compressed.
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return classify(c.Request().URL.Path) == routeOGImage
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: contentSecurityPolicy,
		HSTSMaxAge:            31536000,
	}))

	e.Use(session.Middleware(a.newSessionStore()))
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		CookieHTTPOnly: true,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			r := classify(c.Request().URL.Path)
			return r != routePage && r != routePrivate
		},
	}))

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Cache-Control", cacheControl[classify(c.Request().URL.Path)])
			return next(c)
		}
	})
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/admin",
		HttpOnly: true,
		MaxAge:   int(sessionTTL / time.Second),
		SameSite: http.SameSiteStrictMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// IsAdmin reports whether the request carries an inbox session that has not
// outlived sessionTTL.
func IsAdmin(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	at, ok := sess.Values[signedInKey].(int64)
	return ok && time.Since(time.Unix(at, 0)) < sessionTTL
}

func setAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[signedInKey] = time.Now().Unix()
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, signedInKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken returns the token the CSRF middleware issued for this request.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
