package guide

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saltaire-guide/site/content"
	"github.com/saltaire-guide/site/views"
)

func (a *App) handlePage(c echo.Context) error {
	site, err := a.Cache.Site()
	if err != nil {
		return err
	}
	reqPath := c.Request().URL.Path
	if lower := strings.ToLower(reqPath); lower != reqPath {
		target := content.Href(lower)
		if q := c.Request().URL.RawQuery; q != "" {
			target += "?" + q
		}
		return c.Redirect(http.StatusMovedPermanently, target)
	}
	p, err := site.Page(reqPath)
	if errors.Is(err, content.ErrPageNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	form := views.FormState{}
	if p.Form != "" {
		// The page carries a per-visitor CSRF token.
		c.Response().Header().Set("Cache-Control", "private, no-store")
		form.CSRF = CsrfToken(c)
		form.Sent = c.QueryParam("sent") == "1"
		if v := c.QueryParam("page"); v != "" {
			form.Values = map[string]string{"page": v}
		}
	}
	return Render(c, a.pageComponent(site, p, form))
}

func (a *App) handleRobots(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return WriteRobots(c.Response(), a.Config.URL)
}

func (a *App) handleSitemap(c echo.Context) error {
	site, err := a.Cache.Site()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteSitemap(&buf, a.Config.URL, site); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

func (a *App) handleFeed(c echo.Context) error {
	site, err := a.Cache.Site()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteFeed(&buf, a.Config, site); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", buf.Bytes())
}

func (a *App) handleOGImage(c echo.Context) error {
	slug, ok := strings.CutSuffix(c.Param("image"), ".png")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	site, err := a.Cache.Site()
	if err != nil {
		return err
	}
	img, err := a.OGImage(site, slug)
	if errors.Is(err, content.ErrPageNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", img)
}

// handleAsset serves /public/* from the static override directory first,
// then from the embedded defaults.
func (a *App) handleAsset(c echo.Context) error {
	name := strings.TrimPrefix(path.Clean("/"+c.Param("*")), "/")
	if name == "" {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if fi, err := fs.Stat(a.PublicFS(), name); err != nil || fi.IsDir() {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	http.ServeFileFS(c.Response(), c.Request(), a.PublicFS(), name)
	return nil
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	site, siteErr := a.Cache.Site()
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && siteErr == nil {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.chrome(site, "")))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if siteErr == nil {
			_ = RenderStatus(c, code, a.Views.ServerError(a.chrome(site, "")))
			return
		}
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
