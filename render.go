package guide

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/saltaire-guide/site/content"
	"github.com/saltaire-guide/site/jsonld"
	"github.com/saltaire-guide/site/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// pageComponent assembles everything a content page needs: chrome, head
// metadata, the direct children for collection pages and the JSON-LD.
func (a *App) pageComponent(site *content.Site, p *content.Page, form views.FormState) templ.Component {
	ch := a.chrome(site, p.Path)
	meta := views.MetaFor(ch.Site, p)
	var children []*content.Page
	if p.Kind == content.KindCollection {
		children = site.Children(p.Path)
	}
	return a.Views.Page(ch, meta, p, children, form, jsonld.ForPage(a.jsonldSite(site), p))
}

// RenderPage writes a content page to w outside of a request, as the static
// export does.
func (a *App) RenderPage(ctx context.Context, w io.Writer, site *content.Site, p *content.Page, form views.FormState) error {
	return a.pageComponent(site, p, form).Render(ctx, w)
}
