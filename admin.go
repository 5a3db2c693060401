package guide

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"github.com/saltaire-guide/site/analytics"
	"github.com/saltaire-guide/site/formbridge"
	"github.com/saltaire-guide/site/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	site, err := a.Cache.Site()
	if err != nil {
		return err
	}
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.chrome(site, "/admin"), false, CsrfToken(c)))
	}
	return a.renderInbox(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	site, err := a.Cache.Site()
	if err != nil {
		return err
	}
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.chrome(site, "/admin"), true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminRetry(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	sub, err := a.Store.GetSubmission(ctx, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	msg := "Forwarded."
	switch err := a.Forward(ctx, sub); {
	case errors.Is(err, formbridge.ErrDisabled):
		msg = "No form endpoint is configured; the submission is still " + sub.Status + "."
	case errors.Is(err, ErrInFlight):
		msg = "This submission is already being forwarded."
	case err != nil:
		msg = "Forward failed: " + err.Error()
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeleteSubmission(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	if c.Request().Method == http.MethodDelete {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=Deleted.")
}

func (a *App) handleAdminTraffic(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	site, err := a.Cache.Site()
	if err != nil {
		return err
	}
	period, days := analytics.Period(c.QueryParam("period"))
	sum, err := a.Analytics.Summary(c.Request().Context(), days, 10, time.Now())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminTraffic(a.chrome(site, "/admin"), trafficView(period, sum)))
}

func trafficView(period string, s *analytics.Summary) views.Traffic {
	t := views.Traffic{Period: period, Days: s.Days, Views: s.Views, BotViews: s.BotViews}
	for _, p := range s.TopPages {
		t.TopPages = append(t.TopPages, views.Count{Label: p.Path, N: p.Views})
	}
	dims := []struct {
		src []analytics.DimensionStat
		dst *[]views.Count
	}{
		{s.Referrers, &t.Referrers},
		{s.Devices, &t.Devices},
		{s.Bots, &t.Bots},
	}
	for _, d := range dims {
		for _, st := range d.src {
			*d.dst = append(*d.dst, views.Count{Label: st.Name, N: st.Count})
		}
	}
	for _, d := range s.Daily {
		t.Daily = append(t.Daily, views.Count{Label: d.Date, N: d.Views})
	}
	return t
}

func (a *App) renderInbox(c echo.Context, msg string) error {
	site, err := a.Cache.Site()
	if err != nil {
		return err
	}
	subs, err := a.Store.ListSubmissions(c.Request().Context(), 200)
	if err != nil {
		return err
	}
	rows := make([]views.Submission, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, inboxRow(s))
	}
	return Render(c, a.Views.AdminInbox(a.chrome(site, "/admin"), rows, msg, CsrfToken(c)))
}

// inboxRow lists the fields in form order with their labels.
func inboxRow(s Submission) views.Submission {
	row := views.Submission{
		ID:       s.ID,
		Form:     s.Form,
		Status:   s.Status,
		Attempts: s.Attempts,
		Received: humanize.Time(s.CreatedAt),
		Error:    s.LastError,
	}
	f, ok := formbridge.Lookup(s.Form)
	if !ok {
		keys := make([]string, 0, len(s.Fields))
		for k := range s.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			row.Fields = append(row.Fields, views.Field{Label: k, Value: s.Fields[k]})
		}
		return row
	}
	for _, fld := range f.Fields {
		row.Fields = append(row.Fields, views.Field{Label: fld.Label, Value: s.Fields[fld.Name]})
	}
	return row
}
