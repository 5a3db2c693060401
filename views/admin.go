package views

import (
	"strconv"

	"github.com/a-h/templ"
)

func adminMeta(ch Chrome, title string) PageMeta {
	return PageMeta{Title: title + " | " + ch.Site.Name, OGType: "website", NoIndex: true}
}

// AdminLogin renders the inbox login form.
func AdminLogin(ch Chrome, showError bool, csrfToken string) templ.Component {
	return Layout(ch, adminMeta(ch, "Sign in"), nil, component(func(h *htmlWriter) {
		h.open("section", "class", "admin")
		h.el("h1", "Sign in")
		if showError {
			h.el("p", "Incorrect password or too many attempts.", "class", "notice notice-error", "role", "alert")
		}
		h.open("form", "method", "post", "action", "/admin/login/")
		h.open("input", "type", "hidden", "name", "_csrf", "value", csrfToken)
		h.el("label", "Password", "for", "password")
		h.open("input", "type", "password", "id", "password", "name", "password", "autocomplete", "current-password", "required", "")
		h.el("button", "Sign in", "type", "submit")
		h.close("form")
		h.close("section")
	}))
}

// AdminInbox lists stored submissions, newest first.
func AdminInbox(ch Chrome, subs []Submission, message, csrfToken string) templ.Component {
	return Layout(ch, adminMeta(ch, "Submissions"), nil, component(func(h *htmlWriter) {
		h.open("section", "class", "admin")
		h.el("h1", "Submissions")
		h.open("form", "method", "post", "action", "/admin/logout/", "class", "logout")
		h.open("input", "type", "hidden", "name", "_csrf", "value", csrfToken)
		h.el("button", "Sign out", "type", "submit")
		h.close("form")
		if message != "" {
			h.el("p", message, "class", "notice", "role", "status")
		}
		if len(subs) == 0 {
			h.el("p", "No submissions yet.")
		}
		for _, s := range subs {
			submission(h, s, csrfToken)
		}
		h.close("section")
	}))
}

func submission(h *htmlWriter, s Submission, csrfToken string) {
	h.open("article", "id", "sub-"+s.ID, "class", "submission status-"+s.Status)
	h.open("header")
	h.el("h2", s.Form)
	h.el("p", s.Received+" · "+s.Status+" · attempts "+strconv.Itoa(s.Attempts), "class", "meta")
	h.close("header")
	if s.Error != "" {
		h.el("p", s.Error, "class", "error")
	}
	h.open("dl")
	for _, f := range s.Fields {
		if f.Value == "" {
			continue
		}
		h.el("dt", f.Label)
		h.el("dd", f.Value)
	}
	h.close("dl")
	if s.Status != "forwarded" {
		h.open("form", "method", "post", "action", "/admin/submissions/"+s.ID+"/retry/")
		h.open("input", "type", "hidden", "name", "_csrf", "value", csrfToken)
		h.el("button", "Retry forwarding", "type", "submit")
		h.close("form")
	}
	h.open("form", "method", "post", "action", "/admin/submissions/"+s.ID+"/delete/")
	h.open("input", "type", "hidden", "name", "_csrf", "value", csrfToken)
	h.el("button", "Delete", "type", "submit")
	h.close("form")
	h.close("article")
}

var trafficPeriods = []struct{ key, label string }{
	{"today", "Today"},
	{"week", "7 days"},
	{"month", "30 days"},
	{"year", "12 months"},
}

// AdminTraffic shows page view counts for the selected period.
func AdminTraffic(ch Chrome, t Traffic) templ.Component {
	return Layout(ch, adminMeta(ch, "Traffic"), nil, component(func(h *htmlWriter) {
		h.open("section", "class", "admin traffic")
		h.el("h1", "Traffic")
		h.open("nav", "class", "periods", "aria-label", "Period")
		for _, p := range trafficPeriods {
			if p.key == t.Period {
				h.el("a", p.label, "href", "/admin/analytics/?period="+p.key, "aria-current", "page")
			} else {
				h.el("a", p.label, "href", "/admin/analytics/?period="+p.key)
			}
		}
		h.el("a", "Submissions", "href", "/admin/")
		h.close("nav")

		h.open("dl", "class", "totals")
		h.el("dt", "Page views")
		h.el("dd", strconv.Itoa(t.Views), "id", "views")
		h.el("dt", "Crawler visits")
		h.el("dd", strconv.Itoa(t.BotViews), "id", "bot-views")
		h.close("dl")

		countTable(h, "top-pages", "Top pages", "Page", t.TopPages)
		countTable(h, "referrers", "Referrers", "Source", t.Referrers)
		countTable(h, "devices", "Devices", "Device", t.Devices)
		countTable(h, "bots", "Crawlers", "Crawler", t.Bots)
		if t.Days > 1 {
			countTable(h, "daily", "Views per day", "Day", t.Daily)
		}
		h.close("section")
	}))
}

func countTable(h *htmlWriter, id, title, col string, rows []Count) {
	h.open("section", "id", id)
	h.el("h2", title)
	if len(rows) == 0 {
		h.el("p", "Nothing recorded.", "class", "empty")
		h.close("section")
		return
	}
	h.open("table")
	h.open("thead")
	h.open("tr")
	h.el("th", col, "scope", "col")
	h.el("th", "Views", "scope", "col")
	h.close("tr")
	h.close("thead")
	h.open("tbody")
	for _, r := range rows {
		h.open("tr")
		h.el("th", r.Label, "scope", "row")
		h.el("td", strconv.Itoa(r.N))
		h.close("tr")
	}
	h.close("tbody")
	h.close("table")
	h.close("section")
}
