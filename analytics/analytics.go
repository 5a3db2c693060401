// Package analytics counts page views on the server. Nothing that identifies
// a visitor is stored: each view only increments a daily counter keyed by
// path, referrer domain, device class and crawler name.
package analytics

import (
	"net/url"
	"strings"
	"time"
)

// View is one counted page view.
type View struct {
	Path     string
	Referrer string // cleaned referrer, "" for direct or internal traffic
	Device   string // Desktop, Mobile or Tablet
	Bot      string // crawler name, "" for people
	At       time.Time
}

// Summary aggregates views over a period.
type Summary struct {
	Days      int
	Views     int
	BotViews  int
	TopPages  []PageStat
	Referrers []DimensionStat
	Devices   []DimensionStat
	Bots      []DimensionStat
	Daily     []DailyView
}

// PageStat represents page view statistics.
type PageStat struct {
	Path  string
	Views int
}

// DimensionStat represents a dimension breakdown (referrer, device, bot).
type DimensionStat struct {
	Name  string
	Count int
}

// DailyView represents views per day.
type DailyView struct {
	Date  string
	Views int
}

// Period maps a period name to a number of days. Unknown names mean a week.
func Period(name string) (string, int) {
	switch name {
	case "today":
		return name, 1
	case "month":
		return name, 30
	case "year":
		return name, 365
	default:
		return "week", 7
	}
}

// Device classifies a User-Agent as Desktop, Mobile or Tablet.
func Device(ua string) string {
	ua = strings.ToLower(ua)
	// iPad user agents contain "mobile", so tablets are checked first.
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		return "Tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android"):
		return "Mobile"
	default:
		return "Desktop"
	}
}

var botPatterns = []struct{ pattern, name string }{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"duckduckbot", "DuckDuckBot"},
	{"applebot", "Applebot"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"ahrefsbot", "Ahrefs"},
	{"semrushbot", "SEMrush"},
	{"mj12bot", "Majestic"},
	{"dotbot", "Moz"},
	{"slurp", "Yahoo Slurp"},
	{"crawler", "Generic Crawler"},
	{"spider", "Generic Spider"},
	{"scrape", "Scraper"},
}

// BotName returns the crawler name for ua, or "" if ua looks like a person.
func BotName(ua string) string {
	ua = strings.ToLower(ua)
	for _, b := range botPatterns {
		if strings.Contains(ua, b.pattern) {
			return b.name
		}
	}
	if strings.Contains(ua, "bot") || strings.Contains(ua, "crawl") {
		return "Other Bot"
	}
	return ""
}

var searchEngines = []struct{ host, name string }{
	{"google.", "Google"},
	{"bing.", "Bing"},
	{"duckduckgo.", "DuckDuckGo"},
	{"yahoo.", "Yahoo"},
	{"ecosia.", "Ecosia"},
}

// CleanReferrer reduces a referrer URL to a display name: a search engine
// or the bare domain. Links from ownHost count as direct.
func CleanReferrer(ref, ownHost string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if own := strings.TrimPrefix(strings.ToLower(ownHost), "www."); own != "" {
		if i := strings.LastIndex(own, ":"); i >= 0 {
			own = own[:i]
		}
		if host == own {
			return ""
		}
	}
	for _, se := range searchEngines {
		if strings.Contains(host, se.host) {
			return se.name
		}
	}
	return host
}
