package guide

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/saltaire-guide/site/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// WriteFeed writes an RSS 2.0 feed of the dated pages, most recently
// updated first.
func WriteFeed(w io.Writer, cfg SiteConfig, site *content.Site) error {
	pages := site.ByUpdated()
	items := make([]rssItem, 0, len(pages))
	var newest time.Time
	for _, p := range pages {
		updated := p.UpdatedTime()
		if updated.IsZero() || p.Hidden {
			continue
		}
		if updated.After(newest) {
			newest = updated
		}
		pageURL := content.BuildURL(cfg.URL, p.Path)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        pageURL,
			Description: p.Description,
			PubDate:     updated.Format(time.RFC1123Z),
			GUID:        pageURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        content.BuildURL(cfg.URL, "/"),
			Description: cfg.Description,
			Language:    site.Manifest.Locale,
			Items:       items,
		},
	}
	if !newest.IsZero() {
		feed.Channel.LastBuildDate = newest.Format(time.RFC1123Z)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}
