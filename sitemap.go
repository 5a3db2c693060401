package guide

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/saltaire-guide/site/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes the sitemap for every visible page of site.
func WriteSitemap(w io.Writer, base string, site *content.Site) error {
	var urls []sitemapURL
	for _, p := range site.Pages {
		if p.Hidden {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     content.BuildURL(base, p.Path),
			LastMod: p.Updated,
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}

// WriteRobots writes the crawler policy: everything is allowed except the
// inbox and the form endpoints.
func WriteRobots(w io.Writer, base string) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /forms/\n\nSitemap: %s\n",
		strings.TrimSuffix(base, "/")+"/sitemap.xml")
	return err
}
