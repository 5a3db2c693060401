package guide

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/saltaire-guide/site/content"
	"github.com/saltaire-guide/site/views"
)

// ExportStats summarises a static export.
type ExportStats struct {
	Pages  int
	Images int
	Assets int
}

// Export renders the whole site into outDir: one index.html per page,
// 404.html, robots.txt, sitemap.xml, feed.xml, the OG cards and /public
// assets. Forms post to the configured endpoint, since there is no server.
func (a *App) Export(ctx context.Context, outDir string) (ExportStats, error) {
	var stats ExportStats
	site, err := a.LoadSite()
	if err != nil {
		return stats, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return stats, err
	}

	form := views.FormState{Action: a.Config.FormEndpoint}
	for _, p := range site.Pages {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		var buf bytes.Buffer
		if err := a.RenderPage(ctx, &buf, site, p, form); err != nil {
			return stats, fmt.Errorf("render %s: %w", p.Path, err)
		}
		if err := writeFile(filepath.Join(outDir, pageFile(p.Path)), buf.Bytes()); err != nil {
			return stats, err
		}
		stats.Pages++

		img, err := a.OGImage(site, p.Slug())
		if err != nil {
			return stats, err
		}
		if err := writeFile(filepath.Join(outDir, "og", p.Slug()+".png"), img); err != nil {
			return stats, err
		}
		stats.Images++
	}

	var buf bytes.Buffer
	if err := a.Views.NotFound(a.chrome(site, "")).Render(ctx, &buf); err != nil {
		return stats, fmt.Errorf("render 404: %w", err)
	}
	if err := writeFile(filepath.Join(outDir, "404.html"), buf.Bytes()); err != nil {
		return stats, err
	}

	feeds := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"robots.txt", func(w io.Writer) error { return WriteRobots(w, a.Config.URL) }},
		{"sitemap.xml", func(w io.Writer) error { return WriteSitemap(w, a.Config.URL, site) }},
		{"feed.xml", func(w io.Writer) error { return WriteFeed(w, a.Config, site) }},
	}
	for _, f := range feeds {
		buf.Reset()
		if err := f.write(&buf); err != nil {
			return stats, fmt.Errorf("%s: %w", f.name, err)
		}
		if err := writeFile(filepath.Join(outDir, f.name), buf.Bytes()); err != nil {
			return stats, err
		}
	}

	n, err := copyTree(Assets(), filepath.Join(outDir, "public"))
	if err != nil {
		return stats, fmt.Errorf("copy embedded assets: %w", err)
	}
	stats.Assets += n
	if dir := a.Config.StaticDir; dir != "" {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			n, err := copyTree(os.DirFS(dir), filepath.Join(outDir, "public"))
			if err != nil {
				return stats, fmt.Errorf("copy %s: %w", dir, err)
			}
			stats.Assets += n
		}
	}

	a.Logger().Infof("exported %d pages, %d images, %d assets to %s", stats.Pages, stats.Images, stats.Assets, outDir)
	return stats, nil
}

// pageFile maps a page path to its file in the export tree.
func pageFile(p string) string {
	p = strings.Trim(content.NormalizePath(p), "/")
	if p == "" {
		return "index.html"
	}
	return filepath.Join(filepath.FromSlash(p), "index.html")
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

// copyTree copies every regular file of fsys under dst and returns the count.
func copyTree(fsys fs.FS, dst string) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		n++
		return writeFile(filepath.Join(dst, filepath.FromSlash(p)), data)
	})
	return n, err
}
