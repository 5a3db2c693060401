package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"
)

const (
	manifestFile = "site.yaml"
	pagesDir     = "pages"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
		parser.WithASTTransformers(util.Prioritized(internalLinks{}, 100)),
	),
)

// Load reads the manifest and every page under fsys, renders page bodies and
// validates the result. Validation problems across all pages are returned
// together.
func Load(fsys fs.FS) (*Site, error) {
	m, err := loadManifest(fsys)
	if err != nil {
		return nil, err
	}

	var pages []*Page
	err = fs.WalkDir(fsys, pagesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		page, err := loadPage(fsys, p)
		if err != nil {
			return err
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("content: walk pages: %w", err)
	}

	if err := validate(m, pages); err != nil {
		return nil, err
	}
	return NewSite(m, pages), nil
}

func loadManifest(fsys fs.FS) (Manifest, error) {
	var m Manifest
	raw, err := fs.ReadFile(fsys, manifestFile)
	if err != nil {
		return m, fmt.Errorf("content: read manifest: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("content: parse manifest: %w", err)
	}
	if m.Locale == "" {
		m.Locale = "en-GB"
	}
	return m, nil
}

func loadPage(fsys fs.FS, file string) (*Page, error) {
	raw, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", file, err)
	}
	page := &Page{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), page)
	if err != nil {
		return nil, fmt.Errorf("content: frontmatter %s: %w", file, err)
	}
	html, err := RenderMarkdown(body)
	if err != nil {
		return nil, fmt.Errorf("content: markdown %s: %w", file, err)
	}
	page.Body = html
	page.Source = file
	if page.Path == "" {
		page.Path = pathFromFile(file)
	}
	page.Path = NormalizePath(page.Path)
	if page.Kind == "" {
		page.Kind = KindArticle
	}
	return page, nil
}

// RenderMarkdown converts a Markdown body to HTML. Raw HTML in the source is
// not passed through.
func RenderMarkdown(src []byte) (template.HTML, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// pathFromFile maps pages/walks/five-rise.md to /walks/five-rise and
// pages/walks/index.md to /walks.
func pathFromFile(file string) string {
	rel := strings.TrimPrefix(file, pagesDir)
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(rel) == "index" {
		rel = path.Dir(rel)
	}
	return NormalizePath(rel)
}

// ValidationError lists the problems found in a single page.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(e.Problems, "; "))
}

// IsValidationError reports whether err contains a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
