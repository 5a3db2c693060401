package content

import (
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// Href turns a site path into the trailing-slash form used in links.
// External URLs, files (anything with an extension) and fragments pass
// through untouched.
func Href(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/public/") {
		return p
	}
	rest := ""
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p, rest = p[:i], p[i:]
	}
	if strings.Contains(path.Base(p), ".") {
		return p + rest
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p + rest
}

// internalLinks rewrites site-relative link destinations in page bodies to
// their Href form.
type internalLinks struct{}

func (internalLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if link, ok := n.(*ast.Link); ok && entering {
			link.Destination = []byte(Href(string(link.Destination)))
		}
		return ast.WalkContinue, nil
	})
}
