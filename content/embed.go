package content

import "embed"

// Files is the guide's own content tree: site.yaml plus pages/**/*.md.
//
//go:embed site.yaml pages
var Files embed.FS
