package guide

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/saltaire-guide/site/content"
)

const (
	ogWidth  = 1200
	ogHeight = 630
	ogMargin = 80
)

var (
	ogPaper = color.RGBA{0xfb, 0xf7, 0xef, 0xff}
	ogInk   = color.RGBA{0x2b, 0x21, 0x18, 0xff}
	ogBrick = color.RGBA{0x7a, 0x2e, 0x1f, 0xff}
	ogMuted = color.RGBA{0x6b, 0x5d, 0x4f, 0xff}
)

// ogCache keeps encoded cards per slug until the content is reloaded.
type ogCache struct {
	mu     sync.Mutex
	images map[string][]byte
}

func newOGCache() *ogCache {
	return &ogCache{images: make(map[string][]byte)}
}

func (c *ogCache) get(slug string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.images[slug]
	return b, ok
}

func (c *ogCache) put(slug string, b []byte) {
	c.mu.Lock()
	c.images[slug] = b
	c.mu.Unlock()
}

func (c *ogCache) reset() {
	c.mu.Lock()
	c.images = make(map[string][]byte)
	c.mu.Unlock()
}

// OGImage returns the PNG card for the page whose slug matches.
func (a *App) OGImage(site *content.Site, slug string) ([]byte, error) {
	if b, ok := a.ogImages.get(slug); ok {
		return b, nil
	}
	var page *content.Page
	for _, p := range site.Pages {
		if p.Slug() == slug {
			page = p
			break
		}
	}
	if page == nil {
		return nil, content.ErrPageNotFound
	}
	b, err := RenderOGCard(a.Config.Name, page.Title, page.Description)
	if err != nil {
		return nil, fmt.Errorf("og card %s: %w", slug, err)
	}
	a.ogImages.put(slug, b)
	return b, nil
}

// RenderOGCard draws a 1200x630 card with the title, description and site
// name. The bitmap face is drawn small and scaled up.
func RenderOGCard(siteName, title, description string) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, ogWidth, ogHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(ogPaper), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, 0, ogWidth, 24), image.NewUniform(ogBrick), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, ogHeight-120, ogWidth, ogHeight-116), image.NewUniform(ogBrick), image.Point{}, draw.Src)

	const titleScale, descScale, nameScale = 5, 3, 3
	lineH := func(scale int) int { return basicfont.Face7x13.Height * scale }
	cols := func(scale int) int { return (ogWidth - 2*ogMargin) / (basicfont.Face7x13.Advance * scale) }

	y := 90
	for _, line := range limitLines(wrapText(title, cols(titleScale)), 3) {
		drawScaled(dst, line, ogMargin, y, titleScale, ogInk)
		y += lineH(titleScale) + 10
	}
	y += 20
	for _, line := range limitLines(wrapText(description, cols(descScale)), 3) {
		drawScaled(dst, line, ogMargin, y, descScale, ogMuted)
		y += lineH(descScale) + 6
	}
	drawScaled(dst, siteName, ogMargin, ogHeight-90, nameScale, ogBrick)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawScaled renders text with the 7x13 bitmap face at (x, y), scale times
// its natural size.
func drawScaled(dst *image.RGBA, text string, x, y, scale int, col color.Color) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil()
	small := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	d.Dst = small
	d.Src = image.NewUniform(col)
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(text)

	target := image.Rect(x, y, x+w*scale, y+face.Height*scale)
	draw.NearestNeighbor.Scale(dst, target, small, small.Bounds(), draw.Over, nil)
}

// wrapText breaks s into lines of at most width runes on word boundaries.
// Words longer than width are cut.
func wrapText(s string, width int) []string {
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(s) {
		for utf8.RuneCountInString(word) > width {
			r := []rune(word)
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			lines = append(lines, string(r[:width]))
			word = string(r[width:])
		}
		switch {
		case cur.Len() == 0:
			cur.WriteString(word)
		case utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(word) <= width:
			cur.WriteString(" ")
			cur.WriteString(word)
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(word)
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// limitLines keeps the first n lines and marks truncation with "...".
func limitLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	out := append([]string(nil), lines[:n]...)
	last := []rune(out[n-1])
	if len(last) > 3 {
		last = last[:len(last)-3]
	}
	out[n-1] = strings.TrimRight(string(last), " ") + "..."
	return out
}
