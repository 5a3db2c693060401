package guide

import (
	"bytes"
	"errors"
	"image/png"
	"reflect"
	"strings"
	"testing"

	"github.com/saltaire-guide/site/content"
)

func TestRenderOGCard(t *testing.T) {
	b, err := RenderOGCard("Saltaire Guide", "The Five Rise Locks walk", strings.Repeat("A long description ", 20))
	if err != nil {
		t.Fatalf("RenderOGCard failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != ogWidth || b.Dy() != ogHeight {
		t.Errorf("size = %v", b)
	}
}

func TestOGImageCached(t *testing.T) {
	a := New(SiteConfig{})
	site, err := a.Cache.Site()
	if err != nil {
		t.Fatal(err)
	}
	first, err := a.OGImage(site, "faq")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := a.OGImage(site, "faq")
	if &first[0] != &second[0] {
		t.Error("second call should return the cached bytes")
	}
	if _, err := a.OGImage(site, "missing"); !errors.Is(err, content.ErrPageNotFound) {
		t.Errorf("err = %v, want ErrPageNotFound", err)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  []string
	}{
		{"", 10, nil},
		{"Salts Mill", 20, []string{"Salts Mill"}},
		{"the quick brown fox", 9, []string{"the quick", "brown fox"}},
		{"Congregational", 6, []string{"Congre", "gation", "al"}},
		{"  spaced   out  ", 20, []string{"spaced out"}},
	}
	for _, tt := range tests {
		if got := wrapText(tt.in, tt.width); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestLimitLines(t *testing.T) {
	lines := []string{"one", "two", "three words here"}
	if got := limitLines(lines, 3); !reflect.DeepEqual(got, lines) {
		t.Errorf("under limit = %q", got)
	}
	got := limitLines(lines, 2)
	if len(got) != 2 || got[1] != "two..." {
		t.Errorf("limitLines = %q", got)
	}
	if lines[1] != "two" {
		t.Error("input must not be modified")
	}
}
