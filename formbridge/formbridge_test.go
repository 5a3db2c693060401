package formbridge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestLookupKnownForms(t *testing.T) {
	for _, name := range []string{"contact", "corrections", "contribute"} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) not found", name)
		}
	}
	if _, ok := Lookup("newsletter"); ok {
		t.Error("Lookup(newsletter) should fail")
	}
	if got := strings.Join(Names(), ","); got != "contact,contribute,corrections" {
		t.Errorf("Names() = %q", got)
	}
}

func TestCorrectionsFieldContract(t *testing.T) {
	f, _ := Lookup("corrections")
	var names []string
	for _, fld := range f.Fields {
		names = append(names, fld.Name)
	}
	if got := strings.Join(names, ","); got != "page,details,evidence,name,email,credit" {
		t.Errorf("corrections fields = %q", got)
	}
}

func TestValidate(t *testing.T) {
	f, _ := Lookup("contact")
	tests := []struct {
		name    string
		posted  url.Values
		wantErr map[string]bool
	}{
		{
			name:   "valid",
			posted: url.Values{"name": {" Ada "}, "email": {"ada@example.com"}, "details": {"Hello"}},
		},
		{
			name:    "missing required",
			posted:  url.Values{"name": {""}, "email": {"ada@example.com"}},
			wantErr: map[string]bool{"name": true, "details": true},
		},
		{
			name:    "bad email",
			posted:  url.Values{"name": {"Ada"}, "email": {"Ada <ada@example.com>"}, "details": {"Hi"}},
			wantErr: map[string]bool{"email": true},
		},
		{
			name:    "too long",
			posted:  url.Values{"name": {strings.Repeat("a", 121)}, "email": {"ada@example.com"}, "details": {"Hi"}},
			wantErr: map[string]bool{"name": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, errs := f.Validate(tt.posted)
			if len(tt.wantErr) == 0 {
				if errs != nil {
					t.Fatalf("unexpected errors: %v", errs)
				}
				if values["name"] != "Ada" {
					t.Errorf("name = %q, want trimmed %q", values["name"], "Ada")
				}
				return
			}
			if len(errs) != len(tt.wantErr) {
				t.Errorf("errors = %v, want keys %v", errs, tt.wantErr)
			}
			for k := range tt.wantErr {
				if _, ok := errs[k]; !ok {
					t.Errorf("missing error for %q in %v", k, errs)
				}
			}
		})
	}
}

func TestValidateURLField(t *testing.T) {
	f, _ := Lookup("contribute")
	base := url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "details": {"Photo of the mill"}}

	base.Set("evidence", "javascript:alert(1)")
	if _, errs := f.Validate(base); errs["evidence"] == "" {
		t.Error("javascript: URL should be rejected")
	}
	base.Set("evidence", "https://photos.example.com/album")
	if _, errs := f.Validate(base); errs != nil {
		t.Errorf("https URL rejected: %v", errs)
	}
}

func TestValidateDropsUnknownKeys(t *testing.T) {
	f, _ := Lookup("contact")
	values, _ := f.Validate(url.Values{"name": {"a"}, "email": {"a@b.co"}, "details": {"x"}, "admin": {"1"}})
	if _, ok := values["admin"]; ok {
		t.Error("unknown key should be dropped")
	}
}

func TestForwardPostsURLEncoded(t *testing.T) {
	var got url.Values
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		got = r.PostForm
		w.Write([]byte(`{"result":"success"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	err := c.Forward(context.Background(), "corrections", "abc-123", map[string]string{
		"page":    "/faq",
		"details": "Typo",
	})
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if contentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if got.Get("form") != "corrections" || got.Get("submission_id") != "abc-123" || got.Get("page") != "/faq" {
		t.Errorf("posted values = %v", got)
	}
}

func TestForwardReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := New(srv.URL).Forward(context.Background(), "contact", "id", nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Code != http.StatusTooManyRequests || se.Body != "quota exceeded" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestForwardDisabled(t *testing.T) {
	c := New("  ")
	if c.Enabled() {
		t.Error("blank endpoint should disable the client")
	}
	if err := c.Forward(context.Background(), "contact", "id", nil); !errors.Is(err, ErrDisabled) {
		t.Errorf("Forward err = %v, want ErrDisabled", err)
	}
}
