// Package formbridge defines the guide's public forms and forwards accepted
// submissions to the external form-handling script.
//
// Field names are the contract with that script: it expects a URL-encoded
// POST carrying exactly these keys plus "form" and "submission_id".
package formbridge

import (
	"net/mail"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

// HoneypotField is rendered hidden; humans leave it empty.
const HoneypotField = "website"

// Field kinds map to input types.
const (
	KindText     = "text"
	KindEmail    = "email"
	KindTextarea = "textarea"
	KindURL      = "url"
)

// Field describes a single form input.
type Field struct {
	Name     string
	Label    string
	Kind     string
	Help     string
	Required bool
	MaxLen   int
}

// Form is a named set of fields.
type Form struct {
	Name   string
	Title  string
	Submit string
	Fields []Field
}

var forms = map[string]Form{
	"contact": {
		Name:   "contact",
		Title:  "Send us a message",
		Submit: "Send message",
		Fields: []Field{
			{Name: "name", Label: "Your name", Kind: KindText, Required: true, MaxLen: 120},
			{Name: "email", Label: "Email address", Kind: KindEmail, Required: true, MaxLen: 254},
			{Name: "details", Label: "Message", Kind: KindTextarea, Required: true, MaxLen: 5000},
		},
	},
	"corrections": {
		Name:   "corrections",
		Title:  "Tell us what needs fixing",
		Submit: "Send correction",
		Fields: []Field{
			{Name: "page", Label: "Page address", Kind: KindText, Required: true, MaxLen: 300, Help: "For example /history/timeline"},
			{Name: "details", Label: "What is wrong?", Kind: KindTextarea, Required: true, MaxLen: 5000},
			{Name: "evidence", Label: "Source or evidence", Kind: KindTextarea, MaxLen: 2000, Help: "A book, archive reference or link."},
			{Name: "name", Label: "Your name", Kind: KindText, MaxLen: 120},
			{Name: "email", Label: "Email address", Kind: KindEmail, MaxLen: 254, Help: "Only if you would like a reply."},
			{Name: "credit", Label: "Credit as", Kind: KindText, MaxLen: 120, Help: "Leave blank to stay anonymous."},
		},
	},
	"contribute": {
		Name:   "contribute",
		Title:  "Share your contribution",
		Submit: "Send contribution",
		Fields: []Field{
			{Name: "name", Label: "Your name", Kind: KindText, Required: true, MaxLen: 120},
			{Name: "email", Label: "Email address", Kind: KindEmail, Required: true, MaxLen: 254},
			{Name: "credit", Label: "Credit as", Kind: KindText, MaxLen: 120},
			{Name: "date", Label: "Approximate date", Kind: KindText, MaxLen: 60, Help: "When the photograph was taken or the memory dates from."},
			{Name: "details", Label: "Your memory or a description of the item", Kind: KindTextarea, Required: true, MaxLen: 5000},
			{Name: "evidence", Label: "Link to photographs", Kind: KindURL, MaxLen: 2000},
		},
	},
}

// Lookup returns the named form.
func Lookup(name string) (Form, bool) {
	f, ok := forms[name]
	return f, ok
}

// Names returns the known form names, sorted.
func Names() []string {
	out := make([]string, 0, len(forms))
	for n := range forms {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// FieldErrors maps a field name to a message suitable for display.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// Validate trims the posted values for f's fields and checks them. Unknown
// keys are dropped. A nil FieldErrors means the submission is acceptable.
func (f Form) Validate(posted url.Values) (map[string]string, FieldErrors) {
	values := make(map[string]string, len(f.Fields))
	errs := FieldErrors{}
	for _, fld := range f.Fields {
		v := strings.TrimSpace(posted.Get(fld.Name))
		values[fld.Name] = v
		switch {
		case v == "" && fld.Required:
			errs[fld.Name] = fld.Label + " is required."
		case v == "":
		case fld.MaxLen > 0 && utf8.RuneCountInString(v) > fld.MaxLen:
			errs[fld.Name] = fld.Label + " is too long."
		case fld.Kind == KindEmail && !validEmail(v):
			errs[fld.Name] = "Enter a valid email address."
		case fld.Kind == KindURL && !validURL(v):
			errs[fld.Name] = "Enter a full web address starting with http:// or https://."
		}
	}
	if len(errs) == 0 {
		return values, nil
	}
	return values, errs
}

func validEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	return err == nil && addr.Address == v
}

func validURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
