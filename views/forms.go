package views

import (
	"github.com/a-h/templ"

	"github.com/saltaire-guide/site/content"
	"github.com/saltaire-guide/site/formbridge"
)

// Form renders a public form posting to /forms/<name>/. Unknown form names
// render nothing; content validation rejects them at load time.
func Form(m content.Manifest, name string, st FormState) templ.Component {
	return component(func(h *htmlWriter) {
		f, ok := formbridge.Lookup(name)
		if !ok {
			return
		}
		h.open("section", "id", "form", "class", "form")
		h.el("h2", f.Title)
		if st.Sent {
			h.el("p", label(m, "sent"), "class", "notice notice-ok", "role", "status")
		}
		if st.Failed {
			h.el("p", label(m, "failed"), "class", "notice notice-error", "role", "alert")
		}
		action := st.Action
		if action == "" {
			action = "/forms/" + f.Name + "/"
		}
		h.open("form", "method", "post", "action", action, "novalidate", "novalidate")
		h.open("input", "type", "hidden", "name", "form", "value", f.Name)
		if st.CSRF != "" {
			h.open("input", "type", "hidden", "name", "_csrf", "value", st.CSRF)
		}
		h.open("div", "class", "hp", "aria-hidden", "true")
		h.el("label", "Leave this empty", "for", "f-"+formbridge.HoneypotField)
		h.open("input", "type", "text", "id", "f-"+formbridge.HoneypotField, "name", formbridge.HoneypotField,
			"tabindex", "-1", "autocomplete", "off")
		h.close("div")
		for _, fld := range f.Fields {
			field(h, fld, st.Values[fld.Name], st.Errors[fld.Name])
		}
		h.el("button", f.Submit, "type", "submit")
		h.close("form")
		h.close("section")
	})
}

func field(h *htmlWriter, fld formbridge.Field, value, errMsg string) {
	id := "f-" + fld.Name
	cls := "field"
	if errMsg != "" {
		cls += " field-error"
	}
	h.open("div", "class", cls)
	h.open("label", "for", id)
	h.text(fld.Label)
	if !fld.Required {
		h.el("span", " (optional)", "class", "optional")
	}
	h.close("label")

	attrs := []string{"id", id, "name", fld.Name}
	if fld.Help != "" {
		attrs = append(attrs, "aria-describedby", id+"-help")
	}
	if errMsg != "" {
		attrs = append(attrs, "aria-invalid", "true")
	}
	if fld.Required {
		attrs = append(attrs, "required", "")
	}
	switch fld.Kind {
	case formbridge.KindTextarea:
		h.open("textarea", append(attrs, "rows", "6")...)
		h.text(value)
		h.close("textarea")
	default:
		h.open("input", append(attrs, "type", fld.Kind, "value", value)...)
	}
	if fld.Help != "" {
		h.el("p", fld.Help, "id", id+"-help", "class", "help")
	}
	if errMsg != "" {
		h.el("p", errMsg, "class", "error", "role", "alert")
	}
	h.close("div")
}
