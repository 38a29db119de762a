package formatter

import (
	"html/template"
	"strings"
)

// Tones map to stylesheet classes; the templates never emit inline colors.
const (
	toneGood   = "good"
	toneWarn   = "warn"
	toneBad    = "bad"
	toneAccent = "accent"
)

// field is one labelled value inside a section.
type field struct {
	Label string
	Value string
	Note  string
	Tone  string
	Href  template.URL
}

type meter struct {
	Percent int
	Tone    string
}

var sectionTemplates = template.Must(template.New("sections").Parse(`
{{- define "rows" -}}
<div class="pi-rows">{{range .}}<div class="pi-row"><span class="pi-label">{{.Label}}</span>
{{- if .Href}}<a class="pi-value pi-link" href="{{.Href}}">{{.Value}}</a>
{{- else}}<span class="pi-value{{if .Tone}} pi-tone-{{.Tone}}{{end}}">{{.Value}}</span>{{end}}</div>{{end}}</div>
{{- end -}}
{{- define "grid" -}}
<div class="pi-grid">{{range .}}<div class="pi-cell"><div class="pi-label">{{.Label}}</div><div class="pi-value{{if .Tone}} pi-tone-{{.Tone}}{{end}}">{{.Value}}</div>
{{- if .Note}}<div class="pi-note">{{.Note}}</div>{{end}}</div>{{end}}</div>
{{- end -}}
{{- define "chips" -}}
<div class="pi-chips">{{range .}}<span class="pi-chip">{{.}}</span>{{end}}</div>
{{- end -}}
{{- define "list" -}}
<ul class="pi-list">{{range .}}<li class="pi-list-item"><span class="pi-label">{{.Label}}</span><span class="pi-value">{{.Value}}</span></li>{{end}}</ul>
{{- end -}}
{{- define "meter" -}}
<div class="pi-meter"><div class="pi-meter-fill{{if .Tone}} pi-tone-{{.Tone}}{{end}}" style="width: {{.Percent}}%"></div></div>
{{- end -}}
{{- define "lead" -}}
<div class="pi-lead"><div class="pi-lead-title">{{.Label}}</div>{{if .Value}}<div class="pi-lead-value">{{.Value}}</div>{{end}}{{if .Note}}<div class="pi-note">{{.Note}}</div>{{end}}</div>
{{- end -}}
`))

func render(name string, data interface{}) template.HTML {
	var b strings.Builder
	if err := sectionTemplates.ExecuteTemplate(&b, name, data); err != nil {
		return ""
	}
	return template.HTML(b.String())
}

func rows(fields ...field) template.HTML { return render("rows", fields) }
func grid(fields ...field) template.HTML { return render("grid", fields) }
func chips(items []string) template.HTML { return render("chips", items) }
func list(fields []field) template.HTML  { return render("list", fields) }
func lead(f field) template.HTML         { return render("lead", f) }
func meterBar(m meter) template.HTML     { return render("meter", m) }

func join(parts ...template.HTML) template.HTML {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(string(p))
	}
	return template.HTML(b.String())
}

// telLink renders a phone field linking to tel: with digits only.
func telLink(label, phone string) field {
	f := field{Label: label, Value: orPlaceholder(phone)}
	if digits := digitsOnly(phone); digits != "" {
		f.Href = template.URL("tel:" + digits)
	}
	return f
}

func section(title string, content template.HTML) Section {
	return Section{Title: title, Content: content}
}
