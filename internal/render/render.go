// Package render builds the dashboard page skeleton and turns an analysis
// result into replacement markup for the page's regions.
//
// All markup goes through html/template, so backend strings are escaped
// in context. Narrative text is the one exception: it is Markdown,
// converted with goldmark and sanitised with bluemonday.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/tensortrade/council-dashboard/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Update is the result of one transform: replacement markup for each
// region whose source field was present, and whether the download action
// is now enabled. Regions not in the map are left as they are.
type Update struct {
	Regions         map[Region]template.HTML `json:"regions"`
	DownloadEnabled bool                     `json:"download_enabled"`
}

// Renderer holds the parsed templates. It is safe for concurrent use.
type Renderer struct {
	tmpl     *template.Template
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// New parses the embedded templates and checks that every region has a
// renderer and exactly one slot in the skeleton.
func New() (*Renderer, error) {
	tmpl, err := template.New("page").Funcs(funcs(nil)).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	r := &Renderer{
		tmpl:     tmpl,
		markdown: goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func funcs(slots map[string]int) template.FuncMap {
	return template.FuncMap{
		"region": func(id string) (string, error) {
			if !known(id) {
				return "", fmt.Errorf("unknown region %q", id)
			}
			if slots != nil {
				slots[id]++
			}
			return id, nil
		},
	}
}

func (r *Renderer) validate() error {
	for _, reg := range Regions {
		if r.tmpl.Lookup(reg.template()) == nil {
			return fmt.Errorf("render: region %s has no renderer", reg)
		}
	}

	slots := make(map[string]int)
	probe, err := r.tmpl.Clone()
	if err != nil {
		return fmt.Errorf("render: clone templates: %w", err)
	}
	probe.Funcs(funcs(slots))
	if err := probe.ExecuteTemplate(io.Discard, "page.html.tmpl", PageData{}); err != nil {
		return fmt.Errorf("render: probe skeleton: %w", err)
	}
	for _, reg := range Regions {
		switch slots[string(reg)] {
		case 1:
		case 0:
			return fmt.Errorf("render: region %s has no slot in the skeleton", reg)
		default:
			return fmt.Errorf("render: region %s has %d slots in the skeleton", reg, slots[string(reg)])
		}
	}
	return nil
}

// Transform maps a result to region updates. It never fails on missing
// fields; an absent field simply produces no entry.
func (r *Renderer) Transform(res *model.AnalysisResult) (*Update, error) {
	u := &Update{Regions: make(map[Region]template.HTML)}
	if res == nil {
		return u, nil
	}

	set := func(reg Region, data any) error {
		html, err := r.region(reg, data)
		if err != nil {
			return err
		}
		u.Regions[reg] = html
		return nil
	}

	for reg, data := range views(res, r.narrative) {
		if err := set(reg, data); err != nil {
			return nil, err
		}
	}
	u.DownloadEnabled = res.HasCouncil()
	return u, nil
}

func (r *Renderer) region(reg Region, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, reg.template(), data); err != nil {
		return "", fmt.Errorf("render: region %s: %w", reg, err)
	}
	return template.HTML(strings.TrimSpace(buf.String())), nil
}

// narrative converts Markdown to sanitised HTML. Raw HTML in the source is
// dropped by goldmark and anything left is filtered by the UGC policy.
func (r *Renderer) narrative(text string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// Page writes the full skeleton.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.tmpl.ExecuteTemplate(w, "page.html.tmpl", data)
}
