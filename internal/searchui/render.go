package searchui

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Backend titles and descriptions may carry markup from the source
// material; only their text is shown.
var strict = bluemonday.StrictPolicy()

var resultsTmpl = template.Must(template.New("results").Parse(
	`{{if .Message}}<p>{{.Message}}</p>{{else if not .Items}}<p>` + MsgNoResults + `</p>{{else}}{{range .Items}}
<div class="result-item">
  <h3>{{.Title}}</h3>
  <p>{{.Description}}</p>
  <small>Score: {{.Score}} | Type: {{.CategoryID}}</small>
</div>{{end}}
{{end}}`))

type item struct {
	Title       string
	Description string
	Score       string
	CategoryID  string
}

type fragment struct {
	Message string
	Items   []item
}

// PlainText strips markup from s and unescapes entities.
func PlainText(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}

// FormatScore renders a score with exactly four decimals.
func FormatScore(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

// CategoryLabel is the display label of a category id.
func CategoryLabel(c string) string {
	// Casers keep state and are not shared.
	return cases.Title(language.English).String(c)
}

func toFragment(v View) (fragment, bool) {
	switch v.State {
	case Idle:
		return fragment{}, false
	case Searching, ErrorShown:
		return fragment{Message: v.Message}, true
	}
	items := make([]item, 0, len(v.Results))
	for _, r := range v.Results {
		items = append(items, item{
			Title:       PlainText(r.Title),
			Description: PlainText(r.Description),
			Score:       FormatScore(r.Score),
			CategoryID:  r.CategoryID,
		})
	}
	return fragment{Items: items}, true
}

// RenderHTML renders the result area. Idle renders nothing.
func RenderHTML(v View) (template.HTML, error) {
	f, ok := toFragment(v)
	if !ok {
		return "", nil
	}
	var buf bytes.Buffer
	if err := resultsTmpl.Execute(&buf, f); err != nil {
		return "", fmt.Errorf("render results: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// RenderText renders the result area for a terminal.
func RenderText(v View) string {
	f, ok := toFragment(v)
	if !ok {
		return ""
	}
	if f.Message != "" {
		return f.Message + "\n"
	}
	if len(f.Items) == 0 {
		return MsgNoResults + "\n"
	}

	var b strings.Builder
	for i, it := range f.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", it.Title)
		if it.Description != "" {
			fmt.Fprintf(&b, "  %s\n", it.Description)
		}
		fmt.Fprintf(&b, "  Score: %s | Type: %s\n", it.Score, it.CategoryID)
	}
	return b.String()
}
