package searchui

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/sirupsen/logrus"

	"addictiontube/internal/logger"
	"addictiontube/internal/search"
)

// Categories offered by the search form, in display order.
var Categories = []string{"song", "poem", "story"}

// Searcher returns the body the unified search proxy would send for req.
type Searcher func(ctx context.Context, req search.Request) ([]byte, error)

// Page serves the search form. When the form is submitted without script
// (q present in the URL) it runs the search and renders the results itself.
type Page struct {
	tmpl   *template.Template
	search Searcher
	log    *logrus.Logger
}

type pageData struct {
	Query      string
	Category   string
	Categories []string
	Results    template.HTML
}

func NewPage(templates fs.FS, s Searcher, log *logrus.Logger) (*Page, error) {
	tmpl, err := template.ParseFS(templates, "unified-search.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Page{tmpl: tmpl, search: s, log: log}, nil
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	data := pageData{
		Query:      v.Get("q"),
		Category:   v.Get("category"),
		Categories: Categories,
	}
	if data.Category == "" {
		data.Category = Categories[0]
	}

	if v.Has("q") {
		m := NewMachine()
		// The select only shows a default; a missing category still reaches
		// the proxy guard.
		if req, ok := m.Submit(data.Query, v.Get("category")); ok {
			body, err := p.search(r.Context(), req)
			if err != nil {
				p.log.WithError(err).WithField("request_id", logger.IDFrom(r.Context())).Warn("page.search.failed")
				m.Fail(err)
			} else {
				m.Receive(body)
			}
		}
		results, err := RenderHTML(m.View())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Results = results
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		p.log.WithError(err).Error("page.render.failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
