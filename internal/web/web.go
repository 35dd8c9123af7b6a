package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed pages/*.html
var files embed.FS

const (
	PageHome           = "home.html"
	PageSignIn         = "sign_in.html"
	PageDashboard      = "dashboard.html"
	PageAdminDashboard = "admin_dashboard.html"
	PageError          = "error.html"
)

type PageData struct {
	Title     string
	SignInURL string
	Quota     int
}

type Pages struct {
	pages map[string]*template.Template
}

// Load parses every page together with the shared layout.
func Load() (*Pages, error) {
	p := &Pages{pages: map[string]*template.Template{}}
	for _, name := range []string{PageHome, PageSignIn, PageDashboard, PageAdminDashboard, PageError} {
		t, err := template.ParseFS(files, "pages/layout.html", "pages/"+name)
		if err != nil {
			return nil, err
		}
		p.pages[name] = t
	}
	return p, nil
}

func (p *Pages) Render(name string, data PageData) ([]byte, error) {
	t, ok := p.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
