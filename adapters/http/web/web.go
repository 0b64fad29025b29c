package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates static
var assets embed.FS

// Pages are rendered by name through gin's c.HTML. Each one is parsed on
// top of its own copy of layout.html.
var Pages = []string{
	"login",
	"register",
	"otp_verify",
	"forgot_password",
	"reset_password",
	"redirect",
	"dashboard",
	"editor",
	"public",
	"loading",
	"error",
}

var funcs = template.FuncMap{
	"mailto": func(email string) string { return "mailto:" + email },
	"seconds": func(d time.Duration) int {
		// meta refresh only understands whole seconds
		return int(math.Ceil(d.Seconds()))
	},
	"millis": func(d time.Duration) int64 { return d.Milliseconds() },
}

// Renderer implements gin's render.HTMLRender over the embedded templates.
type Renderer struct {
	templates map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func NewRenderer() (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(assets, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(assets, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		t = r.templates["error"]
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Static is the tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
