// Package web holds the public HTML pages of the blog.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/personal-blog-api/internal/models"
)

//go:embed templates/*.html
var files embed.FS

// Page names accepted by Templates.Render
const (
	PageHome       = "home.html"
	PageList       = "list.html"
	PageDetail     = "detail.html"
	PageNewsletter = "newsletter.html"
	PageNotFound   = "notfound.html"
)

// DateLayout is how publish dates are shown, e.g. "January 2, 2006"
const DateLayout = "January 2, 2006"

// HomeData feeds the home page
type HomeData struct {
	Title    string
	Featured []*models.Post
	Latest   []*models.Post
}

// ListData feeds the post list
type ListData struct {
	Title string
	Posts []*models.Post
}

// DetailData feeds a single post page. Body is the rendered article.
type DetailData struct {
	Title string
	Post  *models.Post
	Body  template.HTML
}

// NewsletterData feeds the signup form and its outcome
type NewsletterData struct {
	Title   string
	Email   string
	Message string
	Failed  bool
}

// NotFoundData feeds the missing post page
type NotFoundData struct {
	Title string
}

// Templates is the parsed page set, one template per page over the shared base
type Templates struct {
	pages map[string]*template.Template
}

// FormatDate renders t in DateLayout
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Load parses every page template
func Load() (*Templates, error) {
	funcs := template.FuncMap{
		"formatDate": FormatDate,
		"join": strings.Join,
		"year": func() int { return time.Now().Year() },
	}

	pages := []string{PageHome, PageList, PageDetail, PageNewsletter, PageNotFound}
	t := &Templates{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New("").Funcs(funcs).ParseFS(files, "templates/base.html", "templates/card.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", page, err)
		}
		t.pages[page] = tmpl
	}
	return t, nil
}

// MustLoad is Load for program start-up
func MustLoad() *Templates {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes page with data into w
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
