// Package view renders the blog's HTML pages.
//
// Every page is a base layout (templates/base.html) plus one file that
// defines its "content" block, the same composition model as Jinja's
// "extends". All templates are embedded in the binary and parsed once by New,
// before the server accepts any traffic.
//
// CLOSED SET OF VIEWS:
// The views are the package-level values below and nothing else. A View is
// parameterised by the data type its template expects, so
//
//	view.Index.With(view.IndexData{...})
//
// compiles and
//
//	view.Index.With(view.ErrorData{...})
//
// does not. There is no way to ask for a view by string at runtime.
package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sakif/markdown-blog/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// View names a page template whose data is of type T.
type View[T any] struct {
	name string
}

var (
	Index    = View[IndexData]{name: "index"}
	Signup   = View[AuthFormData]{name: "signup"}
	Login    = View[AuthFormData]{name: "login"}
	PostForm = View[PostFormData]{name: "post_form"}
	PostView = View[PostData]{name: "post_view"}
	Error    = View[ErrorData]{name: "error"}
)

// names lists every view New must load.
var names = []string{
	Index.name,
	Signup.name,
	Login.name,
	PostForm.name,
	PostView.name,
	Error.name,
}

type IndexData struct {
	Username string // empty when nobody is signed in
	Posts    []model.PostSummary
}

// AuthFormData backs both the signup and login forms.
// The password is never echoed back.
type AuthFormData struct {
	Errors   []string
	Username string
}

// PostFormData backs the create and edit forms. PostID is zero on create.
type PostFormData struct {
	Errors  []string
	PostID  int64
	Title   string
	Content string
}

type PostData struct {
	ID      int64
	Title   string
	Author  string
	Date    time.Time
	Content template.HTML // already sanitized
	CanEdit bool
}

type ErrorData struct {
	Message string
}

// Page is a view bound to its data, ready to render.
type Page struct {
	view string
	data any
}

func (v View[T]) With(data T) Page {
	return Page{view: v.name, data: data}
}

func (v View[T]) String() string {
	return v.name
}

// ErrorPage is the error view showing message, e.g. "404 Not Found".
func ErrorPage(message string) Page {
	return Error.With(ErrorData{Message: message})
}

// layout is what base.html executes against.
type layout struct {
	SignedIn bool
	Data     any
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.UTC().Format("Jan 2, 2006 15:04 UTC")
	},
	"isodate": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}

// Renderer holds one parsed template set per view.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every view. A missing or malformed template is a startup error.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}

	for _, name := range names {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("view: parsing %s: %w", name, err)
		}
		if tmpl.Lookup("content") == nil {
			return nil, fmt.Errorf("view: %s does not define a content block", name)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Render writes p inside the base layout. signedIn switches the navigation
// between the log in/sign up links and the new post/log out controls.
//
// The page is rendered into a buffer first so a template error never leaves
// half a page on the wire.
func (r *Renderer) Render(w io.Writer, p Page, signedIn bool) error {
	tmpl, ok := r.pages[p.view]
	if !ok {
		return errors.New("view: render called with an unbound page")
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", layout{SignedIn: signedIn, Data: p.data}); err != nil {
		return fmt.Errorf("view: rendering %s: %w", p.view, err)
	}

	_, err := buf.WriteTo(w)
	return err
}
