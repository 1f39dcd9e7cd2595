// Package views holds the default solnotes page components. They are plain
// templ components, so a site can replace any of them through
// solnotes.ViewFuncs.
package views

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/eringen/solnotes"
	"github.com/eringen/solnotes/solution"
)

// printer writes HTML fragments and keeps the first error.
type printer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (p *printer) raw(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) render(c templ.Component) {
	if p.err != nil {
		return
	}
	p.err = c.Render(p.ctx, p.w)
}

func component(fn func(p *printer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{ctx: ctx, w: w}
		fn(p)
		return p.err
	})
}

// New returns the default views.
func New() solnotes.ViewFuncs {
	return solnotes.ViewFuncs{
		Home:           Home,
		Solutions:      Solutions,
		Solution:       Solution,
		About:          About,
		Login:          Login,
		AdminDashboard: AdminDashboard,
		AdminForm:      AdminForm,
		AdminImages:    AdminImages,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

// TagClass returns the CSS classes for a tag pill.
func TagClass(active bool) string {
	if active {
		return "tag active"
	}
	return "tag"
}

func listURL(tag string, d solution.Difficulty) string {
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	}
	if d != "" {
		q.Set("difficulty", string(d))
	}
	if len(q) == 0 {
		return "/solutions/"
	}
	return "/solutions/?" + q.Encode()
}

func difficultyBadge(p *printer, d solution.Difficulty) {
	p.raw(`<span class="badge" style="background:`, d.Color(), `">`)
	p.text(d.Label())
	p.raw(`</span>`)
}

func tagPills(p *printer, catalog []solution.Tag, tags []string) {
	for _, t := range tags {
		p.raw(`<a class="tag" href="`, templ.EscapeString(listURL(t, "")), `">`)
		p.text(solution.TagLabel(catalog, t))
		p.raw(`</a>`)
	}
}

func solutionCard(p *printer, catalog []solution.Tag, s solution.Solution) {
	p.raw(`<article class="card"><h2><a href="`, solnotes.SolutionURL(s.Slug), `">`)
	p.text(s.Title)
	p.raw(`</a></h2><div class="meta"><time datetime="`, templ.EscapeString(s.Date), `">`)
	p.text(solnotes.DisplayDate(s))
	p.raw(`</time>`)
	difficultyBadge(p, s.Difficulty)
	tagPills(p, catalog, s.Tags)
	p.raw(`</div><p>`)
	p.text(solnotes.Summary(s))
	p.raw(`</p></article>`)
}

func csrfField(p *printer, token string) {
	p.raw(`<input type="hidden" name="_csrf" value="`, templ.EscapeString(token), `">`)
}

func noticeDialog(p *printer, n *solnotes.Notice) {
	if n == nil {
		return
	}
	p.raw(`<dialog class="notice `, templ.EscapeString(n.Kind), `"><p>`)
	p.text(n.Message)
	p.raw(`</p><form method="dialog"><button type="submit">OK</button></form></dialog>`)
}
