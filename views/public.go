package views

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/solnotes"
	"github.com/eringen/solnotes/markdown"
	"github.com/eringen/solnotes/solution"
)

// Home lists the latest solutions.
func Home(m solnotes.HomePage) templ.Component {
	return layout(m.Page, layoutOptions{jsonLD: solnotes.WebsiteJsonLD(m.Site)}, func(p *printer) {
		p.raw(`<section><h1>`)
		p.text(m.Site.Name)
		p.raw(`</h1>`)
		if m.Site.Description != "" {
			p.raw(`<p class="lead">`)
			p.text(m.Site.Description)
			p.raw(`</p>`)
		}
		p.raw(`</section>`)

		if len(m.Tags) > 0 {
			p.raw(`<div class="filters">`)
			for _, t := range m.Tags {
				p.raw(`<a class="tag" href="`, templ.EscapeString(listURL(t.ID, "")), `">`)
				p.text(t.Label)
				p.raw(`</a>`)
			}
			p.raw(`</div>`)
		}

		p.raw(`<section><h2>Latest solutions</h2>`)
		if len(m.Latest) == 0 {
			p.raw(`<p class="meta">No solutions yet.</p>`)
		}
		for _, s := range m.Latest {
			solutionCard(p, m.Tags, s)
		}
		if m.Total > len(m.Latest) {
			p.raw(`<p><a href="/solutions/">View all `, strconv.Itoa(m.Total), ` solutions</a></p>`)
		}
		p.raw(`</section>`)
	})
}

// Solutions lists every solution with tag and difficulty filters.
func Solutions(m solnotes.ListPage) templ.Component {
	return layout(m.Page, layoutOptions{}, func(p *printer) {
		p.raw(`<h1>Solutions</h1><div class="filters">`)
		p.raw(`<a class="`, TagClass(m.ActiveDifficulty == ""), `" href="`, templ.EscapeString(listURL(m.ActiveTag, "")), `">All</a>`)
		for _, d := range solution.Difficulties {
			p.raw(`<a class="`, TagClass(m.ActiveDifficulty == d), `" href="`, templ.EscapeString(listURL(m.ActiveTag, d)), `">`)
			p.text(d.Label())
			p.raw(`</a>`)
		}
		p.raw(`</div><div class="filters">`)
		p.raw(`<a class="`, TagClass(m.ActiveTag == ""), `" href="`, templ.EscapeString(listURL("", m.ActiveDifficulty)), `">All tags</a>`)
		for _, t := range m.Tags {
			p.raw(`<a class="`, TagClass(m.ActiveTag == t.ID), `" href="`, templ.EscapeString(listURL(t.ID, m.ActiveDifficulty)), `">`)
			p.text(t.Label)
			p.raw(`</a>`)
		}
		p.raw(`</div>`)

		if len(m.Solutions) == 0 {
			p.raw(`<p class="meta">No solutions match these filters.</p>`)
		}
		for _, s := range m.Solutions {
			solutionCard(p, m.Tags, s)
		}
	})
}

// Solution renders one write-up.
func Solution(m solnotes.SolutionPage) templ.Component {
	s := m.Solution
	return layout(m.Page, layoutOptions{jsonLD: solnotes.SolutionJsonLD(s, m.Site)}, func(p *printer) {
		p.raw(`<article><h1>`)
		p.text(s.Title)
		p.raw(`</h1><div class="meta"><time datetime="`, templ.EscapeString(s.Date), `">`)
		p.text(solnotes.DisplayDate(s))
		p.raw(`</time>`)
		difficultyBadge(p, s.Difficulty)
		tagPills(p, m.Tags, s.Tags)
		if m.User != "" {
			p.raw(`<a href="/admin/`, url.PathEscape(s.Slug), `/edit/">Edit</a>`)
		}
		p.raw(`</div><div class="prose">`)
		p.render(markdown.Markdown(s.Content))
		p.raw(`</div></article>`)

		if len(m.Related) > 0 {
			p.raw(`<section><h2>Related solutions</h2>`)
			for _, r := range m.Related {
				solutionCard(p, m.Tags, r)
			}
			p.raw(`</section>`)
		}
	})
}

// About shows the author bio.
func About(m solnotes.Page) templ.Component {
	return layout(m, layoutOptions{}, func(p *printer) {
		p.raw(`<h1>About</h1>`)
		if m.Site.Author != "" {
			p.raw(`<h2>`)
			p.text(m.Site.Author)
			p.raw(`</h2>`)
		}
		if m.Site.Bio != "" {
			p.raw(`<div class="prose">`)
			p.render(markdown.Markdown(m.Site.Bio))
			p.raw(`</div>`)
		} else {
			p.raw(`<p>`)
			p.text(m.Site.Description)
			p.raw(`</p>`)
		}
	})
}

// Login offers GitHub sign-in.
func Login(m solnotes.LoginPage) templ.Component {
	return layout(m.Page, layoutOptions{}, func(p *printer) {
		p.raw(`<h1>Sign in</h1>`)
		if m.Error != "" {
			p.raw(`<p class="field-error" role="alert">`)
			p.text(m.Error)
			p.raw(`</p>`)
		}
		if !m.Configured {
			p.raw(`<p class="meta">GitHub sign-in is not configured on this site.</p>`)
			return
		}
		p.raw(`<p><a class="button" href="/auth/login/">Sign in with GitHub</a></p>`)
	})
}

// NotFound is the 404 page.
func NotFound(m solnotes.Page) templ.Component {
	return layout(m, layoutOptions{}, func(p *printer) {
		p.raw(`<h1>Not found</h1><p>The page you are looking for does not exist. <a href="/solutions/">Browse all solutions</a>.</p>`)
	})
}

// ServerError is the 500 page.
func ServerError(m solnotes.Page) templ.Component {
	return layout(m, layoutOptions{}, func(p *printer) {
		p.raw(`<h1>Something went wrong</h1><p>Please try again in a moment.</p>`)
	})
}
