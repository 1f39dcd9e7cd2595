package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/solnotes"
)

type layoutOptions struct {
	jsonLD string
	admin  bool
}

func layout(page solnotes.Page, opts layoutOptions, body func(p *printer)) templ.Component {
	return component(func(p *printer) {
		p.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(page.Meta.Title)
		p.raw(`</title><meta name="description" content="`, templ.EscapeString(page.Meta.Description), `">`)
		p.raw(`<link rel="canonical" href="`, templ.EscapeString(page.Meta.URL), `">`)
		p.raw(`<meta property="og:title" content="`, templ.EscapeString(page.Meta.Title), `">`)
		p.raw(`<meta property="og:description" content="`, templ.EscapeString(page.Meta.Description), `">`)
		p.raw(`<meta property="og:type" content="`, templ.EscapeString(page.Meta.OGType), `">`)
		p.raw(`<meta property="og:url" content="`, templ.EscapeString(page.Meta.URL), `">`)
		p.raw(`<link rel="alternate" type="application/rss+xml" title="`, templ.EscapeString(page.Site.Name), `" href="/feed.xml">`)
		p.raw(`<link rel="stylesheet" href="/public/solnotes.css">`)
		if opts.jsonLD != "" {
			p.raw(`<script type="application/ld+json">`, opts.jsonLD, `</script>`)
		}
		if opts.admin {
			p.raw(`<meta name="robots" content="noindex"><script src="/public/admin.js" defer></script>`)
		}
		p.raw(`</head><body>`)

		p.raw(`<header class="site-header"><div class="container"><nav><a class="brand" href="/">`)
		p.text(page.Site.Name)
		p.raw(`</a><a href="/solutions/">Solutions</a><a href="/about/">About</a>`)
		if page.User != "" {
			p.raw(`<a href="/admin/">Admin</a><form method="post" action="/auth/logout/">`)
			csrfField(p, page.CSRFToken)
			p.raw(`<button type="submit">Sign out `)
			p.text(page.User)
			p.raw(`</button></form>`)
		}
		p.raw(`</nav></div></header>`)

		p.raw(`<main class="container">`)
		body(p)
		p.raw(`</main>`)

		p.raw(`<footer class="site-footer"><div class="container">`)
		p.text(page.Site.Name)
		if page.Site.Author != "" {
			p.raw(` &middot; `)
			p.text(page.Site.Author)
		}
		p.raw(` &middot; <a href="/feed.xml">RSS</a></div></footer></body></html>`)
	})
}
