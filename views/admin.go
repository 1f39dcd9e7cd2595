package views

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/solnotes"
)

var adminLayout = layoutOptions{admin: true}

// AdminDashboard lists solutions and recent rebuild jobs.
func AdminDashboard(m solnotes.AdminDashboardPage) templ.Component {
	return layout(m.Page, adminLayout, func(p *printer) {
		noticeDialog(p, m.Notice)
		p.raw(`<h1>Admin</h1><p><a class="button" href="/admin/new/">New solution</a> <a href="/admin/images/">Images</a></p>`)

		p.raw(`<table><thead><tr><th>Title</th><th>Difficulty</th><th>Date</th><th></th></tr></thead><tbody>`)
		for _, s := range m.Solutions {
			slug := url.PathEscape(s.Slug)
			p.raw(`<tr><td><a href="`, templ.EscapeString(solnotes.SolutionURL(s.Slug)), `">`)
			p.text(s.Title)
			p.raw(`</a></td><td>`)
			difficultyBadge(p, s.Difficulty)
			p.raw(`</td><td>`)
			p.text(solnotes.DisplayDate(s))
			p.raw(`</td><td><a href="/admin/`, slug, `/edit/">Edit</a> `)
			p.raw(`<form method="post" action="/admin/`, slug, `/delete/" data-confirm="Delete `, templ.EscapeString(s.Title), `?">`)
			csrfField(p, m.CSRFToken)
			p.raw(`<button class="danger" type="submit">Delete</button></form></td></tr>`)
		}
		p.raw(`</tbody></table>`)
		if len(m.Solutions) == 0 {
			p.raw(`<p class="meta">No solutions yet.</p>`)
		}

		p.raw(`<h2>Rebuilds</h2>`)
		if len(m.Jobs) == 0 {
			p.raw(`<p class="meta">No rebuilds recorded.</p>`)
			return
		}
		p.raw(`<table><thead><tr><th>When</th><th>Reason</th><th>Status</th></tr></thead><tbody>`)
		for _, j := range m.Jobs {
			p.raw(`<tr><td>`)
			p.text(j.CreatedAt.Format("2006-01-02 15:04:05"))
			p.raw(`</td><td>`)
			p.text(j.Reason)
			p.raw(`</td><td class="status-`, templ.EscapeString(string(j.Status)), `">`)
			p.text(string(j.Status))
			if j.Error != "" {
				p.raw(`: `)
				p.text(j.Error)
			}
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)
	})
}

// AdminForm is the create and edit form.
func AdminForm(m solnotes.AdminFormPage) templ.Component {
	in := m.Input
	return layout(m.Page, adminLayout, func(p *printer) {
		noticeDialog(p, m.Notice)
		if m.Editing {
			p.raw(`<h1>Edit solution</h1>`)
		} else {
			p.raw(`<h1>New solution</h1>`)
		}
		p.raw(`<form method="post" action="/admin/save/">`)
		csrfField(p, m.CSRFToken)
		p.raw(`<input type="hidden" name="editing" value="`, strconv.FormatBool(m.Editing), `">`)

		p.raw(`<label for="title">Title</label><input type="text" id="title" name="title" required value="`, templ.EscapeString(in.Title), `">`)
		fieldError(p, m.Errors, "title")

		p.raw(`<label for="slug">Slug</label>`)
		if m.Editing {
			p.raw(`<input type="text" id="slug" value="`, templ.EscapeString(in.Slug), `" disabled>`)
			p.raw(`<input type="hidden" name="slug" value="`, templ.EscapeString(in.Slug), `">`)
		} else {
			p.raw(`<input type="text" id="slug" name="slug" data-suggest pattern="[a-z0-9-]+" value="`, templ.EscapeString(in.Slug), `">`)
		}
		fieldError(p, m.Errors, "slug")

		p.raw(`<label for="difficulty">Difficulty</label><select id="difficulty" name="difficulty">`)
		for _, d := range m.Difficulties {
			selected := ""
			if d == in.Difficulty {
				selected = " selected"
			}
			p.raw(`<option value="`, string(d), `"`, selected, `>`)
			p.text(d.Label())
			p.raw(`</option>`)
		}
		p.raw(`</select>`)
		fieldError(p, m.Errors, "difficulty")

		p.raw(`<label for="excerpt">Excerpt</label><input type="text" id="excerpt" name="excerpt" value="`, templ.EscapeString(in.Excerpt), `">`)

		p.raw(`<label>Tags</label><div class="tag-grid">`)
		for _, t := range m.Tags {
			checked := ""
			if hasTag(in.Tags, t.ID) {
				checked = " checked"
			}
			p.raw(`<label><input type="checkbox" name="tags" value="`, templ.EscapeString(t.ID), `"`, checked, `> `)
			p.text(t.Label)
			p.raw(`</label>`)
		}
		p.raw(`</div>`)
		fieldError(p, m.Errors, "tags")

		p.raw(`<label for="content">Content (markdown)</label><textarea id="content" name="content" required>`)
		p.text(in.Content)
		p.raw(`</textarea>`)
		fieldError(p, m.Errors, "content")

		p.raw(`<p><button type="submit">Save</button> <a href="/admin/">Cancel</a></p></form>`)
	})
}

// AdminImages lists uploaded images with an upload form.
func AdminImages(m solnotes.AdminImagesPage) templ.Component {
	return layout(m.Page, adminLayout, func(p *printer) {
		noticeDialog(p, m.Notice)
		p.raw(`<h1>Images</h1><form method="post" action="/admin/images/upload/" enctype="multipart/form-data">`)
		csrfField(p, m.CSRFToken)
		p.raw(`<input type="file" name="image" accept="image/*" required> <button type="submit">Upload</button></form>`)

		if len(m.Images) == 0 {
			p.raw(`<p class="meta">No images uploaded.</p>`)
			return
		}
		p.raw(`<table><thead><tr><th>Image</th><th>Markdown</th><th></th></tr></thead><tbody>`)
		for _, img := range m.Images {
			p.raw(`<tr><td><a href="`, templ.EscapeString(img.URL), `">`)
			p.text(img.Name)
			p.raw(`</a></td><td><code>![](`)
			p.text(img.URL)
			p.raw(`)</code></td><td><form method="post" action="/admin/images/`, templ.EscapeString(img.Name), `/delete/" data-confirm="Delete `, templ.EscapeString(img.Name), `?">`)
			csrfField(p, m.CSRFToken)
			p.raw(`<button class="danger" type="submit">Delete</button></form></td></tr>`)
		}
		p.raw(`</tbody></table>`)
	})
}

func fieldError(p *printer, errs map[string]string, field string) {
	if msg, ok := errs[field]; ok {
		p.raw(`<p class="field-error">`)
		p.text(msg)
		p.raw(`</p>`)
	}
}

func hasTag(tags []string, id string) bool {
	for _, t := range tags {
		if t == id {
			return true
		}
	}
	return false
}
