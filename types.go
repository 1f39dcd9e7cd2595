package solnotes

import (
	"github.com/eringen/solnotes/rebuild"
	"github.com/eringen/solnotes/solution"
)

// SiteInfo is the subset of SiteConfig templates need.
type SiteInfo struct {
	Name        string
	URL         string
	Description string
	Author      string
	Bio         string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Page is embedded in every page model.
type Page struct {
	Site      SiteInfo
	Meta      PageMeta
	User      string // signed-in admin, empty for visitors
	CSRFToken string
}

// Notice is the outcome shown in the admin confirmation dialog.
type Notice struct {
	Kind    string // "success", "warning" or "error"
	Message string
}

// Notice kinds.
const (
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// HomePage lists the latest solutions.
type HomePage struct {
	Page
	Latest []solution.Solution
	Total  int
	Tags   []solution.Tag
}

// ListPage lists every solution, optionally filtered.
type ListPage struct {
	Page
	Solutions        []solution.Solution
	Tags             []solution.Tag
	ActiveTag        string
	ActiveDifficulty solution.Difficulty
}

// SolutionPage shows a single solution.
type SolutionPage struct {
	Page
	Solution solution.Solution
	Related  []solution.Solution
	Tags     []solution.Tag
}

// LoginPage offers GitHub sign-in.
type LoginPage struct {
	Page
	Error      string
	Configured bool
}

// AdminDashboardPage lists solutions and recent rebuild jobs.
type AdminDashboardPage struct {
	Page
	Solutions []solution.Solution
	Jobs      []rebuild.Job
	Notice    *Notice
}

// AdminFormPage is the create/edit form.
type AdminFormPage struct {
	Page
	Input        solution.Input
	Editing      bool
	Tags         []solution.Tag
	Difficulties []solution.Difficulty
	Errors       map[string]string
	Notice       *Notice
}

// Image is an uploaded image kept in the content store.
type Image struct {
	Name string
	URL  string
	SHA  string
	Size int
}

// AdminImagesPage lists uploaded images.
type AdminImagesPage struct {
	Page
	Images []Image
	Notice *Notice
}
