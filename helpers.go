package solnotes

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/solnotes/markdown"
	"github.com/eringen/solnotes/solution"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	return solution.SuggestSlug(s)
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// SolutionURL returns the public path of a solution.
func SolutionURL(slug string) string {
	return "/solutions/" + url.PathEscape(slug) + "/"
}

// FilterRelated returns solutions that share at least one tag with current,
// capped at limit when limit > 0.
func FilterRelated(current solution.Solution, all []solution.Solution, limit int) []solution.Solution {
	tagSet := make(map[string]struct{}, len(current.Tags))
	for _, t := range current.Tags {
		tagSet[t] = struct{}{}
	}
	var related []solution.Solution
	for _, s := range all {
		if s.Slug == current.Slug {
			continue
		}
		for _, t := range s.Tags {
			if _, ok := tagSet[t]; ok {
				related = append(related, s)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

// FilterByTag keeps solutions carrying tag. An empty tag keeps everything.
func FilterByTag(all []solution.Solution, tag string) []solution.Solution {
	if tag == "" {
		return all
	}
	var out []solution.Solution
	for _, s := range all {
		for _, t := range s.Tags {
			if t == tag {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// FilterByDifficulty keeps solutions of difficulty d. An empty d keeps
// everything.
func FilterByDifficulty(all []solution.Solution, d solution.Difficulty) []solution.Solution {
	if d == "" {
		return all
	}
	var out []solution.Solution
	for _, s := range all {
		if s.Difficulty == d {
			out = append(out, s)
		}
	}
	return out
}

// UsedTags returns the catalog entries that at least one solution carries.
func UsedTags(catalog []solution.Tag, all []solution.Solution) []solution.Tag {
	used := make(map[string]struct{})
	for _, s := range all {
		for _, t := range s.Tags {
			used[t] = struct{}{}
		}
	}
	var out []solution.Tag
	for _, t := range catalog {
		if _, ok := used[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Summary returns the excerpt, or a plain-text prefix of the content.
func Summary(s solution.Solution) string {
	if s.Excerpt != "" {
		return s.Excerpt
	}
	return markdown.PlainText(s.Content, 160)
}

// DisplayDate formats a stored date for humans.
func DisplayDate(s solution.Solution) string {
	t := s.Time()
	if t.IsZero() {
		return s.Date
	}
	return t.Format("Jan 2, 2006")
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site SiteInfo) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      BuildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// SolutionJsonLD returns a JSON-LD string for a TechArticle schema.
func SolutionJsonLD(s solution.Solution, site SiteInfo) string {
	u := BuildURL(site.URL, "solutions", s.Slug)
	data := map[string]interface{}{
		"@context":         "https://schema.org",
		"@type":            "TechArticle",
		"headline":         s.Title,
		"description":      Summary(s),
		"datePublished":    s.Date,
		"url":              u,
		"proficiencyLevel": s.Difficulty.Label(),
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   u,
		},
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	if len(s.Tags) > 0 {
		data["keywords"] = strings.Join(s.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
