// Package solution maps solution write-ups to markdown files with YAML
// frontmatter and orchestrates their storage through a content.Backend.
package solution

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
)

// Difficulty is the problem difficulty of a solution.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// DateLayout is the stored date format: UTC with millisecond precision.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Difficulties lists the accepted values in display order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Label returns the display label for d.
func (d Difficulty) Label() string {
	switch d {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	}
	return string(d)
}

// Color returns the badge color for d.
func (d Difficulty) Color() string {
	switch d {
	case Easy:
		return "#4ade80"
	case Medium:
		return "#fb923c"
	case Hard:
		return "#f87171"
	}
	return "#9ca3af"
}

// Solution is one stored write-up. SHA is the content hash observed when
// the solution was read; it is never written into the file.
type Solution struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Date       string     `json:"date"`
	Difficulty Difficulty `json:"difficulty"`
	Excerpt    string     `json:"excerpt"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags"`
	SHA        string     `json:"sha,omitempty"`
}

// Input is the admin form payload for create and update.
type Input struct {
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Difficulty Difficulty `json:"difficulty"`
	Excerpt    string     `json:"excerpt,omitempty"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags,omitempty"`
}

// Tag is a predefined tag identifier and its display label.
type Tag struct {
	ID    string
	Label string
}

// DefaultTags is the built-in tag catalog.
var DefaultTags = []Tag{
	{ID: "array", Label: "Array"},
	{ID: "string", Label: "String"},
	{ID: "hash-table", Label: "Hash Table"},
	{ID: "linked-list", Label: "Linked List"},
	{ID: "stack", Label: "Stack"},
	{ID: "queue", Label: "Queue"},
	{ID: "tree", Label: "Tree"},
	{ID: "graph", Label: "Graph"},
	{ID: "binary-search", Label: "Binary Search"},
	{ID: "dynamic-programming", Label: "Dynamic Programming"},
	{ID: "greedy", Label: "Greedy"},
	{ID: "backtracking", Label: "Backtracking"},
	{ID: "depth-first-search", Label: "Depth-First Search"},
	{ID: "breadth-first-search", Label: "Breadth-First Search"},
	{ID: "sorting", Label: "Sorting"},
	{ID: "two-pointers", Label: "Two Pointers"},
	{ID: "recursion", Label: "Recursion"},
	{ID: "sliding-window", Label: "Sliding Window"},
	{ID: "bit-manipulation", Label: "Bit Manipulation"},
	{ID: "math", Label: "Math"},
}

// TagLabel returns the label for id from catalog, or id itself.
func TagLabel(catalog []Tag, id string) string {
	for _, t := range catalog {
		if t.ID == id {
			return t.Label
		}
	}
	return id
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Normalize trims whitespace, lowercases tags, and drops duplicate or empty
// tags while keeping their order.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Difficulty = Difficulty(strings.ToLower(strings.TrimSpace(string(in.Difficulty))))
	seen := make(map[string]struct{}, len(in.Tags))
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	in.Tags = tags
	return in
}

// Validate checks the input against catalog. The returned error is a
// validation.Errors keyed by JSON field name.
func (in Input) Validate(catalog []Tag) error {
	known := make(map[string]struct{}, len(catalog))
	for _, t := range catalog {
		known[t.ID] = struct{}{}
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("title is required")),
		validation.Field(&in.Slug,
			validation.Required.Error("slug is required"),
			validation.Match(slugPattern).Error("slug may only contain lowercase letters, digits and hyphens"),
		),
		validation.Field(&in.Difficulty, validation.By(func(value any) error {
			d, _ := value.(Difficulty)
			if !d.Valid() {
				return validation.NewError("solution.difficulty_invalid", "difficulty must be easy, medium or hard")
			}
			return nil
		})),
		validation.Field(&in.Content, validation.By(func(value any) error {
			s, _ := value.(string)
			if strings.TrimSpace(s) == "" {
				return validation.NewError("solution.content_required", "content is required")
			}
			return nil
		})),
		validation.Field(&in.Tags, validation.Each(validation.By(func(value any) error {
			s, _ := value.(string)
			if _, ok := known[s]; !ok {
				return validation.NewError("solution.tag_unknown", "unknown tag "+s)
			}
			return nil
		}))),
	)
}

// SuggestSlug derives a slug from a title.
func SuggestSlug(title string) string {
	s, err := slug.Normalize(title)
	if err != nil {
		return ""
	}
	return s
}
