package solution

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// ErrMalformed marks a stored file whose frontmatter cannot be turned into
// a Solution.
var ErrMalformed = errors.New("solution: malformed file")

const delimiter = "---"

var yamlFormat = frontmatter.NewFormat(delimiter, delimiter, yaml.Unmarshal)

// header is the on-disk metadata block. Field order is the write order.
type header struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Difficulty string   `yaml:"difficulty"`
	Excerpt    string   `yaml:"excerpt"`
	Tags       []string `yaml:"tags"`
}

// Marshal renders s as a frontmatter document followed by its body.
func Marshal(s Solution) ([]byte, error) {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	meta, err := yaml.Marshal(header{
		Title:      s.Title,
		Date:       s.Date,
		Difficulty: string(s.Difficulty),
		Excerpt:    s.Excerpt,
		Tags:       tags,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(meta) + len(s.Content) + 16)
	buf.WriteString(delimiter + "\n")
	buf.Write(meta)
	buf.WriteString(delimiter + "\n\n")
	buf.WriteString(s.Content)
	return buf.Bytes(), nil
}

// Parse decodes a stored file. The slug comes from the file name, not the
// file body.
func Parse(slug string, data []byte) (Solution, error) {
	trimmed := bytes.TrimPrefix(data, []byte("\ufeff"))
	if !bytes.HasPrefix(trimmed, []byte(delimiter+"\n")) && !bytes.HasPrefix(trimmed, []byte(delimiter+"\r\n")) {
		return Solution{}, fmt.Errorf("%w: %s: missing frontmatter", ErrMalformed, slug)
	}

	var h header
	body, err := frontmatter.Parse(bytes.NewReader(trimmed), &h, yamlFormat)
	if err != nil {
		return Solution{}, fmt.Errorf("%w: %s: %v", ErrMalformed, slug, err)
	}

	var missing []string
	if strings.TrimSpace(h.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(h.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(h.Difficulty) == "" {
		missing = append(missing, "difficulty")
	}
	if len(missing) > 0 {
		return Solution{}, fmt.Errorf("%w: %s: missing %s", ErrMalformed, slug, strings.Join(missing, ", "))
	}
	difficulty := Difficulty(strings.ToLower(strings.TrimSpace(h.Difficulty)))
	if !difficulty.Valid() {
		return Solution{}, fmt.Errorf("%w: %s: unknown difficulty %q", ErrMalformed, slug, h.Difficulty)
	}

	content := string(body)
	if strings.HasPrefix(content, "\r\n") {
		content = content[2:]
	} else if strings.HasPrefix(content, "\n") {
		content = content[1:]
	}

	return Solution{
		Slug:       slug,
		Title:      h.Title,
		Date:       h.Date,
		Difficulty: difficulty,
		Excerpt:    h.Excerpt,
		Content:    content,
		Tags:       h.Tags,
	}, nil
}
