package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, md string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, md); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	return buf.String()
}

func TestRenderMarkdownCodeBlockWithLanguage(t *testing.T) {
	got := render(t, "```go\nif a < b {\n}\n```")
	for _, want := range []string{
		`<div class="code-block-wrapper">`,
		`<span class="code-lang code-lang-go">go</span>`,
		`<code class="language-go">`,
		"if a &lt; b {\n}\n",
		"</code></pre></div>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderMarkdownCodeBlockWithoutLanguage(t *testing.T) {
	got := render(t, "```\ncode here\n```")
	if !strings.Contains(got, `<pre class="code-block"><code>code here`) {
		t.Errorf("unexpected output: %q", got)
	}
	if strings.Contains(got, "code-lang") {
		t.Errorf("no language badge expected: %q", got)
	}
}

func TestRenderMarkdownHeadings(t *testing.T) {
	got := render(t, "# Two Sum\n\n## Approach\n\n### Complexity")
	for _, want := range []string{
		`<h1 id="two-sum">Two Sum</h1>`,
		`<h2 id="approach">Approach</h2>`,
		`<h3 id="complexity">Complexity</h3>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderMarkdownGFM(t *testing.T) {
	got := render(t, "| n | time |\n|---|---|\n| 10 | 1ms |\n\n- [x] done\n\n~~old~~")
	for _, want := range []string{"<table>", "<td>10</td>", `type="checkbox"`, "<del>old</del>"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderMarkdownOmitsRawHTMLAndUnsafeLinks(t *testing.T) {
	got := render(t, "<script>alert(1)</script>\n\n[x](javascript:alert(1))")
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html leaked: %q", got)
	}
	if strings.Contains(got, "javascript:") {
		t.Errorf("unsafe link leaked: %q", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("**bold**").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<strong>bold</strong>") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestPlainText(t *testing.T) {
	md := "## Approach\n\nUse a **hash map**\nto find pairs.\n\n```go\nsecret()\n```\n\nDone."
	got := PlainText(md, 0)
	want := "Approach Use a hash map to find pairs. Done."
	if got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
	if got := PlainText(md, 8); got != "Approach…" {
		t.Errorf("PlainText(limit 8) = %q", got)
	}
}
