package solnotes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eringen/solnotes/content"
	"github.com/eringen/solnotes/solution"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"http://example.com", nil, "http://example.com"},
		{"http://example.com", []string{"solutions", "two-sum"}, "http://example.com/solutions/two-sum/"},
		{"http://example.com/notes", []string{"about"}, "http://example.com/notes/about/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func sample() []solution.Solution {
	return []solution.Solution{
		{Slug: "two-sum", Difficulty: solution.Easy, Tags: []string{"array", "hash-table"}},
		{Slug: "three-sum", Difficulty: solution.Medium, Tags: []string{"array", "two-pointers"}},
		{Slug: "lru-cache", Difficulty: solution.Medium, Tags: []string{"hash-table", "linked-list"}},
		{Slug: "n-queens", Difficulty: solution.Hard, Tags: []string{"backtracking"}},
	}
}

func slugs(in []solution.Solution) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, s.Slug)
	}
	return out
}

func TestFilters(t *testing.T) {
	all := sample()

	if got := slugs(FilterByTag(all, "hash-table")); !reflect.DeepEqual(got, []string{"two-sum", "lru-cache"}) {
		t.Errorf("FilterByTag = %v", got)
	}
	if got := FilterByTag(all, ""); len(got) != len(all) {
		t.Errorf("empty tag filtered to %d", len(got))
	}
	if got := slugs(FilterByDifficulty(all, solution.Medium)); !reflect.DeepEqual(got, []string{"three-sum", "lru-cache"}) {
		t.Errorf("FilterByDifficulty = %v", got)
	}
	if got := slugs(FilterRelated(all[0], all, 0)); !reflect.DeepEqual(got, []string{"three-sum", "lru-cache"}) {
		t.Errorf("FilterRelated = %v", got)
	}
	if got := FilterRelated(all[0], all, 1); len(got) != 1 {
		t.Errorf("FilterRelated limit = %d", len(got))
	}
	if got := FilterRelated(all[3], all, 0); len(got) != 0 {
		t.Errorf("FilterRelated without shared tags = %v", slugs(got))
	}
}

func TestUsedTagsKeepsCatalogOrder(t *testing.T) {
	got := UsedTags(solution.DefaultTags, sample())
	ids := make([]string, 0, len(got))
	for _, tag := range got {
		ids = append(ids, tag.ID)
	}
	want := []string{"array", "hash-table", "linked-list", "backtracking", "two-pointers"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("UsedTags = %v, want %v", ids, want)
	}
}

func TestSummaryAndDisplayDate(t *testing.T) {
	s := solution.Solution{Date: "2026-01-02T03:04:05Z", Content: "# Heading\n\nSome **bold** text."}
	if got := Summary(s); got != "Heading Some bold text." {
		t.Errorf("Summary = %q", got)
	}
	s.Excerpt = "Short."
	if got := Summary(s); got != "Short." {
		t.Errorf("Summary with excerpt = %q", got)
	}
	if got := DisplayDate(s); got != "Jan 2, 2026" {
		t.Errorf("DisplayDate = %q", got)
	}
	if got := DisplayDate(solution.Solution{Date: "someday"}); got != "someday" {
		t.Errorf("DisplayDate fallback = %q", got)
	}
}

func TestSolutionJsonLD(t *testing.T) {
	got := SolutionJsonLD(solution.Solution{
		Slug:       "two-sum",
		Title:      "Two <Sum>",
		Difficulty: solution.Easy,
		Excerpt:    "x",
		Tags:       []string{"array"},
	}, SiteInfo{URL: "http://example.com", Author: "Ada"})
	for _, want := range []string{`"@type":"TechArticle"`, `"url":"http://example.com/solutions/two-sum/"`, `<Sum>`, `"keywords":"array"`} {
		if !strings.Contains(got, want) {
			t.Errorf("json-ld missing %s: %s", want, got)
		}
	}
}

func TestFailureStatus(t *testing.T) {
	validationErr := createInvalid(t)
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", validationErr, http.StatusBadRequest},
		{"not found", &content.Error{Kind: content.KindNotFound}, http.StatusNotFound},
		{"conflict", fmt.Errorf("wrap: %w", &content.Error{Kind: content.KindConflict}), http.StatusConflict},
		{"unauthorized", &content.Error{Kind: content.KindUnauthorized}, http.StatusUnauthorized},
		{"missing token", content.ErrMissingToken, http.StatusUnauthorized},
		{"remote", &content.Error{Kind: content.KindRemote, Status: 502, Message: "Bad Gateway"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := failureStatus(tt.err)
			if code != tt.code {
				t.Errorf("code = %d, want %d", code, tt.code)
			}
			if msg == "" {
				t.Error("empty message")
			}
		})
	}
	if _, msg := failureStatus(errors.New("upstream said no")); msg != "upstream said no" {
		t.Errorf("remote message = %q, want the upstream text", msg)
	}
}

func TestFailureStatusKeepsUpstreamMessage(t *testing.T) {
	forbidden := &content.Error{Kind: content.KindUnauthorized, Status: http.StatusForbidden, Message: "Resource not accessible by integration"}
	code, msg := failureStatus(fmt.Errorf("create solution: %w", forbidden))
	if code != http.StatusUnauthorized || !strings.Contains(msg, "Resource not accessible by integration") {
		t.Errorf("failureStatus = %d %q, want 401 with the upstream message", code, msg)
	}
}

func TestRateLimitedWriteIsRetriedAndSurfaced(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded for user"}`))
	}))
	defer srv.Close()

	gh := content.NewGitHub(content.GitHubConfig{Owner: "octo", Repo: "site", BaseURL: srv.URL})
	svc := solution.NewService(solution.Config{Retry: solution.RetryPolicy{Attempts: 3, Delay: time.Millisecond}}, gh)
	in := solution.Input{Title: "Two Sum", Slug: "two-sum", Difficulty: solution.Easy, Content: "x"}

	_, err := svc.Create(content.WithToken(context.Background(), "tok"), in)
	if err == nil {
		t.Fatal("expected an error")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("remote saw %d calls, want 3 attempts", n)
	}
	code, msg := failureStatus(err)
	if code != http.StatusInternalServerError || !strings.Contains(msg, "API rate limit exceeded") {
		t.Errorf("failureStatus = %d %q, want 500 with the upstream message", code, msg)
	}
}

func createInvalid(t *testing.T) error {
	t.Helper()
	local, err := content.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	svc := solution.NewService(solution.Config{}, local)
	_, err = svc.Create(context.Background(), solution.Input{Slug: "ok", Difficulty: solution.Easy, Content: "x"})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	return err
}

func TestUniqueImageName(t *testing.T) {
	existing := []Image{{Name: "graph.jpg"}, {Name: "graph-2.jpg"}}
	if got := uniqueImageName("graph.jpg", existing); got != "graph-3.jpg" {
		t.Errorf("uniqueImageName = %q", got)
	}
	if got := uniqueImageName("tree.jpg", existing); got != "tree.jpg" {
		t.Errorf("uniqueImageName = %q", got)
	}
}

func TestProcessImageResizesWideImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1600, 400))
	for x := 0; x < 1600; x++ {
		src.Set(x, 10, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	img, data, err := processImage(&buf, "My Graph.PNG")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if img.Name != "my-graph.jpg" || img.URL != "/images/my-graph.jpg" || img.Size != len(data) {
		t.Errorf("image = %+v", img)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != maxImageWidth || b.Dy() != 200 {
		t.Errorf("bounds = %v, want 800x200", b)
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	if _, _, err := processImage(strings.NewReader("not an image"), "x.png"); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestLoginErrorMessages(t *testing.T) {
	if loginError("") != "" {
		t.Error("empty code should have no message")
	}
	for _, code := range []string{"AccessDenied", "RateLimited", "State", "Callback"} {
		if loginError(code) == "" {
			t.Errorf("no message for %s", code)
		}
	}
}
