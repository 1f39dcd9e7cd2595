package content_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eringen/solnotes/content"
	"github.com/eringen/solnotes/content/contenttest"
)

func setupGitHub(t *testing.T) (*content.GitHub, *contenttest.GitHubServer, context.Context) {
	t.Helper()
	srv := contenttest.NewGitHubServer("octo", "site")
	srv.Token = "tok-123"
	t.Cleanup(srv.Close)

	gh := content.NewGitHub(content.GitHubConfig{
		Owner:   "octo",
		Repo:    "site",
		BaseURL: srv.URL,
	})
	ctx := content.WithToken(context.Background(), "tok-123")
	return gh, srv, ctx
}

func TestGitHubReadDecodesContent(t *testing.T) {
	gh, srv, ctx := setupGitHub(t)
	body := []byte(strings.Repeat("binary-safe \x00\xff text\n", 10))
	sha := srv.Put("content/solutions/two-sum.md", body)

	f, err := gh.Read(ctx, "content/solutions/two-sum.md")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(f.Content) != string(body) {
		t.Errorf("Content = %q, want %q", f.Content, body)
	}
	if f.SHA != sha {
		t.Errorf("SHA = %q, want %q", f.SHA, sha)
	}
	if f.SHA != content.BlobSHA(body) {
		t.Errorf("SHA should equal the git blob hash")
	}
}

func TestGitHubMissingTokenFailsBeforeNetwork(t *testing.T) {
	gh, srv, _ := setupGitHub(t)

	_, err := gh.Read(context.Background(), "content/solutions/a.md")
	if !content.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if !errors.Is(err, content.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken in chain, got %v", err)
	}
	if _, err := gh.Write(context.Background(), "a.md", []byte("x"), "msg", ""); !content.IsUnauthorized(err) {
		t.Errorf("Write without token: expected unauthorized, got %v", err)
	}
	if err := gh.Delete(context.Background(), "a.md", "msg", "sha"); !content.IsUnauthorized(err) {
		t.Errorf("Delete without token: expected unauthorized, got %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestGitHubSendsBearerToken(t *testing.T) {
	gh, srv, ctx := setupGitHub(t)
	srv.Put("a.md", []byte("a"))

	if _, err := gh.Read(ctx, "a.md"); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	reqs := srv.Requests()
	if len(reqs) != 1 || reqs[0].Auth != "Bearer tok-123" {
		t.Fatalf("requests = %+v, want one with bearer token", reqs)
	}
}

func TestGitHubNotFound(t *testing.T) {
	gh, _, ctx := setupGitHub(t)

	_, err := gh.Read(ctx, "content/solutions/missing.md")
	if !content.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	var cerr *content.Error
	if !errors.As(err, &cerr) || cerr.Status != http.StatusNotFound {
		t.Fatalf("expected typed error with status 404, got %#v", err)
	}
	if len(cerr.Body) == 0 {
		t.Error("expected raw error payload to be kept")
	}
}

func TestGitHubWriteCreateUpdateDelete(t *testing.T) {
	gh, srv, ctx := setupGitHub(t)
	path := "content/solutions/two-sum.md"

	created, err := gh.Write(ctx, path, []byte("v1"), "create", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.SHA != content.BlobSHA([]byte("v1")) {
		t.Errorf("created SHA = %q", created.SHA)
	}

	if _, err := gh.Write(ctx, path, []byte("v2"), "no sha", ""); !content.IsConflict(err) {
		t.Fatalf("write existing without sha: expected conflict, got %v", err)
	}

	updated, err := gh.Write(ctx, path, []byte("v2"), "update", created.SHA)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if data, _ := srv.File(path); string(data) != "v2" {
		t.Errorf("stored content = %q, want v2", data)
	}

	if err := gh.Delete(ctx, path, "delete", created.SHA); !content.IsConflict(err) {
		t.Fatalf("delete with stale sha: expected conflict, got %v", err)
	}
	if err := gh.Delete(ctx, path, "delete", updated.SHA); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := srv.File(path); ok {
		t.Error("file should be gone after delete")
	}
}

func TestGitHubRemoteErrorCarriesStatus(t *testing.T) {
	gh, srv, ctx := setupGitHub(t)
	srv.FailNext(http.StatusBadGateway)

	_, err := gh.Read(ctx, "a.md")
	var cerr *content.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *content.Error, got %v", err)
	}
	if cerr.Kind != content.KindRemote || cerr.Status != http.StatusBadGateway {
		t.Errorf("kind=%v status=%d, want remote/502", cerr.Kind, cerr.Status)
	}
	if cerr.Message != "injected failure" {
		t.Errorf("Message = %q, want upstream message", cerr.Message)
	}
}

func TestGitHubList(t *testing.T) {
	gh, srv, ctx := setupGitHub(t)
	srv.Put("content/solutions/a.md", []byte("a"))
	srv.Put("content/solutions/b.md", []byte("b"))
	srv.Put("content/solutions/drafts/c.md", []byte("c"))

	entries, err := gh.List(ctx, "content/solutions")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %+v, want 3", entries)
	}
	if entries[0].Name != "a.md" || entries[0].Type != "file" || entries[0].SHA == "" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[2].Name != "drafts" || entries[2].Type != "dir" {
		t.Errorf("entries[2] = %+v", entries[2])
	}

	if _, err := gh.List(ctx, "content/none"); !content.IsNotFound(err) {
		t.Errorf("List missing dir: expected not found, got %v", err)
	}
}

func TestGitHubForbiddenClassification(t *testing.T) {
	tests := []struct {
		name    string
		header  map[string]string
		message string
		kind    content.Kind
	}{
		{"rate limit message", nil, "API rate limit exceeded for user ID 1.", content.KindRemote},
		{"remaining header", map[string]string{"X-RateLimit-Remaining": "0"}, "Forbidden", content.KindRemote},
		{"retry after", map[string]string{"Retry-After": "60"}, "You have exceeded a secondary limit", content.KindRemote},
		{"missing permission", nil, "Resource not accessible by integration", content.KindUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"` + tt.message + `"}`))
			}))
			defer srv.Close()

			gh := content.NewGitHub(content.GitHubConfig{Owner: "octo", Repo: "site", BaseURL: srv.URL})
			_, err := gh.Read(content.WithToken(context.Background(), "tok"), "a.md")
			var cerr *content.Error
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *content.Error, got %v", err)
			}
			if cerr.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", cerr.Kind, tt.kind)
			}
			if cerr.Status != http.StatusForbidden || cerr.Message != tt.message {
				t.Errorf("status=%d message=%q, want 403 and the upstream message", cerr.Status, cerr.Message)
			}
		})
	}
}
