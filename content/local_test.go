package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
)

func setupLocal(t *testing.T, opts ...LocalOption) (*Local, string) {
	t.Helper()
	root := t.TempDir()
	l, err := NewLocal(root, opts...)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	return l, root
}

func TestLocalWriteAndRead(t *testing.T) {
	l, root := setupLocal(t)
	ctx := context.Background()

	f, err := l.Write(ctx, "content/solutions/two-sum.md", []byte("hello"), "create", "")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if f.SHA != BlobSHA([]byte("hello")) {
		t.Errorf("SHA = %q", f.SHA)
	}
	if _, err := os.Stat(filepath.Join(root, "content", "solutions", "two-sum.md")); err != nil {
		t.Fatalf("file not on disk: %v", err)
	}

	got, err := l.Read(ctx, "/content/solutions/two-sum.md")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got.Content) != "hello" || got.SHA != f.SHA {
		t.Errorf("Read = %+v", got)
	}
}

func TestBlobSHAMatchesGit(t *testing.T) {
	// `printf 'hello' | git hash-object --stdin`
	if got := BlobSHA([]byte("hello")); got != "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0" {
		t.Errorf("BlobSHA = %s", got)
	}
}

func TestLocalOptimisticConcurrency(t *testing.T) {
	l, _ := setupLocal(t)
	ctx := context.Background()
	path := "s/a.md"

	first, err := l.Write(ctx, path, []byte("v1"), "", "")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := l.Write(ctx, path, []byte("v2"), "", ""); !IsConflict(err) {
		t.Errorf("write existing without sha: expected conflict, got %v", err)
	}
	if _, err := l.Write(ctx, path, []byte("v2"), "", "deadbeef"); !IsConflict(err) {
		t.Errorf("write with stale sha: expected conflict, got %v", err)
	}
	second, err := l.Write(ctx, path, []byte("v2"), "", first.SHA)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := l.Delete(ctx, path, "", first.SHA); !IsConflict(err) {
		t.Errorf("delete with stale sha: expected conflict, got %v", err)
	}
	if err := l.Delete(ctx, path, "", second.SHA); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := l.Read(ctx, path); !IsNotFound(err) {
		t.Errorf("read after delete: expected not found, got %v", err)
	}
	if err := l.Delete(ctx, path, "", second.SHA); !IsNotFound(err) {
		t.Errorf("delete missing: expected not found, got %v", err)
	}
	if _, err := l.Write(ctx, "s/none.md", []byte("x"), "", "abc"); !IsNotFound(err) {
		t.Errorf("update missing: expected not found, got %v", err)
	}
}

func TestLocalList(t *testing.T) {
	l, _ := setupLocal(t)
	ctx := context.Background()

	if _, err := l.List(ctx, "content/solutions"); !IsNotFound(err) {
		t.Fatalf("List missing dir: expected not found, got %v", err)
	}
	for _, name := range []string{"b.md", "a.md", "sub/c.md"} {
		if _, err := l.Write(ctx, "content/solutions/"+name, []byte(name), "", ""); err != nil {
			t.Fatalf("Write %s failed: %v", name, err)
		}
	}
	entries, err := l.List(ctx, "content/solutions")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %+v, want 3", entries)
	}
	if entries[0].Path != "content/solutions/a.md" || entries[0].SHA != BlobSHA([]byte("a.md")) {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[2].Type != "dir" {
		t.Errorf("entries[2] = %+v, want dir", entries[2])
	}
}

func TestLocalGitCommits(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l, err := NewLocal(filepath.Join(root, "site"),
		WithGitCommits("Admin", "admin@example.com"),
		WithLocalClock(func() time.Time { return when }),
	)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	ctx := context.Background()

	f, err := l.Write(ctx, "content/solutions/a.md", []byte("a"), "Add a", "")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := l.Delete(ctx, "content/solutions/a.md", "Remove a", f.SHA); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	var messages []string
	for {
		c, err := iter.Next()
		if err != nil {
			break
		}
		messages = append(messages, c.Message)
		if c.Author.Name != "Admin" || !c.Author.When.Equal(when) {
			t.Errorf("unexpected author %+v", c.Author)
		}
	}
	if len(messages) != 2 || messages[0] != "Remove a" || messages[1] != "Add a" {
		t.Errorf("commit messages = %q", messages)
	}
}

func TestNewLocalGitCommitsRequiresRepo(t *testing.T) {
	if _, err := NewLocal(t.TempDir(), WithGitCommits("a", "a@example.com")); err == nil {
		t.Fatal("expected error when root is not inside a git work tree")
	}
}

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"/a/b.md":            "a/b.md",
		"a//b.md":            "a/b.md",
		"../../etc/passwd":   "etc/passwd",
		"content\\x.md":      "content/x.md",
		" content/solutions": "content/solutions",
	}
	for in, want := range tests {
		if got := CleanPath(in); got != want {
			t.Errorf("CleanPath(%q) = %q, want %q", in, got, want)
		}
	}
}
