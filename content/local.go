package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// BlobSHA returns the git blob hash of data, the same version token the
// GitHub Contents API reports for a file.
func BlobSHA(data []byte) string {
	return plumbing.ComputeHash(plumbing.BlobObject, data).String()
}

// Local is a Backend over a directory on disk. It applies the same
// hash-checked update and delete rules as the remote store.
type Local struct {
	root string
	mu   sync.Mutex

	commit      bool
	authorName  string
	authorEmail string
	now         func() time.Time
}

// LocalOption configures a Local backend.
type LocalOption func(*Local)

// WithGitCommits commits every write and delete to the git work tree that
// contains the root directory.
func WithGitCommits(name, email string) LocalOption {
	return func(l *Local) {
		l.commit = true
		l.authorName = name
		l.authorEmail = email
	}
}

// WithLocalClock overrides the commit timestamp source.
func WithLocalClock(now func() time.Time) LocalOption {
	return func(l *Local) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLocal creates a filesystem backend rooted at root, creating it if needed.
func NewLocal(root string, opts ...LocalOption) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("content: create root: %w", err)
	}
	l := &Local{root: root, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	if l.commit {
		if _, err := l.openRepo(); err != nil {
			return nil, fmt.Errorf("content: git commits enabled: %w", err)
		}
	}
	return l, nil
}

// Root returns the directory the backend serves.
func (l *Local) Root() string { return l.root }

func (l *Local) abs(p string) string {
	return filepath.Join(l.root, filepath.FromSlash(p))
}

// Read returns the file at p with its blob hash.
func (l *Local) Read(ctx context.Context, p string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, newError(KindTransport, "read", p, err)
	}
	p = CleanPath(p)
	data, err := os.ReadFile(l.abs(p))
	if err != nil {
		return File{}, fsError("read", p, err)
	}
	return File{Path: p, Content: data, SHA: BlobSHA(data)}, nil
}

// Write creates the file when sha is empty and the path is free, or
// replaces it when sha matches the current content.
func (l *Local) Write(ctx context.Context, p string, content []byte, message, sha string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, newError(KindTransport, "write", p, err)
	}
	p = CleanPath(p)
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := os.ReadFile(l.abs(p))
	switch {
	case err == nil:
		if sha == "" {
			return File{}, &Error{Kind: KindConflict, Op: "write", Path: p, Message: "file exists and no sha was supplied"}
		}
		if BlobSHA(current) != sha {
			return File{}, &Error{Kind: KindConflict, Op: "write", Path: p, Message: "sha does not match"}
		}
	case errors.Is(err, fs.ErrNotExist):
		if sha != "" {
			return File{}, &Error{Kind: KindNotFound, Op: "write", Path: p, Message: "no file to update"}
		}
	default:
		return File{}, fsError("write", p, err)
	}

	target := l.abs(p)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return File{}, fsError("write", p, err)
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return File{}, fsError("write", p, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return File{}, fsError("write", p, err)
	}
	if err := l.commitChange(p, message, false); err != nil {
		return File{}, err
	}
	return File{Path: p, Content: content, SHA: BlobSHA(content)}, nil
}

// Delete removes the file at p if sha matches.
func (l *Local) Delete(ctx context.Context, p, message, sha string) error {
	if err := ctx.Err(); err != nil {
		return newError(KindTransport, "delete", p, err)
	}
	p = CleanPath(p)
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := os.ReadFile(l.abs(p))
	if err != nil {
		return fsError("delete", p, err)
	}
	if BlobSHA(current) != sha {
		return &Error{Kind: KindConflict, Op: "delete", Path: p, Message: "sha does not match"}
	}
	if l.commit {
		return l.commitChange(p, message, true)
	}
	if err := os.Remove(l.abs(p)); err != nil {
		return fsError("delete", p, err)
	}
	return nil
}

// List returns the entries of dir sorted by name.
func (l *Local) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError(KindTransport, "list", dir, err)
	}
	dir = CleanPath(dir)
	items, err := os.ReadDir(l.abs(dir))
	if err != nil {
		return nil, fsError("list", dir, err)
	}
	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		if strings.HasSuffix(it.Name(), ".tmp") {
			continue
		}
		rel := it.Name()
		if dir != "" {
			rel = dir + "/" + it.Name()
		}
		e := Entry{Name: it.Name(), Path: rel, Type: "file"}
		if it.IsDir() {
			e.Type = "dir"
		} else if data, err := os.ReadFile(l.abs(rel)); err == nil {
			e.SHA = BlobSHA(data)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (l *Local) openRepo() (*git.Repository, error) {
	return git.PlainOpenWithOptions(l.root, &git.PlainOpenOptions{DetectDotGit: true})
}

// commitChange stages p (or its removal) and commits it. It is a no-op
// unless WithGitCommits was supplied.
func (l *Local) commitChange(p, message string, remove bool) error {
	if !l.commit {
		return nil
	}
	repo, err := l.openRepo()
	if err != nil {
		return newError(KindTransport, "commit", p, fmt.Errorf("open repo: %w", err))
	}
	wt, err := repo.Worktree()
	if err != nil {
		return newError(KindTransport, "commit", p, fmt.Errorf("open worktree: %w", err))
	}
	absRoot, err := filepath.Abs(l.root)
	if err != nil {
		return newError(KindTransport, "commit", p, err)
	}
	wtRoot, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return newError(KindTransport, "commit", p, err)
	}
	rel, err := filepath.Rel(wtRoot, filepath.Join(absRoot, filepath.FromSlash(p)))
	if err != nil {
		return newError(KindTransport, "commit", p, fmt.Errorf("resolve worktree path: %w", err))
	}
	rel = filepath.ToSlash(rel)

	if remove {
		if _, err := wt.Remove(rel); err != nil {
			return newError(KindTransport, "commit", p, fmt.Errorf("git rm: %w", err))
		}
	} else if _, err := wt.Add(rel); err != nil {
		return newError(KindTransport, "commit", p, fmt.Errorf("git add: %w", err))
	}

	if message == "" {
		message = "Update " + p
	}
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  l.authorName,
			Email: l.authorEmail,
			When:  l.now(),
		},
	})
	if err != nil {
		return newError(KindTransport, "commit", p, fmt.Errorf("git commit: %w", err))
	}
	return nil
}

func fsError(op, p string, err error) *Error {
	if errors.Is(err, fs.ErrNotExist) {
		return &Error{Kind: KindNotFound, Op: op, Path: p, Err: err}
	}
	return newError(KindTransport, op, p, err)
}
