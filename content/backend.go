// Package content provides path-addressed, hash-versioned file stores for
// solution files: a GitHub Contents API client and a local filesystem
// backend. Both enforce the same optimistic-concurrency contract: updates
// and deletes must carry the hash last observed for the path.
package content

import (
	"context"
	"path"
	"strings"
)

// File is a stored file with its version hash.
type File struct {
	Path    string
	Content []byte
	SHA     string
}

// Entry describes an item in a directory listing.
type Entry struct {
	Name string
	Path string
	SHA  string
	Type string // "file" or "dir"
}

// Backend is a path-addressed content store.
type Backend interface {
	Read(ctx context.Context, path string) (File, error)
	// Write creates the file when sha is empty and updates it otherwise.
	Write(ctx context.Context, path string, content []byte, message, sha string) (File, error)
	Delete(ctx context.Context, path, message, sha string) error
	List(ctx context.Context, dir string) ([]Entry, error)
}

type tokenKey struct{}

// WithToken returns a context carrying the delegated access token used by
// remote backends.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the access token stored by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// CleanPath normalizes a store path: forward slashes, no leading slash.
func CleanPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}
