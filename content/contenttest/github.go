// Package contenttest provides an in-memory GitHub Contents API server for
// tests.
package contenttest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing"
)

// Request records a call made against the fake server.
type Request struct {
	Method string
	Path   string
	Auth   string
}

// GitHubServer emulates the subset of the Contents API used by solnotes.
type GitHubServer struct {
	*httptest.Server

	Owner string
	Repo  string
	// Token, when set, is the only bearer credential accepted.
	Token string

	mu       sync.Mutex
	files    map[string][]byte
	requests []Request
	failures []int
}

// NewGitHubServer starts a fake server for owner/repo.
func NewGitHubServer(owner, repo string) *GitHubServer {
	s := &GitHubServer{
		Owner: owner,
		Repo:  repo,
		files: make(map[string][]byte),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Put seeds a file without going through the API.
func (s *GitHubServer) Put(path string, content []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), content...)
	return blobSHA(content)
}

// File returns the stored content for path.
func (s *GitHubServer) File(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	return data, ok
}

// FailNext makes the next len(statuses) requests fail with the given codes.
func (s *GitHubServer) FailNext(statuses ...int) {
	s.mu.Lock()
	s.failures = append(s.failures, statuses...)
	s.mu.Unlock()
}

// Requests returns a copy of every request received.
func (s *GitHubServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Mutations counts PUT and DELETE requests received.
func (s *GitHubServer) Mutations() int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == http.MethodPut || r.Method == http.MethodDelete {
			n++
		}
	}
	return n
}

type fileJSON struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

type writeBody struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

func (s *GitHubServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")})

	if len(s.failures) > 0 {
		code := s.failures[0]
		s.failures = s.failures[1:]
		writeJSON(w, code, map[string]string{"message": "injected failure"})
		return
	}

	auth := r.Header.Get("Authorization")
	if auth == "" || (s.Token != "" && auth != "Bearer "+s.Token) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		return
	}

	prefix := "/repos/" + s.Owner + "/" + s.Repo + "/contents/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, prefix), "/")

	switch r.Method {
	case http.MethodGet:
		s.get(w, path)
	case http.MethodPut:
		s.put(w, r, path)
	case http.MethodDelete:
		s.delete(w, r, path)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

func (s *GitHubServer) get(w http.ResponseWriter, path string) {
	if data, ok := s.files[path]; ok {
		writeJSON(w, http.StatusOK, fileJSON{
			Type:     "file",
			Name:     baseName(path),
			Path:     path,
			SHA:      blobSHA(data),
			Content:  wrapBase64(data),
			Encoding: "base64",
		})
		return
	}

	var entries []fileJSON
	seen := map[string]bool{}
	for p, data := range s.files {
		if !strings.HasPrefix(p, path+"/") {
			continue
		}
		rest := strings.TrimPrefix(p, path+"/")
		if i := strings.Index(rest, "/"); i >= 0 {
			dir := rest[:i]
			if !seen[dir] {
				seen[dir] = true
				entries = append(entries, fileJSON{Type: "dir", Name: dir, Path: path + "/" + dir})
			}
			continue
		}
		entries = append(entries, fileJSON{Type: "file", Name: rest, Path: p, SHA: blobSHA(data)})
	}
	if len(entries) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	writeJSON(w, http.StatusOK, entries)
}

func (s *GitHubServer) put(w http.ResponseWriter, r *http.Request, path string) {
	var body writeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}
	data, err := base64.StdEncoding.DecodeString(body.Content)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "content is not valid Base64"})
		return
	}
	current, exists := s.files[path]
	switch {
	case exists && body.SHA == "":
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid request.\n\n\"sha\" wasn't supplied."})
		return
	case exists && body.SHA != blobSHA(current):
		writeJSON(w, http.StatusConflict, map[string]string{"message": path + " does not match " + body.SHA})
		return
	case !exists && body.SHA != "":
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	s.files[path] = data
	code := http.StatusCreated
	if exists {
		code = http.StatusOK
	}
	writeJSON(w, code, map[string]any{
		"content": fileJSON{Type: "file", Name: baseName(path), Path: path, SHA: blobSHA(data)},
		"commit":  map[string]string{"message": body.Message},
	})
}

func (s *GitHubServer) delete(w http.ResponseWriter, r *http.Request, path string) {
	var body writeBody
	_ = json.NewDecoder(r.Body).Decode(&body)
	current, exists := s.files[path]
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	if body.SHA != blobSHA(current) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": path + " does not match " + body.SHA})
		return
	}
	delete(s.files, path)
	writeJSON(w, http.StatusOK, map[string]any{"content": nil, "commit": map[string]string{"message": body.Message}})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func blobSHA(data []byte) string {
	return plumbing.ComputeHash(plumbing.BlobObject, data).String()
}

// wrapBase64 mimics GitHub's 60-column wrapped base64 payloads.
func wrapBase64(data []byte) string {
	enc := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for len(enc) > 60 {
		b.WriteString(enc[:60])
		b.WriteByte('\n')
		enc = enc[60:]
	}
	b.WriteString(enc)
	return b.String()
}

func baseName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
