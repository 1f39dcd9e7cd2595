package content

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/eringen/solnotes/logging"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// GitHubConfig locates the repository that holds the content.
type GitHubConfig struct {
	Owner   string
	Repo    string
	Branch  string // default "main"
	BaseURL string // default DefaultGitHubAPI
}

// GitHub is a Backend over the GitHub Contents API. Every call is made with
// the access token carried by the request context; the client holds no
// credential of its own.
type GitHub struct {
	owner   string
	repo    string
	branch  string
	baseURL string
	base    *http.Client
	logger  logging.Logger
}

// GitHubOption configures a GitHub backend.
type GitHubOption func(*GitHub)

// WithHTTPClient sets the transport used underneath the oauth2 client.
func WithHTTPClient(c *http.Client) GitHubOption {
	return func(g *GitHub) {
		g.base = c
	}
}

// WithGitHubLogger sets the logger used for request diagnostics.
func WithGitHubLogger(l logging.Logger) GitHubOption {
	return func(g *GitHub) {
		g.logger = logging.OrNoOp(l)
	}
}

// NewGitHub creates a Contents API backend.
func NewGitHub(cfg GitHubConfig, opts ...GitHubOption) *GitHub {
	g := &GitHub{
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		branch:  cfg.Branch,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logging.NoOp(),
	}
	if g.branch == "" {
		g.branch = "main"
	}
	if g.baseURL == "" {
		g.baseURL = DefaultGitHubAPI
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type githubFile struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type githubWriteResponse struct {
	Content *githubFile `json:"content"`
}

type githubErrorBody struct {
	Message string `json:"message"`
}

// Read fetches a file and decodes its base64 payload.
func (g *GitHub) Read(ctx context.Context, p string) (File, error) {
	p = CleanPath(p)
	status, body, err := g.do(ctx, "read", p, http.MethodGet, g.contentsURL(p, true), nil)
	if err != nil {
		return File{}, err
	}

	var f githubFile
	if err := json.Unmarshal(body, &f); err != nil {
		return File{}, &Error{Kind: KindRemote, Op: "read", Path: p, Status: status, Body: body,
			Message: "response is not a file object", Err: err}
	}
	if f.SHA == "" || f.Type == "dir" {
		return File{}, &Error{Kind: KindRemote, Op: "read", Path: p, Status: status, Body: body,
			Message: "file content or sha missing in response"}
	}
	data, err := decodeBase64(f.Content)
	if err != nil {
		return File{}, &Error{Kind: KindRemote, Op: "read", Path: p, Status: status,
			Message: "decode content", Err: err}
	}
	return File{Path: p, Content: data, SHA: f.SHA}, nil
}

// Write creates or updates a file. Pass the current sha to update.
func (g *GitHub) Write(ctx context.Context, p string, content []byte, message, sha string) (File, error) {
	p = CleanPath(p)
	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  g.branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}
	status, body, err := g.do(ctx, "write", p, http.MethodPut, g.contentsURL(p, false), payload)
	if err != nil {
		return File{}, err
	}

	out := File{Path: p, Content: content, SHA: sha}
	var resp githubWriteResponse
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &resp) == nil && resp.Content != nil {
		if resp.Content.SHA != "" {
			out.SHA = resp.Content.SHA
		}
		if resp.Content.Content != "" {
			if data, err := decodeBase64(resp.Content.Content); err == nil {
				out.Content = data
			}
		}
	} else {
		g.logger.Warn("github write returned no parsable body", "path", p, "status", status)
	}
	return out, nil
}

// Delete removes a file. sha must match the current version.
func (g *GitHub) Delete(ctx context.Context, p, message, sha string) error {
	p = CleanPath(p)
	payload := map[string]string{
		"message": message,
		"sha":     sha,
		"branch":  g.branch,
	}
	_, _, err := g.do(ctx, "delete", p, http.MethodDelete, g.contentsURL(p, false), payload)
	return err
}

// List returns the entries of a directory.
func (g *GitHub) List(ctx context.Context, dir string) ([]Entry, error) {
	dir = CleanPath(dir)
	status, body, err := g.do(ctx, "list", dir, http.MethodGet, g.contentsURL(dir, true), nil)
	if err != nil {
		return nil, err
	}

	var items []githubFile
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &Error{Kind: KindRemote, Op: "list", Path: dir, Status: status, Body: body,
			Message: "response is not a directory listing", Err: err}
	}
	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		entries = append(entries, Entry{Name: it.Name, Path: it.Path, SHA: it.SHA, Type: it.Type})
	}
	return entries, nil
}

func (g *GitHub) contentsURL(p string, withRef bool) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		g.baseURL, url.PathEscape(g.owner), url.PathEscape(g.repo), strings.Join(segments, "/"))
	if withRef && g.branch != "" {
		u += "?ref=" + url.QueryEscape(g.branch)
	}
	return u
}

func (g *GitHub) client(ctx context.Context, token string) *http.Client {
	if g.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.base)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

func (g *GitHub) do(ctx context.Context, op, p, method, target string, payload any) (int, []byte, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return 0, nil, newError(KindUnauthorized, op, p, ErrMissingToken)
	}

	var reader io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, newError(KindTransport, op, p, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, newError(KindTransport, op, p, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client(ctx, token).Do(req)
	if err != nil {
		return 0, nil, newError(KindTransport, op, p, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, newError(KindTransport, op, p, fmt.Errorf("read response: %w", err))
	}
	g.logger.Debug("github request", "op", op, "path", p, "status", resp.StatusCode)
	return resp.StatusCode, body, classify(op, p, resp.StatusCode, resp.Header, body)
}

// classify maps a non-2xx status to a typed error. A 403 caused by rate
// limiting is a remote failure, not a credential problem.
func classify(op, p string, status int, header http.Header, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	var eb githubErrorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	var kind Kind
	switch {
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		kind = KindConflict
	case status == http.StatusForbidden && rateLimited(header, msg):
		kind = KindRemote
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = KindUnauthorized
	default:
		kind = KindRemote
	}
	return &Error{Kind: kind, Op: op, Path: p, Status: status, Body: body, Message: msg}
}

func rateLimited(header http.Header, msg string) bool {
	if header.Get("X-RateLimit-Remaining") == "0" || header.Get("Retry-After") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(msg), "rate limit")
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	return base64.StdEncoding.DecodeString(s)
}
