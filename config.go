package solnotes

import (
	"strings"
	"time"

	"github.com/eringen/solnotes/auth"
	"github.com/eringen/solnotes/content"
	"github.com/eringen/solnotes/logging"
	"github.com/eringen/solnotes/solution"
)

// Storage authorities.
const (
	AuthorityLocal  = "local"
	AuthorityGitHub = "github"
)

// ModeProduction enables rebuild webhooks.
const ModeProduction = "production"

// SiteConfig holds all configuration for a solnotes site.
type SiteConfig struct {
	Name        string // Site name (default "Solutions")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD and the about page
	Bio         string // Short author bio for the about page

	Addr string // Listen address (default ":3000")
	Mode string // "production" or "development" (default "development")

	// Authority selects the backend that owns the content: "local" (default)
	// or "github".
	Authority      string
	ContentRoot    string // Local checkout root (default ".")
	Dir            string // Solutions directory inside the store (default "content/solutions")
	ImagesDir      string // Images directory inside the store (default "content/images")
	GitCommits     bool   // Commit local writes with git when ContentRoot is a work tree
	CommitName     string // Commit author name (default "solnotes")
	CommitEmail    string // Commit author email (default "solnotes@localhost")
	MirrorToGitHub bool   // With local authority, also write every change to GitHub

	Owner        string // GitHub repository owner
	Repo         string // GitHub repository name
	Branch       string // Branch (default "main")
	GitHubAPIURL string // API base URL (default "https://api.github.com")
	// GitHubToken is used for reads when nobody is signed in. Writes always
	// use the signed-in admin's token.
	GitHubToken string

	Retry         solution.RetryPolicy // Storage retry policy (default 3 attempts, 1s linear)
	HomepageLimit int                  // Solutions on the home page (default 6)
	Tags          []solution.Tag       // Tag catalog (default solution.DefaultTags)

	WebhookURL    string // Build hook called after each change in production
	RebuildDBPath string // SQLite job log (default "data/rebuild.db")

	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string // default URL + "/auth/callback/"
	OAuthAuthURL      string // override for tests
	OAuthTokenURL     string // override for tests
	Admins            []string

	SessionSecret string        // Required: cookie signing secret
	SessionTTL    time.Duration // Identity record lifetime (default 7 days)
	CookieSecure  bool          // Set true for HTTPS
	RedisURL      string        // Optional: keep identity records in Redis

	LogLevel  string
	LogFormat string
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Solutions"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Mode == "" {
		c.Mode = "development"
	}
	c.Authority = strings.ToLower(strings.TrimSpace(c.Authority))
	if c.Authority == "" {
		c.Authority = AuthorityLocal
	}
	if c.ContentRoot == "" {
		c.ContentRoot = "."
	}
	if c.Dir = content.CleanPath(c.Dir); c.Dir == "" {
		c.Dir = "content/solutions"
	}
	if c.ImagesDir = content.CleanPath(c.ImagesDir); c.ImagesDir == "" {
		c.ImagesDir = "content/images"
	}
	if c.CommitName == "" {
		c.CommitName = "solnotes"
	}
	if c.CommitEmail == "" {
		c.CommitEmail = "solnotes@localhost"
	}
	if c.Branch == "" {
		c.Branch = "main"
	}
	if c.Retry.Attempts <= 0 {
		c.Retry = solution.RetryPolicy{Attempts: 3, Delay: time.Second}
	}
	if c.HomepageLimit <= 0 {
		c.HomepageLimit = 6
	}
	if len(c.Tags) == 0 {
		c.Tags = solution.DefaultTags
	}
	if c.RebuildDBPath == "" {
		c.RebuildDBPath = "data/rebuild.db"
	}
	if c.OAuthRedirectURL == "" {
		c.OAuthRedirectURL = c.URL + "/auth/callback/"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = auth.DefaultTTL
	}
}

// Production reports whether the site runs in production mode.
func (c SiteConfig) Production() bool {
	return strings.EqualFold(c.Mode, ModeProduction)
}

// GitHubConfigured reports whether a GitHub repository is set.
func (c SiteConfig) GitHubConfigured() bool {
	return c.Owner != "" && c.Repo != ""
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithBackend replaces the primary content backend built from the config.
func WithBackend(b content.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithMirror sets a secondary backend that receives every change.
func WithMirror(b content.Backend) Option {
	return func(a *App) {
		a.mirror = b
	}
}

// WithAuthenticator replaces the authenticator built from the config.
func WithAuthenticator(au *auth.Authenticator) Option {
	return func(a *App) {
		a.Auth = au
	}
}

// WithIdentityStore sets where identity records are kept.
func WithIdentityStore(s auth.Store) Option {
	return func(a *App) {
		a.identities = s
	}
}

// WithRebuilder replaces the rebuild trigger built from the config.
func WithRebuilder(r solution.Rebuilder) Option {
	return func(a *App) {
		a.rebuilder = r
	}
}

// WithLoggerProvider sets the logging provider.
func WithLoggerProvider(p logging.Provider) Option {
	return func(a *App) {
		a.logs = p
	}
}

// WithClock overrides the time source for solution dates.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}
