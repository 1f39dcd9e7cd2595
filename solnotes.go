// Package solnotes serves a personal algorithm-solutions site built with Go,
// Echo, and templ. Solutions are markdown files with YAML frontmatter kept in
// a local checkout, a GitHub repository, or both.
//
// Users provide templ components via the ViewFuncs struct; solnotes handles
// storage, GitHub sign-in, the JSON API, admin pages, RSS, and the sitemap.
package solnotes

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/solnotes/auth"
	"github.com/eringen/solnotes/content"
	"github.com/eringen/solnotes/logging"
	"github.com/eringen/solnotes/rebuild"
	"github.com/eringen/solnotes/solution"
)

// ViewFuncs holds the templ components the app renders. This is the
// inversion-of-control point that lets users own every template.
type ViewFuncs struct {
	Home           func(p HomePage) templ.Component
	Solutions      func(p ListPage) templ.Component
	Solution       func(p SolutionPage) templ.Component
	About          func(p Page) templ.Component
	Login          func(p LoginPage) templ.Component
	AdminDashboard func(p AdminDashboardPage) templ.Component
	AdminForm      func(p AdminFormPage) templ.Component
	AdminImages    func(p AdminImagesPage) templ.Component
	NotFound       func(p Page) templ.Component
	ServerError    func(p Page) templ.Component
}

// App is the central solnotes application. It wires together storage,
// sign-in, rebuilds, handlers, middleware, and the user's templates.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Views     ViewFuncs
	Solutions *solution.Service
	Auth      *auth.Authenticator
	Jobs      *rebuild.JobLog

	backend    content.Backend
	mirror     content.Backend
	identities auth.Store
	rebuilder  solution.Rebuilder
	logs       logging.Provider
	logger     logging.Logger
	now        func() time.Time

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	closers      []func() error
	initialized  bool
}

// New creates a solnotes App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
		now:       time.Now,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.ModuleLogger(a.logs, logging.ModuleHTTP)

	return a
}

// Init builds the storage, auth and rebuild components and registers
// middleware and routes. Start calls it; tests may call it directly and
// drive a.Echo as an http.Handler.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return errors.New("solnotes: SessionSecret is required")
	}

	if err := a.initContent(); err != nil {
		return err
	}
	if err := a.initRebuild(); err != nil {
		return err
	}

	opts := []solution.Option{
		solution.WithRebuilder(a.rebuilder),
		solution.WithLogger(logging.ModuleLogger(a.logs, logging.ModuleSolution)),
		solution.WithClock(a.now),
	}
	if a.mirror != nil {
		opts = append(opts, solution.WithMirror(a.mirror))
	}
	a.Solutions = solution.NewService(solution.Config{
		Dir:   a.Config.Dir,
		Retry: a.Config.Retry,
		Tags:  a.Config.Tags,
	}, a.backend, opts...)

	if err := a.initAuth(); err != nil {
		return err
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.closers = append(a.closers, func() error { a.loginLimiter.Stop(); return nil })

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.logger.Info("listening", "addr", a.Config.Addr, "authority", a.Config.Authority, "mode", a.Config.Mode)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) initContent() error {
	cfg := a.Config
	github := func() *content.GitHub {
		return content.NewGitHub(content.GitHubConfig{
			Owner:   cfg.Owner,
			Repo:    cfg.Repo,
			Branch:  cfg.Branch,
			BaseURL: cfg.GitHubAPIURL,
		}, content.WithGitHubLogger(logging.ModuleLogger(a.logs, logging.ModuleContent)))
	}

	if a.backend == nil {
		switch cfg.Authority {
		case AuthorityGitHub:
			if !cfg.GitHubConfigured() {
				return errors.New("solnotes: github authority needs Owner and Repo")
			}
			if cfg.GitHubToken == "" {
				a.logger.Warn("github authority without GitHubToken; public pages need a signed-in admin to read content")
			}
			a.backend = github()
		case AuthorityLocal:
			var opts []content.LocalOption
			if cfg.GitCommits {
				opts = append(opts, content.WithGitCommits(cfg.CommitName, cfg.CommitEmail))
			}
			local, err := content.NewLocal(cfg.ContentRoot, opts...)
			if err != nil {
				return fmt.Errorf("solnotes: init local content: %w", err)
			}
			a.backend = local
		default:
			return fmt.Errorf("solnotes: unknown authority %q", cfg.Authority)
		}
	}
	if a.mirror == nil && cfg.Authority == AuthorityLocal && cfg.MirrorToGitHub {
		if !cfg.GitHubConfigured() {
			return errors.New("solnotes: MirrorToGitHub needs Owner and Repo")
		}
		a.mirror = github()
	}
	return nil
}

func (a *App) initRebuild() error {
	if a.rebuilder != nil {
		return nil
	}
	logger := logging.ModuleLogger(a.logs, logging.ModuleRebuild)

	jobs, err := rebuild.OpenJobLog(a.Config.RebuildDBPath)
	if err != nil {
		return fmt.Errorf("solnotes: open rebuild log: %w", err)
	}
	a.Jobs = jobs
	a.closers = append(a.closers, jobs.Close)

	hook := rebuild.NewHook(a.Config.WebhookURL, nil)
	if !a.Config.Production() || !hook.Configured() {
		if a.Config.Production() {
			logger.Warn("production mode without a webhook url; rebuilds are skipped")
		}
		a.rebuilder = rebuild.Disabled{Log: jobs, Logger: logger}
		return nil
	}

	q := rebuild.NewQueue(hook, rebuild.WithJobLog(jobs), rebuild.WithLogger(logger))
	a.rebuilder = q
	a.closers = append(a.closers, func() error { q.Close(); return nil })
	return nil
}

func (a *App) initAuth() error {
	if a.Auth != nil {
		return nil
	}
	if a.identities == nil {
		if a.Config.RedisURL != "" {
			rs, err := auth.NewRedisStore(a.Config.RedisURL)
			if err != nil {
				return fmt.Errorf("solnotes: init identity store: %w", err)
			}
			a.identities = rs
			a.closers = append(a.closers, rs.Close)
		} else {
			a.identities = auth.NewMemoryStore()
		}
	}

	provider := auth.NewProvider(auth.ProviderConfig{
		ClientID:     a.Config.OAuthClientID,
		ClientSecret: a.Config.OAuthClientSecret,
		RedirectURL:  a.Config.OAuthRedirectURL,
		AuthURL:      a.Config.OAuthAuthURL,
		TokenURL:     a.Config.OAuthTokenURL,
		APIURL:       a.Config.GitHubAPIURL,
	})
	if !provider.Configured() {
		a.logger.Warn("github oauth is not configured; admin sign-in is disabled")
	}
	a.Auth = auth.NewAuthenticator(provider, auth.NewGate(a.Config.Admins), a.identities,
		auth.WithTTL(a.Config.SessionTTL),
		auth.WithLogger(logging.ModuleLogger(a.logs, logging.ModuleAuth)))
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets are embedded and served under /public/, falling
	// through to the user's static dir for everything else.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/solnotes.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/admin.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/solutions/", a.handleSolutions)
	e.GET("/solutions/:slug/", a.handleSolution)
	e.GET("/about/", a.handleAbout)
	e.GET("/login/", a.handleLogin)
	e.GET("/images/:name", a.handleImage)

	// JSON API
	e.GET("/api/solutions", a.apiGetSolutions)
	e.POST("/api/solutions", a.apiSaveSolution, a.requireAdminAPI)
	e.DELETE("/api/solutions", a.apiDeleteSolution, a.requireAdminAPI)

	// Sign-in
	e.GET("/auth/login/", a.handleAuthLogin)
	e.GET("/auth/callback/", a.handleAuthCallback)
	e.POST("/auth/logout/", a.handleAuthLogout)

	// Admin routes
	admin := e.Group("/admin", a.requireAdminPage)
	admin.GET("/", a.handleAdmin)
	admin.GET("/new/", a.handleAdminNew)
	admin.GET("/:slug/edit/", a.handleAdminEdit)
	admin.POST("/save/", a.handleAdminSave)
	admin.POST("/:slug/delete/", a.handleAdminDelete)
	admin.GET("/images/", a.handleImageList)
	admin.POST("/images/upload/", a.handleImageUpload)
	admin.POST("/images/:name/delete/", a.handleImageDelete)
}

// Close releases resources. Call it when the app shuts down.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
