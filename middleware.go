package solnotes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/solnotes/auth"
	"github.com/eringen/solnotes/content"
)

const (
	sessionName     = "solnotes_session"
	sessionKeySID   = "sid"
	sessionKeyState = "oauth_state"
	identityKey     = "solnotes.identity"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				a.logger.Warn("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.String(), "error", v.Error)
				return nil
			}
			a.logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.String())
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/public/") || strings.HasPrefix(p, "/images/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		ErrorHandler: func(err error, c echo.Context) error {
			if isAPIRequest(c) {
				return c.JSON(http.StatusForbidden, apiError{Error: "invalid csrf token"})
			}
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/public") ||
				strings.HasPrefix(p, "/api/") ||
				strings.HasPrefix(p, "/images/") ||
				p == "/sitemap.xml" || p == "/feed.xml" || p == "/robots.txt"
		},
	}))

	e.Use(cacheControlMiddleware)
	e.Use(a.contentTokenMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := c.Request().URL.Path
		h := c.Response().Header()
		switch {
		case strings.HasPrefix(p, "/admin"), strings.HasPrefix(p, "/api"), strings.HasPrefix(p, "/auth"), p == "/login/":
			h.Set("Cache-Control", "no-store")
		case strings.HasPrefix(p, "/public/"):
			h.Set("Cache-Control", "public, max-age=31536000, immutable")
		case strings.HasPrefix(p, "/images/"):
			h.Set("Cache-Control", "public, max-age=86400")
		case p == "/sitemap.xml" || p == "/feed.xml" || p == "/robots.txt":
			h.Set("Cache-Control", "public, max-age=86400")
		default:
			h.Set("Cache-Control", "public, max-age=300")
		}
		return next(c)
	}
}

// contentTokenMiddleware attaches the credential used for content reads and
// writes: the signed-in admin's token, or the configured read token.
func (a *App) contentTokenMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := a.Config.GitHubToken
		if id, err := a.identity(c); err == nil && id.AccessToken != "" {
			token = id.AccessToken
		}
		if token != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(content.WithToken(req.Context(), token)))
		}
		return next(c)
	}
}

// requireAdminPage redirects visitors without an admin identity to the
// login page.
func (a *App) requireAdminPage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := a.identity(c); err != nil {
			return c.Redirect(http.StatusSeeOther, "/login/")
		}
		return next(c)
	}
}

// requireAdminAPI answers 401 before any handler or store code runs.
func (a *App) requireAdminAPI(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := a.identity(c); err != nil {
			if errors.Is(err, auth.ErrNotAdmin) {
				return c.JSON(http.StatusForbidden, apiError{Error: "forbidden"})
			}
			return c.JSON(http.StatusUnauthorized, apiError{Error: "unauthorized"})
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(a.Config.SessionTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// identity resolves the admin identity for the request from the session id
// in the cookie. The result is cached on the context.
func (a *App) identity(c echo.Context) (auth.Identity, error) {
	if v, ok := c.Get(identityKey).(identityResult); ok {
		return v.id, v.err
	}
	id, err := a.resolveIdentity(c)
	c.Set(identityKey, identityResult{id: id, err: err})
	return id, err
}

type identityResult struct {
	id  auth.Identity
	err error
}

func (a *App) resolveIdentity(c echo.Context) (auth.Identity, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return auth.Identity{}, auth.ErrSessionNotFound
	}
	sid, _ := sess.Values[sessionKeySID].(string)
	if sid == "" || a.Auth == nil {
		return auth.Identity{}, auth.ErrSessionNotFound
	}
	return a.Auth.Resolve(c.Request().Context(), sid)
}

// CurrentUser returns the signed-in admin's username, or "".
func (a *App) CurrentUser(c echo.Context) string {
	id, err := a.identity(c)
	if err != nil {
		return ""
	}
	return id.Username
}

func setSessionValues(c echo.Context, values map[string]any) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	for k, v := range values {
		if v == nil {
			delete(sess.Values, k)
			continue
		}
		sess.Values[k] = v
	}
	return sess.Save(c.Request(), c.Response())
}

func clearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}
