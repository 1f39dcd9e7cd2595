package solnotes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/solnotes/solution"
)

func (a *App) handleHome(c echo.Context) error {
	all, err := a.Solutions.List(c.Request().Context())
	if err != nil {
		return err
	}
	latest := all
	if len(latest) > a.Config.HomepageLimit {
		latest = latest[:a.Config.HomepageLimit]
	}
	return Render(c, a.Views.Home(HomePage{
		Page:   a.page(c, "", "", "/", "website"),
		Latest: latest,
		Total:  len(all),
		Tags:   UsedTags(a.Solutions.Tags(), all),
	}))
}

func (a *App) handleSolutions(c echo.Context) error {
	all, err := a.Solutions.List(c.Request().Context())
	if err != nil {
		return err
	}
	tag := strings.ToLower(strings.TrimSpace(c.QueryParam("tag")))
	difficulty := solution.Difficulty(strings.ToLower(strings.TrimSpace(c.QueryParam("difficulty"))))
	if !difficulty.Valid() {
		difficulty = ""
	}
	filtered := FilterByDifficulty(FilterByTag(all, tag), difficulty)
	return Render(c, a.Views.Solutions(ListPage{
		Page:             a.page(c, "Solutions", "", "/solutions/", "website"),
		Solutions:        filtered,
		Tags:             UsedTags(a.Solutions.Tags(), all),
		ActiveTag:        tag,
		ActiveDifficulty: difficulty,
	}))
}

func (a *App) handleSolution(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	s, ok, err := a.Solutions.Get(ctx, slug)
	if err != nil {
		return err
	}
	if !ok {
		return a.renderNotFound(c)
	}
	all, err := a.Solutions.List(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Solution(SolutionPage{
		Page:     a.page(c, s.Title, Summary(s), SolutionURL(s.Slug), "article"),
		Solution: s,
		Related:  FilterRelated(s, all, 3),
		Tags:     a.Solutions.Tags(),
	}))
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, a.Views.About(a.page(c, "About", "", "/about/", "website")))
}

func (a *App) handleLogin(c echo.Context) error {
	if a.CurrentUser(c) != "" {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.Login(LoginPage{
		Page:       a.page(c, "Sign in", "", "/login/", "website"),
		Error:      loginError(c.QueryParam("error")),
		Configured: a.Auth.Provider().Configured(),
	}))
}

func loginError(code string) string {
	switch code {
	case "":
		return ""
	case "AccessDenied":
		return "This GitHub account is not allowed to manage solutions."
	case "RateLimited":
		return "Too many sign-in attempts. Try again in a minute."
	case "State":
		return "The sign-in request expired. Please try again."
	default:
		return "Sign-in failed. Please try again."
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	all, err := a.Solutions.List(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, all)
}

func (a *App) handleFeed(c echo.Context) error {
	all, err := a.Solutions.List(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, all)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\nDisallow: /auth/\n\nSitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) renderNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, "Not found", "", c.Request().URL.Path, "website")))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	if isAPIRequest(c) {
		msg := http.StatusText(code)
		if he != nil {
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}
		if code >= 500 {
			a.logger.Error("api error", "path", c.Request().URL.Path, "error", err)
		}
		_ = c.JSON(code, apiError{Error: msg})
		return
	}

	if code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	if code >= 500 {
		a.logger.Error("server error", "path", c.Request().URL.Path, "error", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c, "Error", "", c.Request().URL.Path, "website")))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
