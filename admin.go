package solnotes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/solnotes/rebuild"
	"github.com/eringen/solnotes/solution"
)

const recentJobs = 10

func (a *App) handleAdmin(c echo.Context) error {
	return a.renderAdminDashboard(c, http.StatusOK, nil)
}

func (a *App) handleAdminNew(c echo.Context) error {
	return a.renderAdminForm(c, http.StatusOK, solution.Input{Difficulty: solution.Easy}, false, nil, nil)
}

func (a *App) handleAdminEdit(c echo.Context) error {
	s, ok, err := a.Solutions.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if !ok {
		return a.renderNotFound(c)
	}
	in := solution.Input{
		Title:      s.Title,
		Slug:       s.Slug,
		Difficulty: s.Difficulty,
		Excerpt:    s.Excerpt,
		Content:    s.Content,
		Tags:       s.Tags,
	}
	return a.renderAdminForm(c, http.StatusOK, in, true, nil, nil)
}

func (a *App) handleAdminSave(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return err
	}
	editing := form.Get("editing") == "true"
	in := solution.Input{
		Title:      form.Get("title"),
		Slug:       form.Get("slug"),
		Difficulty: solution.Difficulty(form.Get("difficulty")),
		Excerpt:    form.Get("excerpt"),
		Content:    form.Get("content"),
		Tags:       form["tags"],
	}
	if !editing && strings.TrimSpace(in.Slug) == "" {
		in.Slug = Slugify(in.Title)
	}

	res, err := a.saveSolution(c, in, editing)
	if err != nil {
		code, msg := failureStatus(err)
		if code >= 500 {
			a.logger.Error("admin save failed", "slug", in.Slug, "error", err)
		}
		var fields map[string]string
		if solution.IsValidation(err) {
			fields = solution.FieldErrors(err)
			msg = "Please fix the highlighted fields."
		}
		return a.renderAdminForm(c, code, in, editing, fields, &Notice{Kind: NoticeError, Message: msg})
	}

	verb := "created"
	if editing {
		verb = "updated"
	}
	return a.renderAdminDashboard(c, http.StatusOK, resultNotice("Solution "+verb+" successfully.", res))
}

func (a *App) handleAdminDelete(c echo.Context) error {
	res, err := a.Solutions.Delete(c.Request().Context(), c.Param("slug"))
	if err != nil {
		code, msg := failureStatus(err)
		if code >= 500 {
			a.logger.Error("admin delete failed", "slug", c.Param("slug"), "error", err)
		}
		return a.renderAdminDashboard(c, code, &Notice{Kind: NoticeError, Message: msg})
	}
	return a.renderAdminDashboard(c, http.StatusOK, resultNotice("Solution deleted successfully.", res))
}

func resultNotice(msg string, res solution.Result) *Notice {
	if res.Warning != "" {
		return &Notice{Kind: NoticeWarning, Message: msg + " " + res.Warning}
	}
	return &Notice{Kind: NoticeSuccess, Message: msg}
}

func (a *App) renderAdminDashboard(c echo.Context, code int, notice *Notice) error {
	ctx := c.Request().Context()
	all, err := a.Solutions.List(ctx)
	if err != nil {
		a.logger.Error("list solutions failed", "error", err)
		code, msg := failureStatus(err)
		notice = &Notice{Kind: NoticeError, Message: "Could not load solutions: " + msg}
		if code < http.StatusInternalServerError {
			code = http.StatusBadGateway
		}
		return RenderStatus(c, code, a.Views.AdminDashboard(AdminDashboardPage{
			Page:   a.page(c, "Admin", "", "/admin/", "website"),
			Notice: notice,
		}))
	}
	var jobs []rebuild.Job
	if a.Jobs != nil {
		if jobs, err = a.Jobs.Recent(ctx, recentJobs); err != nil {
			a.logger.Warn("load rebuild jobs failed", "error", err)
		}
	}
	return RenderStatus(c, code, a.Views.AdminDashboard(AdminDashboardPage{
		Page:      a.page(c, "Admin", "", "/admin/", "website"),
		Solutions: all,
		Jobs:      jobs,
		Notice:    notice,
	}))
}

func (a *App) renderAdminForm(c echo.Context, code int, in solution.Input, editing bool, fields map[string]string, notice *Notice) error {
	title := "New solution"
	if editing {
		title = "Edit " + in.Title
	}
	return RenderStatus(c, code, a.Views.AdminForm(AdminFormPage{
		Page:         a.page(c, title, "", c.Request().URL.Path, "website"),
		Input:        in,
		Editing:      editing,
		Tags:         a.Solutions.Tags(),
		Difficulties: solution.Difficulties,
		Errors:       fields,
		Notice:       notice,
	}))
}
