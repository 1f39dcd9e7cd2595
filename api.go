package solnotes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/solnotes/content"
	"github.com/eringen/solnotes/solution"
)

type saveRequest struct {
	FormData  solution.Input `json:"formData"`
	IsEditing bool           `json:"isEditing"`
}

type mutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

func (a *App) apiGetSolutions(c echo.Context) error {
	ctx := c.Request().Context()
	if slug := strings.TrimSpace(c.QueryParam("slug")); slug != "" {
		s, ok, err := a.Solutions.Get(ctx, slug)
		if err != nil {
			return a.apiFailure(c, err)
		}
		if !ok {
			return c.JSON(http.StatusNotFound, apiError{Error: "solution not found"})
		}
		return c.JSON(http.StatusOK, s)
	}
	all, err := a.Solutions.List(ctx)
	if err != nil {
		return a.apiFailure(c, err)
	}
	if all == nil {
		all = []solution.Solution{}
	}
	return c.JSON(http.StatusOK, all)
}

func (a *App) apiSaveSolution(c echo.Context) error {
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{Error: "invalid request body"})
	}
	res, err := a.saveSolution(c, req.FormData, req.IsEditing)
	if err != nil {
		return a.apiFailure(c, err)
	}
	verb := "created"
	if req.IsEditing {
		verb = "updated"
	}
	return c.JSON(http.StatusOK, mutationResponse{
		Success: true,
		Message: "Solution " + verb + " successfully",
		Warning: res.Warning,
	})
}

func (a *App) apiDeleteSolution(c echo.Context) error {
	slug := strings.TrimSpace(c.QueryParam("slug"))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, apiError{Error: "slug is required"})
	}
	res, err := a.Solutions.Delete(c.Request().Context(), slug)
	if err != nil {
		return a.apiFailure(c, err)
	}
	return c.JSON(http.StatusOK, mutationResponse{
		Success: true,
		Message: "Solution deleted successfully",
		Warning: res.Warning,
	})
}

// saveSolution creates or updates depending on editing. Both the API and
// the admin form go through it.
func (a *App) saveSolution(c echo.Context, in solution.Input, editing bool) (solution.Result, error) {
	ctx := c.Request().Context()
	if editing {
		return a.Solutions.Update(ctx, strings.TrimSpace(in.Slug), in)
	}
	return a.Solutions.Create(ctx, in)
}

// failureStatus maps a service error to an HTTP status and message.
func failureStatus(err error) (int, string) {
	switch {
	case solution.IsValidation(err):
		return http.StatusBadRequest, "validation failed"
	case content.IsNotFound(err):
		return http.StatusNotFound, "solution not found"
	case content.IsConflict(err):
		return http.StatusConflict, "a solution with this slug already exists or was changed concurrently"
	case errors.Is(err, content.ErrMissingToken):
		return http.StatusUnauthorized, "unauthorized"
	case content.IsUnauthorized(err):
		var cerr *content.Error
		if errors.As(err, &cerr) && cerr.Status != 0 && cerr.Message != "" {
			return http.StatusUnauthorized, "unauthorized: " + cerr.Message
		}
		return http.StatusUnauthorized, "unauthorized"
	}
	return http.StatusInternalServerError, err.Error()
}

func (a *App) apiFailure(c echo.Context, err error) error {
	code, msg := failureStatus(err)
	if code >= 500 {
		a.logger.Error("solution api failed", "path", c.Request().URL.Path, "error", err)
	}
	body := apiError{Error: msg}
	if code == http.StatusBadRequest {
		body.Fields = solution.FieldErrors(err)
	}
	return c.JSON(code, body)
}
