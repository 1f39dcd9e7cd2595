package solnotes

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

type apiError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// page builds the shared page model for a request.
func (a *App) page(c echo.Context, title, description, pagePath, ogType string) Page {
	if description == "" {
		description = a.Config.Description
	}
	if ogType == "" {
		ogType = "website"
	}
	full := title
	if full == "" {
		full = a.Config.Name
	} else {
		full = title + " | " + a.Config.Name
	}
	return Page{
		Site: SiteInfo{
			Name:        a.Config.Name,
			URL:         a.Config.URL,
			Description: a.Config.Description,
			Author:      a.Config.Author,
			Bio:         a.Config.Bio,
		},
		Meta: PageMeta{
			Title:       full,
			Description: description,
			URL:         a.Config.URL + pagePath,
			OGType:      ogType,
		},
		User:      a.CurrentUser(c),
		CSRFToken: CsrfToken(c),
	}
}
