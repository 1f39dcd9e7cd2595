package solnotes

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/solnotes/auth"
)

func (a *App) handleAuthLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.Redirect(http.StatusSeeOther, "/login/?error=RateLimited")
	}
	provider := a.Auth.Provider()
	if !provider.Configured() {
		return c.Redirect(http.StatusSeeOther, "/login/?error=Configuration")
	}
	state := uuid.NewString()
	if err := setSessionValues(c, map[string]any{sessionKeyState: state}); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
}

func (a *App) handleAuthCallback(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	want, _ := sess.Values[sessionKeyState].(string)
	if want == "" || c.QueryParam("state") != want {
		return c.Redirect(http.StatusSeeOther, "/login/?error=State")
	}
	if c.QueryParam("error") != "" {
		return c.Redirect(http.StatusSeeOther, "/login/?error=AccessDenied")
	}

	sid, id, err := a.Auth.SignIn(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		_ = setSessionValues(c, map[string]any{sessionKeyState: nil, sessionKeySID: nil})
		if errors.Is(err, auth.ErrNotAdmin) {
			return c.Redirect(http.StatusSeeOther, "/login/?error=AccessDenied")
		}
		a.logger.Warn("sign-in failed", "error", err)
		return c.Redirect(http.StatusSeeOther, "/login/?error=Callback")
	}

	if err := setSessionValues(c, map[string]any{sessionKeyState: nil, sessionKeySID: sid}); err != nil {
		return err
	}
	a.logger.Info("admin signed in", "username", id.Username)
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAuthLogout(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err == nil {
		if sid, _ := sess.Values[sessionKeySID].(string); sid != "" {
			if err := a.Auth.SignOut(c.Request().Context(), sid); err != nil {
				a.logger.Warn("revoke session failed", "error", err)
			}
		}
	}
	if err := clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
