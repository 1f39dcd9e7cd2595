// Package auth gates admin access: GitHub OAuth sign-in, a static admin
// allow-list, and server-side identity records.
package auth

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrNotAdmin is returned when a signed-in user is not on the allow-list.
var ErrNotAdmin = errors.New("auth: user is not an administrator")

// Gate holds the admin allow-list. Usernames compare case-sensitively.
type Gate struct {
	admins map[string]struct{}
}

// NewGate builds a gate for the given usernames. Blank entries are ignored.
func NewGate(admins []string) *Gate {
	g := &Gate{admins: make(map[string]struct{}, len(admins))}
	for _, a := range admins {
		if a = strings.TrimSpace(a); a != "" {
			g.admins[a] = struct{}{}
		}
	}
	return g
}

// Authorize returns ErrNotAdmin unless username is on the allow-list.
func (g *Gate) Authorize(username string) error {
	if g == nil || username == "" {
		return ErrNotAdmin
	}
	if _, ok := g.admins[username]; !ok {
		return ErrNotAdmin
	}
	return nil
}

// IsAdmin reports whether username is on the allow-list.
func (g *Gate) IsAdmin(username string) bool {
	return g.Authorize(username) == nil
}

// Admins returns the allow-list sorted.
func (g *Gate) Admins() []string {
	out := make([]string, 0, len(g.admins))
	for a := range g.admins {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Identity is a signed-in GitHub user and the token used for content
// writes on their behalf.
type Identity struct {
	Username    string    `json:"username"`
	AccessToken string    `json:"access_token"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Authenticated reports whether the identity belongs to a signed-in user.
func (i Identity) Authenticated() bool {
	return i.Username != ""
}
