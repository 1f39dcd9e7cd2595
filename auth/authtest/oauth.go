// Package authtest provides a fake GitHub OAuth and user API server.
package authtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// OAuthServer serves the token endpoint and GET /user. Codes map to logins;
// the issued access token is "token-<login>".
type OAuthServer struct {
	*httptest.Server

	mu     sync.Mutex
	codes  map[string]string
	tokens map[string]string
}

// NewOAuthServer starts the fake server.
func NewOAuthServer() *OAuthServer {
	s := &OAuthServer{
		codes:  make(map[string]string),
		tokens: make(map[string]string),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", s.token)
	mux.HandleFunc("/user", s.user)
	s.Server = httptest.NewServer(mux)
	return s
}

// AddCode registers a one-time authorization code for login.
func (s *OAuthServer) AddCode(code, login string) {
	s.mu.Lock()
	s.codes[code] = login
	s.mu.Unlock()
}

// AuthURL is the authorize endpoint.
func (s *OAuthServer) AuthURL() string { return s.URL + "/login/oauth/authorize" }

// TokenURL is the token endpoint.
func (s *OAuthServer) TokenURL() string { return s.URL + "/login/oauth/access_token" }

func (s *OAuthServer) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	code := r.PostForm.Get("code")

	s.mu.Lock()
	login, ok := s.codes[code]
	if ok {
		delete(s.codes, code)
		s.tokens["token-"+login] = login
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "token-" + login,
		"token_type":   "bearer",
		"scope":        "read:user,user:email,repo",
	})
}

func (s *OAuthServer) user(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	login, ok := s.tokens[tok]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"login": login, "id": 1})
}
