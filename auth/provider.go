package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// DefaultScopes are requested at sign-in. repo is needed for content writes.
var DefaultScopes = []string{"read:user", "user:email", "repo"}

// ProviderConfig configures the GitHub OAuth application.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// AuthURL, TokenURL and APIURL override the GitHub endpoints.
	AuthURL  string
	TokenURL string
	APIURL   string
}

// Provider runs the GitHub OAuth code flow and resolves the signed-in user.
type Provider struct {
	oauth  *oauth2.Config
	apiURL string
	client *http.Client
}

// NewProvider builds a Provider from cfg.
func NewProvider(cfg ProviderConfig) *Provider {
	endpoint := github.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	api := strings.TrimRight(cfg.APIURL, "/")
	if api == "" {
		api = "https://api.github.com"
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		apiURL: api,
	}
}

// WithHTTPClient sets the client used for token exchange and API calls.
func (p *Provider) WithHTTPClient(c *http.Client) *Provider {
	p.client = c
	return p
}

// Configured reports whether client credentials are present.
func (p *Provider) Configured() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != ""
}

// AuthCodeURL returns the GitHub authorization URL for state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("auth: missing authorization code")
	}
	tok, err := p.oauth.Exchange(p.context(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

type githubUser struct {
	Login string `json:"login"`
}

// FetchUser returns the GitHub login for tok.
func (p *Provider) FetchUser(ctx context.Context, tok *oauth2.Token) (string, error) {
	client := p.oauth.Client(p.context(ctx), tok)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/user", nil)
	if err != nil {
		return "", fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read user response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch user: unexpected status %d", resp.StatusCode)
	}
	var u githubUser
	if err := json.Unmarshal(body, &u); err != nil {
		return "", fmt.Errorf("decode user: %w", err)
	}
	if u.Login == "" {
		return "", errors.New("auth: github user has no login")
	}
	return u.Login, nil
}

func (p *Provider) context(ctx context.Context) context.Context {
	if p.client != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.client)
	}
	return ctx
}
