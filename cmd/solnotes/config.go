package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/eringen/solnotes"
	"github.com/eringen/solnotes/solution"
)

// loadConfig merges defaults, an optional YAML file and SOLNOTES_*
// environment variables. Nested keys map to env names with underscores,
// so github.owner is SOLNOTES_GITHUB_OWNER.
func loadConfig(path string) (solnotes.SiteConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("SOLNOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setConfigDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return solnotes.SiteConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("solnotes")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return solnotes.SiteConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return solnotes.SiteConfig{
		Name:        v.GetString("site.name"),
		URL:         v.GetString("site.url"),
		Description: v.GetString("site.description"),
		Author:      v.GetString("site.author"),
		Bio:         v.GetString("site.bio"),

		Addr: v.GetString("server.addr"),
		Mode: v.GetString("server.mode"),

		Authority:      v.GetString("store.authority"),
		ContentRoot:    v.GetString("store.root"),
		Dir:            v.GetString("store.dir"),
		ImagesDir:      v.GetString("store.images_dir"),
		GitCommits:     v.GetBool("store.git_commits"),
		CommitName:     v.GetString("store.commit_name"),
		CommitEmail:    v.GetString("store.commit_email"),
		MirrorToGitHub: v.GetBool("store.mirror_to_github"),
		Retry: solution.RetryPolicy{
			Attempts: v.GetInt("store.retry_attempts"),
			Delay:    v.GetDuration("store.retry_delay"),
		},

		Owner:        v.GetString("github.owner"),
		Repo:         v.GetString("github.repo"),
		Branch:       v.GetString("github.branch"),
		GitHubAPIURL: v.GetString("github.api_url"),
		GitHubToken:  v.GetString("github.token"),

		HomepageLimit: v.GetInt("site.homepage_limit"),

		WebhookURL:    v.GetString("rebuild.webhook_url"),
		RebuildDBPath: v.GetString("rebuild.db_path"),

		OAuthClientID:     v.GetString("oauth.client_id"),
		OAuthClientSecret: v.GetString("oauth.client_secret"),
		OAuthRedirectURL:  v.GetString("oauth.redirect_url"),
		Admins:            stringList(v.Get("oauth.admins")),

		SessionSecret: v.GetString("session.secret"),
		SessionTTL:    v.GetDuration("session.ttl"),
		CookieSecure:  v.GetBool("session.cookie_secure"),
		RedisURL:      v.GetString("session.redis_url"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}, nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("site.name", "Solutions")
	v.SetDefault("site.url", "http://localhost:3000")
	v.SetDefault("site.homepage_limit", 6)
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.mode", "development")
	v.SetDefault("store.authority", solnotes.AuthorityLocal)
	v.SetDefault("store.root", ".")
	v.SetDefault("store.dir", "content/solutions")
	v.SetDefault("store.images_dir", "content/images")
	v.SetDefault("store.retry_attempts", 3)
	v.SetDefault("store.retry_delay", time.Second)
	v.SetDefault("github.branch", "main")
	v.SetDefault("rebuild.db_path", "data/rebuild.db")
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// stringList accepts a YAML list or a comma separated string.
func stringList(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
	default:
		parts = []string{fmt.Sprint(val)}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
