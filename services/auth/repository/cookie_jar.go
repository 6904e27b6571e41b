package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/piresc/authgate/internal/pkg/constants"
	"github.com/piresc/authgate/internal/pkg/database"
	"github.com/piresc/authgate/internal/pkg/logger"
)

const jarTimeout = 2 * time.Second

// storedCookie is one backend cookie in the visitor's jar hash
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Host     string    `json:"host"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c storedCookie) matches(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if c.Domain != "" {
		if host != c.Domain && !strings.HasSuffix(host, "."+c.Domain) {
			return false
		}
	} else if host != c.Host {
		return false
	}

	if c.Secure && u.Scheme != "https" {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if c.Path == "/" || path == c.Path {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(c.Path, "/")+"/")
}

// CookieJar is an http.CookieJar holding one visitor's backend cookies in a
// Redis hash, so any BFF instance can act for the visitor.
type CookieJar struct {
	redisClient *database.RedisClient
	key         string
	ttl         time.Duration
	now         func() time.Time
}

// NewCookieJar returns the jar for visitorID. The hash expires after ttl of inactivity.
func NewCookieJar(redisClient *database.RedisClient, visitorID string, ttl time.Duration) *CookieJar {
	return &CookieJar{
		redisClient: redisClient,
		key:         fmt.Sprintf(constants.KeyVisitorJar, visitorID),
		ttl:         ttl,
		now:         time.Now,
	}
}

// SetCookies stores, replaces or deletes cookies set by u
func (j *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jarTimeout)
	defer cancel()

	now := j.now()
	host := strings.ToLower(u.Hostname())
	pipe := j.redisClient.Client.TxPipeline()

	for _, c := range cookies {
		stored := storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Host:     host,
			Domain:   strings.TrimPrefix(strings.ToLower(c.Domain), "."),
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if stored.Path == "" || !strings.HasPrefix(stored.Path, "/") {
			stored.Path = defaultPath(u.Path)
		}

		switch {
		case c.MaxAge < 0:
			stored.Expires = now
		case c.MaxAge > 0:
			stored.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		default:
			stored.Expires = c.Expires
		}

		field := cookieField(stored)
		if stored.expired(now) {
			pipe.HDel(ctx, j.key, field)
			continue
		}

		data, err := json.Marshal(stored)
		if err != nil {
			continue
		}
		pipe.HSet(ctx, j.key, field, data)
	}
	pipe.Expire(ctx, j.key, j.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("Failed to store backend cookies",
			logger.String("key", j.key),
			logger.Err(err))
	}
}

// Cookies returns the unexpired cookies to send to u, longest path first
func (j *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	ctx, cancel := context.WithTimeout(context.Background(), jarTimeout)
	defer cancel()

	entries, err := j.redisClient.Client.HGetAll(ctx, j.key).Result()
	if err != nil {
		logger.Warn("Failed to load backend cookies",
			logger.String("key", j.key),
			logger.Err(err))
		return nil
	}

	now := j.now()
	var (
		matched []storedCookie
		stale   []string
	)
	for field, raw := range entries {
		var c storedCookie
		if err := json.Unmarshal([]byte(raw), &c); err != nil || c.expired(now) {
			stale = append(stale, field)
			continue
		}
		if c.matches(u) {
			matched = append(matched, c)
		}
	}
	if len(stale) > 0 {
		j.redisClient.Client.HDel(ctx, j.key, stale...)
	}

	sort.Slice(matched, func(a, b int) bool {
		if len(matched[a].Path) != len(matched[b].Path) {
			return len(matched[a].Path) > len(matched[b].Path)
		}
		return matched[a].Name < matched[b].Name
	})

	cookies := make([]*http.Cookie, 0, len(matched))
	for _, c := range matched {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies
}

// defaultPath is the RFC 6265 default-path: the request path up to, but not
// including, its last slash
func defaultPath(path string) string {
	i := strings.LastIndex(path, "/")
	if !strings.HasPrefix(path, "/") || i == 0 {
		return "/"
	}
	return path[:i]
}

func cookieField(c storedCookie) string {
	scope := c.Host
	if c.Domain != "" {
		scope = "." + c.Domain
	}
	return scope + "|" + c.Path + "|" + c.Name
}
