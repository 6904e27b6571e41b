package repository

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieNames(cookies []*http.Cookie) map[string]string {
	out := map[string]string{}
	for _, c := range cookies {
		out[c.Name] = c.Value
	}
	return out
}

func TestCookieJar_SetAndGet(t *testing.T) {
	mr, rc := setupRedis(t)
	jar := NewCookieJar(rc, "v1", time.Hour)
	u, _ := url.Parse("http://api.example.com/session/")

	jar.SetCookies(u, []*http.Cookie{
		{Name: "csrftoken", Value: "tok", Path: "/"},
		{Name: "sessionid", Value: "s-1", Path: "/", HttpOnly: true},
	})

	assert.Equal(t, map[string]string{"csrftoken": "tok", "sessionid": "s-1"}, cookieNames(jar.Cookies(u)))
	assert.Equal(t, time.Hour, mr.TTL("authgate:jar:v1"))

	other, _ := url.Parse("http://other.example.com/")
	assert.Empty(t, jar.Cookies(other))

	assert.Empty(t, NewCookieJar(rc, "v2", time.Hour).Cookies(u))
}

func TestCookieJar_ReplaceAndDelete(t *testing.T) {
	_, rc := setupRedis(t)
	jar := NewCookieJar(rc, "v1", time.Hour)
	u, _ := url.Parse("http://api.example.com/logout/")

	jar.SetCookies(u, []*http.Cookie{{Name: "sessionid", Value: "s-1", Path: "/"}})
	jar.SetCookies(u, []*http.Cookie{{Name: "sessionid", Value: "s-2", Path: "/"}})
	assert.Equal(t, map[string]string{"sessionid": "s-2"}, cookieNames(jar.Cookies(u)))

	jar.SetCookies(u, []*http.Cookie{{Name: "sessionid", Value: "", Path: "/", MaxAge: -1}})
	assert.Empty(t, jar.Cookies(u))
}

func TestCookieJar_Expiry(t *testing.T) {
	_, rc := setupRedis(t)
	jar := NewCookieJar(rc, "v1", time.Hour)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	jar.now = func() time.Time { return now }
	u, _ := url.Parse("http://api.example.com/")

	jar.SetCookies(u, []*http.Cookie{{Name: "short", Value: "x", MaxAge: 60}})
	assert.Len(t, jar.Cookies(u), 1)

	now = now.Add(2 * time.Minute)
	assert.Empty(t, jar.Cookies(u))
}

func TestCookieJar_PathAndSecure(t *testing.T) {
	_, rc := setupRedis(t)
	jar := NewCookieJar(rc, "v1", time.Hour)
	u, _ := url.Parse("https://api.example.com/auth/google/")

	jar.SetCookies(u, []*http.Cookie{
		{Name: "scoped", Value: "1", Path: "/auth"},
		{Name: "secure", Value: "2", Path: "/", Secure: true},
	})

	assert.Len(t, jar.Cookies(u), 2)

	plain, _ := url.Parse("http://api.example.com/session/")
	assert.Empty(t, jar.Cookies(plain))
}

func TestCookieJar_DefaultPath(t *testing.T) {
	_, rc := setupRedis(t)
	jar := NewCookieJar(rc, "v1", time.Hour)
	u, _ := url.Parse("http://api.example.com/auth/google/")

	jar.SetCookies(u, []*http.Cookie{{Name: "state", Value: "1"}})

	assert.Len(t, jar.Cookies(u), 1)
	session, _ := url.Parse("http://api.example.com/session/")
	assert.Empty(t, jar.Cookies(session))

	for path, want := range map[string]string{
		"":              "/",
		"/":             "/",
		"/login":        "/",
		"/auth/google/": "/auth/google",
		"/a/b/c":        "/a/b",
		"relative/x":    "/",
	} {
		assert.Equal(t, want, defaultPath(path), path)
	}
}

func TestCookieJar_DomainCookie(t *testing.T) {
	_, rc := setupRedis(t)
	jar := NewCookieJar(rc, "v1", time.Hour)
	u, _ := url.Parse("http://api.example.com/")

	jar.SetCookies(u, []*http.Cookie{{Name: "shared", Value: "1", Domain: ".example.com", Path: "/"}})

	sibling, _ := url.Parse("http://www.example.com/")
	assert.Len(t, jar.Cookies(sibling), 1)
}

func TestCookieJar_WithHTTPClient(t *testing.T) {
	_, rc := setupRedis(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/set" {
			http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc", Path: "/"})
			return
		}
		if c, err := r.Cookie("sessionid"); err == nil {
			w.Write([]byte(c.Value))
		}
	}))
	defer srv.Close()

	client := &http.Client{Jar: NewCookieJar(rc, "v1", time.Hour)}
	resp, err := client.Get(srv.URL + "/set")
	require.NoError(t, err)
	resp.Body.Close()

	// a second jar for the same visitor sees the cookie
	client2 := &http.Client{Jar: NewCookieJar(rc, "v1", time.Hour)}
	resp, err = client2.Get(srv.URL + "/read")
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := make([]byte, 16)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "abc", string(buf[:n]))
}
