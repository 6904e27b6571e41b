package gateway_http

import (
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

// NewMemoryJar returns a process-local cookie jar that applies public suffix
// rules, for single-user callers such as the CLI.
func NewMemoryJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New never fails with valid options
		panic(err)
	}
	return jar
}
