package client

import (
	"net/http"
	"sort"
	"strings"
	"sync"
)

// CookieJar is a shared, mutex-guarded store of cookies gathered from
// server responses and replayed on subsequent connection attempts. There
// is no ecosystem library in this project's dependency set dedicated to
// standalone cookie-jar management (net/http's own cookiejar.Jar is built
// around *url.URL and http.Client, not a bare Cookie-header string), so
// this is a small wrapper over net/http's Cookie parsing, which is the
// idiomatic standard mechanism for the format itself.
type CookieJar struct {
	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

// NewCookieJar returns an empty jar.
func NewCookieJar() *CookieJar {
	return &CookieJar{cookies: make(map[string]*http.Cookie)}
}

// Header serializes the jar's contents into a single Cookie request header
// value, suitable for attaching to the next connection attempt.
func (j *CookieJar) Header() string {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.cookies) == 0 {
		return ""
	}

	parts := make([]string, 0, len(j.cookies))
	for _, c := range j.cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	sort.Strings(parts)

	return strings.Join(parts, "; ")
}

// Merge parses each Set-Cookie response header line and folds it into the
// jar, overwriting any existing cookie of the same name.
func (j *CookieJar) Merge(setCookieHeaders []string) {
	if len(setCookieHeaders) == 0 {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	for _, line := range setCookieHeaders {
		resp := http.Response{Header: http.Header{"Set-Cookie": []string{line}}}
		for _, c := range resp.Cookies() {
			j.cookies[c.Name] = c
		}
	}
}
