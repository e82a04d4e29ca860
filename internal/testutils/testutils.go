// Package testutils provides shared test infrastructure: fake data store
// servers speaking the ECMWF listing format, and container helpers for
// integration tests.
package testutils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// ListingFile describes one artifact served by a fake data store.
type ListingFile struct {
	Name string
	Body []byte
}

// ListingHTML renders an index page in the store's format:
//
//	<a href="name">name</a>   17-06-2025 13:02    <size>    <id>
func ListingHTML(files []ListingFile) string {
	var b strings.Builder
	b.WriteString("<html><body><pre>\n")
	for i, f := range files {
		fmt.Fprintf(&b, "<a href=\"%s\">%s</a>       17-06-2025 13:02    %d    %d\n",
			f.Name, f.Name, len(f.Body), i+1)
	}
	b.WriteString("</pre></body></html>\n")
	return b.String()
}

// CatalogServer serves an ECMWF-style tree for one model run directory:
// the listing page at dir (e.g. "/20250617/12z/ifs/0p25/oper/") and the
// file bodies below it. Requests outside the tree get 404.
func CatalogServer(t *testing.T, dir string, files []ListingFile) *httptest.Server {
	t.Helper()

	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	bodies := make(map[string][]byte, len(files))
	for _, f := range files {
		bodies[dir+f.Name] = f.Body
	}
	listing := ListingHTML(files)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == dir {
			fmt.Fprint(w, listing)
			return
		}
		if body, ok := bodies[r.URL.Path]; ok {
			w.Write(body)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

// ConcurrencyProbe counts in-flight requests through an HTTP handler and
// records the high-water mark, for asserting pool bounds.
type ConcurrencyProbe struct {
	active atomic.Int32
	peak   atomic.Int32
}

// Wrap instruments a handler with the probe.
func (p *ConcurrencyProbe) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := p.active.Add(1)
		for {
			peak := p.peak.Load()
			if n <= peak || p.peak.CompareAndSwap(peak, n) {
				break
			}
		}
		defer p.active.Add(-1)
		next.ServeHTTP(w, r)
	})
}

// Peak returns the maximum number of simultaneously active requests seen.
func (p *ConcurrencyProbe) Peak() int {
	return int(p.peak.Load())
}
