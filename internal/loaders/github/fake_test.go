package github

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// fakeAPI serves the contents endpoint for one repository from a map of
// file path to body.
type fakeAPI struct {
	mu       sync.Mutex
	owner    string
	repo     string
	files    map[string]string
	requests []*http.Request
	status   int
}

func newFakeAPI(t *testing.T, files map[string]string) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{owner: "acme", repo: "rules", files: files}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = body
}

func (f *fakeAPI) remove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
}

func (f *fakeAPI) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"message":"fake failure"}`))
		return
	}

	prefix := "/api/v3/repos/" + f.owner + "/" + f.repo + "/contents"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		notFound(w)
		return
	}
	target := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")

	if body, ok := f.files[target]; ok {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"name":     path.Base(target),
			"path":     target,
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(body)),
		})
		return
	}

	entries := f.list(target)
	if entries == nil {
		notFound(w)
		return
	}
	_ = json.NewEncoder(w).Encode(entries)
}

// list returns the directory entries under dir, or nil if dir has none.
func (f *fakeAPI) list(dir string) []map[string]any {
	seen := map[string]string{}
	for p := range f.files {
		rel := p
		if dir != "" {
			if !strings.HasPrefix(p, dir+"/") {
				continue
			}
			rel = strings.TrimPrefix(p, dir+"/")
		}
		name, _, nested := strings.Cut(rel, "/")
		if nested {
			seen[name] = "dir"
		} else {
			seen[name] = "file"
		}
	}
	if len(seen) == 0 {
		return nil
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]map[string]any, 0, len(names))
	for _, name := range names {
		entries = append(entries, map[string]any{
			"type": seen[name],
			"name": name,
			"path": path.Join(dir, name),
		})
	}
	return entries
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"message":"Not Found"}`))
}

func source(srv *httptest.Server, settings map[string]any) domain.SourceDescriptor {
	s := map[string]any{
		"repository": "acme/rules",
		"base_url":   srv.URL,
		"token":      "test-token",
	}
	for k, v := range settings {
		s[k] = v
	}
	return domain.SourceDescriptor{LoaderType: LoaderType, Settings: s}
}

func newTestLoader() *Loader {
	return New(nil, WithRateLimiter(NewRateLimiter(rate.Inf)))
}
