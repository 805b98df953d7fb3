package ui

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed all:dist
var distFS embed.FS

// DistFS returns the embedded dashboard with the "dist" prefix stripped.
func DistFS() (fs.FS, error) {
	return fs.Sub(distFS, "dist")
}

// Handler serves the dashboard and hands API, health and metrics paths to
// api. Paths without an extension fall back to index.html so the
// dashboard's ?repo= links survive a reload; missing assets are 404.
func Handler(api http.Handler) (http.Handler, error) {
	sub, err := DistFS()
	if err != nil {
		return nil, err
	}
	files := http.FileServerFS(sub)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean(r.URL.Path)
		if isBackend(p) {
			api.ServeHTTP(w, r)
			return
		}
		if p == "/" {
			files.ServeHTTP(w, r)
			return
		}

		name := strings.TrimPrefix(p, "/")
		if _, err := fs.Stat(sub, name); err == nil {
			files.ServeHTTP(w, r)
			return
		}
		if strings.Contains(path.Base(name), ".") {
			http.NotFound(w, r)
			return
		}

		r.URL.Path = "/"
		files.ServeHTTP(w, r)
	}), nil
}

func isBackend(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/") || p == "/healthz" || p == "/metrics"
}
