// Package web embeds the triage dashboard.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed dist
var assets embed.FS

// Dashboard serves the embedded single-page UI. Paths that do not name an
// asset get index.html, so a reload on a client-side tab still works.
type Dashboard struct {
	files  fs.FS
	server http.Handler
}

// NewDashboard opens the embedded dist directory.
func NewDashboard() (*Dashboard, error) {
	files, err := fs.Sub(assets, "dist")
	if err != nil {
		return nil, err
	}
	return &Dashboard{files: files, server: http.FileServerFS(files)}, nil
}

// Has reports whether name is a regular file of the dashboard.
func (d *Dashboard) Has(name string) bool {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return false
	}
	info, err := fs.Stat(d.files, name)
	return err == nil && !info.IsDir()
}

func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if d.Has(r.URL.Path) {
		d.server.ServeHTTP(w, r)
		return
	}
	index := r.Clone(r.Context())
	index.URL.Path = "/"
	d.server.ServeHTTP(w, index)
}
