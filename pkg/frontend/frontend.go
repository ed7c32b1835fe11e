// Package frontend serves the embedded report viewer
package frontend

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed static
var staticFS embed.FS

type handler struct {
	fileHandler http.Handler
	filesystem  fs.FS
}

// NewHandler creates the frontend HTTP handler with SPA fallback support
func NewHandler() (http.Handler, error) {
	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load frontend filesystem: %w", err)
	}

	h := &handler{
		filesystem:  assets,
		fileHandler: http.FileServer(http.FS(assets)),
	}

	return h, nil
}

// ServeHTTP handles frontend requests with SPA fallback support
func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/")
	if h.fileExists(path) {
		h.fileHandler.ServeHTTP(w, req)
		return
	}

	// Fall back to index.html for SPA routing
	req.URL.Path = "/"
	h.fileHandler.ServeHTTP(w, req)
}

func (h *handler) fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := fs.Stat(h.filesystem, path)
	return err == nil
}
