package server

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"strings"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/webapp/webassets"
	"github.com/go-chi/chi/v5"
)

// vitePaths are the URL prefixes the Vite dev server answers in
// development: its client, module ids, file system access, sources and
// dependencies.
var vitePaths = []string{"/@vite/*", "/@id/*", "/@fs/*", "/src/*", "/node_modules/*"}

func routeToVite(r chi.Router, u *url.URL) {
	proxy := httputil.NewSingleHostReverseProxy(u)
	for _, p := range vitePaths {
		r.Handle(p, proxy)
	}
}

// reservedDirs are top level paths owned by other routes; build output
// under these names is not served.
var reservedDirs = map[string]bool{"public": true, "products": true, "_islands": true}

// assetDirs returns the dist directories to serve: "assets" and every top
// level directory the manifest references.
func assetDirs(dirs []string) []string {
	out := []string{"assets"}
	for _, d := range dirs {
		if d == "assets" || reservedDirs[d] || strings.HasPrefix(d, ".") {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (s *Server) routeAssets(r chi.Router) {
	for _, dir := range assetDirs(s.manifest.Dirs()) {
		r.Get("/"+dir+"/*", s.assetHandler(dir))
	}
}

// assetHandler serves built files under dir of the dist directory.
func (s *Server) assetHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean(chi.URLParam(r, "*"))
		if !fs.ValidPath(name) || name == "." {
			http.NotFound(w, r)
			return
		}
		assets := webassets.RelativeFS(dir, os.DirFS(s.cfg.DistDir))
		if fi, err := fs.Stat(assets, name); err == nil && fi.IsDir() {
			http.NotFound(w, r)
			return
		}
		if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		code, err := webassets.ServeFile(w, assets, name)
		if err == nil {
			return
		}
		if code == http.StatusNotFound || errors.Is(err, fs.ErrNotExist) {
			w.Header().Del("Cache-Control")
			w.Header().Del("Content-Type")
			http.NotFound(w, r)
			return
		}
		ctxlog.Logger(r.Context()).Error("asset", "dir", dir, "name", name, "status", code, "error", err)
		http.Error(w, http.StatusText(code), code)
	}
}
