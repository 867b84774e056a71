// Package server implements the storefront: server-rendered pages with
// islands, the admin SPA shell, the island fragment endpoint and asset
// serving for development and production builds.
package server

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/webapp"
	"cloudeng.io/webapp/devserver"
	"github.com/pthm/islands"
	"github.com/pthm/islands/internal/catalog"
	"github.com/pthm/islands/internal/components"
	"github.com/pthm/islands/internal/config"
	"github.com/pthm/islands/lib/manifest"
)

// Server serves the storefront.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  *catalog.Catalog
	manifest *manifest.Manifest
	renderer *islands.Renderer
	pages    *pages
	viteURL  *url.URL
}

// Option configures a Server.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry *islands.Registry
	catalog  *catalog.Catalog
	manifest *manifest.Manifest
}

// WithLogger sets the server's base logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry replaces the storefront's component registry.
func WithRegistry(reg *islands.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithCatalog replaces the catalog named by the configuration.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithManifest replaces the build manifest named by the configuration.
func WithManifest(m *manifest.Manifest) Option {
	return func(o *options) { o.manifest = m }
}

// New creates a Server. It loads the catalog and the build manifest; a
// missing manifest is logged and treated as empty. In development with
// cfg.ViteServer set, Vite requests are proxied there.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = ctxlog.Logger(ctx)
	}
	ctx = ctxlog.WithLogger(ctx, o.logger)
	if o.registry == nil {
		o.registry = components.Registry()
	}
	if o.catalog == nil {
		c, err := loadCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		o.catalog = c
	}
	if o.manifest == nil {
		o.manifest = manifest.LoadOrEmpty(ctx, cfg.ManifestPath)
	}
	o.manifest = o.manifest.WithBase(cfg.AssetBase)

	key, err := secretKey(cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	enc, err := islands.NewEncoder(key)
	if err != nil {
		return nil, fmt.Errorf("server: fragment encoder: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		logger:   o.logger,
		catalog:  o.catalog,
		manifest: o.manifest,
		pages:    newPages(),
		renderer: islands.NewRenderer(o.registry,
			islands.WithDevMode(cfg.IsDev()),
			islands.WithManifest(o.manifest),
			islands.WithEncoder(enc),
		),
	}
	if cfg.IsDev() && cfg.ViteServer != "" {
		u, err := url.Parse(cfg.ViteServer)
		if err != nil {
			return nil, fmt.Errorf("server: vite_server: %w", err)
		}
		s.viteURL = u
	}
	return s, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

func secretKey(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("server: generate secret key: %w", err)
	}
	return key, nil
}

// Renderer returns the server's island renderer.
func (s *Server) Renderer() *islands.Renderer {
	return s.renderer
}

// Serve listens on the configured address until ctx is canceled. In
// development without a configured Vite server it first starts one in the
// client directory and fails if that does not come up.
func (s *Server) Serve(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, s.logger)
	if s.cfg.IsDev() && s.viteURL == nil {
		vite := devserver.NewServer(ctx, s.cfg.ClientDir, "npx", "vite", "--host")
		defer vite.Close()
		s.logger.Info("starting vite dev server", "dir", s.cfg.ClientDir)
		u, err := vite.StartAndWaitForURL(ctx, os.Stdout, devserver.NewViteURLExtractor(nil))
		if err != nil {
			return fmt.Errorf("server: vite dev server: %w", err)
		}
		s.viteURL = u
	}

	ln, srv, err := webapp.NewHTTPServer(ctx, s.cfg.Addr, s.Handler())
	if err != nil {
		return err
	}
	s.logger.Info("server running", "addr", ln.Addr().String(), "env", s.cfg.Env)
	return webapp.ServeWithShutdown(ctx, ln, srv, s.cfg.ShutdownGrace)
}
