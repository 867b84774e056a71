package server

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"cloudeng.io/logging/ctxlog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pthm/islands"
	"github.com/pthm/islands/internal/catalog"
	"github.com/pthm/islands/internal/logging"
)

// Handler returns the storefront's HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.withCatalog)

	r.Get("/", s.handleHome)
	r.Get("/products/{id}", s.handleProduct)
	r.Get("/admin", s.handleAdmin)
	r.Handle(islands.DefaultFragmentPrefix+"*", s.renderer.Handler(islands.DefaultFragmentPrefix))
	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(s.cfg.PublicDir))))

	if s.viteURL != nil {
		routeToVite(r, s.viteURL)
	} else {
		s.routeAssets(r)
	}
	return r
}

func (s *Server) withCatalog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(catalog.WithCatalog(r.Context(), s.catalog)))
	})
}

// productCard is one rendered card on the home page.
type productCard struct {
	Product catalog.Product
	HTML    template.HTML
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	products := s.catalog.Products()
	reqs := []islands.Request{
		{ID: "Cart", Mode: islands.ModeClientOnly},
		{ID: "TestIsland", Props: islands.Props{"islandId": 789}},
		{ID: "Counter", Props: islands.Props{"label": "Visitors"}},
	}
	header := len(reqs)
	for _, p := range products {
		reqs = append(reqs, islands.Request{ID: "ProductCard", Props: islands.Props{"productId": p.ID}})
	}

	b, err := s.renderer.Render(r.Context(), reqs)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	cards := make([]productCard, len(products))
	for i, p := range products {
		cards[i] = productCard{Product: p, HTML: islandHTML(b.Islands[header+i])}
	}
	s.renderContent(w, r, "home.html", b, pageData{
		Title: "Home - Marketplace",
		Data:  struct{ Cards []productCard }{cards},
	})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	product, ok := s.catalog.Get(id)
	if !ok {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	b, err := s.renderer.Render(r.Context(), []islands.Request{
		{ID: "Cart", Mode: islands.ModeClientOnly},
		{ID: "ProductCard", Props: islands.Props{"productId": id}},
		{ID: "Counter", Props: islands.Props{"label": "Quantity", "start": 1}},
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.renderContent(w, r, "product.html", b, pageData{
		Title: product.Name + " - Marketplace",
		Data:  struct{ Product catalog.Product }{product},
	})
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	html, err := s.pages.standalone("admin", pageData{
		Title:   "Admin - Marketplace",
		Scripts: s.entryScripts(s.cfg.AdminEntry),
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeHTML(r.Context(), w, http.StatusOK, html)
}

// renderContent renders a content page around a batch and replaces the
// preload placeholder with the batch's tags.
func (s *Server) renderContent(w http.ResponseWriter, r *http.Request, name string, b *islands.Batch, data pageData) {
	data.Scripts = s.entryScripts(s.cfg.ClientEntry)
	data.Islands = make(map[string]template.HTML, len(b.Islands))
	for _, isl := range b.Islands {
		if _, ok := data.Islands[isl.ID]; !ok {
			data.Islands[isl.ID] = islandHTML(isl)
		}
	}
	html, err := s.pages.content(name, data)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeHTML(r.Context(), w, http.StatusOK, islands.InjectPreload(html, b.PreloadTags))
}

// entryScripts returns the script tags that boot a build entry: the Vite
// client and the entry source in development, the built chunk otherwise.
func (s *Server) entryScripts(entry string) template.HTML {
	if s.viteURL != nil {
		return template.HTML(`<script type="module" src="/@vite/client"></script>` +
			`<script type="module" src="/` + template.HTMLEscapeString(entry) + `"></script>`)
	}
	return template.HTML(s.manifest.EntryTags(entry))
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	ctxlog.Logger(r.Context()).Error("page render failed", "path", r.URL.Path, "error", err)
	html, perr := s.pages.standalone("error", pageData{
		Title: "Something broke!",
		Data:  "The page could not be rendered.",
	})
	if perr != nil {
		http.Error(w, "Something broke!", http.StatusInternalServerError)
		return
	}
	writeHTML(r.Context(), w, http.StatusInternalServerError, html)
}

func writeHTML(ctx context.Context, w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, html); err != nil {
		ctxlog.Logger(ctx).Warn("response write failed", "error", err)
	}
}
