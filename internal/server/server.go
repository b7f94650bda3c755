// Package server provides the HTTP server and handlers.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/elevacare/podsite/internal/config"
	"github.com/elevacare/podsite/internal/feed"
	"github.com/elevacare/podsite/internal/markdown"
	"github.com/elevacare/podsite/internal/model"
	"github.com/elevacare/podsite/internal/schema"
	"github.com/elevacare/podsite/internal/sitemap"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// cacheControl is sent on the machine-readable endpoints; pages rely on
// the feed service's own cache window instead.
const cacheControl = "public, max-age=3600, stale-while-revalidate=86400"

// Server is the main HTTP server.
type Server struct {
	cfg       *config.Config
	feeds     *feed.Service
	router    chi.Router
	templates *template.Template
	log       zerolog.Logger
}

// New creates a new server.
func New(cfg *config.Config, feeds *feed.Service, logger zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"rawHTML":      func(s string) template.HTML { return template.HTML(s) },
		"pubDate":      formatPubDate,
		"episodeLabel": episodeLabel,
		"inc":          func(i int) int { return i + 1 },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		feeds:     feeds,
		templates: tmpl,
		log:       logger,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httprate.LimitByIP(120, time.Minute))

	// Serve static files.
	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Pages.
	r.Get("/", s.handleHome)
	r.Get("/episode/{id}", s.handleEpisode)

	// Machine-readable mirrors.
	r.Get("/episodes.md", s.handleEpisodeIndexMarkdown)
	r.Get("/llm.txt", s.handleLLMText)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/robots.txt", s.handleRobots)

	r.Get("/healthz", s.handleHealthz)

	s.router = r
}

// ServeHTTP makes the server usable directly with httptest and http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// --- Page Handlers ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	meta, err := s.feeds.Meta(r.Context())
	if err != nil {
		s.renderError(w, err)
		return
	}
	episodes, err := s.feeds.Episodes(r.Context(), 0)
	if err != nil {
		s.renderError(w, err)
		return
	}

	seriesSchema, err := json.Marshal(schema.PodcastSeries(s.cfg.Site, meta.FeedURL))
	if err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, "home.html", map[string]any{
		"Site":      s.cfg.Site,
		"Meta":      meta,
		"Episodes":  episodes,
		"Schema":    template.JS(seriesSchema),
		"PageTitle": s.cfg.Site.Title,
		"FeedURL":   meta.FeedURL,
	})
}

func (s *Server) handleEpisode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// /episode/{id}.md serves the Markdown mirror of the same episode.
	if mdID, ok := strings.CutSuffix(id, ".md"); ok {
		s.serveEpisodeMarkdown(w, r, mdID)
		return
	}

	ep, err := s.feeds.Episode(r.Context(), id)
	if errors.Is(err, feed.ErrNotFound) {
		s.renderNotFound(w)
		return
	}
	if err != nil {
		s.renderError(w, err)
		return
	}

	episodeSchema, err := json.Marshal(schema.PodcastEpisode(s.cfg.Site, ep))
	if err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, "episode.html", map[string]any{
		"Site":      s.cfg.Site,
		"Episode":   ep,
		"Schema":    template.JS(episodeSchema),
		"PageTitle": ep.Title + " — " + s.cfg.Site.Title,
	})
}

// --- Machine-readable Handlers ---

func (s *Server) serveEpisodeMarkdown(w http.ResponseWriter, r *http.Request, id string) {
	ep, err := s.feeds.Episode(r.Context(), id)
	if errors.Is(err, feed.ErrNotFound) {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, markdown.NotFound())
		return
	}
	if err != nil {
		http.Error(w, "feed unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	fmt.Fprint(w, markdown.EpisodeDetail(s.cfg.Site, ep))
}

func (s *Server) handleEpisodeIndexMarkdown(w http.ResponseWriter, r *http.Request) {
	meta, err := s.feeds.Meta(r.Context())
	if err != nil {
		http.Error(w, "feed unavailable", http.StatusBadGateway)
		return
	}
	episodes, err := s.feeds.Episodes(r.Context(), 0)
	if err != nil {
		http.Error(w, "feed unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	fmt.Fprint(w, markdown.EpisodeIndex(s.cfg.Site, meta, episodes))
}

func (s *Server) handleLLMText(w http.ResponseWriter, r *http.Request) {
	meta, err := s.feeds.Meta(r.Context())
	if err != nil {
		http.Error(w, "feed unavailable", http.StatusBadGateway)
		return
	}
	episodes, err := s.feeds.Episodes(r.Context(), 0)
	if err != nil {
		http.Error(w, "feed unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	fmt.Fprint(w, markdown.LLMText(s.cfg.Site, meta, len(episodes)))
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	episodes, err := s.feeds.Episodes(r.Context(), 0)
	if err != nil {
		http.Error(w, "feed unavailable", http.StatusBadGateway)
		return
	}
	out, err := sitemap.Build(s.cfg.Site.BaseURL, episodes, time.Now())
	if err != nil {
		http.Error(w, "sitemap error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	w.Write(out)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /static/\n\nSitemap: %s/sitemap.xml\n", s.cfg.Site.BaseURL)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// --- Helpers ---

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("template error")
		http.Error(w, "Render error", http.StatusInternalServerError)
	}
}

func (s *Server) renderNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	data := map[string]any{"Site": s.cfg.Site, "PageTitle": "Not Found — " + s.cfg.Site.Title}
	if err := s.templates.ExecuteTemplate(w, "notfound.html", data); err != nil {
		s.log.Error().Err(err).Msg("template error")
	}
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("request failed")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	data := map[string]any{"Site": s.cfg.Site, "PageTitle": s.cfg.Site.Title}
	if terr := s.templates.ExecuteTemplate(w, "error.html", data); terr != nil {
		s.log.Error().Err(terr).Msg("template error")
	}
}

func formatPubDate(raw string) string {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return raw
}

func episodeLabel(ep model.Episode) string {
	switch {
	case ep.Season > 0 && ep.Episode > 0:
		return fmt.Sprintf("S%d · E%d", ep.Season, ep.Episode)
	case ep.Episode > 0:
		return fmt.Sprintf("E%d", ep.Episode)
	}
	return ""
}
