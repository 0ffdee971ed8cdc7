// Package server exposes the label pipeline over HTTP for print previews.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/etiket/pkg/buildinfo"
	"github.com/matzehuels/etiket/pkg/errors"
	"github.com/matzehuels/etiket/pkg/label/template"
	"github.com/matzehuels/etiket/pkg/observability"
	"github.com/matzehuels/etiket/pkg/pipeline"
	"github.com/matzehuels/etiket/pkg/rows"
)

// MaxBodyBytes bounds the size of a labels request.
const MaxBodyBytes = 8 << 20

// Response headers set on rendered artifacts.
const (
	HeaderBatchID = "X-Etiket-Batch"
	HeaderDefects = "X-Etiket-Defects"
	HeaderCache   = "X-Etiket-Cache"
)

// Defaults applied to requests that leave an option empty.
type Defaults struct {
	Resolver    string
	URLBase     string
	Concurrency int
}

// Server serves the preview API.
type Server struct {
	runner   *pipeline.Runner
	template template.Template
	defaults Defaults
	logger   *log.Logger
}

// New creates a server that lays out every request's labels with tmpl.
// A nil logger discards output.
func New(runner *pipeline.Runner, tmpl template.Template, defaults Defaults, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		runner:   runner,
		template: tmpl,
		defaults: defaults,
		logger:   logger,
	}
}

type labelsRequest struct {
	Rows     json.RawMessage `json:"rows"`
	Select   []int           `json:"select"`
	Format   string          `json:"format"`
	Resolver string          `json:"resolver"`
	URLBase  string          `json:"url_base"`
	Columns  int             `json:"columns"`
	Title    string          `json:"title"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/template", s.handleTemplate)
		r.Post("/labels", s.handleLabels)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.template)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	var req labelsRequest
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidRows, "no rows to print"))
		return
	}

	set, err := rows.ImportJSON(req.Rows)
	if err != nil {
		writeError(w, err)
		return
	}

	format := req.Format
	if q := r.URL.Query().Get("format"); q != "" {
		format = q
	}
	if format == "" {
		format = pipeline.FormatHTML
	}

	// The template is server configuration; requests only supply rows.
	tmpl := s.template
	opts := pipeline.Options{
		Template:    &tmpl,
		Rows:        set.Rows,
		Select:      req.Select,
		Formats:     []string{format},
		Resolver:    firstNonEmpty(req.Resolver, s.defaults.Resolver),
		URLBase:     firstNonEmpty(req.URLBase, s.defaults.URLBase),
		Columns:     req.Columns,
		Title:       req.Title,
		Concurrency: s.defaults.Concurrency,
		Logger:      s.logger,
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	for _, d := range result.Batch.Defects {
		s.logger.Warn("label defect", "batch", result.BatchID, "defect", d.Error())
	}

	cacheState := "miss"
	if result.CacheInfo.RenderHit {
		cacheState = "hit"
	}
	w.Header().Set("Content-Type", pipeline.MediaTypes[format])
	w.Header().Set(HeaderBatchID, result.BatchID.String())
	w.Header().Set(HeaderDefects, strconv.Itoa(result.Stats.Defects))
	w.Header().Set(HeaderCache, cacheState)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		observability.Server().OnRequest(r.Context(), r.Method, route, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
