// Package server exposes the path codecs over HTTP.
//
// Every endpoint takes and returns JSON. Conversions run through a shared
// [pipeline.Runner], so the API and the CLI use the same cache entries and
// error codes.
//
//	POST /v1/run        edges   -> tree, encoding and chains
//	POST /v1/expand     edges   -> tree
//	POST /v1/collapse   tree    -> edges
//	POST /v1/encode     edges   -> nested-list encoding
//	POST /v1/decode     encoding -> tree
//	POST /v1/decompose  edges   -> chains and linkers
//	POST /v1/recompose  chains  -> edges
//	POST /v1/render     edges   -> drawing (?format=svg|png|dot)
//	GET  /healthz
//	GET  /metrics
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status from [errors.HTTPStatus].
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/neuronpath/pkg/pipeline"
)

// Config holds the listener settings and the default run options.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64

	// Defaults applies to requests that omit options.
	Defaults pipeline.Options
}

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	metrics http.Handler
	logger  *log.Logger
	cfg     Config
	router  chi.Router
}

// New builds the router. metrics may be nil to leave /metrics unmounted.
func New(runner *pipeline.Runner, metrics http.Handler, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 4 << 20
	}
	s := &Server{runner: runner, metrics: metrics, logger: logger, cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/run", s.handleRun)
		r.Post("/expand", s.handleExpand)
		r.Post("/collapse", s.handleCollapse)
		r.Post("/encode", s.handleEncode)
		r.Post("/decode", s.handleDecode)
		r.Post("/decompose", s.handleDecompose)
		r.Post("/recompose", s.handleRecompose)
		r.Post("/render", s.handleRender)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
