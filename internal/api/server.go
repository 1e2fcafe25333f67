// Package api serves a dashboard layout over HTTP.
//
// The server is a thin JSON surface over one [state.Manager] and one
// [dragdrop.Controller]. Every layout operation maps to a route; remote
// pointers feed the controller through POST /pointer so a browser front end
// can reuse the same gesture rules as the terminal editor.
//
// # Routes
//
//	GET    /layout                  current widgets, history and edit state
//	PUT    /layout                  replace all widgets
//	GET    /layout/export?format=   json, yaml, cbor, dot or svg
//	POST   /widgets                 add a widget
//	GET    /widgets/{id}            one widget
//	PATCH  /widgets/{id}            update size, position or settings
//	DELETE /widgets/{id}            remove a widget
//	POST   /widgets/{id}/move       move to {col,row}
//	POST   /widgets/{id}/resize     resize to {size} with an optional anchor
//	POST   /swap                    swap {a,b}
//	POST   /compact                 pull widgets up
//	POST   /undo, /redo             walk the history
//	PUT    /edit-mode               {enabled}
//	POST   /pointer                 down, move, up or cancel
//	GET    /pointer                 current gesture preview
//	POST   /flush                   persist now
//	GET    /version                 build information
//
// Errors are returned as {"error":{"code":...,"message":...}} with a status
// derived from the error code.
package api

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gridboard/pkg/dragdrop"
	"github.com/matzehuels/gridboard/pkg/state"
)

// shutdownTimeout bounds graceful shutdown, including the final flush.
const shutdownTimeout = 5 * time.Second

// Server exposes a layout over HTTP.
type Server struct {
	mgr    *state.Manager
	ctrl   *dragdrop.Controller
	logger *log.Logger
	router chi.Router
}

// New creates a server for mgr. The controller drives POST /pointer; it must
// have been built for the same manager.
func New(mgr *state.Manager, ctrl *dragdrop.Controller, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{mgr: mgr, ctrl: ctrl, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/layout", func(r chi.Router) {
		r.Get("/", s.handleLayout)
		r.Put("/", s.handleReplace)
		r.Get("/export", s.handleExport)
	})
	r.Route("/widgets", func(r chi.Router) {
		r.Post("/", s.handleAdd)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleWidget)
			r.Patch("/", s.handleUpdate)
			r.Delete("/", s.handleRemove)
			r.Post("/move", s.handleMove)
			r.Post("/resize", s.handleResize)
		})
	})
	r.Post("/swap", s.handleSwap)
	r.Post("/compact", s.handleCompact)
	r.Post("/undo", s.handleUndo)
	r.Post("/redo", s.handleRedo)
	r.Put("/edit-mode", s.handleEditMode)
	r.Get("/pointer", s.handlePreview)
	r.Post("/pointer", s.handlePointer)
	r.Post("/flush", s.handleFlush)
	r.Get("/version", s.handleVersion)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully and flushes the layout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving layout", "addr", l.Addr().String())
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	err := srv.Shutdown(shutdownCtx)
	s.ctrl.PointerCancel()
	if ferr := s.mgr.Flush(shutdownCtx); err == nil {
		err = ferr
	}
	return err
}

// ListenAndServe listens on addr and calls [Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// requestLogger logs each request at debug level, and server errors at warn.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Warn("request failed", fields...)
				return
			}
			logger.Debug("request", fields...)
		})
	}
}
