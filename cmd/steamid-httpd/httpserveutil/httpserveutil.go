package httpserveutil

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

func BadRequest(w http.ResponseWriter, format string, a ...any) error {
	return writeError(w, http.StatusBadRequest, format, a...)
}

func NotFound(w http.ResponseWriter, format string, a ...any) error {
	return writeError(w, http.StatusNotFound, format, a...)
}

func writeError(w http.ResponseWriter, code int, format string, a ...any) error {
	err := fmt.Errorf(format, a...)
	http.Error(w, err.Error(), code)
	return err
}

// InternalError hides the cause from the client and returns it for logging.
func InternalError(w http.ResponseWriter, format string, a ...any) error {
	err := fmt.Errorf(format, a...)
	writeError(w, http.StatusInternalServerError, "internal error")
	return err
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts f to an http.HandlerFunc that writes one access log line per
// request, including the error f returned.
func Handle(logger *slog.Logger, f ErrorHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		err := f(rec, r)
		elapsed := time.Since(start)

		remoteaddr := r.Header.Get("X-Forwarded-For")
		if remoteaddr == "" {
			remoteaddr = r.RemoteAddr
		}

		attrs := []slog.Attr{
			slog.String("remote_addr", remoteaddr),
			slog.String("method", r.Method),
			slog.String("uri", r.RequestURI),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", elapsed),
		}

		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(r.Context(), slog.LevelWarn, "request failed", attrs...)
			return
		}

		logger.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) error {
	body, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))

	return nil
}

func NewServer(addr string, handler http.Handler, tlsconf *tls.Config, logger *slog.Logger) *Server {
	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			TLSConfig:         tlsconf,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type Server struct {
	*http.Server
	logger *slog.Logger
}

func (s *Server) Shutdown() error {
	d := 30 * time.Second
	timeout, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	if err := s.Server.Shutdown(timeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// Run serves on s.Addr until ctx is done, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	errc := make(chan error, 1)

	go func() {
		if s.Server.TLSConfig != nil {
			s.logger.Info("serving https", slog.String("addr", listener.Addr().String()))
			errc <- s.Server.ServeTLS(listener, "", "")
		} else {
			s.logger.Info("serving http", slog.String("addr", listener.Addr().String()))
			errc <- s.Server.Serve(listener)
		}
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")

		if err := s.Shutdown(); err != nil {
			return err
		}

		return nil
	}
}

type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

type Router interface {
	Routes(logger *slog.Logger) []Route
}

func Register(r *mux.Router, logger *slog.Logger, routers ...Router) {
	for _, router := range routers {
		for _, route := range router.Routes(logger) {
			r.Handle(route.Path, route.Handler).Methods(route.Method)
		}
	}
}
