// Package server exposes the converter over HTTP.
//
//	POST /convert?mode=dto&root=User   body: JSON text   response: {"content": "...", "error": "..."}
//	GET  /healthz
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mcncl/json2nest/internal/config"
	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/logger"
	"github.com/mcncl/json2nest/transcoder"
)

// MaxBodyBytes bounds the size of a document accepted by /convert.
const MaxBodyBytes = 10 << 20

const shutdownTimeout = 5 * time.Second

var (
	validate     = validator.New()
	queryDecoder = schema.NewDecoder()
)

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// ConvertParams are the query parameters of POST /convert.
type ConvertParams struct {
	Mode string `schema:"mode" validate:"omitempty,oneof=interface dto"`
	Root string `schema:"root" validate:"omitempty,max=128"`
}

// Server serves conversions for one configuration
type Server struct {
	config  *config.Config
	logger  *zap.SugaredLogger
	limiter *rate.Limiter
}

// New creates a Server. A zero rate limit disables limiting.
func New(cfg *config.Config, log *zap.SugaredLogger) *Server {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	limit := rate.Inf
	if cfg.Server.RateLimit > 0 {
		limit = rate.Limit(cfg.Server.RateLimit)
	}
	burst := cfg.Server.Burst
	if burst < 1 {
		burst = 1
	}

	return &Server{
		config:  cfg,
		logger:  logger.OrNop(log),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /convert", withRateLimit(s.limiter, http.HandlerFunc(s.handleConvert)))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return withRequestID(withLogging(s.logger, mux))
}

// ListenAndServe serves on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr)
	if err != nil {
		return errors.NewServerError(fmt.Sprintf("failed to listen on %s", s.config.Server.Addr), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infow("server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.NewServerError("server stopped unexpectedly", err)
	case <-ctx.Done():
		s.logger.Infow("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.NewServerError("graceful shutdown failed", err)
		}
		return nil
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var params ConvertParams
	if err := queryDecoder.Decode(&params, r.URL.Query()); err != nil {
		writeResult(w, http.StatusBadRequest, transcoder.Result{Error: fmt.Sprintf("invalid query: %v", err)})
		return
	}
	if err := validate.Struct(params); err != nil {
		writeResult(w, http.StatusBadRequest, transcoder.Result{Error: fmt.Sprintf("invalid query: %v", err)})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeResult(w, http.StatusRequestEntityTooLarge, transcoder.Result{Error: "request body too large"})
			return
		}
		writeResult(w, http.StatusBadRequest, transcoder.Result{Error: fmt.Sprintf("failed to read request body: %v", err)})
		return
	}

	opts := transcoder.Options{
		RootName: params.Root,
		Config:   s.config,
		Logger:   s.logger.With("request_id", RequestID(r.Context())),
	}
	if params.Mode != "" {
		opts.Mode = transcoder.ParseMode(params.Mode)
	}

	res := transcoder.New(opts).ConvertResult(string(body))
	if res.Error != "" {
		writeResult(w, http.StatusBadRequest, res)
		return
	}
	writeResult(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"status":"ok"}`)
}

func writeResult(w http.ResponseWriter, status int, res transcoder.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}
