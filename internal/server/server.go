// Package server exposes the /completion backend that turns a draft into a
// revised markdown article.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/csheth/cowrite/internal/completion"
	"github.com/csheth/cowrite/internal/llm"
	"github.com/csheth/cowrite/internal/logging"
)

const defaultRequestTimeout = 2 * time.Minute

var errNoSections = errors.New("draft has no sections")

// Options tune the HTTP surface.
type Options struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// Server wires the LLM client behind gin routes.
type Server struct {
	llm     llm.Client
	opts    Options
	metrics *metrics
	engine  *gin.Engine

	// inflight coalesces identical drafts that arrive while one is being revised.
	inflight singleflight.Group
}

type errorBody struct {
	Error string `json:"error"`
}

// New builds a Server with its routes registered.
func New(client llm.Client, opts Options) (*Server, error) {
	if client == nil {
		return nil, errors.New("llm client required")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	s := &Server{
		llm:     client,
		opts:    opts,
		metrics: newMetrics(),
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(recovery(), requestID(), accessLog(), s.instrument(), corsPolicy(s.opts.CORSOrigins))
	engine.POST("/completion", s.handleCompletion)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	return engine
}

func (s *Server) handleCompletion(c *gin.Context) {
	var req completion.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.completions.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if len(req.Sections) == 0 {
		s.metrics.completions.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, errorBody{Error: errNoSections.Error()})
		return
	}
	log := logging.FromContext(c.Request.Context())

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	defer cancel()

	text, shared, err := s.revise(ctx, req)
	if err != nil {
		outcome := "llm_error"
		if errors.Is(ctx.Err(), context.Canceled) {
			outcome = "abandoned"
		}
		s.metrics.completions.WithLabelValues(outcome).Inc()
		log.Error("revision failed", "llm", s.llm.Name(), "sections", len(req.Sections), "shared", shared, "error", err)
		c.JSON(http.StatusBadGateway, errorBody{Error: err.Error()})
		return
	}
	outcome := "ok"
	if shared {
		outcome = "shared"
	}
	s.metrics.completions.WithLabelValues(outcome).Inc()
	log.Info("revision served", "llm", s.llm.Name(), "sections", len(req.Sections), "shared", shared, "chars", len(text))
	c.JSON(http.StatusOK, completion.Response{Completion: strings.TrimSpace(text)})
}

// revise runs the model once per distinct draft currently in flight. The
// shared call keeps the first caller's values but not its cancellation. Each
// caller stops waiting when its own ctx ends.
func (s *Server) revise(ctx context.Context, req completion.Request) (string, bool, error) {
	results := s.inflight.DoChan(draftKey(req), func() (_ any, err error) {
		// DoChan re-panics on its own goroutine, out of reach of the
		// recovery middleware.
		defer func() {
			if v := recover(); v != nil {
				err = providerPanic{value: v}
			}
		}()
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.RequestTimeout)
		defer cancel()
		start := time.Now()
		text, err := s.llm.Revise(callCtx, req.Title, req.Sections)
		s.metrics.reviseDuration.Observe(time.Since(start).Seconds())
		return text, err
	})
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case res := <-results:
		var p providerPanic
		if errors.As(res.Err, &p) {
			panic(p.value)
		}
		text, _ := res.Val.(string)
		return text, res.Shared, res.Err
	}
}

// providerPanic carries a panic out of the shared call so it can be raised
// again on each waiting handler's goroutine.
type providerPanic struct {
	value any
}

func (p providerPanic) Error() string {
	return fmt.Sprintf("llm provider panicked: %v", p.value)
}

func draftKey(req completion.Request) string {
	buf, _ := json.Marshal(req)
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "llm": s.llm.Name()})
}

// ListenAndServe runs until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
