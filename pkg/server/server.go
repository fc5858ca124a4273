// Package server exposes the dashboard views as a JSON HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harrisonrobin/tasksheet/pkg/aggregate"
	"github.com/harrisonrobin/tasksheet/pkg/board"
	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"github.com/harrisonrobin/tasksheet/pkg/logger"
	"github.com/harrisonrobin/tasksheet/pkg/normalize"
	"github.com/harrisonrobin/tasksheet/pkg/render"
	"github.com/harrisonrobin/tasksheet/pkg/source"
)

const shutdownTimeout = 5 * time.Second

// Loader produces a snapshot of a source. *board.Board implements it.
type Loader interface {
	Load(ctx context.Context, src source.Source) board.Result
}

type Server struct {
	loader Loader
	src    source.Source
	opts   aggregate.Options
	router *gin.Engine
}

func New(loader Loader, src source.Source, opts aggregate.Options) *Server {
	s := &Server{loader: loader, src: src, opts: opts}

	r := gin.New()
	r.Use(gin.Recovery(), requestLog())
	r.GET("/healthz", s.health)
	api := r.Group("/api")
	api.GET("/tasks", s.tasks)
	api.GET("/summary", s.summary)
	api.GET("/priority", s.priority)
	api.GET("/oldest", s.oldest)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errc := make(chan error, 1)
	go func() {
		logger.Logger.Infow("dashboard listening", "addr", addr, "source", s.src.ID())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "source": s.src.ID()})
}

// load answers 503 with the diagnostic when the sheet cannot be read.
func (s *Server) load(c *gin.Context) (board.Result, bool) {
	res := s.loader.Load(c.Request.Context(), s.src)
	if !res.OK() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": res.Err})
		return res, false
	}
	return res, true
}

type taskQuery struct {
	aggregate.Filter
	// All includes completed tasks.
	All bool `form:"all"`
}

func (s *Server) tasks(c *gin.Context) {
	var q taskQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.Priority != "" {
		q.Priority = normalize.ClassifyPriority(string(q.Priority))
	}
	res, ok := s.load(c)
	if !ok {
		return
	}
	tasks := res.Snapshot.Tasks
	if !q.All {
		tasks = aggregate.Pending(tasks)
	}
	tasks = q.Filter.Apply(tasks)
	c.JSON(http.StatusOK, gin.H{
		"snapshot":    res.Snapshot.ID,
		"count":       len(tasks),
		"tasks":       tasks,
		"departments": aggregate.Departments(res.Snapshot.Tasks),
		"officers":    s.opts.Officers(res.Snapshot.Tasks, q.Department),
	})
}

func (s *Server) summary(c *gin.Context) {
	res, ok := s.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, render.Summarize(res.Snapshot, s.opts))
}

func (s *Server) priority(c *gin.Context) {
	res, ok := s.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, render.Prioritize(res.Snapshot, s.opts))
}

func (s *Server) oldest(c *gin.Context) {
	res, ok := s.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot": res.Snapshot.ID,
		"oldest":   aggregate.OldestPending(res.Snapshot.Tasks),
	})
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
		}
		switch {
		case status >= 500:
			logger.Logger.Errorw("request", kv...)
		case status >= 400:
			logger.Logger.Warnw("request", kv...)
		default:
			logger.Logger.Debugw("request", kv...)
		}
	}
}
