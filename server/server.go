package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"resale-explorer/cache"
	"resale-explorer/models"
	"resale-explorer/services"
	"resale-explorer/utils"
)

//go:embed templates/*
var templateFS embed.FS

// Options configures the HTTP shell.
type Options struct {
	Addr      string
	CacheTTL  time.Duration
	RateLimit float64
	RateBurst int
}

// Server serves the dashboard page and its JSON API.
type Server struct {
	dashboard *services.Dashboard
	options   models.FilterOptions
	defaults  models.FilterCriteria
	cache     *cache.DashboardCache
	limiter   *rate.Limiter
	logger    *utils.Logger
	addr      string
	engine    *gin.Engine
}

// New builds a Server over a dashboard whose canonical table is already
// loaded. defaults is the filter state used for absent query parameters.
func New(d *services.Dashboard, defaults models.FilterCriteria, opts Options, logger *utils.Logger) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}

	s := &Server{
		dashboard: d,
		options:   services.BuildOptions(d.Table()),
		defaults:  defaults,
		cache:     cache.NewDashboardCache(opts.CacheTTL),
		limiter:   rate.NewLimiter(limit, opts.RateBurst),
		logger:    logger,
		addr:      opts.Addr,
	}
	s.engine = s.routes()
	return s
}

func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"price": services.FormatPrice,
		"month": func(t time.Time) string { return t.Format("2006-01") },
		"has": func(list []string, v string) bool {
			for _, s := range list {
				if s == v {
					return true
				}
			}
			return false
		},
		"join": strings.Join,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())
	r.SetHTMLTemplate(newTemplates())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := r.Group("/", s.rateLimit())
	limited.GET("/", s.handleIndex)
	limited.GET("/api/options", s.handleOptions)
	limited.GET("/api/dashboard", s.handleDashboard)
	return r
}

// Handler exposes the router, mainly for tests and the snapshot exporter.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("[server] Shutdown: %v", err)
		}
	}()

	s.logger.Info("[server] Listening on %s", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("[server] Stopped")
	return nil
}

// Render returns the dashboard for c, from the cache when possible. Criteria
// that differ only in flat model order or duplicates share a cache entry, so
// a hit echoes c rather than the criteria it was first rendered for.
func (s *Server) Render(c models.FilterCriteria) *models.Dashboard {
	if d, ok := s.cache.Get(c); ok {
		hit := *d
		hit.Criteria = c
		return &hit
	}
	d := s.dashboard.Render(c)
	s.cache.Set(c, d)
	return d
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("[server] %s %s → %d (%v)",
			c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			s.logger.Warn("[server] Rate limit exceeded for %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"rows":   s.dashboard.Table().Len(),
	})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"options":  s.options,
		"defaults": s.defaults,
	})
}

func (s *Server) handleDashboard(c *gin.Context) {
	criteria, err := ParseCriteria(c.Request.URL.Query(), s.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.Render(criteria))
}

type pageData struct {
	Options   models.FilterOptions
	Criteria  models.FilterCriteria
	Dashboard *models.Dashboard
	Error     string

	SelectAllURL   string
	DeselectAllURL string
}

// flatModelLinks returns page URLs that keep every filter in c but select
// all flat models or none of them.
func flatModelLinks(options models.FilterOptions, c models.FilterCriteria) (all, none string) {
	c.FlatModels = options.FlatModels
	all = "/?" + EncodeCriteria(c).Encode()
	c.FlatModels = nil
	none = "/?" + EncodeCriteria(c).Encode()
	return all, none
}

func (s *Server) handleIndex(c *gin.Context) {
	criteria, err := ParseCriteria(c.Request.URL.Query(), s.defaults)
	if err != nil {
		c.HTML(http.StatusBadRequest, "dashboard.html", pageData{
			Options:  s.options,
			Criteria: s.defaults,
			Error:    err.Error(),
		})
		return
	}
	all, none := flatModelLinks(s.options, criteria)
	c.HTML(http.StatusOK, "dashboard.html", pageData{
		Options:        s.options,
		Criteria:       criteria,
		Dashboard:      s.Render(criteria),
		SelectAllURL:   all,
		DeselectAllURL: none,
	})
}
