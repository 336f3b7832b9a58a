package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/mc-auth/apps"
	"github.com/jrsteele09/mc-auth/auth"
	"github.com/jrsteele09/mc-auth/internal/config"
	"github.com/jrsteele09/mc-auth/metrics"
	"github.com/jrsteele09/mc-auth/server/authflowrepo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Grants  *auth.GrantService
	Apps    *apps.Service
	DB      Pinger
	Metrics metrics.Recorder
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *zerolog.Logger
	// DemoFlows defaults to an in-memory repo.
	DemoFlows authflowrepo.Repo
}

type Server struct {
	env       string
	baseURL   string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	grants    *auth.GrantService
	apps      *apps.Service
	db        Pinger
	metrics   metrics.Recorder
	gatherer  prometheus.Gatherer
	sessions  *SessionManager
	templates *template.Template
	demo      *oauth2.Config
	demoFlows authflowrepo.Repo
	log       zerolog.Logger
	nowTime   func() time.Time
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Grants == nil {
		return nil, fmt.Errorf("[Server New] grant service is required")
	}
	if deps.Apps == nil {
		return nil, fmt.Errorf("[Server New] app service is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("[Server New] database is required")
	}

	sessions, err := NewSessionManager(cfg, cfg.GetBaseURL())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session manager: %w", err)
	}
	templates, err := ParseTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		baseURL:   cfg.GetBaseURL(),
		mux:       http.NewServeMux(),
		config:    cfg,
		grants:    deps.Grants,
		apps:      deps.Apps,
		db:        deps.DB,
		metrics:   deps.Metrics,
		gatherer:  deps.Gatherer,
		sessions:  sessions,
		templates: templates,
		demoFlows: deps.DemoFlows,
		log:       log.Logger,
		nowTime:   time.Now,
	}
	if deps.Logger != nil {
		s.log = *deps.Logger
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoop()
	}
	if s.demoFlows == nil {
		s.demoFlows = authflowrepo.NewInMemoryRepo()
	}
	if id, secret := cfg.GetDemoClientID(), cfg.GetDemoClientSecret(); id != "" && secret != "" {
		s.demo = newDemoConfig(s.baseURL, id, secret)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	s.log.Info().Msgf("CORS allowed origins: %s", s.config.GetAllowedOrigins())
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	s.log.Info().Msgf("[%s] %s", colouredMethod(method), path)
}
