package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/jrsteele09/go-mail-gateway/gateway"
	"github.com/jrsteele09/go-mail-gateway/internal/config"
	"github.com/jrsteele09/go-mail-gateway/internal/metrics"
	"github.com/jrsteele09/go-mail-gateway/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators the HTTP layer is built around.
type Dependencies struct {
	Gateway  *gateway.Gateway
	Metrics  *metrics.Metrics    // nil disables instrumentation
	Gatherer prometheus.Gatherer // nil disables the /metrics route
	Assets   fs.FS               // nil selects PUBLIC_DIR or the embedded assets
}

type Server struct {
	env            string // Environment (e.g., "DEV", "PROD")
	mux            *http.ServeMux
	routes         []string
	config         config.Config
	gateway        *gateway.Gateway
	sessionCookies *sessions.Signer
	stateCookies   *sessions.Signer
	assets         fs.FS
	metrics        *metrics.Metrics
	metricsHandler http.Handler
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("[Server New] gateway is required")
	}

	sessionCookies, err := sessions.NewSigner(config.GetSessionSecret(), sessionCookieName, config.GetMaxSessionAge())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session cookie signer: %w", err)
	}
	stateCookies, err := sessions.NewSigner(config.GetSessionSecret(), stateCookieName, config.GetStateMaxAge())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create state cookie signer: %w", err)
	}

	s := &Server{
		env:            config.GetEnv(),
		mux:            http.NewServeMux(),
		config:         config,
		gateway:        deps.Gateway,
		sessionCookies: sessionCookies,
		stateCookies:   stateCookies,
		assets:         deps.Assets,
		metrics:        deps.Metrics,
	}
	if s.assets == nil {
		s.assets = assetsFS(config.GetPublicDir())
	}
	if deps.Gatherer != nil {
		s.metricsHandler = metrics.Handler(deps.Gatherer)
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
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func assetsFS(publicDir string) fs.FS {
	if publicDir == "" {
		return StaticFilesFS()
	}
	return os.DirFS(publicDir)
}
