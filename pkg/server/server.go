// Package server exposes the read-only resource surface over HTTP.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"apikb/internal/storage"
	"apikb/pkg/query"
)

// Server holds the state for the REST API server.
type Server struct {
	store  *storage.Store
	engine *query.Engine
	log    *logrus.Logger
	router *gin.Engine
}

// NewServer creates a new Server instance.
func NewServer(store *storage.Store, log *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		store:  store,
		engine: query.NewEngine(store),
		log:    log,
		router: r,
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	s.log.WithField("addr", addr).Info("starting REST server")
	return s.router.Run(addr)
}

// Router returns the underlying gin engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(requestID(), requestLogger(s.log), countRequests())

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	{
		v1.GET("/projects", s.handleProjects)
		v1.GET("/projects/:id", s.handleProject)
		v1.GET("/projects/:id/api-endpoints", s.handleProjectEndpoints)
		v1.GET("/projects/:id/functions", s.handleProjectFunctions)
		v1.GET("/api-endpoints/:id", s.handleEndpoint)
		v1.GET("/functions/:id", s.handleFunction)
		v1.POST("/query", s.handleQuery)
	}
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}
