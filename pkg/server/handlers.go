package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "apikb/pkg/common/errors"
	"apikb/pkg/query"
)

func (s *Server) respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (s *Server) respondError(c *gin.Context, err error) {
	appErr := apperrors.MapError(err)
	c.JSON(appErr.Code, gin.H{"success": false, "error": appErr.Error()})
}

func (s *Server) handleProjects(c *gin.Context) {
	projects, err := s.store.GetProjects()
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respond(c, projects)
}

func (s *Server) handleProject(c *gin.Context) {
	id := c.Param("id")
	p, err := s.store.GetProject(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if p == nil {
		s.respondError(c, apperrors.NotFound("project", id))
		return
	}
	s.respond(c, p)
}

func (s *Server) handleProjectEndpoints(c *gin.Context) {
	id := c.Param("id")
	p, err := s.store.GetProject(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if p == nil {
		s.respondError(c, apperrors.NotFound("project", id))
		return
	}

	endpoints, err := s.store.GetAPIEndpointsForProject(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respond(c, endpoints)
}

func (s *Server) handleProjectFunctions(c *gin.Context) {
	id := c.Param("id")
	p, err := s.store.GetProject(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if p == nil {
		s.respondError(c, apperrors.NotFound("project", id))
		return
	}

	functions, err := s.store.GetFunctionsForProject(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respond(c, functions)
}

func (s *Server) handleEndpoint(c *gin.Context) {
	id := c.Param("id")
	e, err := s.store.GetAPIEndpoint(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if e == nil {
		s.respondError(c, apperrors.NotFound("api endpoint", id))
		return
	}
	s.respond(c, e)
}

func (s *Server) handleFunction(c *gin.Context) {
	id := c.Param("id")
	f, err := s.store.GetFunction(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if f == nil {
		s.respondError(c, apperrors.NotFound("function", id))
		return
	}
	s.respond(c, f)
}

type queryRequest struct {
	Type               string   `json:"type"`
	ProjectID          string   `json:"projectId"`
	Query              string   `json:"query"`
	Tags               []string `json:"tags"`
	PathPattern        string   `json:"pathPattern"`
	Method             string   `json:"method"`
	NamePattern        string   `json:"namePattern"`
	ImplementationPath string   `json:"implementationPath"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("malformed request body: %w", apperrors.ErrInvalidInput))
		return
	}
	if req.Type == "" {
		s.respondError(c, apperrors.Validation("type"))
		return
	}

	res, err := s.engine.Query(req.Type, query.Filters{
		ProjectID:          req.ProjectID,
		Query:              req.Query,
		Tags:               req.Tags,
		PathPattern:        req.PathPattern,
		Method:             req.Method,
		NamePattern:        req.NamePattern,
		ImplementationPath: req.ImplementationPath,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respond(c, res)
}
