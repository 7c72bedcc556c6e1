package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	apperrors "apikb/pkg/common/errors"
)

// Resource handlers. Each returns {success: true, data: ...} as JSON, or a
// not-found error when the root id is absent. Ids are extracted from the URI
// by prefix stripping, matching the URI patterns registered in server.go.

func resourceJSON(uri string, data any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(resourceResult{Success: true, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func (ms *Server) handleProjectsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := ms.store.GetProjects()
	if err != nil {
		return nil, err
	}
	return resourceJSON(request.Params.URI, projects)
}

func (ms *Server) handleProjectResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := uriID(request.Params.URI, "apikb://projects/")
	if err != nil {
		return nil, err
	}

	p, err := ms.store.GetProject(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("project", id)
	}
	return resourceJSON(request.Params.URI, p)
}

func (ms *Server) handleProjectEndpointsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := uriID(strings.TrimSuffix(request.Params.URI, "/api-endpoints"), "apikb://projects/")
	if err != nil {
		return nil, err
	}

	p, err := ms.store.GetProject(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("project", id)
	}

	endpoints, err := ms.store.GetAPIEndpointsForProject(id)
	if err != nil {
		return nil, err
	}
	return resourceJSON(request.Params.URI, endpoints)
}

func (ms *Server) handleProjectFunctionsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := uriID(strings.TrimSuffix(request.Params.URI, "/functions"), "apikb://projects/")
	if err != nil {
		return nil, err
	}

	p, err := ms.store.GetProject(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("project", id)
	}

	functions, err := ms.store.GetFunctionsForProject(id)
	if err != nil {
		return nil, err
	}
	return resourceJSON(request.Params.URI, functions)
}

func (ms *Server) handleEndpointResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := uriID(request.Params.URI, "apikb://api-endpoints/")
	if err != nil {
		return nil, err
	}

	e, err := ms.store.GetAPIEndpoint(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperrors.NotFound("api endpoint", id)
	}
	return resourceJSON(request.Params.URI, e)
}

func (ms *Server) handleFunctionResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := uriID(request.Params.URI, "apikb://functions/")
	if err != nil {
		return nil, err
	}

	f, err := ms.store.GetFunction(id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperrors.NotFound("function", id)
	}
	return resourceJSON(request.Params.URI, f)
}

func uriID(uri, prefix string) (string, error) {
	if !strings.HasPrefix(uri, prefix) {
		return "", fmt.Errorf("invalid URI format: %s", uri)
	}
	id := strings.TrimPrefix(uri, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("invalid URI format: %s", uri)
	}
	return id, nil
}
