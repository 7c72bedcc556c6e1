// Package mcp exposes the knowledge base over the Model Context Protocol on
// stdio: tools for registering and querying artifacts, read-only resources
// for URI-addressed access.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"apikb/internal/storage"
	"apikb/pkg/query"
	"apikb/pkg/scanner"
)

// Server wires the store, query engine and scanner to the MCP surface.
type Server struct {
	store   *storage.Store
	engine  *query.Engine
	scanner *scanner.Scanner
	log     *logrus.Logger
}

// NewServer wires a Server over one store handle.
func NewServer(store *storage.Store, log *logrus.Logger) *Server {
	return &Server{
		store:   store,
		engine:  query.NewEngine(store),
		scanner: scanner.New(store, log),
		log:     log,
	}
}

// Run starts the MCP server on Stdio. Requests are handled one at a time;
// each tool invocation completes, cascade writes included, before the next
// message is read.
func Run(ctx context.Context, store *storage.Store, log *logrus.Logger) error {
	ms := NewServer(store, log)
	log.Info("starting MCP server on stdio")
	return server.ServeStdio(ms.build())
}

// build assembles the underlying MCP server with every tool and resource
// registered.
func (ms *Server) build() *server.MCPServer {
	s := server.NewMCPServer(
		"apikb",
		"1.0.0",
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)
	ms.registerResources(s)
	ms.registerTools(s)
	return s
}

// registerResources registers the static list resource and the five
// parameterized URIs. The parameterized ones must go through
// AddResourceTemplate: AddResource matches the URI literally, so a read of
// apikb://projects/<id> would never reach the handler.
func (ms *Server) registerResources(s *server.MCPServer) {
	s.AddResource(
		mcp.NewResource(
			"apikb://projects",
			"Projects",
			mcp.WithResourceDescription("All tracked projects"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleProjectsResource,
	)

	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"apikb://projects/{id}",
			"Project",
			mcp.WithTemplateDescription("A single project by id"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		ms.handleProjectResource,
	)

	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"apikb://projects/{id}/api-endpoints",
			"Project API Endpoints",
			mcp.WithTemplateDescription("API endpoints owned by a project"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		ms.handleProjectEndpointsResource,
	)

	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"apikb://projects/{id}/functions",
			"Project Functions",
			mcp.WithTemplateDescription("Functions owned by a project"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		ms.handleProjectFunctionsResource,
	)

	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"apikb://api-endpoints/{id}",
			"API Endpoint",
			mcp.WithTemplateDescription("A single API endpoint by id"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		ms.handleEndpointResource,
	)

	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"apikb://functions/{id}",
			"Function",
			mcp.WithTemplateDescription("A single function by id"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		ms.handleFunctionResource,
	)
}

func (ms *Server) registerTools(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool(
			"create_project",
			mcp.WithDescription("Register a project to track artifacts under."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the project root")),
			mcp.WithString("description", mcp.Required(), mcp.Description("What the project does")),
		),
		ms.handleCreateProject,
	)

	s.AddTool(
		mcp.NewTool(
			"track_api",
			mcp.WithDescription("Track an API endpoint. Re-tracking the same method+path updates it."),
			mcp.WithString("projectId", mcp.Required(), mcp.Description("Owning project id")),
			mcp.WithString("method", mcp.Required(), mcp.Description("HTTP method (GET/POST/PUT/PATCH/DELETE/OPTIONS/HEAD)")),
			mcp.WithString("path", mcp.Required(), mcp.Description("URL path of the endpoint")),
			mcp.WithString("description", mcp.Required(), mcp.Description("What the endpoint does")),
			mcp.WithString("implementationPath", mcp.Required(), mcp.Description("Source file implementing the endpoint")),
			mcp.WithObject("requestSchema", mcp.Description("Request payload schema: contentType, definition, example")),
			mcp.WithObject("responseSchema", mcp.Description("Response payload schema: contentType, definition, example")),
			mcp.WithArray("tags", mcp.Description("Free-form tags"), mcp.Items(map[string]any{"type": "string"})),
			mcp.WithArray("relatedFunctions", mcp.Description("Ids of functions implementing this endpoint"), mcp.Items(map[string]any{"type": "string"})),
		),
		ms.handleTrackAPI,
	)

	s.AddTool(
		mcp.NewTool(
			"scan_file_for_apis",
			mcp.WithDescription("Extract endpoint declarations from a source file via pattern matching."),
			mcp.WithString("projectId", mcp.Required(), mcp.Description("Owning project id")),
			mcp.WithString("filePath", mcp.Required(), mcp.Description("File to scan")),
		),
		ms.handleScanFileForAPIs,
	)

	s.AddTool(
		mcp.NewTool(
			"track_function",
			mcp.WithDescription("Track a function. Re-tracking the same name+path updates it."),
			mcp.WithString("projectId", mcp.Required(), mcp.Description("Owning project id")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Function name")),
			mcp.WithString("description", mcp.Required(), mcp.Description("What the function does")),
			mcp.WithArray("parameters", mcp.Required(), mcp.Description("Formal parameters: name, type, description, isOptional, defaultValue"), mcp.Items(map[string]any{"type": "object"})),
			mcp.WithString("returnType", mcp.Required(), mcp.Description("Return type")),
			mcp.WithString("returnDescription", mcp.Required(), mcp.Description("What the function returns")),
			mcp.WithString("implementation", mcp.Required(), mcp.Description("Source snippet of the function body")),
			mcp.WithString("implementationPath", mcp.Required(), mcp.Description("Source file containing the function")),
			mcp.WithNumber("startLine", mcp.Required(), mcp.Description("First line of the declaration (1-based)")),
			mcp.WithNumber("endLine", mcp.Required(), mcp.Description("Last line of the body (1-based, inclusive)")),
			mcp.WithString("purpose", mcp.Required(), mcp.Description("Why the function exists")),
			mcp.WithArray("tags", mcp.Description("Free-form tags"), mcp.Items(map[string]any{"type": "string"})),
			mcp.WithArray("relatedApiEndpoints", mcp.Description("Ids of endpoints this function implements"), mcp.Items(map[string]any{"type": "string"})),
			mcp.WithArray("relatedFunctions", mcp.Description("Ids of related functions"), mcp.Items(map[string]any{"type": "string"})),
			mcp.WithArray("usageExamples", mcp.Description("Free-text usage examples"), mcp.Items(map[string]any{"type": "string"})),
		),
		ms.handleTrackFunction,
	)

	s.AddTool(
		mcp.NewTool(
			"scan_file_for_functions",
			mcp.WithDescription("Extract function declarations from a source file via pattern matching."),
			mcp.WithString("projectId", mcp.Required(), mcp.Description("Owning project id")),
			mcp.WithString("filePath", mcp.Required(), mcp.Description("File to scan")),
		),
		ms.handleScanFileForFunctions,
	)

	s.AddTool(
		mcp.NewTool(
			"add_usage_example",
			mcp.WithDescription("Append a usage example to a tracked function."),
			mcp.WithString("functionId", mcp.Required(), mcp.Description("Function id")),
			mcp.WithString("example", mcp.Required(), mcp.Description("Example text")),
		),
		ms.handleAddUsageExample,
	)

	s.AddTool(
		mcp.NewTool(
			"update_function_purpose",
			mcp.WithDescription("Replace the purpose of a tracked function."),
			mcp.WithString("functionId", mcp.Required(), mcp.Description("Function id")),
			mcp.WithString("purpose", mcp.Required(), mcp.Description("New purpose text")),
		),
		ms.handleUpdateFunctionPurpose,
	)

	s.AddTool(
		mcp.NewTool(
			"query",
			mcp.WithDescription("Query entities with AND-composed filters. Without projectId, all projects are searched."),
			mcp.WithString("type", mcp.Required(), mcp.Description("project, api-endpoint, function or all")),
			mcp.WithString("projectId", mcp.Description("Restrict to one project")),
			mcp.WithString("query", mcp.Description("Case-insensitive free-text filter")),
			mcp.WithArray("tags", mcp.Description("Match any of these tags"), mcp.Items(map[string]any{"type": "string"})),
			mcp.WithString("pathPattern", mcp.Description("Regex matched against endpoint paths")),
			mcp.WithString("method", mcp.Description("Exact HTTP method (endpoints only)")),
			mcp.WithString("namePattern", mcp.Description("Regex matched against function names")),
			mcp.WithString("implementationPath", mcp.Description("Substring of the implementation path")),
		),
		ms.handleQuery,
	)

	s.AddTool(
		mcp.NewTool(
			"get_project",
			mcp.WithDescription("Get one project by id."),
			mcp.WithString("projectId", mcp.Required(), mcp.Description("Project id")),
		),
		ms.handleGetProject,
	)

	s.AddTool(
		mcp.NewTool(
			"get_api_endpoint",
			mcp.WithDescription("Get one API endpoint by id."),
			mcp.WithString("endpointId", mcp.Required(), mcp.Description("Endpoint id")),
		),
		ms.handleGetAPIEndpoint,
	)

	s.AddTool(
		mcp.NewTool(
			"get_function",
			mcp.WithDescription("Get one function by id."),
			mcp.WithString("functionId", mcp.Required(), mcp.Description("Function id")),
		),
		ms.handleGetFunction,
	)

	s.AddTool(
		mcp.NewTool(
			"get_api_endpoints_for_project",
			mcp.WithDescription("List the API endpoints in a project's list."),
			mcp.WithString("projectId", mcp.Required(), mcp.Description("Project id")),
		),
		ms.handleGetAPIEndpointsForProject,
	)

	s.AddTool(
		mcp.NewTool(
			"get_functions_for_project",
			mcp.WithDescription("List the functions in a project's list."),
			mcp.WithString("projectId", mcp.Required(), mcp.Description("Project id")),
		),
		ms.handleGetFunctionsForProject,
	)

	s.AddTool(
		mcp.NewTool(
			"get_related_api_endpoints",
			mcp.WithDescription("List the endpoints related to a function."),
			mcp.WithString("functionId", mcp.Required(), mcp.Description("Function id")),
		),
		ms.handleGetRelatedAPIEndpoints,
	)

	s.AddTool(
		mcp.NewTool(
			"get_related_functions",
			mcp.WithDescription("List the functions related to an endpoint."),
			mcp.WithString("endpointId", mcp.Required(), mcp.Description("Endpoint id")),
		),
		ms.handleGetRelatedFunctions,
	)

	s.AddTool(
		mcp.NewTool(
			"scan_project",
			mcp.WithDescription("Scan every matching file under the project's path for endpoints and functions."),
			mcp.WithString("projectId", mcp.Required(), mcp.Description("Project id")),
			mcp.WithArray("filePatterns", mcp.Description("Filename globs (* and ?); defaults to *.js, *.ts, *.jsx, *.tsx"), mcp.Items(map[string]any{"type": "string"})),
		),
		ms.handleScanProject,
	)
}
