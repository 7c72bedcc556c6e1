package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	apperrors "apikb/pkg/common/errors"
	"apikb/pkg/ids"
	"apikb/pkg/model"
	"apikb/pkg/query"
)

func (ms *Server) handleCreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name := strArg(args, "name")
	path := strArg(args, "path")
	if name == "" {
		return toolError(apperrors.Validation("name")), nil
	}
	if path == "" {
		return toolError(apperrors.Validation("path")), nil
	}

	p := &model.Project{
		ID:           ids.ProjectID(name, path),
		Name:         name,
		Path:         path,
		Description:  strArg(args, "description"),
		APIEndpoints: []string{},
		Functions:    []string{},
	}
	if err := ms.store.SaveProject(p); err != nil {
		return toolError(err), nil
	}
	return jsonResult(createProjectResult{Success: true, ProjectID: p.ID}), nil
}

func (ms *Server) handleTrackAPI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID := strArg(args, "projectId")
	method := strings.ToUpper(strArg(args, "method"))
	path := strArg(args, "path")
	if projectID == "" {
		return toolError(apperrors.Validation("projectId")), nil
	}
	if method == "" {
		return toolError(apperrors.Validation("method")), nil
	}
	if !model.IsHTTPMethod(method) {
		return toolError(apperrors.Validation("method")), nil
	}
	if path == "" {
		return toolError(apperrors.Validation("path")), nil
	}

	e := &model.APIEndpoint{
		ID:                 ids.EndpointID(projectID, method, path),
		ProjectID:          projectID,
		Method:             method,
		Path:               path,
		Description:        strArg(args, "description"),
		RequestSchema:      schemaArg(args, "requestSchema"),
		ResponseSchema:     schemaArg(args, "responseSchema"),
		ImplementationPath: strArg(args, "implementationPath"),
		Tags:               orEmpty(strSliceArg(args, "tags")),
		RelatedFunctions:   orEmpty(strSliceArg(args, "relatedFunctions")),
	}
	if err := ms.store.SaveAPIEndpoint(e); err != nil {
		return toolError(err), nil
	}
	return jsonResult(trackAPIResult{Success: true, EndpointID: e.ID}), nil
}

func (ms *Server) handleScanFileForAPIs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID := strArg(args, "projectId")
	filePath := strArg(args, "filePath")
	if projectID == "" {
		return toolError(apperrors.Validation("projectId")), nil
	}
	if filePath == "" {
		return toolError(apperrors.Validation("filePath")), nil
	}

	endpointIDs, err := ms.scanner.ScanFileForAPIs(projectID, filePath)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(scanAPIsResult{Success: true, EndpointIDs: endpointIDs}), nil
}

func (ms *Server) handleTrackFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID := strArg(args, "projectId")
	name := strArg(args, "name")
	implPath := strArg(args, "implementationPath")
	if projectID == "" {
		return toolError(apperrors.Validation("projectId")), nil
	}
	if name == "" {
		return toolError(apperrors.Validation("name")), nil
	}
	if implPath == "" {
		return toolError(apperrors.Validation("implementationPath")), nil
	}

	f := &model.Function{
		ID:                  ids.FunctionID(projectID, name, implPath),
		ProjectID:           projectID,
		Name:                name,
		Description:         strArg(args, "description"),
		Parameters:          parametersArg(args, "parameters"),
		ReturnType:          strArg(args, "returnType"),
		ReturnDescription:   strArg(args, "returnDescription"),
		Implementation:      strArg(args, "implementation"),
		ImplementationPath:  implPath,
		StartLine:           intArg(args, "startLine"),
		EndLine:             intArg(args, "endLine"),
		Purpose:             strArg(args, "purpose"),
		Tags:                orEmpty(strSliceArg(args, "tags")),
		RelatedAPIEndpoints: orEmpty(strSliceArg(args, "relatedApiEndpoints")),
		RelatedFunctions:    orEmpty(strSliceArg(args, "relatedFunctions")),
		UsageExamples:       orEmpty(strSliceArg(args, "usageExamples")),
	}
	if err := ms.store.SaveFunction(f); err != nil {
		return toolError(err), nil
	}
	return jsonResult(trackFunctionResult{Success: true, FunctionID: f.ID}), nil
}

func (ms *Server) handleScanFileForFunctions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID := strArg(args, "projectId")
	filePath := strArg(args, "filePath")
	if projectID == "" {
		return toolError(apperrors.Validation("projectId")), nil
	}
	if filePath == "" {
		return toolError(apperrors.Validation("filePath")), nil
	}

	functionIDs, err := ms.scanner.ScanFileForFunctions(projectID, filePath)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(scanFunctionsResult{Success: true, FunctionIDs: functionIDs}), nil
}

func (ms *Server) handleAddUsageExample(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	functionID := strArg(args, "functionId")
	example := strArg(args, "example")
	if functionID == "" {
		return toolError(apperrors.Validation("functionId")), nil
	}
	if example == "" {
		return toolError(apperrors.Validation("example")), nil
	}

	f, err := ms.store.AddUsageExample(functionID, example)
	if err != nil {
		return toolError(err), nil
	}
	if f == nil {
		return toolError(apperrors.NotFound("function", functionID)), nil
	}
	return jsonResult(trackFunctionResult{Success: true, FunctionID: functionID}), nil
}

func (ms *Server) handleUpdateFunctionPurpose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	functionID := strArg(args, "functionId")
	purpose := strArg(args, "purpose")
	if functionID == "" {
		return toolError(apperrors.Validation("functionId")), nil
	}
	if purpose == "" {
		return toolError(apperrors.Validation("purpose")), nil
	}

	f, err := ms.store.UpdateFunctionPurpose(functionID, purpose)
	if err != nil {
		return toolError(err), nil
	}
	if f == nil {
		return toolError(apperrors.NotFound("function", functionID)), nil
	}
	return jsonResult(trackFunctionResult{Success: true, FunctionID: functionID}), nil
}

func (ms *Server) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	entityType := strArg(args, "type")
	if entityType == "" {
		return toolError(apperrors.Validation("type")), nil
	}

	res, err := ms.engine.Query(entityType, query.Filters{
		ProjectID:          strArg(args, "projectId"),
		Query:              strArg(args, "query"),
		Tags:               strSliceArg(args, "tags"),
		PathPattern:        strArg(args, "pathPattern"),
		Method:             strArg(args, "method"),
		NamePattern:        strArg(args, "namePattern"),
		ImplementationPath: strArg(args, "implementationPath"),
	})
	if err != nil {
		return toolError(err), nil
	}

	results := []any{}
	for _, p := range res.Projects {
		results = append(results, p)
	}
	for _, e := range res.Endpoints {
		results = append(results, e)
	}
	for _, f := range res.Functions {
		results = append(results, f)
	}
	return jsonResult(queryResult{Success: true, Results: results}), nil
}

func (ms *Server) handleGetProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strArg(request.GetArguments(), "projectId")
	if id == "" {
		return toolError(apperrors.Validation("projectId")), nil
	}

	p, err := ms.store.GetProject(id)
	if err != nil {
		return toolError(err), nil
	}
	if p == nil {
		return toolError(apperrors.NotFound("project", id)), nil
	}
	return jsonResult(queryResult{Success: true, Results: []any{p}}), nil
}

func (ms *Server) handleGetAPIEndpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strArg(request.GetArguments(), "endpointId")
	if id == "" {
		return toolError(apperrors.Validation("endpointId")), nil
	}

	e, err := ms.store.GetAPIEndpoint(id)
	if err != nil {
		return toolError(err), nil
	}
	if e == nil {
		return toolError(apperrors.NotFound("api endpoint", id)), nil
	}
	return jsonResult(queryResult{Success: true, Results: []any{e}}), nil
}

func (ms *Server) handleGetFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strArg(request.GetArguments(), "functionId")
	if id == "" {
		return toolError(apperrors.Validation("functionId")), nil
	}

	f, err := ms.store.GetFunction(id)
	if err != nil {
		return toolError(err), nil
	}
	if f == nil {
		return toolError(apperrors.NotFound("function", id)), nil
	}
	return jsonResult(queryResult{Success: true, Results: []any{f}}), nil
}

func (ms *Server) handleGetAPIEndpointsForProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strArg(request.GetArguments(), "projectId")
	if id == "" {
		return toolError(apperrors.Validation("projectId")), nil
	}

	p, err := ms.store.GetProject(id)
	if err != nil {
		return toolError(err), nil
	}
	if p == nil {
		return toolError(apperrors.NotFound("project", id)), nil
	}

	endpoints, err := ms.store.GetAPIEndpointsForProject(id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(queryResult{Success: true, Results: endpoints}), nil
}

func (ms *Server) handleGetFunctionsForProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strArg(request.GetArguments(), "projectId")
	if id == "" {
		return toolError(apperrors.Validation("projectId")), nil
	}

	p, err := ms.store.GetProject(id)
	if err != nil {
		return toolError(err), nil
	}
	if p == nil {
		return toolError(apperrors.NotFound("project", id)), nil
	}

	functions, err := ms.store.GetFunctionsForProject(id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(queryResult{Success: true, Results: functions}), nil
}

func (ms *Server) handleGetRelatedAPIEndpoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strArg(request.GetArguments(), "functionId")
	if id == "" {
		return toolError(apperrors.Validation("functionId")), nil
	}

	f, err := ms.store.GetFunction(id)
	if err != nil {
		return toolError(err), nil
	}
	if f == nil {
		return toolError(apperrors.NotFound("function", id)), nil
	}

	// Dangling ids are skipped: endpoint deletion leaves the function-side
	// list untouched on purpose.
	endpoints := []*model.APIEndpoint{}
	for _, eid := range f.RelatedAPIEndpoints {
		e, err := ms.store.GetAPIEndpoint(eid)
		if err != nil {
			return toolError(err), nil
		}
		if e != nil {
			endpoints = append(endpoints, e)
		}
	}
	return jsonResult(queryResult{Success: true, Results: endpoints}), nil
}

func (ms *Server) handleGetRelatedFunctions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strArg(request.GetArguments(), "endpointId")
	if id == "" {
		return toolError(apperrors.Validation("endpointId")), nil
	}

	e, err := ms.store.GetAPIEndpoint(id)
	if err != nil {
		return toolError(err), nil
	}
	if e == nil {
		return toolError(apperrors.NotFound("api endpoint", id)), nil
	}

	functions := []*model.Function{}
	for _, fid := range e.RelatedFunctions {
		f, err := ms.store.GetFunction(fid)
		if err != nil {
			return toolError(err), nil
		}
		if f != nil {
			functions = append(functions, f)
		}
	}
	return jsonResult(queryResult{Success: true, Results: functions}), nil
}

func (ms *Server) handleScanProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	projectID := strArg(args, "projectId")
	if projectID == "" {
		return toolError(apperrors.Validation("projectId")), nil
	}

	report, err := ms.scanner.ScanProject(projectID, strSliceArg(args, "filePatterns"))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(scanProjectResult{
		Success:      true,
		ScannedFiles: report.ScannedFiles,
		APIEndpoints: report.APIEndpoints,
		Functions:    report.Functions,
		EndpointIDs:  report.EndpointIDs,
		FunctionIDs:  report.FunctionIDs,
	}), nil
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
