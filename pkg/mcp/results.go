package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// Every tool returns its own typed result record serialized as JSON text, so
// the wire shape is always {success: bool, ...} with an error string on
// failure.

type errorResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type createProjectResult struct {
	Success   bool   `json:"success"`
	ProjectID string `json:"projectId"`
}

type trackAPIResult struct {
	Success    bool   `json:"success"`
	EndpointID string `json:"endpointId"`
}

type scanAPIsResult struct {
	Success     bool     `json:"success"`
	EndpointIDs []string `json:"endpointIds"`
}

type trackFunctionResult struct {
	Success    bool   `json:"success"`
	FunctionID string `json:"functionId"`
}

type scanFunctionsResult struct {
	Success     bool     `json:"success"`
	FunctionIDs []string `json:"functionIds"`
}

type queryResult struct {
	Success bool `json:"success"`
	Results any  `json:"results"`
}

type scanProjectResult struct {
	Success      bool     `json:"success"`
	ScannedFiles int      `json:"scannedFiles"`
	APIEndpoints int      `json:"apiEndpoints"`
	Functions    int      `json:"functions"`
	EndpointIDs  []string `json:"apiEndpointIds"`
	FunctionIDs  []string `json:"functionIds"`
}

type resourceResult struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(`{"success":false,"error":"failed to marshal result"}`)
	}
	return mcp.NewToolResultText(string(b))
}

func toolError(err error) *mcp.CallToolResult {
	b, _ := json.Marshal(errorResult{Success: false, Error: err.Error()})
	return mcp.NewToolResultError(string(b))
}
