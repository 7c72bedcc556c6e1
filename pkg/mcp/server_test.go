package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apikb/internal/storage"
	"apikb/pkg/ids"
	"apikb/pkg/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	store, err := storage.Open(filepath.Join(t.TempDir(), "apikb.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewServer(store, log)
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

// resultJSON parses the text content of a tool result.
func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &parsed))
	return parsed
}

func TestCreateProjectToolRoundTrip(t *testing.T) {
	ms := newTestServer(t)
	ctx := context.Background()

	res, err := ms.handleCreateProject(ctx, toolRequest(map[string]any{
		"name":        "demo",
		"path":        "/srv/demo",
		"description": "demo project",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	created := resultJSON(t, res)
	assert.Equal(t, true, created["success"])
	projectID, _ := created["projectId"].(string)
	assert.Equal(t, ids.ProjectID("demo", "/srv/demo"), projectID)

	res, err = ms.handleGetProject(ctx, toolRequest(map[string]any{"projectId": projectID}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	got := resultJSON(t, res)
	results, ok := got["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	project, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "demo", project["name"])
}

func TestTrackAPIToolValidation(t *testing.T) {
	ms := newTestServer(t)

	res, err := ms.handleTrackAPI(context.Background(), toolRequest(map[string]any{
		"projectId": "proj_x",
		"method":    "YEET",
		"path":      "/api/x",
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	body := resultJSON(t, res)
	assert.Equal(t, false, body["success"])
	errMsg, _ := body["error"].(string)
	assert.Contains(t, errMsg, "method")
}

func readResource(t *testing.T, ms *Server, uri string) mcp.JSONRPCMessage {
	t.Helper()
	msg := fmt.Sprintf(`{
		"jsonrpc": "2.0",
		"id": 1,
		"method": "resources/read",
		"params": {"uri": %q}
	}`, uri)
	return ms.build().HandleMessage(context.Background(), []byte(msg))
}

func resourceText(t *testing.T, response mcp.JSONRPCMessage) string {
	t.Helper()
	resp, ok := response.(mcp.JSONRPCResponse)
	require.True(t, ok, "expected a result, got %#v", response)
	result, ok := resp.Result.(mcp.ReadResourceResult)
	require.True(t, ok)
	require.Len(t, result.Contents, 1)
	tc, ok := result.Contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	return tc.Text
}

func TestReadProjectsResource(t *testing.T) {
	ms := newTestServer(t)
	require.NoError(t, ms.store.SaveProject(&model.Project{
		ID: ids.ProjectID("demo", "/srv/demo"), Name: "demo", Path: "/srv/demo",
	}))

	text := resourceText(t, readResource(t, ms, "apikb://projects"))
	assert.Contains(t, text, `"success":true`)
	assert.Contains(t, text, `"demo"`)
}

func TestReadProjectResourceByID(t *testing.T) {
	ms := newTestServer(t)
	projectID := ids.ProjectID("demo", "/srv/demo")
	require.NoError(t, ms.store.SaveProject(&model.Project{
		ID: projectID, Name: "demo", Path: "/srv/demo",
	}))

	// The parameterized URI must route through the template registration.
	text := resourceText(t, readResource(t, ms, "apikb://projects/"+projectID))
	assert.Contains(t, text, `"success":true`)
	assert.Contains(t, text, projectID)
}

func TestReadProjectEndpointsResource(t *testing.T) {
	ms := newTestServer(t)
	projectID := ids.ProjectID("demo", "/srv/demo")
	require.NoError(t, ms.store.SaveProject(&model.Project{
		ID: projectID, Name: "demo", Path: "/srv/demo",
	}))
	endpointID := ids.EndpointID(projectID, "GET", "/api/users")
	require.NoError(t, ms.store.SaveAPIEndpoint(&model.APIEndpoint{
		ID: endpointID, ProjectID: projectID, Method: "GET", Path: "/api/users",
	}))

	text := resourceText(t, readResource(t, ms, "apikb://projects/"+projectID+"/api-endpoints"))
	assert.Contains(t, text, endpointID)

	text = resourceText(t, readResource(t, ms, "apikb://api-endpoints/"+endpointID))
	assert.Contains(t, text, `"/api/users"`)
}

func TestReadMissingFunctionResource(t *testing.T) {
	ms := newTestServer(t)
	fnID := ids.FunctionID("proj_x", "ghost", "src/ghost.ts")

	response := readResource(t, ms, "apikb://functions/"+fnID)
	_, ok := response.(mcp.JSONRPCError)
	assert.True(t, ok, "a missing function must surface as an error, got %#v", response)
}
