package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apikb/internal/storage"
	"apikb/pkg/ids"
	"apikb/pkg/model"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	store, err := storage.Open(filepath.Join(t.TempDir(), "apikb.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	projectID := ids.ProjectID("demo", "/srv/demo")
	require.NoError(t, store.SaveProject(&model.Project{
		ID: projectID, Name: "demo", Path: "/srv/demo", Description: "demo project",
	}))
	require.NoError(t, store.SaveAPIEndpoint(&model.APIEndpoint{
		ID:        ids.EndpointID(projectID, "GET", "/api/users"),
		ProjectID: projectID, Method: "GET", Path: "/api/users",
		Description: "list users",
	}))

	return NewServer(store, log), projectID
}

func doRequest(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListProjects(t *testing.T) {
	s, _ := newTestServer(t)

	w, body := doRequest(t, s, http.MethodGet, "/v1/projects", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func TestGetProjectNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	w, body := doRequest(t, s, http.MethodGet, "/v1/projects/proj_missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestGetProjectEndpoints(t *testing.T) {
	s, projectID := newTestServer(t)

	w, body := doRequest(t, s, http.MethodGet, "/v1/projects/"+projectID+"/api-endpoints", "")
	assert.Equal(t, http.StatusOK, w.Code)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	ep, ok := data[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/api/users", ep["path"])
}

func TestQueryEndpointsByMethod(t *testing.T) {
	s, _ := newTestServer(t)

	w, body := doRequest(t, s, http.MethodPost, "/v1/query",
		`{"type":"api-endpoint","method":"get"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
}

func TestQueryRejectsInvalidRegex(t *testing.T) {
	s, _ := newTestServer(t)

	w, body := doRequest(t, s, http.MethodPost, "/v1/query",
		`{"type":"function","namePattern":"(["}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestQueryRequiresType(t *testing.T) {
	s, _ := newTestServer(t)

	w, body := doRequest(t, s, http.MethodPost, "/v1/query", `{"method":"get"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errMsg, _ := body["error"].(string)
	assert.Contains(t, errMsg, "type is required")
}

func TestQueryMalformedBody(t *testing.T) {
	s, _ := newTestServer(t)

	w, body := doRequest(t, s, http.MethodPost, "/v1/query", `{"type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errMsg, _ := body["error"].(string)
	assert.Contains(t, errMsg, "malformed request body")
	assert.NotContains(t, errMsg, "type is required")
}

func TestRequestIDHeader(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
