package query

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"apikb/internal/storage"
	apperrors "apikb/pkg/common/errors"
	"apikb/pkg/ids"
	"apikb/pkg/model"
)

func seedEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	s, err := storage.Open(filepath.Join(t.TempDir(), "apikb.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	projectID := ids.ProjectID("shop", "/srv/shop")
	require.NoError(t, s.SaveProject(&model.Project{
		ID: projectID, Name: "shop", Path: "/srv/shop", Description: "web shop backend",
	}))

	endpoints := []*model.APIEndpoint{
		{ID: ids.EndpointID(projectID, "GET", "/api/users"), ProjectID: projectID,
			Method: "GET", Path: "/api/users", Description: "list users", Tags: []string{"users"},
			ImplementationPath: "src/users.ts"},
		{ID: ids.EndpointID(projectID, "POST", "/api/orders"), ProjectID: projectID,
			Method: "POST", Path: "/api/orders", Description: "create order", Tags: []string{"orders"},
			ImplementationPath: "src/orders.ts"},
	}
	for _, ep := range endpoints {
		require.NoError(t, s.SaveAPIEndpoint(ep))
	}

	functions := []*model.Function{
		{ID: ids.FunctionID(projectID, "getUser", "src/users.ts"), ProjectID: projectID,
			Name: "getUser", Description: "load one user", Purpose: "user lookup",
			ImplementationPath: "src/users.ts", Tags: []string{"users"}},
		{ID: ids.FunctionID(projectID, "createOrder", "src/orders.ts"), ProjectID: projectID,
			Name: "createOrder", Description: "persist an order", Purpose: "order creation",
			ImplementationPath: "src/orders.ts", Tags: []string{"orders"}},
	}
	for _, fn := range functions {
		require.NoError(t, s.SaveFunction(fn))
	}

	return NewEngine(s), projectID
}

func TestQueryNamePattern(t *testing.T) {
	e, _ := seedEngine(t)

	res, err := e.Query(model.TypeFunction, Filters{NamePattern: "^get"})
	require.NoError(t, err)
	require.Len(t, res.Functions, 1)
	require.Equal(t, "getUser", res.Functions[0].Name)
}

func TestQueryInvalidPattern(t *testing.T) {
	e, _ := seedEngine(t)

	_, err := e.Query(model.TypeFunction, Filters{NamePattern: "(["})
	require.Error(t, err, "a malformed regex is a query error, not an empty result")
	require.True(t, errors.Is(err, apperrors.ErrPattern))

	_, err = e.Query(model.TypeAPIEndpoint, Filters{PathPattern: "(["})
	require.Error(t, err)
}

func TestQueryMethodFilter(t *testing.T) {
	e, _ := seedEngine(t)

	// Lower-case input is normalized before matching.
	res, err := e.Query(model.TypeAPIEndpoint, Filters{Method: "post"})
	require.NoError(t, err)
	require.Len(t, res.Endpoints, 1)
	require.Equal(t, "/api/orders", res.Endpoints[0].Path)
}

func TestQueryFreeText(t *testing.T) {
	e, _ := seedEngine(t)

	res, err := e.Query(model.TypeAll, Filters{Query: "user"})
	require.NoError(t, err)
	require.Len(t, res.Endpoints, 1)
	require.Len(t, res.Functions, 1)
	require.Equal(t, "getUser", res.Functions[0].Name)
}

func TestQueryTagsOrSemantics(t *testing.T) {
	e, _ := seedEngine(t)

	res, err := e.Query(model.TypeAPIEndpoint, Filters{Tags: []string{"users", "orders"}})
	require.NoError(t, err)
	require.Len(t, res.Endpoints, 2, "any requested tag matches")

	res, err = e.Query(model.TypeAPIEndpoint, Filters{Tags: []string{"billing"}})
	require.NoError(t, err)
	require.Empty(t, res.Endpoints)
}

func TestQueryProjectScope(t *testing.T) {
	e, projectID := seedEngine(t)

	res, err := e.Query(model.TypeFunction, Filters{ProjectID: projectID})
	require.NoError(t, err)
	require.Len(t, res.Functions, 2)

	res, err = e.Query(model.TypeFunction, Filters{ProjectID: "proj_unknown"})
	require.NoError(t, err)
	require.Empty(t, res.Functions)
}

func TestQueryImplementationPath(t *testing.T) {
	e, _ := seedEngine(t)

	res, err := e.Query(model.TypeFunction, Filters{ImplementationPath: "orders"})
	require.NoError(t, err)
	require.Len(t, res.Functions, 1)
	require.Equal(t, "createOrder", res.Functions[0].Name)
}

func TestQueryUnknownType(t *testing.T) {
	e, _ := seedEngine(t)

	_, err := e.Query("widget", Filters{})
	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
