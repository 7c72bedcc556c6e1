package storage

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"apikb/pkg/ids"
	"apikb/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	s, err := Open(filepath.Join(t.TempDir(), "apikb.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testProject(name string) *model.Project {
	return &model.Project{
		ID:           ids.ProjectID(name, "/srv/"+name),
		Name:         name,
		Path:         "/srv/" + name,
		Description:  "test project",
		APIEndpoints: []string{},
		Functions:    []string{},
	}
}

func testEndpoint(projectID, method, path string) *model.APIEndpoint {
	return &model.APIEndpoint{
		ID:               ids.EndpointID(projectID, method, path),
		ProjectID:        projectID,
		Method:           method,
		Path:             path,
		Description:      "test endpoint",
		Tags:             []string{},
		RelatedFunctions: []string{},
	}
}

func testFunction(projectID, name string, relatedEndpoints []string) *model.Function {
	return &model.Function{
		ID:                  ids.FunctionID(projectID, name, "src/handlers.ts"),
		ProjectID:           projectID,
		Name:                name,
		Description:         "test function",
		Parameters:          []model.Parameter{},
		ReturnType:          "void",
		ImplementationPath:  "src/handlers.ts",
		Tags:                []string{},
		RelatedAPIEndpoints: relatedEndpoints,
		RelatedFunctions:    []string{},
		UsageExamples:       []string{},
	}
}

func TestGetProjectMissing(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetProject("proj_missing")
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestSaveEndpointUpsert(t *testing.T) {
	s := newTestStore(t)
	p := testProject("upsert")
	require.NoError(t, s.SaveProject(p))

	first := testEndpoint(p.ID, "GET", "/api/users")
	first.Description = "first"
	require.NoError(t, s.SaveAPIEndpoint(first))

	second := testEndpoint(p.ID, "GET", "/api/users")
	second.Description = "second"
	require.NoError(t, s.SaveAPIEndpoint(second))

	all, err := s.GetAPIEndpoints()
	require.NoError(t, err)
	require.Len(t, all, 1, "same (project, method, path) must stay one row")
	require.Equal(t, "second", all[0].Description)
	require.True(t, first.CreatedAt.Equal(all[0].CreatedAt), "createdAt survives a re-save")

	proj, err := s.GetProject(p.ID)
	require.NoError(t, err)
	require.Equal(t, []string{first.ID}, proj.APIEndpoints, "project list holds the id once")
}

func TestFunctionSaveCascadesToEndpoint(t *testing.T) {
	s := newTestStore(t)
	p := testProject("cascade")
	require.NoError(t, s.SaveProject(p))

	ep := testEndpoint(p.ID, "POST", "/api/orders")
	require.NoError(t, s.SaveAPIEndpoint(ep))

	fn := testFunction(p.ID, "createOrder", []string{ep.ID})
	require.NoError(t, s.SaveFunction(fn))

	got, err := s.GetAPIEndpoint(ep.ID)
	require.NoError(t, err)
	require.Contains(t, got.RelatedFunctions, fn.ID, "endpoint side must list the function")

	proj, err := s.GetProject(p.ID)
	require.NoError(t, err)
	require.Contains(t, proj.Functions, fn.ID)

	// Saving again must not duplicate the links.
	require.NoError(t, s.SaveFunction(fn))
	got, err = s.GetAPIEndpoint(ep.ID)
	require.NoError(t, err)
	require.Equal(t, []string{fn.ID}, got.RelatedFunctions)
}

func TestDeleteFunctionCleansBothSides(t *testing.T) {
	s := newTestStore(t)
	p := testProject("fn-delete")
	require.NoError(t, s.SaveProject(p))

	ep := testEndpoint(p.ID, "GET", "/api/items")
	require.NoError(t, s.SaveAPIEndpoint(ep))

	fn := testFunction(p.ID, "listItems", []string{ep.ID})
	require.NoError(t, s.SaveFunction(fn))

	require.NoError(t, s.DeleteFunction(fn.ID))

	got, err := s.GetAPIEndpoint(ep.ID)
	require.NoError(t, err)
	require.NotContains(t, got.RelatedFunctions, fn.ID)

	proj, err := s.GetProject(p.ID)
	require.NoError(t, err)
	require.NotContains(t, proj.Functions, fn.ID)

	missing, err := s.GetFunction(fn.ID)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDeleteEndpointLeavesFunctionSideDangling(t *testing.T) {
	s := newTestStore(t)
	p := testProject("ep-delete")
	require.NoError(t, s.SaveProject(p))

	ep := testEndpoint(p.ID, "DELETE", "/api/items/:id")
	require.NoError(t, s.SaveAPIEndpoint(ep))

	fn := testFunction(p.ID, "deleteItem", []string{ep.ID})
	require.NoError(t, s.SaveFunction(fn))

	require.NoError(t, s.DeleteAPIEndpoint(ep.ID))

	proj, err := s.GetProject(p.ID)
	require.NoError(t, err)
	require.NotContains(t, proj.APIEndpoints, ep.ID)

	// The function side keeps the dangling reference: the cleanup is
	// one-directional by policy.
	got, err := s.GetFunction(fn.ID)
	require.NoError(t, err)
	require.Contains(t, got.RelatedAPIEndpoints, ep.ID)
}

func TestDeleteProjectOrphansChildren(t *testing.T) {
	s := newTestStore(t)
	p := testProject("proj-delete")
	require.NoError(t, s.SaveProject(p))

	ep := testEndpoint(p.ID, "GET", "/api/things")
	require.NoError(t, s.SaveAPIEndpoint(ep))

	require.NoError(t, s.DeleteProject(p.ID))

	gone, err := s.GetProject(p.ID)
	require.NoError(t, err)
	require.Nil(t, gone)

	// The endpoint row survives as an orphan.
	got, err := s.GetAPIEndpoint(ep.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, p.ID, got.ProjectID)
}

func TestOrphanedEndpointSkipsProjectList(t *testing.T) {
	s := newTestStore(t)

	ep := testEndpoint("proj_nonexistent", "GET", "/api/ghost")
	require.NoError(t, s.SaveAPIEndpoint(ep), "the entity write succeeds without its owner")

	got, err := s.GetAPIEndpoint(ep.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "orphans stay queryable")
}

func TestRelationshipListsMergeOnSave(t *testing.T) {
	s := newTestStore(t)
	p := testProject("merge")
	require.NoError(t, s.SaveProject(p))

	ep1 := testEndpoint(p.ID, "GET", "/a")
	ep2 := testEndpoint(p.ID, "GET", "/b")
	require.NoError(t, s.SaveAPIEndpoint(ep1))
	require.NoError(t, s.SaveAPIEndpoint(ep2))

	fn := testFunction(p.ID, "shared", []string{ep1.ID})
	require.NoError(t, s.SaveFunction(fn))

	// Re-save referencing only ep2: the list must grow, not be replaced.
	fn2 := testFunction(p.ID, "shared", []string{ep2.ID})
	require.NoError(t, s.SaveFunction(fn2))

	got, err := s.GetFunction(fn.ID)
	require.NoError(t, err)
	require.Equal(t, []string{ep1.ID, ep2.ID}, got.RelatedAPIEndpoints)
}

func TestAddUsageExampleAndPurpose(t *testing.T) {
	s := newTestStore(t)
	p := testProject("usage")
	require.NoError(t, s.SaveProject(p))

	fn := testFunction(p.ID, "fmtDate", nil)
	require.NoError(t, s.SaveFunction(fn))

	updated, err := s.AddUsageExample(fn.ID, "fmtDate(new Date())")
	require.NoError(t, err)
	require.Equal(t, []string{"fmtDate(new Date())"}, updated.UsageExamples)

	updated, err = s.UpdateFunctionPurpose(fn.ID, "formats dates for display")
	require.NoError(t, err)
	require.Equal(t, "formats dates for display", updated.Purpose)

	missing, err := s.AddUsageExample("fn_missing", "x")
	require.NoError(t, err)
	require.Nil(t, missing)
}
