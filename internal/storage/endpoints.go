package storage

import (
	"database/sql"
	"fmt"
	"time"

	"apikb/pkg/model"
)

// SaveAPIEndpoint inserts or replaces an endpoint keyed by its derived id.
// Scalar fields are last-write-wins; relatedFunctions is merged by appending
// ids not already present. The owning project's apiEndpoints list is
// maintained as part of the write.
func (s *Store) SaveAPIEndpoint(e *model.APIEndpoint) error {
	now := time.Now()
	existing, err := s.GetAPIEndpoint(e.ID)
	if err != nil {
		return err
	}

	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}
	e.CreatedAt = createdAt
	e.UpdatedAt = now

	_, err = s.exec(`
		INSERT INTO api_endpoints (id, project_id, method, path, description,
			request_schema, response_schema, implementation_path, tags,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			method = excluded.method,
			path = excluded.path,
			description = excluded.description,
			request_schema = excluded.request_schema,
			response_schema = excluded.response_schema,
			implementation_path = excluded.implementation_path,
			tags = excluded.tags,
			updated_at = excluded.updated_at
	`, e.ID, e.ProjectID, e.Method, e.Path, e.Description,
		encodeSchema(e.RequestSchema), encodeSchema(e.ResponseSchema),
		e.ImplementationPath, encodeStrings(e.Tags),
		encodeTime(createdAt), encodeTime(now))
	if err != nil {
		return fmt.Errorf("failed to save endpoint: %w", err)
	}

	for _, fid := range e.RelatedFunctions {
		_, err := s.exec(`
			INSERT OR IGNORE INTO endpoint_functions (owner_side, endpoint_id, function_id, position)
			SELECT 'endpoint', ?, ?, COALESCE(MAX(position), -1) + 1
			FROM endpoint_functions WHERE owner_side = 'endpoint' AND endpoint_id = ?
		`, e.ID, fid, e.ID)
		if err != nil {
			return err
		}
	}

	return s.linkChildToProject("project_endpoints", "endpoint_id", e.ProjectID, e.ID, now)
}

// GetAPIEndpoint returns the endpoint or nil when the id is unknown.
func (s *Store) GetAPIEndpoint(id string) (*model.APIEndpoint, error) {
	row := s.queryRow(`
		SELECT id, project_id, method, path, description, request_schema,
			response_schema, implementation_path, tags, created_at, updated_at
		FROM api_endpoints WHERE id = ?
	`, id)

	e, err := scanEndpoint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load endpoint: %w", err)
	}

	e.RelatedFunctions, err = s.endpointRelatedFunctions(id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetAPIEndpoints returns every stored endpoint.
func (s *Store) GetAPIEndpoints() ([]*model.APIEndpoint, error) {
	rows, err := s.query(`
		SELECT id, project_id, method, path, description, request_schema,
			response_schema, implementation_path, tags, created_at, updated_at
		FROM api_endpoints ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []*model.APIEndpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range endpoints {
		if e.RelatedFunctions, err = s.endpointRelatedFunctions(e.ID); err != nil {
			return nil, err
		}
	}
	return endpoints, nil
}

// GetAPIEndpointsForProject follows the project's apiEndpoints list, skipping
// ids that no longer resolve.
func (s *Store) GetAPIEndpointsForProject(projectID string) ([]*model.APIEndpoint, error) {
	ids, err := s.linkList("project_endpoints", "project_id", "endpoint_id", projectID)
	if err != nil {
		return nil, err
	}

	endpoints := []*model.APIEndpoint{}
	for _, id := range ids {
		e, err := s.GetAPIEndpoint(id)
		if err != nil {
			return nil, err
		}
		if e != nil {
			endpoints = append(endpoints, e)
		}
	}
	return endpoints, nil
}

// DeleteAPIEndpoint removes the endpoint and its entry in the owning
// project's list. Function-side relatedApiEndpoints lists are not cleaned
// here; see relations.go for the asymmetry policy.
func (s *Store) DeleteAPIEndpoint(id string) error {
	e, err := s.GetAPIEndpoint(id)
	if err != nil {
		return err
	}
	if e == nil {
		return nil
	}

	removed, err := s.removeLink("project_endpoints", "project_id", "endpoint_id", e.ProjectID, id)
	if err != nil {
		return err
	}
	if removed {
		if _, err := s.exec("UPDATE projects SET updated_at = ? WHERE id = ?", encodeTime(time.Now()), e.ProjectID); err != nil {
			return err
		}
	}

	if _, err := s.exec("DELETE FROM endpoint_functions WHERE owner_side = 'endpoint' AND endpoint_id = ?", id); err != nil {
		return err
	}
	_, err = s.exec("DELETE FROM api_endpoints WHERE id = ?", id)
	return err
}

func (s *Store) endpointRelatedFunctions(endpointID string) ([]string, error) {
	rows, err := s.query(`
		SELECT function_id FROM endpoint_functions
		WHERE owner_side = 'endpoint' AND endpoint_id = ?
		ORDER BY position
	`, endpointID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanEndpoint(r rowScanner) (*model.APIEndpoint, error) {
	var e model.APIEndpoint
	var reqSchema, respSchema *string
	var tags, createdAt, updatedAt string
	err := r.Scan(&e.ID, &e.ProjectID, &e.Method, &e.Path, &e.Description,
		&reqSchema, &respSchema, &e.ImplementationPath, &tags, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.RequestSchema = decodeSchema(reqSchema)
	e.ResponseSchema = decodeSchema(respSchema)
	e.Tags = decodeStrings(tags)
	e.CreatedAt = decodeTime(createdAt)
	e.UpdatedAt = decodeTime(updatedAt)
	return &e, nil
}
