package storage

import (
	"database/sql"
	"fmt"
	"time"

	"apikb/pkg/model"
)

// SaveFunction inserts or replaces a function keyed by its derived id.
// Scalar fields are last-write-wins; relatedApiEndpoints and relatedFunctions
// are merged by appending ids not already present. The write cascades to the
// owning project's functions list and to the relatedFunctions list of every
// referenced endpoint (one hop, see relations.go).
func (s *Store) SaveFunction(f *model.Function) error {
	now := time.Now()
	existing, err := s.GetFunction(f.ID)
	if err != nil {
		return err
	}

	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}
	f.CreatedAt = createdAt
	f.UpdatedAt = now

	_, err = s.exec(`
		INSERT INTO functions (id, project_id, name, description, parameters,
			return_type, return_description, implementation, implementation_path,
			start_line, end_line, purpose, tags, usage_examples, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			name = excluded.name,
			description = excluded.description,
			parameters = excluded.parameters,
			return_type = excluded.return_type,
			return_description = excluded.return_description,
			implementation = excluded.implementation,
			implementation_path = excluded.implementation_path,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			purpose = excluded.purpose,
			tags = excluded.tags,
			usage_examples = excluded.usage_examples,
			updated_at = excluded.updated_at
	`, f.ID, f.ProjectID, f.Name, f.Description, encodeParameters(f.Parameters),
		f.ReturnType, f.ReturnDescription, f.Implementation, f.ImplementationPath,
		f.StartLine, f.EndLine, f.Purpose, encodeStrings(f.Tags),
		encodeStrings(f.UsageExamples), encodeTime(createdAt), encodeTime(now))
	if err != nil {
		return fmt.Errorf("failed to save function: %w", err)
	}

	for _, eid := range f.RelatedAPIEndpoints {
		_, err := s.exec(`
			INSERT OR IGNORE INTO endpoint_functions (owner_side, endpoint_id, function_id, position)
			SELECT 'function', ?, ?, COALESCE(MAX(position), -1) + 1
			FROM endpoint_functions WHERE owner_side = 'function' AND function_id = ?
		`, eid, f.ID, f.ID)
		if err != nil {
			return err
		}
	}
	for _, rid := range f.RelatedFunctions {
		if rid == f.ID {
			continue
		}
		if err := s.appendLink("function_functions", "function_id", "related_id", f.ID, rid); err != nil {
			return err
		}
	}

	if err := s.linkChildToProject("project_functions", "function_id", f.ProjectID, f.ID, now); err != nil {
		return err
	}
	return s.cascadeFunctionToEndpoints(f.ID, f.RelatedAPIEndpoints, now)
}

// GetFunction returns the function or nil when the id is unknown.
func (s *Store) GetFunction(id string) (*model.Function, error) {
	row := s.queryRow(`
		SELECT id, project_id, name, description, parameters, return_type,
			return_description, implementation, implementation_path, start_line,
			end_line, purpose, tags, usage_examples, created_at, updated_at
		FROM functions WHERE id = ?
	`, id)

	f, err := scanFunction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load function: %w", err)
	}

	if f.RelatedAPIEndpoints, err = s.functionRelatedEndpoints(id); err != nil {
		return nil, err
	}
	if f.RelatedFunctions, err = s.linkList("function_functions", "function_id", "related_id", id); err != nil {
		return nil, err
	}
	return f, nil
}

// GetFunctions returns every stored function.
func (s *Store) GetFunctions() ([]*model.Function, error) {
	rows, err := s.query(`
		SELECT id, project_id, name, description, parameters, return_type,
			return_description, implementation, implementation_path, start_line,
			end_line, purpose, tags, usage_examples, created_at, updated_at
		FROM functions ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}
	defer rows.Close()

	var functions []*model.Function
	for rows.Next() {
		f, err := scanFunction(rows)
		if err != nil {
			return nil, err
		}
		functions = append(functions, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, f := range functions {
		if f.RelatedAPIEndpoints, err = s.functionRelatedEndpoints(f.ID); err != nil {
			return nil, err
		}
		if f.RelatedFunctions, err = s.linkList("function_functions", "function_id", "related_id", f.ID); err != nil {
			return nil, err
		}
	}
	return functions, nil
}

// GetFunctionsForProject follows the project's functions list, skipping ids
// that no longer resolve.
func (s *Store) GetFunctionsForProject(projectID string) ([]*model.Function, error) {
	ids, err := s.linkList("project_functions", "project_id", "function_id", projectID)
	if err != nil {
		return nil, err
	}

	functions := []*model.Function{}
	for _, id := range ids {
		f, err := s.GetFunction(id)
		if err != nil {
			return nil, err
		}
		if f != nil {
			functions = append(functions, f)
		}
	}
	return functions, nil
}

// DeleteFunction removes the function, its entry in the owning project's
// list, and its id from every referenced endpoint's relatedFunctions list.
func (s *Store) DeleteFunction(id string) error {
	f, err := s.GetFunction(id)
	if err != nil {
		return err
	}
	if f == nil {
		return nil
	}
	now := time.Now()

	removed, err := s.removeLink("project_functions", "project_id", "function_id", f.ProjectID, id)
	if err != nil {
		return err
	}
	if removed {
		if _, err := s.exec("UPDATE projects SET updated_at = ? WHERE id = ?", encodeTime(now), f.ProjectID); err != nil {
			return err
		}
	}

	if err := s.detachFunctionFromEndpoints(id, f.RelatedAPIEndpoints, now); err != nil {
		return err
	}

	if _, err := s.exec("DELETE FROM endpoint_functions WHERE owner_side = 'function' AND function_id = ?", id); err != nil {
		return err
	}
	if _, err := s.exec("DELETE FROM function_functions WHERE function_id = ? OR related_id = ?", id, id); err != nil {
		return err
	}
	_, err = s.exec("DELETE FROM functions WHERE id = ?", id)
	return err
}

// AddUsageExample appends one example to the function's list.
func (s *Store) AddUsageExample(id, example string) (*model.Function, error) {
	f, err := s.GetFunction(id)
	if err != nil || f == nil {
		return nil, err
	}
	f.UsageExamples = append(f.UsageExamples, example)
	if err := s.SaveFunction(f); err != nil {
		return nil, err
	}
	return f, nil
}

// UpdateFunctionPurpose replaces the function's purpose text.
func (s *Store) UpdateFunctionPurpose(id, purpose string) (*model.Function, error) {
	f, err := s.GetFunction(id)
	if err != nil || f == nil {
		return nil, err
	}
	f.Purpose = purpose
	if err := s.SaveFunction(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) functionRelatedEndpoints(functionID string) ([]string, error) {
	rows, err := s.query(`
		SELECT endpoint_id FROM endpoint_functions
		WHERE owner_side = 'function' AND function_id = ?
		ORDER BY position
	`, functionID)
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

func scanFunction(r rowScanner) (*model.Function, error) {
	var f model.Function
	var params, tags, examples, createdAt, updatedAt string
	err := r.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Description, &params,
		&f.ReturnType, &f.ReturnDescription, &f.Implementation, &f.ImplementationPath,
		&f.StartLine, &f.EndLine, &f.Purpose, &tags, &examples, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	f.Parameters = decodeParameters(params)
	f.Tags = decodeStrings(tags)
	f.UsageExamples = decodeStrings(examples)
	f.CreatedAt = decodeTime(createdAt)
	f.UpdatedAt = decodeTime(updatedAt)
	return &f, nil
}
