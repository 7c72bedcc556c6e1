package storage

import (
	"database/sql"
	"fmt"
	"time"

	"apikb/pkg/model"
)

// SaveProject inserts or fully replaces a project row. Scalar fields are
// last-write-wins; the child id lists are merged, never truncated, and
// createdAt survives a re-save.
func (s *Store) SaveProject(p *model.Project) error {
	now := time.Now()
	existing, err := s.GetProject(p.ID)
	if err != nil {
		return err
	}

	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}
	p.CreatedAt = createdAt
	p.UpdatedAt = now

	_, err = s.exec(`
		INSERT INTO projects (id, name, path, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			description = excluded.description,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, p.Path, p.Description, encodeTime(createdAt), encodeTime(now))
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	for _, eid := range p.APIEndpoints {
		if err := s.appendLink("project_endpoints", "project_id", "endpoint_id", p.ID, eid); err != nil {
			return err
		}
	}
	for _, fid := range p.Functions {
		if err := s.appendLink("project_functions", "project_id", "function_id", p.ID, fid); err != nil {
			return err
		}
	}
	return nil
}

// GetProject returns the project or nil when the id is unknown.
func (s *Store) GetProject(id string) (*model.Project, error) {
	row := s.queryRow(`
		SELECT id, name, path, description, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	if p.APIEndpoints, err = s.linkList("project_endpoints", "project_id", "endpoint_id", id); err != nil {
		return nil, err
	}
	if p.Functions, err = s.linkList("project_functions", "project_id", "function_id", id); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProjects returns every stored project with its child id lists.
func (s *Store) GetProjects() ([]*model.Project, error) {
	rows, err := s.query(`
		SELECT id, name, path, description, created_at, updated_at
		FROM projects ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range projects {
		if p.APIEndpoints, err = s.linkList("project_endpoints", "project_id", "endpoint_id", p.ID); err != nil {
			return nil, err
		}
		if p.Functions, err = s.linkList("project_functions", "project_id", "function_id", p.ID); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// DeleteProject removes the project row and its membership lists. Child
// endpoints and functions keep their rows and become orphans.
func (s *Store) DeleteProject(id string) error {
	if _, err := s.exec("DELETE FROM project_endpoints WHERE project_id = ?", id); err != nil {
		return err
	}
	if _, err := s.exec("DELETE FROM project_functions WHERE project_id = ?", id); err != nil {
		return err
	}
	_, err := s.exec("DELETE FROM projects WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (*model.Project, error) {
	var p model.Project
	var createdAt, updatedAt string
	if err := r.Scan(&p.ID, &p.Name, &p.Path, &p.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = decodeTime(createdAt)
	p.UpdatedAt = decodeTime(updatedAt)
	return &p, nil
}
