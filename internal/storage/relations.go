package storage

import (
	"fmt"
	"time"
)

// Relationship maintenance.
//
// Every mutating endpoint/function write calls into here to keep the
// bidirectional id lists consistent:
//
//   - endpoint save appends the endpoint to its project's list,
//   - function save appends the function to its project's list and to the
//     relatedFunctions list of every endpoint it references (one cascade hop,
//     never transitive),
//   - function delete cleans both its project's list and every referenced
//     endpoint's list,
//   - endpoint delete cleans only the project's list. The function-side lists
//     are deliberately left dangling and repaired on the next function save;
//     cleaning them here would open an unbounded cascade. This asymmetry is
//     policy, not an oversight.
//
// A missing owner is skipped silently: the entity write itself still
// succeeds, the orphan just stays out of the owner's list.

// appendLink inserts a link row at the end of the owner's list unless the
// link already exists.
func (s *Store) appendLink(table, ownerCol, childCol, ownerID, childID string) error {
	var exists int
	err := s.queryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ? AND %s = ?", table, ownerCol, childCol),
		ownerID, childID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}
	_, err = s.exec(
		fmt.Sprintf(`INSERT INTO %s (%s, %s, position)
			SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM %s WHERE %s = ?`,
			table, ownerCol, childCol, table, ownerCol),
		ownerID, childID, ownerID,
	)
	return err
}

// linkList returns the child ids of one owner in list order.
func (s *Store) linkList(table, ownerCol, childCol, ownerID string) ([]string, error) {
	rows, err := s.query(
		fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY position", childCol, table, ownerCol),
		ownerID,
	)
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

func (s *Store) removeLink(table, ownerCol, childCol, ownerID, childID string) (bool, error) {
	res, err := s.exec(
		fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", table, ownerCol, childCol),
		ownerID, childID,
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// linkChildToProject appends childID to the project's list and bumps the
// project's updatedAt. A missing project is skipped silently.
func (s *Store) linkChildToProject(table, childCol, projectID, childID string, now time.Time) error {
	var exists int
	if err := s.queryRow("SELECT COUNT(*) FROM projects WHERE id = ?", projectID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		s.log.WithField("project", projectID).Debug("owning project missing, skipping list update")
		return nil
	}

	var linked int
	err := s.queryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE project_id = ? AND %s = ?", table, childCol),
		projectID, childID,
	).Scan(&linked)
	if err != nil {
		return err
	}
	if linked > 0 {
		return nil
	}

	if err := s.appendLink(table, "project_id", childCol, projectID, childID); err != nil {
		return err
	}
	_, err = s.exec("UPDATE projects SET updated_at = ? WHERE id = ?", encodeTime(now), projectID)
	return err
}

// cascadeFunctionToEndpoints appends functionID to the relatedFunctions list
// of every referenced endpoint that exists, bumping each touched endpoint's
// updatedAt. The cascade stops here: touched endpoints are persisted directly
// without re-running their own save path.
func (s *Store) cascadeFunctionToEndpoints(functionID string, endpointIDs []string, now time.Time) error {
	for _, eid := range endpointIDs {
		var exists int
		if err := s.queryRow("SELECT COUNT(*) FROM api_endpoints WHERE id = ?", eid).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			continue
		}

		var linked int
		err := s.queryRow(
			"SELECT COUNT(*) FROM endpoint_functions WHERE owner_side = 'endpoint' AND endpoint_id = ? AND function_id = ?",
			eid, functionID,
		).Scan(&linked)
		if err != nil {
			return err
		}
		if linked > 0 {
			continue
		}

		_, err = s.exec(`
			INSERT INTO endpoint_functions (owner_side, endpoint_id, function_id, position)
			SELECT 'endpoint', ?, ?, COALESCE(MAX(position), -1) + 1
			FROM endpoint_functions WHERE owner_side = 'endpoint' AND endpoint_id = ?
		`, eid, functionID, eid)
		if err != nil {
			return err
		}
		if _, err := s.exec("UPDATE api_endpoints SET updated_at = ? WHERE id = ?", encodeTime(now), eid); err != nil {
			return err
		}
	}
	return nil
}

// detachFunctionFromEndpoints removes functionID from the relatedFunctions
// list of every referenced endpoint. Used on function delete only.
func (s *Store) detachFunctionFromEndpoints(functionID string, endpointIDs []string, now time.Time) error {
	for _, eid := range endpointIDs {
		res, err := s.exec(
			"DELETE FROM endpoint_functions WHERE owner_side = 'endpoint' AND endpoint_id = ? AND function_id = ?",
			eid, functionID,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			if _, err := s.exec("UPDATE api_endpoints SET updated_at = ? WHERE id = ?", encodeTime(now), eid); err != nil {
				return err
			}
		}
	}
	return nil
}
