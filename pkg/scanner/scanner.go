// Package scanner derives endpoint and function entities from raw source
// text via pattern matching. It is a heuristic layer, not a parser: regex
// families plus brace counting, with documented false-positive modes.
package scanner

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"apikb/internal/storage"
	apperrors "apikb/pkg/common/errors"
	"apikb/pkg/ids"
	"apikb/pkg/model"
)

// DefaultPatterns is used when a scan request gives no file patterns.
var DefaultPatterns = []string{"*.js", "*.ts", "*.jsx", "*.tsx"}

// Scanner extracts entities from files and hands them to the store.
type Scanner struct {
	store *storage.Store
	log   *logrus.Logger
}

// New creates a Scanner over one store handle.
func New(store *storage.Store, log *logrus.Logger) *Scanner {
	return &Scanner{store: store, log: log}
}

// Report summarizes one project scan.
type Report struct {
	ScannedFiles int      `json:"scannedFiles"`
	APIEndpoints int      `json:"apiEndpoints"`
	Functions    int      `json:"functions"`
	EndpointIDs  []string `json:"apiEndpointIds"`
	FunctionIDs  []string `json:"functionIds"`
}

// ScanFileForAPIs extracts endpoint declarations from one file and stores
// them under projectID. Returns the stored endpoint ids, deduplicated.
func (s *Scanner) ScanFileForAPIs(projectID, filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	seen := map[string]bool{}
	endpointIDs := []string{}
	for _, m := range ExtractEndpoints(string(content)) {
		id := ids.EndpointID(projectID, m.Method, m.Path)
		ep := &model.APIEndpoint{
			ID:                 id,
			ProjectID:          projectID,
			Method:             m.Method,
			Path:               m.Path,
			Description:        m.Description,
			ImplementationPath: filePath,
			Tags:               []string{},
			RelatedFunctions:   []string{},
		}
		if err := s.store.SaveAPIEndpoint(ep); err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			endpointIDs = append(endpointIDs, id)
		}
	}

	s.log.WithFields(logrus.Fields{
		"file":      filePath,
		"endpoints": len(endpointIDs),
	}).Debug("scanned file for endpoints")
	return endpointIDs, nil
}

// ScanFileForFunctions extracts function declarations from one file and
// stores them under projectID. Returns the stored function ids, deduplicated.
func (s *Scanner) ScanFileForFunctions(projectID, filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	seen := map[string]bool{}
	functionIDs := []string{}
	for _, m := range ExtractFunctions(string(content)) {
		id := ids.FunctionID(projectID, m.Name, filePath)
		fn := &model.Function{
			ID:                  id,
			ProjectID:           projectID,
			Name:                m.Name,
			Description:         m.Description,
			Parameters:          m.Parameters,
			ReturnType:          m.ReturnType,
			Implementation:      m.Implementation,
			ImplementationPath:  filePath,
			StartLine:           m.StartLine,
			EndLine:             m.EndLine,
			Purpose:             m.Purpose,
			Tags:                []string{},
			RelatedAPIEndpoints: []string{},
			RelatedFunctions:    []string{},
			UsageExamples:       []string{},
		}
		if err := s.store.SaveFunction(fn); err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			functionIDs = append(functionIDs, id)
		}
	}

	s.log.WithFields(logrus.Fields{
		"file":      filePath,
		"functions": len(functionIDs),
	}).Debug("scanned file for functions")
	return functionIDs, nil
}

// ScanProject walks the project's path and runs both extraction passes over
// every file matching the given patterns. Files are processed sequentially;
// a scan runs to completion once started.
func (s *Scanner) ScanProject(projectID string, patterns []string) (*Report, error) {
	project, err := s.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperrors.NotFound("project", projectID)
	}

	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matched, err := FindFiles(project.Path, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", project.Path, err)
		}
		for _, f := range matched {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	report := &Report{EndpointIDs: []string{}, FunctionIDs: []string{}}
	for _, file := range files {
		endpointIDs, err := s.ScanFileForAPIs(projectID, file)
		if err != nil {
			return nil, err
		}
		functionIDs, err := s.ScanFileForFunctions(projectID, file)
		if err != nil {
			return nil, err
		}
		report.ScannedFiles++
		report.EndpointIDs = append(report.EndpointIDs, endpointIDs...)
		report.FunctionIDs = append(report.FunctionIDs, functionIDs...)
	}
	report.APIEndpoints = len(report.EndpointIDs)
	report.Functions = len(report.FunctionIDs)

	s.log.WithFields(logrus.Fields{
		"project":   projectID,
		"files":     report.ScannedFiles,
		"endpoints": report.APIEndpoints,
		"functions": report.Functions,
	}).Info("project scan complete")
	return report, nil
}
