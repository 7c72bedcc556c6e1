// Package query implements the read-only filter engine over the entity store.
package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	lru "github.com/hashicorp/golang-lru/v2"

	"apikb/internal/storage"
	apperrors "apikb/pkg/common/errors"
	"apikb/pkg/model"
)

const regexCacheSize = 128

// Filters is the AND-conjunction of per-kind filters. Zero values mean
// "not filtered".
type Filters struct {
	ProjectID          string
	Query              string
	Tags               []string
	PathPattern        string // endpoints only
	Method             string // endpoints only
	NamePattern        string // functions only
	ImplementationPath string
}

// Result groups the matching entities of one query.
type Result struct {
	Projects  []*model.Project     `json:"projects,omitempty"`
	Endpoints []*model.APIEndpoint `json:"apiEndpoints,omitempty"`
	Functions []*model.Function    `json:"functions,omitempty"`
}

// Engine answers structured queries. It only reads, never mutates.
type Engine struct {
	store   *storage.Store
	regexes *lru.Cache[string, *regexp.Regexp]
}

// NewEngine creates an engine over one store handle.
func NewEngine(store *storage.Store) *Engine {
	cache, _ := lru.New[string, *regexp.Regexp](regexCacheSize)
	return &Engine{store: store, regexes: cache}
}

// Query runs one query. entityType is one of model.TypeProject,
// model.TypeAPIEndpoint, model.TypeFunction or model.TypeAll. A malformed
// regex filter surfaces as an error, never as an empty result.
func (e *Engine) Query(entityType string, f Filters) (*Result, error) {
	res := &Result{}

	switch entityType {
	case model.TypeProject:
		projects, err := e.queryProjects(f)
		if err != nil {
			return nil, err
		}
		res.Projects = projects
	case model.TypeAPIEndpoint:
		endpoints, err := e.queryEndpoints(f)
		if err != nil {
			return nil, err
		}
		res.Endpoints = endpoints
	case model.TypeFunction:
		functions, err := e.queryFunctions(f)
		if err != nil {
			return nil, err
		}
		res.Functions = functions
	case model.TypeAll:
		projects, err := e.queryProjects(f)
		if err != nil {
			return nil, err
		}
		endpoints, err := e.queryEndpoints(f)
		if err != nil {
			return nil, err
		}
		functions, err := e.queryFunctions(f)
		if err != nil {
			return nil, err
		}
		res.Projects = projects
		res.Endpoints = endpoints
		res.Functions = functions
	default:
		return nil, fmt.Errorf("unknown entity type %q: %w", entityType, apperrors.ErrInvalidInput)
	}

	return res, nil
}

func (e *Engine) queryProjects(f Filters) ([]*model.Project, error) {
	projects, err := e.store.GetProjects()
	if err != nil {
		return nil, err
	}

	matched := []*model.Project{}
	for _, p := range projects {
		if f.ProjectID != "" && p.ID != f.ProjectID {
			continue
		}
		if f.Query != "" && !containsFold(f.Query, p.Name, p.Description) {
			continue
		}
		matched = append(matched, p)
	}
	if f.Query != "" {
		sortByProximity(matched, f.Query,
			func(p *model.Project) string { return p.Name },
			func(p *model.Project) string { return p.ID })
	}
	return matched, nil
}

func (e *Engine) queryEndpoints(f Filters) ([]*model.APIEndpoint, error) {
	endpoints, err := e.scopedEndpoints(f.ProjectID)
	if err != nil {
		return nil, err
	}

	var pathRe *regexp.Regexp
	if f.PathPattern != "" {
		if pathRe, err = e.compile(f.PathPattern); err != nil {
			return nil, err
		}
	}
	method := strings.ToUpper(f.Method)

	matched := []*model.APIEndpoint{}
	for _, ep := range endpoints {
		if f.Query != "" && !containsFold(f.Query, ep.Path, ep.Description, ep.Method) {
			continue
		}
		if len(f.Tags) > 0 && !anyTag(ep.Tags, f.Tags) {
			continue
		}
		if pathRe != nil && !pathRe.MatchString(ep.Path) {
			continue
		}
		if method != "" && ep.Method != method {
			continue
		}
		if f.ImplementationPath != "" && !strings.Contains(ep.ImplementationPath, f.ImplementationPath) {
			continue
		}
		matched = append(matched, ep)
	}
	if f.Query != "" {
		sortByProximity(matched, f.Query,
			func(ep *model.APIEndpoint) string { return ep.Path },
			func(ep *model.APIEndpoint) string { return ep.ID })
	}
	return matched, nil
}

func (e *Engine) queryFunctions(f Filters) ([]*model.Function, error) {
	functions, err := e.scopedFunctions(f.ProjectID)
	if err != nil {
		return nil, err
	}

	var nameRe *regexp.Regexp
	if f.NamePattern != "" {
		if nameRe, err = e.compile(f.NamePattern); err != nil {
			return nil, err
		}
	}

	matched := []*model.Function{}
	for _, fn := range functions {
		if f.Query != "" && !containsFold(f.Query, fn.Name, fn.Description, fn.Purpose, fn.Implementation) {
			continue
		}
		if len(f.Tags) > 0 && !anyTag(fn.Tags, f.Tags) {
			continue
		}
		if nameRe != nil && !nameRe.MatchString(fn.Name) {
			continue
		}
		if f.ImplementationPath != "" && !strings.Contains(fn.ImplementationPath, f.ImplementationPath) {
			continue
		}
		matched = append(matched, fn)
	}
	if f.Query != "" {
		sortByProximity(matched, f.Query,
			func(fn *model.Function) string { return fn.Name },
			func(fn *model.Function) string { return fn.ID })
	}
	return matched, nil
}

// scopedEndpoints returns one project's endpoints when a scope is given,
// otherwise every stored endpoint (orphans included).
func (e *Engine) scopedEndpoints(projectID string) ([]*model.APIEndpoint, error) {
	if projectID != "" {
		return e.store.GetAPIEndpointsForProject(projectID)
	}
	return e.store.GetAPIEndpoints()
}

func (e *Engine) scopedFunctions(projectID string) ([]*model.Function, error) {
	if projectID != "" {
		return e.store.GetFunctionsForProject(projectID)
	}
	return e.store.GetFunctions()
}

// compile parses a regex filter through the LRU cache. An invalid pattern is
// a query error, not a silent empty result.
func (e *Engine) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := e.regexes.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPattern, err)
	}
	e.regexes.Add(pattern, re)
	return re, nil
}

// containsFold reports whether needle occurs case-insensitively in any of the
// haystacks.
func containsFold(needle string, haystacks ...string) bool {
	n := strings.ToLower(needle)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), n) {
			return true
		}
	}
	return false
}

// anyTag implements OR semantics within the tags filter.
func anyTag(entityTags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range entityTags {
			if t == w {
				return true
			}
		}
	}
	return false
}

// sortByProximity orders free-text matches by edit distance between the query
// and the entity's primary name field, with the id as a stable tiebreak. The
// filter already decided membership; this only fixes the order.
func sortByProximity[T any](items []T, q string, name func(T) string, id func(T) string) {
	lq := strings.ToLower(q)
	sort.SliceStable(items, func(i, j int) bool {
		di := levenshtein.Distance(lq, strings.ToLower(name(items[i])), nil)
		dj := levenshtein.Distance(lq, strings.ToLower(name(items[j])), nil)
		if di != dj {
			return di < dj
		}
		return id(items[i]) < id(items[j])
	})
}
