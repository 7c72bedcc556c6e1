// Package ids derives stable entity identifiers from natural keys.
//
// The encoding is reversible base64url rather than a hash: identical key
// parts always yield the identical id (this is the upsert mechanism), and
// distinct key tuples cannot collide.
package ids

import (
	"encoding/base64"
	"strings"
)

// Kind prefixes keep the three id spaces disjoint.
const (
	ProjectPrefix  = "proj_"
	EndpointPrefix = "api_"
	FunctionPrefix = "fn_"
)

const sep = ":"

// Key parts are escaped before joining so a separator inside a part cannot
// produce the same key as a different tuple.
func escapePart(part string) string {
	part = strings.ReplaceAll(part, "%", "%25")
	return strings.ReplaceAll(part, sep, "%3A")
}

func unescapePart(part string) string {
	part = strings.ReplaceAll(part, "%3A", sep)
	return strings.ReplaceAll(part, "%25", "%")
}

func derive(prefix string, parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = escapePart(p)
	}
	key := strings.Join(escaped, sep)
	return prefix + base64.RawURLEncoding.EncodeToString([]byte(key))
}

// ProjectID derives a project id from its name and path.
func ProjectID(name, path string) string {
	return derive(ProjectPrefix, name, path)
}

// EndpointID derives an endpoint id. Same (project, method, path) means the
// same id, so re-tracking a route updates instead of duplicating.
func EndpointID(projectID, method, path string) string {
	return derive(EndpointPrefix, projectID, strings.ToUpper(method), path)
}

// FunctionID derives a function id from its owning project, name and
// implementation path.
func FunctionID(projectID, name, implementationPath string) string {
	return derive(FunctionPrefix, projectID, name, implementationPath)
}

// Decode recovers the key parts of an id. Used mainly by diagnostics; the
// store never needs to reverse an id.
func Decode(id string) ([]string, bool) {
	for _, prefix := range []string{ProjectPrefix, EndpointPrefix, FunctionPrefix} {
		if strings.HasPrefix(id, prefix) {
			raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(id, prefix))
			if err != nil {
				return nil, false
			}
			parts := strings.Split(string(raw), sep)
			for i, p := range parts {
				parts[i] = unescapePart(p)
			}
			return parts, true
		}
	}
	return nil, false
}
