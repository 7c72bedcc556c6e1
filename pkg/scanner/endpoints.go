package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

// Endpoint extraction: three independent pattern families run over the full
// file text. Matches are best-effort; duplicate (method, path) declarations
// collapse later through deterministic id derivation.

const maxEndpointCommentLines = 9

var endpointPatterns = []*regexp.Regexp{
	// app.get('/path', handler)
	regexp.MustCompile(`(?i)\bapp\.(get|post|put|patch|delete)\s*\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`),
	// router.get('/path', ...), server.get(...), api.get(...)
	regexp.MustCompile(`(?i)\b(?:router|route|server|api)\.(get|post|put|patch|delete)\s*\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`),
	// @Get('/path') decorator preceding a method declaration
	regexp.MustCompile(`@(Get|Post|Put|Patch|Delete)\s*\(\s*(?:['"` + "`" + `]([^'"` + "`" + `]*)['"` + "`" + `])?\s*\)`),
}

// EndpointMatch is one extracted endpoint declaration.
type EndpointMatch struct {
	Method      string
	Path        string
	Line        int
	Description string
}

// ExtractEndpoints runs every endpoint pattern family over content and
// returns all matches, duplicates included.
func ExtractEndpoints(content string) []EndpointMatch {
	lines := strings.Split(content, "\n")
	var matches []EndpointMatch

	for _, re := range endpointPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
			method := strings.ToUpper(content[loc[2]:loc[3]])
			path := "/"
			if loc[4] >= 0 && loc[4] != loc[5] {
				path = content[loc[4]:loc[5]]
			}
			line := lineFromOffset(content, loc[0])

			desc := mineDescription(lines, line, maxEndpointCommentLines)
			if desc == "" {
				desc = fmt.Sprintf("%s endpoint for %s", method, path)
			}

			matches = append(matches, EndpointMatch{
				Method:      method,
				Path:        path,
				Line:        line,
				Description: desc,
			})
		}
	}
	return matches
}
