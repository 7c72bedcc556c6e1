package scanner

import (
	"fmt"
	"regexp"
	"strings"

	"apikb/pkg/model"
)

// Function extraction: three regex families (declarations, arrow bindings,
// class methods) with brace-balance body detection. The patterns can
// over-match and mis-balance braces inside string literals containing brace
// characters; that imprecision is part of the contract, not a bug to parse
// away. A declaration matched by more than one family yields duplicate
// entities unless their derived ids coincide.

const maxFunctionCommentLines = 19

const (
	kindFunction = "function"
	kindMethod   = "method"
)

var (
	// function add(a: number, b: number): number {
	funcDeclRe = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][\w$]*)\s*\(([^)]*)\)\s*(?::\s*([^{\n]+?))?\s*\{`)
	// const add = (a, b) => ...  /  handler = async (req): Promise<void> =>
	arrowRe = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:(?:const|let|var|public|private|protected|readonly|static)\s+)*([A-Za-z_$][\w$]*)\s*(?::[^=\n]+)?=\s*(?:async\s*)?\(([^)]*)\)\s*(?::\s*([^=\n]+?))?\s*=>`)
	// methodName(args): ret { ... } inside a class body
	methodRe = regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|private|protected|static|async)\s+)*([A-Za-z_$][\w$]*)\s*\(([^)]*)\)\s*(?::\s*([^{\n]+?))?\s*\{`)
)

// reservedNames keeps control-flow keywords from matching as method names.
// "constructor" is excluded by contract.
var reservedNames = map[string]bool{
	"constructor": true,
	"if":          true,
	"for":         true,
	"while":       true,
	"switch":      true,
	"catch":       true,
	"do":          true,
	"else":        true,
	"return":      true,
	"function":    true,
}

// FunctionMatch is one extracted function or method declaration.
type FunctionMatch struct {
	Name           string
	Kind           string
	Parameters     []model.Parameter
	ReturnType     string
	StartLine      int
	EndLine        int
	Implementation string
	Description    string
	Purpose        string
}

// ExtractFunctions runs every function pattern family over content.
func ExtractFunctions(content string) []FunctionMatch {
	lines := strings.Split(content, "\n")
	var matches []FunctionMatch

	matches = append(matches, extractFamily(content, lines, funcDeclRe, kindFunction, true)...)
	matches = append(matches, extractFamily(content, lines, arrowRe, kindFunction, false)...)
	matches = append(matches, extractFamily(content, lines, methodRe, kindMethod, true)...)
	return matches
}

func extractFamily(content string, lines []string, re *regexp.Regexp, kind string, hasBrace bool) []FunctionMatch {
	var matches []FunctionMatch
	for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
		name := content[loc[2]:loc[3]]
		if reservedNames[name] {
			continue
		}

		rawParams := ""
		if loc[4] >= 0 {
			rawParams = content[loc[4]:loc[5]]
		}
		returnType := "void"
		if loc[6] >= 0 {
			if t := strings.TrimSpace(content[loc[6]:loc[7]]); t != "" {
				returnType = t
			}
		}

		startLine := lineFromOffset(content, loc[0])
		endLine := findBodyEnd(lines, startLine, !hasBrace)

		impl := strings.Join(lines[startLine-1:endLine], "\n")

		desc, purpose := mineFunctionDocs(lines, startLine, maxFunctionCommentLines)
		if desc == "" {
			if kind == kindMethod {
				desc = fmt.Sprintf("Method %s", name)
			} else {
				desc = fmt.Sprintf("Function %s", name)
			}
		}
		if purpose == "" {
			purpose = fmt.Sprintf("Implements functionality for %s", name)
		}

		matches = append(matches, FunctionMatch{
			Name:           name,
			Kind:           kind,
			Parameters:     parseParameters(rawParams),
			ReturnType:     returnType,
			StartLine:      startLine,
			EndLine:        endLine,
			Implementation: impl,
			Description:    desc,
			Purpose:        purpose,
		})
	}
	return matches
}

// findBodyEnd scans forward from the declaration line, tracking brace balance.
// Counting starts at the first '{'; the end line is where the balance returns
// to zero. When bracelessOK is set and the declaration line carries no brace,
// the body is a single-expression arrow and ends on its own line.
func findBodyEnd(lines []string, startLine int, bracelessOK bool) int {
	if bracelessOK && !strings.Contains(lines[startLine-1], "{") {
		return startLine
	}

	depth := 0
	started := false
	for i := startLine - 1; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				started = true
				depth++
			case '}':
				if started {
					depth--
					if depth == 0 {
						return i + 1
					}
				}
			}
		}
	}
	return len(lines)
}

// parseParameters splits the raw parameter list on commas, then each fragment
// on the first colon. A trailing '?' marks the parameter optional; a missing
// type defaults to "any". An '=' introduces a default value.
func parseParameters(raw string) []model.Parameter {
	params := []model.Parameter{}
	for _, frag := range strings.Split(raw, ",") {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}

		name := frag
		typ := "any"
		defaultValue := ""

		if idx := strings.Index(frag, ":"); idx >= 0 {
			name = strings.TrimSpace(frag[:idx])
			typ = strings.TrimSpace(frag[idx+1:])
			if eq := strings.Index(typ, "="); eq >= 0 {
				defaultValue = strings.TrimSpace(typ[eq+1:])
				typ = strings.TrimSpace(typ[:eq])
			}
		} else if eq := strings.Index(frag, "="); eq >= 0 {
			name = strings.TrimSpace(frag[:eq])
			defaultValue = strings.TrimSpace(frag[eq+1:])
		}

		optional := strings.HasSuffix(name, "?")
		name = strings.TrimSuffix(name, "?")
		if typ == "" {
			typ = "any"
		}

		params = append(params, model.Parameter{
			Name:         name,
			Type:         typ,
			IsOptional:   optional,
			DefaultValue: defaultValue,
		})
	}
	return params
}
