package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFunctionDeclaration(t *testing.T) {
	content := "function add(a: number, b: number): number {\n  return a + b;\n}"

	matches := ExtractFunctions(content)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "add", m.Name)
	assert.Equal(t, "number", m.ReturnType)
	assert.Equal(t, 1, m.StartLine)
	assert.Equal(t, 3, m.EndLine)
	assert.Equal(t, content, m.Implementation)

	require.Len(t, m.Parameters, 2)
	assert.Equal(t, "a", m.Parameters[0].Name)
	assert.Equal(t, "number", m.Parameters[0].Type)
	assert.False(t, m.Parameters[0].IsOptional)
	assert.Equal(t, "b", m.Parameters[1].Name)
	assert.Equal(t, "number", m.Parameters[1].Type)
	assert.False(t, m.Parameters[1].IsOptional)

	assert.Equal(t, "Function add", m.Description)
	assert.Equal(t, "Implements functionality for add", m.Purpose)
}

func TestExtractFunctionOptionalAndDefaultParams(t *testing.T) {
	content := "function greet(name?: string, greeting = 'hi') {\n}"

	matches := ExtractFunctions(content)
	require.Len(t, matches, 1)

	params := matches[0].Parameters
	require.Len(t, params, 2)
	assert.Equal(t, "name", params[0].Name)
	assert.Equal(t, "string", params[0].Type)
	assert.True(t, params[0].IsOptional)
	assert.Equal(t, "greeting", params[1].Name)
	assert.Equal(t, "any", params[1].Type, "missing type falls back to the dynamic marker")
	assert.Equal(t, "'hi'", params[1].DefaultValue)

	assert.Equal(t, "void", matches[0].ReturnType, "missing return type defaults to void")
}

func TestExtractArrowFunctionSingleLine(t *testing.T) {
	content := "const double = (x: number): number => x * 2;"

	matches := ExtractFunctions(content)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "double", m.Name)
	assert.Equal(t, "number", m.ReturnType)
	assert.Equal(t, 1, m.StartLine)
	assert.Equal(t, 1, m.EndLine, "braceless arrow body ends on its own line")
	assert.Equal(t, content, m.Implementation)
}

func TestExtractArrowFunctionWithBody(t *testing.T) {
	content := "const handler = async (req) => {\n  respond(req);\n};"

	matches := ExtractFunctions(content)
	require.Len(t, matches, 1)
	assert.Equal(t, "handler", matches[0].Name)
	assert.Equal(t, 1, matches[0].StartLine)
	assert.Equal(t, 3, matches[0].EndLine)
}

func TestExtractClassMethod(t *testing.T) {
	content := "class Cat {\n  // purr loudly\n  purr(volume: number): void {\n    return;\n  }\n  constructor() {}\n}"

	matches := ExtractFunctions(content)
	require.Len(t, matches, 1, "constructor is excluded")

	m := matches[0]
	assert.Equal(t, "purr", m.Name)
	assert.Equal(t, kindMethod, m.Kind)
	assert.Equal(t, 3, m.StartLine)
	assert.Equal(t, 5, m.EndLine)
	assert.Equal(t, "purr loudly", m.Description)
}

func TestExtractFunctionDocMarkers(t *testing.T) {
	content := "// Description: Formats a date\n// Purpose: display helper\nfunction fmtDate(d) {\n}"

	matches := ExtractFunctions(content)
	require.Len(t, matches, 1)
	assert.Equal(t, "Formats a date", matches[0].Description)
	assert.Equal(t, "display helper", matches[0].Purpose)
}

func TestExtractFunctionNestedBraces(t *testing.T) {
	content := "function outer() {\n  if (x) {\n    inner();\n  }\n}"

	matches := ExtractFunctions(content)
	require.Len(t, matches, 1)
	assert.Equal(t, 5, matches[0].EndLine)
}

func TestExtractFunctionsControlFlowNotMatched(t *testing.T) {
	content := "  if (ready) {\n    go();\n  }"

	matches := ExtractFunctions(content)
	assert.Empty(t, matches)
}
