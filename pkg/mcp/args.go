package mcp

import (
	"apikb/pkg/model"
)

// Argument extraction from the raw tool argument map. Required-field checks
// happen before any store access.

func strArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]any, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

func strSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func schemaArg(args map[string]any, key string) *model.SchemaDefinition {
	raw, ok := args[key].(map[string]any)
	if !ok {
		return nil
	}
	return &model.SchemaDefinition{
		ContentType: asString(raw["contentType"]),
		Definition:  asString(raw["definition"]),
		Example:     asString(raw["example"]),
	}
}

func parametersArg(args map[string]any, key string) []model.Parameter {
	raw, ok := args[key].([]any)
	if !ok {
		return []model.Parameter{}
	}
	out := make([]model.Parameter, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Parameter{
			Name:         asString(m["name"]),
			Type:         asString(m["type"]),
			Description:  asString(m["description"]),
			IsOptional:   asBool(m["isOptional"]),
			DefaultValue: asString(m["defaultValue"]),
		})
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
