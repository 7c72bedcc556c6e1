package storage

import (
	"encoding/json"
	"time"

	"apikb/pkg/model"
)

const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeStrings(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeStrings(s string) []string {
	var v []string
	if err := json.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return []string{}
	}
	return v
}

func encodeParameters(v []model.Parameter) string {
	if v == nil {
		v = []model.Parameter{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeParameters(s string) []model.Parameter {
	var v []model.Parameter
	if err := json.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return []model.Parameter{}
	}
	return v
}

func encodeSchema(v *model.SchemaDefinition) any {
	if v == nil {
		return nil
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeSchema(s *string) *model.SchemaDefinition {
	if s == nil || *s == "" {
		return nil
	}
	var v model.SchemaDefinition
	if err := json.Unmarshal([]byte(*s), &v); err != nil {
		return nil
	}
	return &v
}
