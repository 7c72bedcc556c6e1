package model

import "time"

// Entity type constants used by the query engine and MCP tool surface.
const (
	TypeProject     = "project"
	TypeAPIEndpoint = "api-endpoint"
	TypeFunction    = "function"
	TypeAll         = "all"
)

// HTTPMethods is the set of methods an ApiEndpoint may carry.
var HTTPMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"}

// IsHTTPMethod reports whether m (already upper-cased) is a known method.
func IsHTTPMethod(m string) bool {
	for _, v := range HTTPMethods {
		if v == m {
			return true
		}
	}
	return false
}

// Project is the root entity. Endpoints and functions are owned by exactly one
// project via ProjectID but remain independently addressable.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	APIEndpoints []string  `json:"apiEndpoints"`
	Functions    []string  `json:"functions"`
}

// SchemaDefinition describes a request or response payload of an endpoint.
type SchemaDefinition struct {
	ContentType string `json:"contentType"`
	Definition  string `json:"definition"`
	Example     string `json:"example,omitempty"`
}

// APIEndpoint is a tracked HTTP endpoint. Its id derives from
// (projectId, method, path), so re-declaring the same route is an upsert.
type APIEndpoint struct {
	ID                 string            `json:"id"`
	ProjectID          string            `json:"projectId"`
	Method             string            `json:"method"`
	Path               string            `json:"path"`
	Description        string            `json:"description"`
	RequestSchema      *SchemaDefinition `json:"requestSchema,omitempty"`
	ResponseSchema     *SchemaDefinition `json:"responseSchema,omitempty"`
	ImplementationPath string            `json:"implementationPath"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
	Tags               []string          `json:"tags"`
	RelatedFunctions   []string          `json:"relatedFunctions"`
}

// Parameter is one formal parameter of a tracked function.
type Parameter struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	IsOptional   bool   `json:"isOptional"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

// Function is a tracked function or method. Its id derives from
// (projectId, name, implementationPath).
type Function struct {
	ID                  string      `json:"id"`
	ProjectID           string      `json:"projectId"`
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	Parameters          []Parameter `json:"parameters"`
	ReturnType          string      `json:"returnType"`
	ReturnDescription   string      `json:"returnDescription"`
	Implementation      string      `json:"implementation"`
	ImplementationPath  string      `json:"implementationPath"`
	StartLine           int         `json:"startLine"`
	EndLine             int         `json:"endLine"`
	Purpose             string      `json:"purpose"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
	Tags                []string    `json:"tags"`
	RelatedAPIEndpoints []string    `json:"relatedApiEndpoints"`
	RelatedFunctions    []string    `json:"relatedFunctions"`
	UsageExamples       []string    `json:"usageExamples"`
}
