package retrieval

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// QuerySpec is the planner-generated structured request executed against the
// catalog: filter/sort/limit for find queries, or a row count.
type QuerySpec struct {
	QueryType string   `json:"query_type"` // "find" | "count"
	Filters   []Filter `json:"filters,omitempty"`
	Sort      *Sort    `json:"sort,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// Filter is a single field comparison.
type Filter struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// Sort orders results by one catalog field.
type Sort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

// querySpecSchema constrains planner output before anything touches SQL:
// fields and operators are closed enumerations.
const querySpecSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["query_type"],
	"additionalProperties": false,
	"properties": {
		"query_type": {"enum": ["find", "count"]},
		"filters": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["field", "op", "value"],
				"additionalProperties": false,
				"properties": {
					"field": {"enum": ["name", "brand", "price", "price_per", "department", "weight_each", "weight_unit", "description", "popularity_order", "in_stock"]},
					"op": {"enum": ["eq", "ne", "lt", "lte", "gt", "gte", "like"]},
					"value": {"type": ["string", "number", "boolean"]}
				}
			}
		},
		"sort": {
			"type": "object",
			"required": ["field"],
			"additionalProperties": false,
			"properties": {
				"field": {"enum": ["name", "brand", "price", "price_per", "department", "weight_each", "popularity_order"]},
				"desc": {"type": "boolean"}
			}
		},
		"limit": {"type": "integer", "minimum": 0}
	}
}`

var querySpecSchemaLoader = gojsonschema.NewStringLoader(querySpecSchema)

// ParseQuerySpec validates raw planner output against the query schema and
// decodes it. Invalid specs are rejected before execution.
func ParseQuerySpec(raw []byte) (*QuerySpec, error) {
	result, err := gojsonschema.Validate(querySpecSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("query spec validation: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("invalid query spec: %s", strings.Join(details, "; "))
	}
	var spec QuerySpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("decode query spec: %w", err)
	}
	return &spec, nil
}
