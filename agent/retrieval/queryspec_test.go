package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuerySpec_Find(t *testing.T) {
	spec, err := ParseQuerySpec([]byte(`{
		"query_type": "find",
		"filters": [
			{"field": "name", "op": "like", "value": "mozzarella"},
			{"field": "price", "op": "lt", "value": 50}
		],
		"sort": {"field": "price", "desc": true},
		"limit": 10
	}`))
	require.NoError(t, err)

	assert.Equal(t, "find", spec.QueryType)
	require.Len(t, spec.Filters, 2)
	assert.Equal(t, "name", spec.Filters[0].Field)
	assert.Equal(t, "like", spec.Filters[0].Op)
	require.NotNil(t, spec.Sort)
	assert.True(t, spec.Sort.Desc)
	assert.Equal(t, 10, spec.Limit)
}

func TestParseQuerySpec_Count(t *testing.T) {
	spec, err := ParseQuerySpec([]byte(`{"query_type": "count", "filters": [{"field": "department", "op": "eq", "value": "Sliced Cheese"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "count", spec.QueryType)
}

func TestParseQuerySpec_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown query type", `{"query_type": "delete"}`},
		{"missing query type", `{"filters": []}`},
		{"unknown field", `{"query_type": "find", "filters": [{"field": "sku", "op": "eq", "value": 1}]}`},
		{"unknown op", `{"query_type": "find", "filters": [{"field": "price", "op": "between", "value": 1}]}`},
		{"extra property", `{"query_type": "find", "explain": true}`},
		{"negative limit", `{"query_type": "find", "limit": -1}`},
		{"sort on description", `{"query_type": "find", "sort": {"field": "description"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuerySpec([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestParseQuerySpec_NotJSON(t *testing.T) {
	_, err := ParseQuerySpec([]byte("find all the cheese"))
	assert.Error(t, err)
}
