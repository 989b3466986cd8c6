package retrieval

import (
	"context"
	"fmt"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

const plannerSystemPrompt = `You translate a natural-language question about a product catalog into a
structured query. The catalog is a table of products with these fields:

- name (string), brand (string), department (string)
- price (number, dollars), price_per (number, dollars per weight unit)
- weight_each (number), weight_unit (string)
- description (string, full product text)
- popularity_order (integer, lower is more popular)
- in_stock (boolean)

Departments include: Specialty Cheese, Sliced Cheese, Cream Cheese, Shredded
Cheese, Cottage Cheese, Cheese Loaf, Cheese Wheel.

Use query_type "count" when the question asks how many / the number of
products; use "find" otherwise. Use the "like" op for name/brand/description
substring matches.

Respond with a single JSON object, nothing else:
{"query_type": "find" | "count",
 "filters": [{"field": "...", "op": "eq|ne|lt|lte|gt|gte|like", "value": ...}],
 "sort": {"field": "...", "desc": true|false},
 "limit": <integer>}`

// maxListedResults caps how many product snippets a single retrieval exposes
// to the answerer; the total count is always reported so partial lists can be
// disclosed.
const maxListedResults = 30

// CatalogQuerier is the slice of the catalog store the structured retriever
// needs: executing validated count and find specs.
type CatalogQuerier interface {
	Count(ctx context.Context, spec *QuerySpec) (int, error)
	Find(ctx context.Context, spec *QuerySpec) ([]Product, error)
}

// StructuredRetriever implements the Retriever port over the record store: a
// planner model translates the query into a validated QuerySpec which is then
// executed against the catalog.
type StructuredRetriever struct {
	planner ports.Provider
	catalog CatalogQuerier
}

// NewStructuredRetriever creates a structured retriever.
func NewStructuredRetriever(planner ports.Provider, catalog CatalogQuerier) *StructuredRetriever {
	return &StructuredRetriever{planner: planner, catalog: catalog}
}

// Retrieve plans, validates, and executes a structured query, returning the
// results as context snippets. The first snippet always carries the exact
// result count.
func (r *StructuredRetriever) Retrieve(ctx context.Context, query string) ([]ports.Snippet, error) {
	spec, err := r.plan(ctx, query)
	if err != nil {
		return nil, err
	}

	if spec.QueryType == "count" {
		n, err := r.catalog.Count(ctx, spec)
		if err != nil {
			return nil, err
		}
		return []ports.Snippet{{
			Text:   fmt.Sprintf("Result count: %d products match the query.", n),
			Source: "structured",
		}}, nil
	}

	products, err := r.catalog.Find(ctx, spec)
	if err != nil {
		return nil, err
	}

	snippets := make([]ports.Snippet, 0, len(products)+2)
	snippets = append(snippets, ports.Snippet{
		Text:   fmt.Sprintf("Result count: %d products match the query.", len(products)),
		Source: "structured",
	})
	listed := products
	if len(listed) > maxListedResults {
		listed = listed[:maxListedResults]
	}
	for _, p := range listed {
		snippets = append(snippets, ports.Snippet{Text: p.Describe(), Source: "structured"})
	}
	if len(products) > maxListedResults {
		snippets = append(snippets, ports.Snippet{
			Text:   fmt.Sprintf("Note: only the first %d of %d matching products are listed.", maxListedResults, len(products)),
			Source: "structured",
		})
	}
	return snippets, nil
}

// plan asks the planner model for a QuerySpec and validates it against the
// query schema before anything is executed.
func (r *StructuredRetriever) plan(ctx context.Context, query string) (*QuerySpec, error) {
	completion, err := r.planner.Complete(ctx, ports.PromptInput{
		System:   plannerSystemPrompt,
		Messages: []ports.PromptMessage{{Role: "user", Content: query}},
	}, ports.Options{Temperature: 0, RequireJSON: true})
	if err != nil {
		return nil, fmt.Errorf("query planning: %w", err)
	}
	spec, err := ParseQuerySpec([]byte(completion.Text))
	if err != nil {
		return nil, fmt.Errorf("query planning: %w", err)
	}
	return spec, nil
}

// Ensure StructuredRetriever implements the Retriever interface.
var _ ports.Retriever = (*StructuredRetriever)(nil)
