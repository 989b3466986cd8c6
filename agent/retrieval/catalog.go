package retrieval

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Product is one catalog record.
type Product struct {
	ID              int64
	Name            string
	Brand           string
	Price           float64
	PricePer        float64
	Department      string
	WeightEach      float64
	WeightUnit      string
	Description     string
	PopularityOrder int
	InStock         bool
}

// CatalogStore executes validated query specs against the products table.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a catalog store. The products table is created by
// the migrations in agent/db.
func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

var filterOps = map[string]string{
	"eq":   "=",
	"ne":   "!=",
	"lt":   "<",
	"lte":  "<=",
	"gt":   ">",
	"gte":  ">=",
	"like": "LIKE",
}

// buildWhere translates validated filters into a WHERE clause. Field names
// come from the query spec schema's closed enumeration, so they are safe to
// interpolate; values always go through placeholders.
func buildWhere(filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		op, ok := filterOps[f.Op]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
		value := f.Value
		if f.Op == "like" {
			str, ok := value.(string)
			if !ok {
				return "", nil, fmt.Errorf("like filter on %q requires a string value", f.Field)
			}
			value = "%" + str + "%"
		}
		clauses = append(clauses, fmt.Sprintf("%s %s ?", f.Field, op))
		args = append(args, value)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// BuildQuery renders a validated spec into SQL and bind args.
func BuildQuery(spec *QuerySpec) (string, []any, error) {
	where, args, err := buildWhere(spec.Filters)
	if err != nil {
		return "", nil, err
	}

	if spec.QueryType == "count" {
		return "SELECT COUNT(*) FROM products" + where, args, nil
	}

	query := `SELECT id, name, brand, price, price_per, department, weight_each, weight_unit, description, popularity_order, in_stock FROM products` + where
	if spec.Sort != nil {
		query += " ORDER BY " + spec.Sort.Field
		if spec.Sort.Desc {
			query += " DESC"
		}
	}
	limit := spec.Limit
	if limit <= 0 || limit > maxQueryRows {
		limit = maxQueryRows
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	return query, args, nil
}

// maxQueryRows bounds how many catalog rows a single structured query returns.
const maxQueryRows = 200

// Count runs a count spec and returns the number of matching rows.
func (c *CatalogStore) Count(ctx context.Context, spec *QuerySpec) (int, error) {
	query, args, err := BuildQuery(spec)
	if err != nil {
		return 0, err
	}
	var n int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return n, nil
}

// Find runs a find spec and returns the matching products.
func (c *CatalogStore) Find(ctx context.Context, spec *QuerySpec) ([]Product, error) {
	query, args, err := BuildQuery(spec)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find query failed: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &p.PricePer, &p.Department,
			&p.WeightEach, &p.WeightUnit, &p.Description, &p.PopularityOrder, &p.InStock); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListAll returns every product, for vector index seeding.
func (c *CatalogStore) ListAll(ctx context.Context) ([]Product, error) {
	return c.Find(ctx, &QuerySpec{QueryType: "find", Limit: maxQueryRows})
}

// Insert adds one product to the catalog.
func (c *CatalogStore) Insert(ctx context.Context, p Product) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO products (name, brand, price, price_per, department, weight_each, weight_unit, description, popularity_order, in_stock)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Brand, p.Price, p.PricePer, p.Department,
		p.WeightEach, p.WeightUnit, p.Description, p.PopularityOrder, p.InStock,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Describe renders a product as a context snippet body.
func (p Product) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Product: %s\n", p.Name)
	fmt.Fprintf(&sb, "Brand: %s\n", p.Brand)
	fmt.Fprintf(&sb, "Department: %s\n", p.Department)
	fmt.Fprintf(&sb, "Price: $%.2f\n", p.Price)
	if p.PricePer > 0 {
		fmt.Fprintf(&sb, "Price per %s: $%.2f\n", p.WeightUnit, p.PricePer)
	}
	if p.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", p.Description)
	}
	if !p.InStock {
		sb.WriteString("Availability: out of stock\n")
	}
	return sb.String()
}
