package retrieval

import (
	"context"
	"fmt"
)

// fixtureProducts is a small starter catalog so the agent works end to end
// before a real catalog import.
var fixtureProducts = []Product{
	{Name: "Fresh Mozzarella Ball", Brand: "Galbani", Price: 6.49, PricePer: 6.49, Department: "Specialty Cheese", WeightEach: 1, WeightUnit: "lbs", Description: "Soft fresh mozzarella with a delicate milky flavor, ideal for caprese and pizza.", PopularityOrder: 1, InStock: true},
	{Name: "Shredded Mozzarella", Brand: "Galbani", Price: 18.90, PricePer: 3.78, Department: "Shredded Cheese", WeightEach: 5, WeightUnit: "lbs", Description: "Low-moisture shredded mozzarella that melts evenly, made for pizza and baked pasta.", PopularityOrder: 2, InStock: true},
	{Name: "Brie Wheel", Brand: "President", Price: 24.99, PricePer: 12.50, Department: "Cheese Wheel", WeightEach: 2, WeightUnit: "lbs", Description: "Creamy soft-ripened brie with a bloomy rind and buttery flavor.", PopularityOrder: 3, InStock: true},
	{Name: "Sharp Cheddar Block", Brand: "Tillamook", Price: 11.25, PricePer: 5.63, Department: "Specialty Cheese", WeightEach: 2, WeightUnit: "lbs", Description: "Aged sharp cheddar with a firm texture, good for melting and snacking.", PopularityOrder: 4, InStock: true},
	{Name: "Sliced Provolone", Brand: "BelGioioso", Price: 9.80, PricePer: 9.80, Department: "Sliced Cheese", WeightEach: 1, WeightUnit: "lbs", Description: "Mild provolone slices for sandwiches and melts.", PopularityOrder: 5, InStock: true},
	{Name: "Whipped Cream Cheese", Brand: "Philadelphia", Price: 4.99, PricePer: 9.98, Department: "Cream Cheese", WeightEach: 0.5, WeightUnit: "lbs", Description: "Light whipped cream cheese spread for bagels and baking.", PopularityOrder: 6, InStock: true},
	{Name: "Crumbled Gorgonzola", Brand: "BelGioioso", Price: 8.75, PricePer: 17.50, Department: "Crumbled, Cubed, Grated, Shaved", WeightEach: 0.5, WeightUnit: "lbs", Description: "Tangy gorgonzola crumbles for salads and steak toppings.", PopularityOrder: 7, InStock: true},
	{Name: "Grated Parmesan", Brand: "Kraft", Price: 7.40, PricePer: 14.80, Department: "Crumbled, Cubed, Grated, Shaved", WeightEach: 0.5, WeightUnit: "lbs", Description: "Finely grated parmesan with a sharp, nutty flavor for pasta and soups.", PopularityOrder: 8, InStock: true},
	{Name: "Small Curd Cottage Cheese", Brand: "Daisy", Price: 3.99, PricePer: 3.99, Department: "Cottage Cheese", WeightEach: 1, WeightUnit: "lbs", Description: "Fresh small curd cottage cheese, high in protein.", PopularityOrder: 9, InStock: true},
	{Name: "Smoked Gouda Loaf", Brand: "Boar's Head", Price: 32.00, PricePer: 8.00, Department: "Cheese Loaf", WeightEach: 4, WeightUnit: "lbs", Description: "Smoked gouda with a rich, creamy body and hickory notes, slices well for melts.", PopularityOrder: 10, InStock: false},
}

// SeedIfEmpty loads the fixture catalog when the products table has no rows.
// Returns the number of products inserted.
func SeedIfEmpty(ctx context.Context, catalog *CatalogStore) (int, error) {
	n, err := catalog.Count(ctx, &QuerySpec{QueryType: "count"})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for _, p := range fixtureProducts {
		if err := catalog.Insert(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(fixtureProducts), nil
}
