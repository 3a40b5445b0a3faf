package world

import "pizzatorio.dev/internal/sim/catalogs"

// The assembly table tags an untagged item for the first pending order
// whose recipe can actually use the item's ingredient. Tagging reserves
// nothing; the order is only consumed when a baked item reaches the sink.

// recipeRequiredProducts collects the prepared products a recipe needs
// before baking: base, sauce, cheese and the toppings. Post-oven garnish
// is applied after the oven and never gates assembly.
func recipeRequiredProducts(r catalogs.Recipe) map[string]bool {
	req := make(map[string]bool, 3+len(r.Toppings))
	if r.Base != "" {
		req[r.Base] = true
	}
	if r.Sauce != "" {
		req[r.Sauce] = true
	}
	if r.Cheese != "" {
		req[r.Cheese] = true
	}
	for _, t := range r.Toppings {
		req[t] = true
	}
	return req
}

// matchOrderForItem scans pending orders oldest-first and returns the
// first one whose recipe uses any product of the item's ingredient. Items
// with an empty or unknown ingredient type never match.
func (w *World) matchOrderForItem(item *Item) *Order {
	ing, ok := w.ingredients[item.IngredientType]
	if !ok || len(ing.Products) == 0 {
		return nil
	}
	for _, order := range w.orders {
		req, ok := w.requiredProducts[order.RecipeKey]
		if !ok {
			continue
		}
		for _, p := range ing.Products {
			if req[p] {
				return order
			}
		}
	}
	return nil
}
