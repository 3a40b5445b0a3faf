package catalogs

import (
	"encoding/json"
	"os"
	"sort"
)

type RecipeCatalog struct {
	ByKey  map[string]Recipe
	Keys   []string // sorted
	Digest string
}

// Recipe describes one sellable pizza. Base, Sauce and Cheese name the
// prepared products every pie needs; Toppings add to them and PostOven
// products are applied after baking, so they never gate assembly.
type Recipe struct {
	Key              string   `json:"-"`
	DisplayName      string   `json:"display_name"`
	SellPrice        int      `json:"sell_price"`
	SLA              float64  `json:"sla"`
	UnlockTier       int      `json:"unlock_tier"`
	CookTime         float64  `json:"cook_time"`
	CookTemp         string   `json:"cook_temp"`
	Difficulty       int      `json:"difficulty"`
	Base             string   `json:"base"`
	Sauce            string   `json:"sauce"`
	Cheese           string   `json:"cheese"`
	Toppings         []string `json:"toppings"`
	PostOven         []string `json:"post_oven"`
	DemandWeight     float64  `json:"demand_weight"`
	RequiredResearch string   `json:"required_research"`
}

// DefaultKey returns the catalog's fallback recipe, used when a snapshot
// references a recipe that no longer exists.
func (rc *RecipeCatalog) DefaultKey() string {
	if len(rc.Keys) == 0 {
		return ""
	}
	return rc.Keys[0]
}

func defaultRecipes() map[string]Recipe {
	return map[string]Recipe{
		"margherita": {
			Key:          "margherita",
			DisplayName:  "Margherita",
			SellPrice:    12,
			SLA:          11.0,
			UnlockTier:   0,
			CookTime:     8.0,
			CookTemp:     "medium",
			Difficulty:   1,
			Base:         "rolled_pizza_base",
			Sauce:        "tomato_sauce",
			Cheese:       "sliced_mozzarella",
			Toppings:     []string{"fresh_basil"},
			DemandWeight: 1.0,
		},
		"pepperoni": {
			Key:          "pepperoni",
			DisplayName:  "Pepperoni",
			SellPrice:    15,
			SLA:          10.0,
			UnlockTier:   1,
			CookTime:     7.5,
			CookTemp:     "high",
			Difficulty:   2,
			Base:         "rolled_pizza_base",
			Sauce:        "tomato_sauce",
			Cheese:       "shredded_cheese",
			Toppings:     []string{"sliced_pepperoni"},
			DemandWeight: 1.0,
		},
		"veggie": {
			Key:          "veggie",
			DisplayName:  "Veggie Deluxe",
			SellPrice:    17,
			SLA:          9.5,
			UnlockTier:   2,
			CookTime:     8.2,
			CookTemp:     "medium",
			Difficulty:   2,
			Base:         "rolled_pizza_base",
			Sauce:        "tomato_sauce",
			Cheese:       "shredded_cheese",
			Toppings:     []string{"sliced_pepper", "sliced_mushroom", "diced_onion"},
			DemandWeight: 1.0,
		},
		"supreme": {
			Key:              "supreme",
			DisplayName:      "Supreme",
			SellPrice:        24,
			SLA:              12.0,
			UnlockTier:       3,
			CookTime:         9.5,
			CookTemp:         "high",
			Difficulty:       4,
			Base:             "rolled_pizza_base",
			Sauce:            "tomato_sauce",
			Cheese:           "shredded_cheese",
			Toppings:         []string{"sliced_pepperoni", "sausage_crumble", "sliced_pepper", "diced_onion", "sliced_olive"},
			PostOven:         []string{"rocket_leaves"},
			DemandWeight:     0.6,
			RequiredResearch: "precision_cooking",
		},
	}
}

func (c *Catalogs) loadRecipes(path string) {
	defer func() {
		if len(c.Recipes.ByKey) == 0 {
			c.Recipes.ByKey = defaultRecipes()
		}
		c.Recipes.Keys = sortedKeys(c.Recipes.ByKey)
		c.Recipes.Digest = digestOf(c.Recipes.ByKey)
	}()

	entries, err := readCatalogFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.warnf("recipes: %v (using defaults)", err)
		}
		return
	}

	parsed := map[string]Recipe{}
	for key, raw := range entries {
		if key == "" {
			continue
		}
		if err := recipeSchema.Validate(anyOf(raw)); err != nil {
			c.warnf("recipes: entry %q rejected: %v", key, err)
			continue
		}
		r := Recipe{
			CookTime:     8.0,
			CookTemp:     "medium",
			Difficulty:   1,
			Base:         "rolled_pizza_base",
			Sauce:        "tomato_sauce",
			Cheese:       "shredded_cheese",
			DemandWeight: 1.0,
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			c.warnf("recipes: entry %q rejected: %v", key, err)
			continue
		}
		r.Key = key
		parsed[key] = r
	}
	if len(parsed) == 0 {
		c.warnf("recipes: no valid entries in %s (using defaults)", path)
		return
	}
	c.Recipes.ByKey = parsed
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// anyOf re-decodes a raw entry into plain interface values for schema
// validation, which operates on decoded JSON rather than bytes.
func anyOf(raw json.RawMessage) any {
	var v any
	_ = json.Unmarshal(raw, &v)
	return v
}
