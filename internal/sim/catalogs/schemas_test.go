package catalogs

import (
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(s *jsonschema.Schema, doc string) error {
		t.Helper()
		var v any
		if err := json.Unmarshal([]byte(doc), &v); err != nil {
			t.Fatalf("sample not json: %v", err)
		}
		return s.Validate(v)
	}

	if err := validate(recipeSchema, `{
	  "display_name": "Margherita",
	  "sell_price": 12,
	  "sla": 11.0,
	  "unlock_tier": 0,
	  "cook_temp": "medium",
	  "difficulty": 1,
	  "toppings": ["fresh_basil"],
	  "demand_weight": 1.0
	}`); err != nil {
		t.Fatalf("recipe sample: %v", err)
	}
	if err := validate(recipeSchema, `{"display_name": "X", "sell_price": 0, "sla": 5.0}`); err == nil {
		t.Fatal("zero sell_price should fail validation")
	}

	if err := validate(channelSchema, `{
	  "display_name": "Delivery",
	  "reward_multiplier": 1.0,
	  "delivery_modes": ["drone", "scooter"],
	  "min_reputation": 0,
	  "max_active_orders": 8
	}`); err != nil {
		t.Fatalf("channel sample: %v", err)
	}
	if err := validate(channelSchema, `{"display_name": "D", "delivery_modes": ["teleport"]}`); err == nil {
		t.Fatal("unknown delivery mode should fail validation")
	}

	if err := validate(researchSchema, `{
	  "display_name": "Precision Cooking",
	  "branch": "cooking",
	  "cost": 95.0,
	  "prerequisites": ["turbo_oven"]
	}`); err != nil {
		t.Fatalf("research sample: %v", err)
	}
	if err := validate(researchSchema, `{"display_name": "Free", "cost": -1}`); err == nil {
		t.Fatal("negative cost should fail validation")
	}

	if err := validate(commercialSchema, `{
	  "display_name": "Campaigns",
	  "activation_cost": 120,
	  "demand_multiplier": 1.25
	}`); err != nil {
		t.Fatalf("commercial sample: %v", err)
	}
	if err := validate(commercialSchema, `{"display_name": "C", "activation_cost": -5}`); err == nil {
		t.Fatal("negative activation cost should fail validation")
	}
}
