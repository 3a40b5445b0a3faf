package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Balance holds every numeric knob of the simulation. Values left at zero
// in the YAML file fall back to the shipped defaults, so an override file
// only needs the fields it changes.
type Balance struct {
	StartingMoney         int     `yaml:"starting_money"`
	ReputationStarting    float64 `yaml:"reputation_starting"`
	ReputationGainOntime  float64 `yaml:"reputation_gain_ontime"`
	ReputationLossLate    float64 `yaml:"reputation_loss_late"`
	ReputationLossMissed  float64 `yaml:"reputation_loss_missed"`
	MissedPenaltyFraction float64 `yaml:"missed_penalty_fraction"`

	ItemSpawnInterval  float64 `yaml:"item_spawn_interval"`
	OrderSpawnInterval float64 `yaml:"order_spawn_interval"`
	DoubleSpawnDivisor float64 `yaml:"double_spawn_divisor"`

	HygieneEventCooldown  float64 `yaml:"hygiene_event_cooldown"`
	HygieneEventChance    float64 `yaml:"hygiene_event_chance"`
	HygieneEventMinDrop   float64 `yaml:"hygiene_event_min_drop"`
	HygieneEventMaxDrop   float64 `yaml:"hygiene_event_max_drop"`
	HygieneRecoveryRate   float64 `yaml:"hygiene_recovery_rate"`
	HygieneTrainingBonus  float64 `yaml:"hygiene_training_bonus"`
	ProcessorHygieneScale float64 `yaml:"processor_hygiene_scale"`
	OvenHygieneScale      float64 `yaml:"oven_hygiene_scale"`

	BeltSpeed          float64 `yaml:"belt_speed"`
	TurboBeltBonus     float64 `yaml:"turbo_belt_bonus"`
	ProcessorSpeed     float64 `yaml:"processor_speed"`
	OvenSpeed          float64 `yaml:"oven_speed"`
	TurboOvenBonus     float64 `yaml:"turbo_oven_bonus"`
	AssemblyTableSpeed float64 `yaml:"assembly_table_speed"`

	BotChargeRate    float64 `yaml:"bot_charge_rate"`
	BotBoostSeconds  float64 `yaml:"bot_boost_seconds"`
	BotMinRemaining  float64 `yaml:"bot_min_remaining"`
	DeliverySLAFloor float64 `yaml:"delivery_sla_floor"`

	DroneTravelMin   float64 `yaml:"drone_travel_min"`
	DroneTravelMax   float64 `yaml:"drone_travel_max"`
	ScooterTravelMin float64 `yaml:"scooter_travel_min"`
	ScooterTravelMax float64 `yaml:"scooter_travel_max"`

	LatePayoutFraction     float64 `yaml:"late_payout_fraction"`
	PriorityLatePayout     float64 `yaml:"priority_late_payout"`
	WasteRefundFraction    float64 `yaml:"waste_refund_fraction"`
	SecondLocationBonus    float64 `yaml:"second_location_bonus"`
	SecondLocationOrderCap int     `yaml:"second_location_order_cap"`

	ExpansionRate         float64 `yaml:"expansion_rate"`
	ExpansionPerCompleted float64 `yaml:"expansion_per_completed"`
	ExpansionBaseNeed     float64 `yaml:"expansion_base_need"`
	FranchiseExpansion    float64 `yaml:"franchise_expansion"`

	BuildCosts  map[string]int `yaml:"build_costs"`
	Ingredients []Ingredient   `yaml:"ingredients"`
}

// Ingredient describes one spawnable raw ingredient. Products lists the
// prepared goods it can become, matched against recipe requirements when
// tagging items at the assembly table.
type Ingredient struct {
	Key          string   `yaml:"key"`
	SpawnWeight  float64  `yaml:"spawn_weight"`
	PurchaseCost int      `yaml:"purchase_cost"`
	Products     []string `yaml:"products"`
}

// Default returns the shipped balance.
func Default() Balance {
	return Balance{
		StartingMoney:         1000,
		ReputationStarting:    50.0,
		ReputationGainOntime:  1.5,
		ReputationLossLate:    4.0,
		ReputationLossMissed:  2.0,
		MissedPenaltyFraction: 0.25,

		ItemSpawnInterval:  1.8,
		OrderSpawnInterval: 5.5,
		DoubleSpawnDivisor: 1.75,

		HygieneEventCooldown:  14.0,
		HygieneEventChance:    0.015,
		HygieneEventMinDrop:   8.0,
		HygieneEventMaxDrop:   20.0,
		HygieneRecoveryRate:   0.35,
		HygieneTrainingBonus:  0.30,
		ProcessorHygieneScale: 220.0,
		OvenHygieneScale:      280.0,

		BeltSpeed:          1.0,
		TurboBeltBonus:     0.25,
		ProcessorSpeed:     0.5,
		OvenSpeed:          0.35,
		TurboOvenBonus:     0.18,
		AssemblyTableSpeed: 0.60,

		BotChargeRate:    0.18,
		BotBoostSeconds:  0.8,
		BotMinRemaining:  0.4,
		DeliverySLAFloor: 2.5,

		DroneTravelMin:   3.5,
		DroneTravelMax:   7.5,
		ScooterTravelMin: 5.0,
		ScooterTravelMax: 10.0,

		LatePayoutFraction:     0.5,
		PriorityLatePayout:     0.75,
		WasteRefundFraction:    0.40,
		SecondLocationBonus:    0.15,
		SecondLocationOrderCap: 4,

		ExpansionRate:         0.35,
		ExpansionPerCompleted: 0.002,
		ExpansionBaseNeed:     24.0,
		FranchiseExpansion:    1.5,

		BuildCosts: map[string]int{
			"conveyor":       10,
			"processor":      40,
			"assembly_table": 50,
			"oven":           60,
			"bot_dock":       80,
		},
		Ingredients: defaultIngredients(),
	}
}

func defaultIngredients() []Ingredient {
	return []Ingredient{
		{Key: "flour", SpawnWeight: 3.0, PurchaseCost: 1, Products: []string{"rolled_pizza_base"}},
		{Key: "tomato", SpawnWeight: 2.5, PurchaseCost: 1, Products: []string{"tomato_sauce", "sliced_tomato"}},
		{Key: "cheese", SpawnWeight: 2.5, PurchaseCost: 2, Products: []string{"shredded_cheese", "sliced_mozzarella"}},
		{Key: "pepperoni", SpawnWeight: 1.5, PurchaseCost: 3, Products: []string{"sliced_pepperoni"}},
		{Key: "ham", SpawnWeight: 1.2, PurchaseCost: 3, Products: []string{"diced_ham"}},
		{Key: "chicken", SpawnWeight: 1.0, PurchaseCost: 3, Products: []string{"grilled_chicken"}},
		{Key: "mushroom", SpawnWeight: 1.0, PurchaseCost: 2, Products: []string{"sliced_mushroom"}},
		{Key: "pepper", SpawnWeight: 0.8, PurchaseCost: 2, Products: []string{"sliced_pepper"}},
		{Key: "onion", SpawnWeight: 0.8, PurchaseCost: 1, Products: []string{"diced_onion"}},
		{Key: "olive", SpawnWeight: 0.7, PurchaseCost: 2, Products: []string{"sliced_olive"}},
		{Key: "pineapple", SpawnWeight: 0.5, PurchaseCost: 2, Products: []string{"pineapple_chunks"}},
		{Key: "jalapeno", SpawnWeight: 0.6, PurchaseCost: 2, Products: []string{"sliced_jalapeno"}},
		{Key: "artichoke", SpawnWeight: 0.4, PurchaseCost: 3, Products: []string{"artichoke_hearts"}},
		{Key: "bacon", SpawnWeight: 1.0, PurchaseCost: 3, Products: []string{"bacon_crumble"}},
		{Key: "sausage", SpawnWeight: 0.9, PurchaseCost: 3, Products: []string{"sausage_crumble"}},
		{Key: "garlic", SpawnWeight: 0.7, PurchaseCost: 1, Products: []string{"roasted_garlic"}},
		{Key: "spinach", SpawnWeight: 0.6, PurchaseCost: 2, Products: []string{"baby_spinach"}},
		{Key: "corn", SpawnWeight: 0.6, PurchaseCost: 1, Products: []string{"sweetcorn"}},
		{Key: "anchovy", SpawnWeight: 0.3, PurchaseCost: 4, Products: []string{"anchovy_fillets"}},
		{Key: "beef", SpawnWeight: 0.8, PurchaseCost: 4, Products: []string{"seasoned_beef"}},
		{Key: "rocket", SpawnWeight: 0.4, PurchaseCost: 2, Products: []string{"rocket_leaves"}},
		{Key: "basil", SpawnWeight: 1.2, PurchaseCost: 1, Products: []string{"fresh_basil"}},
	}
}

// Load reads a balance override file. On any error the shipped defaults are
// returned alongside the error so callers can log and keep running.
func Load(path string) (Balance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Default(), err
	}
	var b Balance
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return Default(), fmt.Errorf("balance.yaml: %w", err)
	}
	b.applyDefaults()
	return b, nil
}

func (b *Balance) applyDefaults() {
	d := Default()
	if b.StartingMoney <= 0 {
		b.StartingMoney = d.StartingMoney
	}
	if b.ReputationStarting <= 0 {
		b.ReputationStarting = d.ReputationStarting
	}
	if b.ReputationGainOntime <= 0 {
		b.ReputationGainOntime = d.ReputationGainOntime
	}
	if b.ReputationLossLate <= 0 {
		b.ReputationLossLate = d.ReputationLossLate
	}
	if b.ReputationLossMissed <= 0 {
		b.ReputationLossMissed = d.ReputationLossMissed
	}
	if b.MissedPenaltyFraction <= 0 {
		b.MissedPenaltyFraction = d.MissedPenaltyFraction
	}
	if b.ItemSpawnInterval <= 0 {
		b.ItemSpawnInterval = d.ItemSpawnInterval
	}
	if b.OrderSpawnInterval <= 0 {
		b.OrderSpawnInterval = d.OrderSpawnInterval
	}
	if b.DoubleSpawnDivisor <= 0 {
		b.DoubleSpawnDivisor = d.DoubleSpawnDivisor
	}
	if b.HygieneEventCooldown <= 0 {
		b.HygieneEventCooldown = d.HygieneEventCooldown
	}
	if b.HygieneEventChance <= 0 {
		b.HygieneEventChance = d.HygieneEventChance
	}
	if b.HygieneEventMinDrop <= 0 {
		b.HygieneEventMinDrop = d.HygieneEventMinDrop
	}
	if b.HygieneEventMaxDrop <= 0 {
		b.HygieneEventMaxDrop = d.HygieneEventMaxDrop
	}
	if b.HygieneEventMaxDrop < b.HygieneEventMinDrop {
		b.HygieneEventMaxDrop = b.HygieneEventMinDrop
	}
	if b.HygieneRecoveryRate <= 0 {
		b.HygieneRecoveryRate = d.HygieneRecoveryRate
	}
	if b.HygieneTrainingBonus <= 0 {
		b.HygieneTrainingBonus = d.HygieneTrainingBonus
	}
	if b.ProcessorHygieneScale <= 0 {
		b.ProcessorHygieneScale = d.ProcessorHygieneScale
	}
	if b.OvenHygieneScale <= 0 {
		b.OvenHygieneScale = d.OvenHygieneScale
	}
	if b.BeltSpeed <= 0 {
		b.BeltSpeed = d.BeltSpeed
	}
	if b.TurboBeltBonus <= 0 {
		b.TurboBeltBonus = d.TurboBeltBonus
	}
	if b.ProcessorSpeed <= 0 {
		b.ProcessorSpeed = d.ProcessorSpeed
	}
	if b.OvenSpeed <= 0 {
		b.OvenSpeed = d.OvenSpeed
	}
	if b.TurboOvenBonus <= 0 {
		b.TurboOvenBonus = d.TurboOvenBonus
	}
	if b.AssemblyTableSpeed <= 0 {
		b.AssemblyTableSpeed = d.AssemblyTableSpeed
	}
	if b.BotChargeRate <= 0 {
		b.BotChargeRate = d.BotChargeRate
	}
	if b.BotBoostSeconds <= 0 {
		b.BotBoostSeconds = d.BotBoostSeconds
	}
	if b.BotMinRemaining <= 0 {
		b.BotMinRemaining = d.BotMinRemaining
	}
	if b.DeliverySLAFloor <= 0 {
		b.DeliverySLAFloor = d.DeliverySLAFloor
	}
	if b.DroneTravelMin <= 0 {
		b.DroneTravelMin = d.DroneTravelMin
	}
	if b.DroneTravelMax <= 0 {
		b.DroneTravelMax = d.DroneTravelMax
	}
	if b.DroneTravelMax < b.DroneTravelMin {
		b.DroneTravelMax = b.DroneTravelMin
	}
	if b.ScooterTravelMin <= 0 {
		b.ScooterTravelMin = d.ScooterTravelMin
	}
	if b.ScooterTravelMax <= 0 {
		b.ScooterTravelMax = d.ScooterTravelMax
	}
	if b.ScooterTravelMax < b.ScooterTravelMin {
		b.ScooterTravelMax = b.ScooterTravelMin
	}
	if b.LatePayoutFraction <= 0 {
		b.LatePayoutFraction = d.LatePayoutFraction
	}
	if b.PriorityLatePayout <= 0 {
		b.PriorityLatePayout = d.PriorityLatePayout
	}
	if b.WasteRefundFraction <= 0 {
		b.WasteRefundFraction = d.WasteRefundFraction
	}
	if b.SecondLocationBonus <= 0 {
		b.SecondLocationBonus = d.SecondLocationBonus
	}
	if b.SecondLocationOrderCap <= 0 {
		b.SecondLocationOrderCap = d.SecondLocationOrderCap
	}
	if b.ExpansionRate <= 0 {
		b.ExpansionRate = d.ExpansionRate
	}
	if b.ExpansionPerCompleted <= 0 {
		b.ExpansionPerCompleted = d.ExpansionPerCompleted
	}
	if b.ExpansionBaseNeed <= 0 {
		b.ExpansionBaseNeed = d.ExpansionBaseNeed
	}
	if b.FranchiseExpansion <= 0 {
		b.FranchiseExpansion = d.FranchiseExpansion
	}
	if b.BuildCosts == nil {
		b.BuildCosts = map[string]int{}
	}
	for kind, cost := range d.BuildCosts {
		if b.BuildCosts[kind] <= 0 {
			b.BuildCosts[kind] = cost
		}
	}
	b.Ingredients = filterIngredients(b.Ingredients)
	if len(b.Ingredients) == 0 {
		b.Ingredients = d.Ingredients
	}
}

func filterIngredients(in []Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(in))
	for _, ing := range in {
		if ing.Key == "" || ing.SpawnWeight <= 0 || ing.PurchaseCost <= 0 {
			continue
		}
		ok := len(ing.Products) > 0
		for _, p := range ing.Products {
			if p == "" {
				ok = false
			}
		}
		if !ok {
			continue
		}
		out = append(out, ing)
	}
	return out
}
