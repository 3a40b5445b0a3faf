package catalogs

import (
	"encoding/json"
	"os"
)

type CommercialCatalog struct {
	ByKey  map[string]Commercial
	Keys   []string // sorted
	Digest string
}

// Commercial is a marketing strategy. Switching to one debits its
// activation cost; while active its multipliers feed order generation.
type Commercial struct {
	Key              string  `json:"-"`
	DisplayName      string  `json:"display_name"`
	ActivationCost   int     `json:"activation_cost"`
	DemandMultiplier float64 `json:"demand_multiplier"`
	RewardMultiplier float64 `json:"reward_multiplier"`
	RequiredResearch string  `json:"required_research"`
}

// DefaultKey returns the strategy a new factory starts on.
func (cc *CommercialCatalog) DefaultKey() string {
	if len(cc.Keys) == 0 {
		return ""
	}
	return cc.Keys[0]
}

func defaultCommercials() map[string]Commercial {
	return map[string]Commercial{
		"campaigns": {
			Key:              "campaigns",
			DisplayName:      "Campaigns",
			ActivationCost:   120,
			DemandMultiplier: 1.25,
			RewardMultiplier: 1.0,
		},
		"promos": {
			Key:              "promos",
			DisplayName:      "Promos",
			ActivationCost:   90,
			DemandMultiplier: 1.0,
			RewardMultiplier: 1.1,
		},
		"franchise": {
			Key:              "franchise",
			DisplayName:      "Franchise",
			ActivationCost:   180,
			DemandMultiplier: 1.15,
			RewardMultiplier: 1.08,
			RequiredResearch: "franchise_system",
		},
	}
}

func (c *Catalogs) loadCommercials(path string) {
	defer func() {
		if len(c.Commercials.ByKey) == 0 {
			c.Commercials.ByKey = defaultCommercials()
		}
		c.Commercials.Keys = sortedKeys(c.Commercials.ByKey)
		c.Commercials.Digest = digestOf(c.Commercials.ByKey)
	}()

	entries, err := readCatalogFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.warnf("commercials: %v (using defaults)", err)
		}
		return
	}

	parsed := map[string]Commercial{}
	for key, raw := range entries {
		if key == "" {
			continue
		}
		if err := commercialSchema.Validate(anyOf(raw)); err != nil {
			c.warnf("commercials: entry %q rejected: %v", key, err)
			continue
		}
		cm := Commercial{DemandMultiplier: 1.0, RewardMultiplier: 1.0}
		if err := json.Unmarshal(raw, &cm); err != nil {
			c.warnf("commercials: entry %q rejected: %v", key, err)
			continue
		}
		cm.Key = key
		parsed[key] = cm
	}
	if len(parsed) == 0 {
		c.warnf("commercials: no valid entries in %s (using defaults)", path)
		return
	}
	c.Commercials.ByKey = parsed
}
