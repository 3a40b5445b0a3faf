package catalogs

import (
	"encoding/json"
	"os"
)

type ChannelCatalog struct {
	ByKey  map[string]Channel
	Keys   []string // sorted
	Digest string
}

// Channel is one order intake (delivery, takeaway, eat-in). Its
// multipliers shape order generation and settlement; MinReputation gates
// switching to it and MaxActiveOrders caps its pending queue.
type Channel struct {
	Key              string   `json:"-"`
	DisplayName      string   `json:"display_name"`
	RewardMultiplier float64  `json:"reward_multiplier"`
	SLAMultiplier    float64  `json:"sla_multiplier"`
	DemandWeight     float64  `json:"demand_weight"`
	DeliveryModes    []string `json:"delivery_modes"`
	MinReputation    float64  `json:"min_reputation"`
	MinDifficulty    int      `json:"min_recipe_difficulty"`
	MaxDifficulty    int      `json:"max_recipe_difficulty"`
	MaxActiveOrders  int      `json:"max_active_orders"`
	LateMultiplier   float64  `json:"late_reward_multiplier"`
	MissedMultiplier float64  `json:"missed_order_penalty_multiplier"`
}

// DefaultKey prefers the delivery channel, falling back to the first
// sorted key when a custom catalog drops it.
func (cc *ChannelCatalog) DefaultKey() string {
	if _, ok := cc.ByKey["delivery"]; ok {
		return "delivery"
	}
	if len(cc.Keys) == 0 {
		return ""
	}
	return cc.Keys[0]
}

func defaultChannels() map[string]Channel {
	return map[string]Channel{
		"delivery": {
			Key:              "delivery",
			DisplayName:      "Delivery",
			RewardMultiplier: 1.0,
			SLAMultiplier:    1.0,
			DemandWeight:     1.0,
			DeliveryModes:    []string{"drone", "scooter"},
			MinReputation:    0.0,
			MinDifficulty:    1,
			MaxDifficulty:    5,
			MaxActiveOrders:  8,
			LateMultiplier:   1.0,
			MissedMultiplier: 1.0,
		},
		"takeaway": {
			Key:              "takeaway",
			DisplayName:      "Takeaway",
			RewardMultiplier: 0.85,
			SLAMultiplier:    1.35,
			DemandWeight:     0.75,
			DeliveryModes:    []string{"scooter"},
			MinReputation:    10.0,
			MinDifficulty:    1,
			MaxDifficulty:    3,
			MaxActiveOrders:  6,
			LateMultiplier:   0.9,
			MissedMultiplier: 0.8,
		},
		"eat_in": {
			Key:              "eat_in",
			DisplayName:      "Eat-in",
			RewardMultiplier: 1.15,
			SLAMultiplier:    1.2,
			DemandWeight:     0.65,
			DeliveryModes:    []string{"scooter"},
			MinReputation:    25.0,
			MinDifficulty:    2,
			MaxDifficulty:    5,
			MaxActiveOrders:  4,
			LateMultiplier:   0.7,
			MissedMultiplier: 1.25,
		},
	}
}

func (c *Catalogs) loadChannels(path string) {
	defer func() {
		if len(c.Channels.ByKey) == 0 {
			c.Channels.ByKey = defaultChannels()
		}
		c.Channels.Keys = sortedKeys(c.Channels.ByKey)
		c.Channels.Digest = digestOf(c.Channels.ByKey)
	}()

	entries, err := readCatalogFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.warnf("order_channels: %v (using defaults)", err)
		}
		return
	}

	parsed := map[string]Channel{}
	for key, raw := range entries {
		if key == "" {
			continue
		}
		if err := channelSchema.Validate(anyOf(raw)); err != nil {
			c.warnf("order_channels: entry %q rejected: %v", key, err)
			continue
		}
		ch := Channel{
			RewardMultiplier: 1.0,
			SLAMultiplier:    1.0,
			DemandWeight:     1.0,
			DeliveryModes:    []string{"drone", "scooter"},
			MinDifficulty:    1,
			MaxDifficulty:    5,
			MaxActiveOrders:  6,
			LateMultiplier:   1.0,
			MissedMultiplier: 1.0,
		}
		if err := json.Unmarshal(raw, &ch); err != nil {
			c.warnf("order_channels: entry %q rejected: %v", key, err)
			continue
		}
		if ch.MaxDifficulty < ch.MinDifficulty {
			c.warnf("order_channels: entry %q rejected: difficulty window inverted", key)
			continue
		}
		ch.Key = key
		ch.DeliveryModes = dedupModes(ch.DeliveryModes)
		parsed[key] = ch
	}
	if len(parsed) == 0 {
		c.warnf("order_channels: no valid entries in %s (using defaults)", path)
		return
	}
	c.Channels.ByKey = parsed
}

func dedupModes(modes []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
