package catalogs

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
)

type ResearchCatalog struct {
	ByKey map[string]ResearchTech
	// Keys is ordered by (cost, key) so the cheapest tech resolves first
	// when several thresholds are crossed in one tick.
	Keys   []string
	Digest string
}

type ResearchTech struct {
	Key           string   `json:"-"`
	DisplayName   string   `json:"display_name"`
	Branch        string   `json:"branch"`
	Cost          float64  `json:"cost"`
	Prerequisites []string `json:"prerequisites"`
}

var techIDRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func defaultResearch() map[string]ResearchTech {
	return map[string]ResearchTech{
		"ovens":             {Key: "ovens", DisplayName: "Oven Foundations", Branch: "cooking", Cost: 12.0},
		"bots":              {Key: "bots", DisplayName: "Bot Docks", Branch: "automation", Cost: 28.0},
		"turbo_oven":        {Key: "turbo_oven", DisplayName: "Turbo Ovens", Branch: "cooking", Cost: 40.0},
		"hygiene_training":  {Key: "hygiene_training", DisplayName: "Hygiene Training", Branch: "automation", Cost: 50.0},
		"turbo_belts":       {Key: "turbo_belts", DisplayName: "Turbo Belts", Branch: "logistics", Cost: 55.0},
		"priority_dispatch": {Key: "priority_dispatch", DisplayName: "Priority Dispatch", Branch: "logistics", Cost: 85.0},
		"precision_cooking": {Key: "precision_cooking", DisplayName: "Precision Cooking", Branch: "cooking", Cost: 95.0, Prerequisites: []string{"turbo_oven"}},
		"double_spawn":      {Key: "double_spawn", DisplayName: "Double Spawn", Branch: "logistics", Cost: 140.0},
		"second_location":   {Key: "second_location", DisplayName: "Second Location", Branch: "expansion", Cost: 180.0},
		"franchise_system":  {Key: "franchise_system", DisplayName: "Franchise System", Branch: "expansion", Cost: 320.0},
	}
}

func (c *Catalogs) loadResearch(path string) {
	defer func() {
		if len(c.Research.ByKey) == 0 {
			c.Research.ByKey = defaultResearch()
		}
		c.Research.Keys = researchOrder(c.Research.ByKey)
		c.Research.Digest = digestOf(c.Research.ByKey)
	}()

	entries, err := readCatalogFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.warnf("research: %v (using defaults)", err)
		}
		return
	}

	parsed := map[string]ResearchTech{}
	for key, raw := range entries {
		if !techIDRe.MatchString(key) {
			c.warnf("research: entry %q rejected: invalid tech id", key)
			continue
		}
		if err := researchSchema.Validate(anyOf(raw)); err != nil {
			c.warnf("research: entry %q rejected: %v", key, err)
			continue
		}
		tech := ResearchTech{Branch: "general"}
		if err := json.Unmarshal(raw, &tech); err != nil {
			c.warnf("research: entry %q rejected: %v", key, err)
			continue
		}
		if !validPrereqs(key, tech.Prerequisites) {
			c.warnf("research: entry %q rejected: bad prerequisite list", key)
			continue
		}
		tech.Key = key
		parsed[key] = tech
	}
	if len(parsed) == 0 {
		c.warnf("research: no valid entries in %s (using defaults)", path)
		return
	}
	// A dangling prerequisite would leave a tech permanently locked, so a
	// catalog that references missing techs is rejected wholesale.
	for _, tech := range parsed {
		for _, pre := range tech.Prerequisites {
			if _, ok := parsed[pre]; !ok {
				c.warnf("research: %q requires unknown tech %q (using defaults)", tech.Key, pre)
				return
			}
		}
	}
	c.Research.ByKey = parsed
}

func validPrereqs(key string, prereqs []string) bool {
	seen := map[string]bool{}
	for _, pre := range prereqs {
		if !techIDRe.MatchString(pre) || pre == key || seen[pre] {
			return false
		}
		seen[pre] = true
	}
	return true
}

func researchOrder(m map[string]ResearchTech) []string {
	keys := sortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		return m[keys[i]].Cost < m[keys[j]].Cost
	})
	return keys
}
