package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Catalogs bundles the four content catalogs the simulation runs on.
// Load never fails: files that are missing, malformed, or empty after
// validation fall back to the built-in defaults, and the reasons are
// collected in Warnings for the caller to log.
type Catalogs struct {
	Recipes     RecipeCatalog
	Channels    ChannelCatalog
	Research    ResearchCatalog
	Commercials CommercialCatalog

	Warnings []string
}

func Load(configDir string) *Catalogs {
	var c Catalogs

	c.loadRecipes(filepath.Join(configDir, "recipes.json"))
	c.loadChannels(filepath.Join(configDir, "order_channels.json"))
	c.loadResearch(filepath.Join(configDir, "research.json"))
	c.loadCommercials(filepath.Join(configDir, "commercials.json"))

	return &c
}

func (c *Catalogs) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// digestOf hashes the effective catalog content rather than the raw file,
// so defaulted and file-loaded catalogs with identical content share a
// digest. encoding/json writes map keys in sorted order, which keeps the
// digest stable across runs.
func digestOf(v any) string {
	raw, _ := json.Marshal(v)
	return sha256Hex(raw)
}

// readCatalogFile returns the per-key raw entries of a catalog file, or
// nil if the file is absent or not a JSON object.
func readCatalogFile(path string) (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return entries, nil
}
