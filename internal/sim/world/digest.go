package world

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// StateDigest hashes the exported snapshot. Struct fields marshal in
// declaration order and map keys marshal sorted, so two worlds with equal
// observable state always produce equal digests.
func (w *World) StateDigest() string {
	raw, _ := json.Marshal(w.ExportState())
	return sha256Hex(raw)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
