package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(instrument|strategy_id|entry_time_ms|direction)
// Returns hex-encoded hash (64 characters). The same (series, config) input
// always yields the same IDs, which is what makes reruns byte-comparable.
func ComputeTradeID(instrument, strategyID string, entryTimeMs int64, direction string) string {
	data := fmt.Sprintf("%s|%s|%d|%s", instrument, strategyID, entryTimeMs, direction)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
