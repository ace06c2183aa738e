package config

import (
	"os"
	"strings"
)

// AutoReorderEnabled gates the AUTO_REORDER path of the inventory decision
// pipeline. When disabled, AUTO_REORDER proposals are downgraded to
// REQUIRE_APPROVAL so a human signs off on every purchase order.
//
// Set via env:
// - VENDEX_AUTO_REORDER=true
func AutoReorderEnabled() bool {
	return boolFromEnv("VENDEX_AUTO_REORDER")
}

// MLRosterEnabled selects the remote (ML-backed) roster decision provider.
// When disabled, roster generation uses the rule-based provider directly and
// never calls the decision service.
//
// Set via env:
// - VENDEX_ML_ROSTER=true
func MLRosterEnabled() bool {
	return boolFromEnv("VENDEX_ML_ROSTER")
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
