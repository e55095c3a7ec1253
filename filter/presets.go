package filter

import (
	"fmt"
	"maps"
	"slices"
)

// DefaultPresets are named expressions available without configuration
var DefaultPresets = map[string]string{
	"low":        `Range == "low"`,
	"high":       `Range == "high"`,
	"in-range":   `inRange()`,
	"out-range":  `not inRange()`,
	"rising":     `rising()`,
	"falling":    `falling()`,
	"last-hour":  `Time > hoursAgo(1)`,
	"urgent-low": `ValueMgDl < 54`,
}

// ResolvePreset looks a preset up in configured, then in DefaultPresets
func ResolvePreset(configured map[string]string, name string) (string, error) {
	if expression, ok := configured[name]; ok {
		return expression, nil
	}
	if expression, ok := DefaultPresets[name]; ok {
		return expression, nil
	}

	all := maps.Clone(DefaultPresets)
	maps.Copy(all, configured)
	names := slices.Sorted(maps.Keys(all))
	return "", fmt.Errorf("%w %q (available: %v)", ErrUnknownPreset, name, names)
}
