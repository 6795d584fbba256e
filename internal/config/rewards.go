package config

import "strings"

// DefaultRewards maps difficulty codes to the XP awarded on first completion.
var DefaultRewards = map[string]int{
	"B": 50,
	"I": 100,
	"A": 150,
}

// RewardOverrides allows user-defined XP per difficulty.
type RewardOverrides struct {
	XP map[string]int `toml:"xp,omitempty"`
}

// Rewards resolves XP awards with config overrides applied on top of the defaults.
type Rewards struct {
	table map[string]int
}

// NewRewards merges overrides into the default reward table.
// Non-positive overrides are ignored.
func NewRewards(o RewardOverrides) Rewards {
	table := make(map[string]int, len(DefaultRewards))
	for k, v := range DefaultRewards {
		table[k] = v
	}
	for k, v := range o.XP {
		if v > 0 {
			table[strings.ToUpper(strings.TrimSpace(k))] = v
		}
	}
	return Rewards{table: table}
}

// XPFor returns the XP for a difficulty code. Unknown codes earn nothing.
func (r Rewards) XPFor(difficulty string) int {
	if r.table == nil {
		return DefaultRewards[difficulty]
	}
	return r.table[difficulty]
}
