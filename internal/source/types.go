package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a catalog file.
type Format string

// Supported catalog formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DiscoveredFile represents a catalog file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}

// RawSimulation is one simulation entry as written in a catalog file.
type RawSimulation struct {
	Question      string       `json:"question" yaml:"question"`
	MonthlyIncome *Amount      `json:"monthly_income" yaml:"monthly_income"`
	Difficulty    string       `json:"difficulty" yaml:"difficulty"`
	Category      string       `json:"category,omitempty" yaml:"category,omitempty"`
	Expenses      []RawExpense `json:"expenses" yaml:"expenses"`
}

// RawExpense is one expense entry in a catalog file.
type RawExpense struct {
	Name      string `json:"name" yaml:"name"`
	Amount    Amount `json:"amount" yaml:"amount"`
	Essential bool   `json:"essential" yaml:"essential"`
	Feedback  string `json:"feedback" yaml:"feedback"`
}

// Amount is a money value that accepts either a number or a numeric string.
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.parse(s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", n.Line)
	}
	if n.Value == "" || n.Tag == "!!null" {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.parse(n.Value)
}

func (a *Amount) parse(s string) error {
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	a.Decimal = d
	return nil
}

// catalogEnvelope is the object form of a catalog: {"simulations": [...]}.
type catalogEnvelope struct {
	Simulations []RawSimulation `json:"simulations" yaml:"simulations"`
}

var _ json.Unmarshaler = (*Amount)(nil)
var _ yaml.Unmarshaler = (*Amount)(nil)
