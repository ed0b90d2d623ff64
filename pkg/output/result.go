package output

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is a parsed number. The zero Value is null: the engine did not
// compute the quantity, or printed NaN or Inf for it.
type Value struct {
	V     float64
	Valid bool
}

// Null is the null Value.
var Null = Value{}

// Of returns a Value holding f, null if f is NaN or Inf.
func Of(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null
	}
	return Value{V: f, Valid: true}
}

// Float parses a token of the report. NaN, Inf and tokens that are not
// numbers give a null Value. Every number read from a report goes through
// Float.
func Float(s string) Value {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Null
	}
	return Of(f)
}

// Get returns the number and whether it is set.
func (v Value) Get() (float64, bool) {
	return v.V, v.Valid
}

// Scale returns v multiplied by f. A null Value stays null.
func (v Value) Scale(f float64) Value {
	if !v.Valid {
		return Null
	}
	return Of(v.V * f)
}

func (v Value) String() string {
	if !v.Valid {
		return "null"
	}
	return strconv.FormatFloat(v.V, 'g', -1, 64)
}

// MarshalYAML writes null or the number.
func (v Value) MarshalYAML() (interface{}, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.V, nil
}

// Statistic is a block average with its standard deviation.
type Statistic struct {
	Average Value  `yaml:"average"`
	Dev     Value  `yaml:"dev"`
	Unit    string `yaml:"unit"`
}

// Quantity is a single number with its unit.
type Quantity struct {
	Value Value  `yaml:"value"`
	Unit  string `yaml:"unit"`
}

// Section groups what was parsed for the whole system or for one component.
type Section struct {
	Stats      map[string]Statistic `yaml:"stats,omitempty"`
	Quantities map[string]Quantity  `yaml:"quantities,omitempty"`
	Labels     map[string]string    `yaml:"labels,omitempty"`
}

func newSection() *Section {
	return &Section{
		Stats:      make(map[string]Statistic),
		Quantities: make(map[string]Quantity),
		Labels:     make(map[string]string),
	}
}

// Stat returns the statistic called name. A missing statistic is returned
// with null average and deviation.
func (s *Section) Stat(name string) Statistic {
	if s == nil {
		return Statistic{}
	}
	return s.Stats[name]
}

// Quantity returns the quantity called name.
func (s *Section) Quantity(name string) Quantity {
	if s == nil {
		return Quantity{}
	}
	return s.Quantities[name]
}

// Result is the content of one report: the statistics of the system and
// those of every component, in the order the report lists them.
type Result struct {
	General    *Section
	Components map[string]*Section
	Order      []string
}

// Component returns the section of the named component, nil if the report
// does not list it.
func (r *Result) Component(name string) *Section {
	if r == nil {
		return nil
	}
	return r.Components[name]
}

// MarshalYAML writes the general section followed by the components in
// report order.
func (r *Result) MarshalYAML() (interface{}, error) {
	comps := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range r.Order {
		var n yaml.Node
		if err := n.Encode(r.Components[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		comps.Content = append(comps.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, &n)
	}

	var general yaml.Node
	if err := general.Encode(r.General); err != nil {
		return nil, err
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "general"}, &general,
		{Kind: yaml.ScalarNode, Value: "components"}, comps,
	}}, nil
}

// Results maps system names to their parsed report.
type Results map[string]*Result

// Warning is a WARNING line of the report of a system.
type Warning struct {
	System string `yaml:"system"`
	Line   string `yaml:"line"`
}
