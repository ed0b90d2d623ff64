// Package input renders engine parameters into the section based text deck
// read by RASPA.
package input

import (
	"fmt"
	"io"
	"strings"

	"github.com/kpotier/goraspa/pkg/params"
)

// FileName is the name of the deck in the run directory.
const FileName = "simulation.input"

// indent is the prefix of the lines that belong to a system or a component.
const indent = "   "

// Render returns the deck of p. The output only depends on p: the
// GeneralSettings keys are sorted, systems and components keep their
// declaration order.
func Render(p *params.Params) string {
	var b strings.Builder
	Write(&b, p)
	return b.String()
}

// Write writes the deck of p to w.
func Write(w io.Writer, p *params.Params) error {
	var lines []string

	for _, k := range p.General.SortedKeys() {
		v, _ := p.General.Get(k)
		lines = append(lines, k+" "+Format(v))
	}

	if len(p.Systems) > 0 {
		lines = append(lines, "")
	}
	for i, s := range p.Systems {
		lines = append(lines, fmt.Sprintf("%s %d", s.Kind, i))
		if s.Kind == params.Framework {
			lines = append(lines, indent+"FrameworkName "+s.Name)
		}
		for _, k := range s.Settings.Keys() {
			v, _ := s.Settings.Get(k)
			lines = append(lines, indent+k+" "+Format(v))
		}
	}

	order := p.SystemOrder()
	for i, c := range p.Components {
		lines = append(lines, "", fmt.Sprintf("Component %d MoleculeName %s", i, c.Name))
		for _, k := range c.Settings.Keys() {
			v, _ := c.Settings.Get(k)
			m, ok := v.(*params.Settings)
			if !ok {
				lines = append(lines, indent+k+" "+Format(v))
				continue
			}

			if k == params.KeyBlockPockets {
				lines = append(lines, indent+"BlockPockets "+blockPockets(m, order))
			}
			lines = append(lines, indent+k+" "+perSystem(k, m, order))
		}
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// perSystem renders a per-system map as one token per system.
func perSystem(key string, m *params.Settings, order []string) string {
	def, _ := params.PerSystemDefault(key)
	tokens := make([]string, len(order))
	for k, sys := range order {
		v, ok := m.Get(sys)
		if !ok {
			v = def
		}
		tokens[k] = Format(v)
	}
	return strings.Join(tokens, " ")
}

func blockPockets(m *params.Settings, order []string) string {
	tokens := make([]string, len(order))
	for k, sys := range order {
		tokens[k] = Format(m.Has(sys))
	}
	return strings.Join(tokens, " ")
}

// Format renders a single value: booleans as yes/no, lists as space
// separated tokens, everything else with the default formatting.
func Format(v interface{}) string {
	switch v := v.(type) {
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case []interface{}:
		tokens := make([]string, len(v))
		for k, x := range v {
			tokens[k] = Format(x)
		}
		return strings.Join(tokens, " ")
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
