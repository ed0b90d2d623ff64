// Package params holds the engine parameters: the GeneralSettings section,
// the named systems (frameworks or empty boxes) and the named components.
// A Params is validated once when it is built and is cloned before every
// modification made by a restart loop.
package params

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the kind of a simulation system.
type Kind int

// The two kinds of systems known by the engine.
const (
	Framework Kind = iota
	Box
)

func (k Kind) String() string {
	switch k {
	case Framework:
		return "Framework"
	case Box:
		return "Box"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts the "type" value of a system into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "Framework":
		return Framework, nil
	case "Box":
		return Box, nil
	}
	return 0, fmt.Errorf("unknown system type %q (Framework or Box)", s)
}

// Keys used by the restart loops.
const (
	KeyCycles         = "NumberOfCycles"
	KeyInitCycles     = "NumberOfInitializationCycles"
	KeyCutOff         = "CutOff"
	KeyUnitCells      = "UnitCells"
	KeyBoxLengths     = "BoxLengths"
	KeyTemperature    = "ExternalTemperature"
	KeyPressure       = "ExternalPressure"
	KeyCreateMolecule = "CreateNumberOfMolecules"
	KeyBlockPockets   = "BlockPocketsFileName"
	KeyRestartFile    = "RestartFile"
	KeyContinueCrash  = "ContinueAfterCrash"
	KeyBinaryRestart  = "WriteBinaryRestartFileEvery"
)

// perSystemDefaults are the values rendered for systems a per-system map of a
// component does not mention.
var perSystemDefaults = map[string]interface{}{
	KeyCreateMolecule: 0,
	KeyBlockPockets:   "-",
}

// PerSystemDefault returns the value rendered for a system missing from the
// per-system map stored under key.
func PerSystemDefault(key string) (interface{}, bool) {
	v, ok := perSystemDefaults[key]
	return v, ok
}

// System is a framework or an empty box.
type System struct {
	Name     string
	Kind     Kind
	Settings *Settings
}

// UnitCells returns the unit cell multipliers of the system. A box and a
// framework without UnitCells use 1 1 1.
func (s *System) UnitCells() ([3]int, error) {
	ucs := [3]int{1, 1, 1}
	if s.Kind == Box || !s.Settings.Has(KeyUnitCells) {
		return ucs, nil
	}

	fs, err := s.Settings.Floats(KeyUnitCells)
	if err != nil {
		return ucs, err
	}
	if len(fs) != 3 {
		return ucs, fmt.Errorf("%s needs 3 values, got %d", KeyUnitCells, len(fs))
	}
	for k, f := range fs {
		if f != math.Trunc(f) || f < 1 {
			return ucs, fmt.Errorf("%s: %g is not a positive integer", KeyUnitCells, f)
		}
		ucs[k] = int(f)
	}
	return ucs, nil
}

// SetUnitCells stores the unit cell multipliers as a "nx ny nz" string.
func (s *System) SetUnitCells(ucs [3]int) {
	s.Settings.Set(KeyUnitCells, fmt.Sprintf("%d %d %d", ucs[0], ucs[1], ucs[2]))
}

// BoxLengths returns the three edge lengths of a box.
func (s *System) BoxLengths() ([3]float64, error) {
	var l [3]float64
	fs, err := s.Settings.Floats(KeyBoxLengths)
	if err != nil {
		return l, err
	}
	if len(fs) != 3 {
		return l, fmt.Errorf("%s needs 3 values, got %d", KeyBoxLengths, len(fs))
	}
	copy(l[:], fs)
	return l, nil
}

// SetBoxLengths stores the three edge lengths of a box.
func (s *System) SetBoxLengths(l [3]float64) {
	s.Settings.Set(KeyBoxLengths, []float64{l[0], l[1], l[2]})
}

// Temperature returns ExternalTemperature.
func (s *System) Temperature() (float64, error) {
	return s.Settings.Float(KeyTemperature)
}

// Pressure returns ExternalPressure, 0 if it is not set.
func (s *System) Pressure() (float64, error) {
	if !s.Settings.Has(KeyPressure) {
		return 0, nil
	}
	return s.Settings.Float(KeyPressure)
}

// Component is a molecule species.
type Component struct {
	Name     string
	Settings *Settings
}

// Params are the parameters of one engine run. Systems and Components keep
// the order they were declared in; the engine numbers them in that order.
type Params struct {
	General    *Settings
	Systems    []*System
	Components []*Component
}

// New returns validated parameters built from the given sections.
func New(general *Settings, systems []*System, components []*Component) (*Params, error) {
	p := &Params{General: general, Systems: systems, Components: components}
	for _, s := range p.Systems {
		if s.Settings == nil {
			s.Settings = NewSettings()
		}
	}
	for _, c := range p.Components {
		if c.Settings == nil {
			c.Settings = NewSettings()
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the parameters. Every error it returns is a
// *ConfigurationError.
func (p *Params) Validate() error {
	if p.General == nil {
		return Errorf("GeneralSettings", "section is missing")
	}
	if len(p.Components) == 0 {
		return Errorf("Component", "at least one component is needed")
	}

	for _, k := range p.General.keys {
		if err := checkValue(p.General.values[k], false); err != nil {
			return Errorf("GeneralSettings."+k, "%v", err)
		}
	}

	seen := make(map[string]bool)
	for _, s := range p.Systems {
		if s.Name == "" || strings.ContainsAny(s.Name, " \t") {
			return Errorf("System", "invalid system name %q", s.Name)
		}
		if seen[s.Name] {
			return Errorf("System."+s.Name, "declared twice")
		}
		seen[s.Name] = true
		if s.Kind != Framework && s.Kind != Box {
			return Errorf("System."+s.Name, "unknown kind %v", s.Kind)
		}
		for _, k := range s.Settings.Keys() {
			if err := checkValue(s.Settings.values[k], false); err != nil {
				return Errorf("System."+s.Name+"."+k, "%v", err)
			}
		}
	}

	names := make(map[string]bool)
	for _, c := range p.Components {
		if c.Name == "" || strings.ContainsAny(c.Name, " \t") {
			return Errorf("Component", "invalid component name %q", c.Name)
		}
		if names[c.Name] {
			return Errorf("Component."+c.Name, "declared twice")
		}
		names[c.Name] = true

		for _, k := range c.Settings.Keys() {
			v := c.Settings.values[k]
			path := "Component." + c.Name + "." + k
			if err := checkValue(v, true); err != nil {
				return Errorf(path, "%v", err)
			}

			m, ok := v.(*Settings)
			if !ok {
				continue
			}
			for _, sys := range m.keys {
				if !seen[sys] {
					return Errorf(path, "system %q is not declared in System", sys)
				}
			}
			if _, ok := perSystemDefaults[k]; !ok && m.Len() != len(p.Systems) {
				return Errorf(path, "a value is needed for every system (%d given, %d systems)",
					m.Len(), len(p.Systems))
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the parameters. The system order is kept.
func (p *Params) Clone() *Params {
	c := &Params{General: p.General.Clone()}
	for _, s := range p.Systems {
		c.Systems = append(c.Systems, &System{Name: s.Name, Kind: s.Kind, Settings: s.Settings.Clone()})
	}
	for _, comp := range p.Components {
		c.Components = append(c.Components, &Component{Name: comp.Name, Settings: comp.Settings.Clone()})
	}
	return c
}

// SystemOrder returns the system names in the order the engine numbers them
// (System_0, System_1, ...).
func (p *Params) SystemOrder() []string {
	order := make([]string, len(p.Systems))
	for k, s := range p.Systems {
		order[k] = s.Name
	}
	return order
}

// ComponentNames returns the component names in declaration order.
func (p *Params) ComponentNames() []string {
	names := make([]string, len(p.Components))
	for k, c := range p.Components {
		names[k] = c.Name
	}
	return names
}

// System returns the system called name, nil if there is none.
func (p *Params) System(name string) *System {
	for _, s := range p.Systems {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Component returns the component called name, nil if there is none.
func (p *Params) Component(name string) *Component {
	for _, c := range p.Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// OfKind returns the systems of the given kind in system order.
func (p *Params) OfKind(k Kind) []*System {
	var sys []*System
	for _, s := range p.Systems {
		if s.Kind == k {
			sys = append(sys, s)
		}
	}
	return sys
}

// CutOff returns the interaction cutoff of GeneralSettings.
func (p *Params) CutOff() (float64, error) {
	c, err := p.General.Float(KeyCutOff)
	if err != nil {
		return 0, Errorf("GeneralSettings", "%v", err)
	}
	return c, nil
}

// AddCycles adds n to the integer setting key of GeneralSettings. A missing
// key is treated as 0.
func (p *Params) AddCycles(key string, n int) error {
	var cur int
	if p.General.Has(key) {
		var err error
		cur, err = p.General.Int(key)
		if err != nil {
			return Errorf("GeneralSettings", "%v", err)
		}
	}
	p.General.Set(key, cur+n)
	return nil
}

// ResetMolecules sets every CreateNumberOfMolecules value to 0. The engine
// reads the molecules from the restart file instead.
func (p *Params) ResetMolecules() {
	for _, c := range p.Components {
		v, ok := c.Settings.Get(KeyCreateMolecule)
		if !ok {
			continue
		}
		m, ok := v.(*Settings)
		if !ok {
			c.Settings.Set(KeyCreateMolecule, 0)
			continue
		}
		for _, sys := range m.keys {
			m.Set(sys, 0)
		}
	}
}
