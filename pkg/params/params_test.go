package params

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_KeepsOrder(t *testing.T) {
	p, err := Load("testdata/gemc.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"box_one", "box_two"}, p.SystemOrder())
	assert.Equal(t, []string{"xenon"}, p.ComponentNames())
	assert.Equal(t, []string{"BoxLengths", "BoxAngles", "ExternalTemperature"}, p.System("box_one").Settings.Keys())
	assert.Equal(t, Box, p.System("box_two").Kind)

	cycles, err := p.General.Int(KeyCycles)
	require.NoError(t, err)
	assert.Equal(t, 1000, cycles)

	cutoff, err := p.CutOff()
	require.NoError(t, err)
	assert.Equal(t, 12.0, cutoff)

	for _, name := range p.SystemOrder() {
		l, err := p.System(name).BoxLengths()
		require.NoError(t, err)
		assert.Equal(t, [3]float64{30, 30, 30}, l)
	}
}

func TestDecode_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
		path string
	}{
		{
			name: "missing general settings",
			doc:  "Component:\n  methane:\n    MoleculeDefinition: TraPPE\n",
			path: "GeneralSettings",
		},
		{
			name: "missing components",
			doc:  "GeneralSettings:\n  NumberOfCycles: 10\n",
			path: "Component",
		},
		{
			name: "unknown system in molecule counts",
			doc: `GeneralSettings:
  NumberOfCycles: 10
System:
  box_one:
    type: Box
Component:
  methane:
    CreateNumberOfMolecules:
      box_two: 3
`,
			path: "Component.methane.CreateNumberOfMolecules",
		},
		{
			name: "unknown system type",
			doc: `GeneralSettings:
  NumberOfCycles: 10
System:
  irmof_1:
    type: Crystal
Component:
  methane: {}
`,
			path: "System.irmof_1",
		},
		{
			name: "nested map in general settings",
			doc: `GeneralSettings:
  Nested:
    a: 1
Component:
  methane: {}
`,
			path: "GeneralSettings.Nested",
		},
		{
			name: "incomplete per-system map without default",
			doc: `GeneralSettings:
  NumberOfCycles: 10
System:
  a:
    type: Box
  b:
    type: Box
Component:
  methane:
    FugacityCoefficient:
      a: 1.0
`,
			path: "Component.methane.FugacityCoefficient",
		},
		{
			name: "unknown section",
			doc:  "Generalsettings: {}\n",
			path: "Generalsettings",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.doc))
			require.Error(t, err)

			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr), "got %T: %v", err, err)
			assert.Equal(t, tc.path, cerr.Path)
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	p, err := Load("testdata/gemc.yaml")
	require.NoError(t, err)

	c := p.Clone()
	c.General.Set(KeyCycles, 5)
	c.ResetMolecules()
	c.System("box_one").SetBoxLengths([3]float64{32, 30, 30})

	cycles, _ := p.General.Int(KeyCycles)
	assert.Equal(t, 1000, cycles)

	m, ok := p.Component("xenon").Settings.Map(KeyCreateMolecule)
	require.True(t, ok)
	n, _ := m.Int("box_one")
	assert.Equal(t, 150, n)

	l, _ := p.System("box_one").BoxLengths()
	assert.Equal(t, [3]float64{30, 30, 30}, l)

	m, _ = c.Component("xenon").Settings.Map(KeyCreateMolecule)
	n, _ = m.Int("box_two")
	assert.Equal(t, 0, n)
}

func TestAddCycles(t *testing.T) {
	p, err := Load("testdata/gemc.yaml")
	require.NoError(t, err)

	require.NoError(t, p.AddCycles(KeyCycles, 2000))
	require.NoError(t, p.AddCycles("NumberOfEquilibrationCycles", 10))

	n, _ := p.General.Int(KeyCycles)
	assert.Equal(t, 3000, n)
	n, _ = p.General.Int("NumberOfEquilibrationCycles")
	assert.Equal(t, 10, n)
}

func TestSystem_UnitCells(t *testing.T) {
	s := &System{Name: "irmof_1", Kind: Framework, Settings: NewSettings()}
	ucs, err := s.UnitCells()
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 1, 1}, ucs)

	s.SetUnitCells([3]int{2, 3, 4})
	ucs, err = s.UnitCells()
	require.NoError(t, err)
	assert.Equal(t, [3]int{2, 3, 4}, ucs)

	s.Settings.Set(KeyUnitCells, "2 2")
	_, err = s.UnitCells()
	assert.Error(t, err)

	p, err := s.Pressure()
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestMarshalYAML_RoundTrip(t *testing.T) {
	p, err := Load("testdata/gemc.yaml")
	require.NoError(t, err)

	b, err := yaml.Marshal(p)
	require.NoError(t, err)

	q, err := Decode(strings.NewReader(string(b)))
	require.NoError(t, err)
	assert.Equal(t, p.SystemOrder(), q.SystemOrder())
	assert.Equal(t, p.General.Keys(), q.General.Keys())
	assert.Equal(t, p.Component("xenon").Settings.Keys(), q.Component("xenon").Settings.Keys())
}
