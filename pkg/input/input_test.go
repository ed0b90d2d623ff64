package input

import (
	"bufio"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpotier/goraspa/pkg/params"
)

const pocketsDeck = `CutOff 12
EwaldPrecision 1e-06
Forcefield GenericMOFs
NumberOfCycles 50
NumberOfInitializationCycles 50
PrintEvery 10
RemoveAtomNumberCodeFromLabel yes
SimulationType MonteCarlo

Framework 0
   FrameworkName irmof_1
   UnitCells 1 1 1
   HeliumVoidFraction 0.149
   ExternalTemperature 300
   ExternalPressure 100000
Box 1
   BoxLengths 25 25 25
   ExternalTemperature 300

Component 0 MoleculeName methane
   MoleculeDefinition TraPPE
   TranslationProbability 0.5
   CreateNumberOfMolecules 1 0
   BlockPockets yes no
   BlockPocketsFileName irmof_1_test -

Component 1 MoleculeName xenon
   MoleculeDefinition TraPPE
   SwapProbability 1
   CreateNumberOfMolecules 3 4
`

func TestRender(t *testing.T) {
	p, err := params.Load("testdata/pockets.yaml")
	require.NoError(t, err)

	assert.Equal(t, pocketsDeck, Render(p))
}

func TestRender_Deterministic(t *testing.T) {
	p, err := params.Load("testdata/pockets.yaml")
	require.NoError(t, err)

	first := Render(p)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Render(p.Clone()))
	}
}

func TestRender_GeneralSettingsRoundTrip(t *testing.T) {
	general := params.NewSettings()
	general.Set("NumberOfCycles", 2000)
	general.Set("CutOff", 12.5)
	general.Set("ChargeMethod", "Ewald")
	general.Set("UseChargesFromCIFFile", false)
	general.Set("Movies", []interface{}{"yes", 10})
	general.Set("AAA", 1e-7)

	p, err := params.New(general, nil, []*params.Component{{Name: "methane"}})
	require.NoError(t, err)

	got := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(Render(p)))
	for sc.Scan() {
		fields := strings.SplitN(sc.Text(), " ", 2)
		if len(fields) != 2 || strings.HasPrefix(fields[0], "Component") {
			break
		}
		got[fields[0]] = fields[1]
	}

	require.Len(t, got, general.Len())
	for _, k := range general.Keys() {
		v, _ := general.Get(k)
		assert.Equal(t, Format(v), got[k], k)
	}
	assert.Equal(t, "2000", got["NumberOfCycles"])
	assert.Equal(t, "12.5", got["CutOff"])
	assert.Equal(t, "no", got["UseChargesFromCIFFile"])
	assert.Equal(t, "yes 10", got["Movies"])
	assert.Equal(t, fmt.Sprint(1e-7), got["AAA"])
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		in   interface{}
		want string
	}{
		{true, "yes"},
		{false, "no"},
		{3, "3"},
		{0.5, "0.5"},
		{"TraPPE", "TraPPE"},
		{[]interface{}{2, 2, 3}, "2 2 3"},
		{[]interface{}{true, false}, "yes no"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(tc.in))
		})
	}
}
