package check

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpotier/goraspa/pkg/output"
)

func stat(avg, dev float64) output.Statistic {
	return output.Statistic{Average: output.Of(avg), Dev: output.Of(dev)}
}

func TestLoading(t *testing.T) {
	assert.Equal(t, []bool{false}, Loading([]output.Statistic{stat(0, 0)}, 0.1))
	assert.Equal(t, []bool{true}, Loading([]output.Statistic{stat(100, 5)}, 0.1))
	assert.Equal(t, []bool{false}, Loading([]output.Statistic{{}}, 0.1))

	// 10.4/100 rounds to 0.10
	assert.Equal(t, []bool{true, false}, Loading([]output.Statistic{stat(100, 10.4), stat(100, 10.6)}, 0.1))
}

func TestWidom(t *testing.T) {
	tests := []struct {
		name string
		in   output.Statistic
		want bool
	}{
		{"converged", stat(3.8e-05, 1.9e-06), true},
		{"negative average", stat(-2.0, 0.1), true},
		{"too noisy", stat(3.8e-05, 1.9e-05), false},
		{"zero average", stat(0, 0), false},
		{"null", output.Statistic{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []bool{tt.want}, Widom([]output.Statistic{tt.in}, 0.1))
		})
	}
}

func TestTwoBox(t *testing.T) {
	one := []output.Statistic{stat(100, 5), stat(20, 1)}
	two := []output.Statistic{stat(50, 1), stat(0, 0)}
	assert.Equal(t, []bool{true, false}, TwoBox(one, two, 0.1))
}

func boxResult(ax, by, cz float64) *output.Result {
	r := &output.Result{General: &output.Section{Stats: map[string]output.Statistic{
		"box_ax": stat(ax, 0),
		"box_by": stat(by, 0),
		"box_cz": stat(cz, 0),
	}}}
	return r
}

func TestBoxSize(t *testing.T) {
	one, two := BoxSize(boxResult(30, 30, 30), boxResult(30, 24, 12), 12)
	assert.True(t, one.OK)
	assert.False(t, two.OK)
	assert.Equal(t, [3]bool{false, true, true}, two.Small)
	assert.Equal(t, [3]float64{30, 24, 12}, two.Lengths)

	// the edges are compared unrounded
	st := Box(boxResult(24.004, 24.0001, 23.996), 12)
	assert.Equal(t, [3]bool{false, false, true}, st.Small)

	missing := Box(&output.Result{}, 12)
	assert.False(t, missing.OK)
	assert.Equal(t, [3]bool{true, true, true}, missing.Small)
}

func results() output.Results {
	comp := func(loading, henry output.Statistic) *output.Section {
		return &output.Section{Stats: map[string]output.Statistic{
			StatLoading: loading,
			StatHenry:   henry,
		}}
	}

	framework := boxResult(30, 30, 30)
	framework.Components = map[string]*output.Section{
		"methane": comp(stat(12.02, 2.4163298616), stat(3.8e-05, 1.9e-06)),
		"xenon":   comp(stat(70.2, 3.51), output.Statistic{}),
	}
	box := boxResult(25, 25, 25)
	box.Components = map[string]*output.Section{
		"methane": comp(stat(23.4, 1.1), output.Statistic{}),
		"xenon":   comp(stat(70.2, 3.51), output.Statistic{}),
	}
	return output.Results{"tcc1rs": framework, "box_one": box, "box_two": boxResult(25, 25, 20)}
}

func TestCheckers(t *testing.T) {
	res := results()

	tests := []struct {
		name      string
		checker   Checker
		converged bool
		errors    map[string]float64
	}{
		{
			name:      "widom",
			checker:   &WidomChecker{System: "tcc1rs", Components: []string{"methane"}, Threshold: 0.1},
			converged: true,
			errors:    map[string]float64{"tcc1rs/methane": 0.05},
		},
		{
			name:      "widom missing henry",
			checker:   &WidomChecker{System: "tcc1rs", Components: []string{"methane", "xenon"}, Threshold: 0.1},
			converged: false,
			errors:    map[string]float64{"tcc1rs/methane": 0.05},
		},
		{
			name:      "loading",
			checker:   &LoadingChecker{System: "tcc1rs", Components: []string{"methane", "xenon"}, Threshold: 0.1},
			converged: false,
			errors:    map[string]float64{"tcc1rs/methane": 0.2, "tcc1rs/xenon": 0.05},
		},
		{
			name:      "two-box",
			checker:   &TwoBoxChecker{Boxes: [2]string{"tcc1rs", "box_one"}, Components: []string{"xenon"}, Threshold: 0.1},
			converged: true,
			errors:    map[string]float64{"tcc1rs/xenon": 0.05, "box_one/xenon": 0.05},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.checker.Check(res)
			require.NoError(t, err)
			assert.Equal(t, tt.converged, out.Converged)
			if diff := cmp.Diff(tt.errors, out.Errors); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoxSizeChecker(t *testing.T) {
	c := &BoxSizeChecker{Boxes: [2]string{"box_one", "box_two"}, CutOff: 12}
	out, err := c.Check(results())
	require.NoError(t, err)
	assert.False(t, out.Converged)
	assert.True(t, out.Boxes["box_one"].OK)
	assert.Equal(t, [3]bool{false, false, true}, out.Boxes["box_two"].Small)

	_, err = c.Check(output.Results{"box_one": boxResult(25, 25, 25)})
	assert.Error(t, err)
}
