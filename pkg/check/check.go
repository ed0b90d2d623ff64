// Package check decides whether a simulation has converged. The functions
// of this package are pure: they read parsed statistics and never touch
// the parameters.
package check

import (
	"math"

	"github.com/kpotier/goraspa/pkg/output"
)

// Statistics read by the checks.
const (
	StatHenry   = "henry_coefficient"
	StatLoading = "loading_absolute"
)

// Box edges, in the order of BoxStatus.Lengths.
var BoxEdges = [3]string{"box_ax", "box_by", "box_cz"}

// round2 rounds to two decimals, the precision at which relative errors are
// compared to the threshold.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// RelativeError returns dev/avg rounded to two decimals. ok is false when
// the average is null or zero, or when the deviation is null.
func RelativeError(s output.Statistic) (rel float64, ok bool) {
	avg, valid := s.Average.Get()
	if !valid || avg == 0 {
		return 0, false
	}
	dev, valid := s.Dev.Get()
	if !valid {
		return 0, false
	}
	return round2(dev / avg), true
}

// Widom reports, per component, whether the Henry coefficient is known
// within threshold: |dev/avg| <= threshold.
func Widom(henry []output.Statistic, threshold float64) []bool {
	conv := make([]bool, len(henry))
	for i, s := range henry {
		rel, ok := RelativeError(s)
		conv[i] = ok && math.Abs(rel) <= threshold
	}
	return conv
}

// Loading reports, per component, whether the absolute loading is known
// within threshold: dev/avg <= threshold. A zero loading never converges.
func Loading(loading []output.Statistic, threshold float64) []bool {
	conv := make([]bool, len(loading))
	for i, s := range loading {
		rel, ok := RelativeError(s)
		conv[i] = ok && rel <= threshold
	}
	return conv
}

// TwoBox reports, per component, whether the loadings of both boxes of a
// Gibbs ensemble simulation are known within threshold.
func TwoBox(one, two []output.Statistic, threshold float64) []bool {
	a, b := Loading(one, threshold), Loading(two, threshold)
	conv := make([]bool, len(a))
	for i := range a {
		conv[i] = a[i] && i < len(b) && b[i]
	}
	return conv
}

// BoxStatus tells whether a box is large enough for the cutoff. Lengths
// are the average edge lengths; Small flags the edges not exceeding twice
// the cutoff.
type BoxStatus struct {
	OK      bool
	Small   [3]bool
	Lengths [3]float64
}

// Box checks that every edge of the box of res exceeds twice the cutoff.
// A missing edge counts as too small.
func Box(res *output.Result, cutoff float64) BoxStatus {
	st := BoxStatus{OK: true}
	var general *output.Section
	if res != nil {
		general = res.General
	}
	for i, edge := range BoxEdges {
		l, ok := general.Stat(edge).Average.Get()
		st.Lengths[i] = l
		if !ok || l <= 2*cutoff {
			st.Small[i] = true
			st.OK = false
		}
	}
	return st
}

// BoxSize checks both boxes of a Gibbs ensemble simulation.
func BoxSize(one, two *output.Result, cutoff float64) (BoxStatus, BoxStatus) {
	return Box(one, cutoff), Box(two, cutoff)
}
