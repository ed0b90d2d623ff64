package check

import (
	"fmt"

	"github.com/kpotier/goraspa/pkg/output"
)

// Outcome is the verdict of a Checker on the results of one iteration.
type Outcome struct {
	Name      string
	Converged bool
	// Errors holds the relative error of every component that has one,
	// keyed "system/component".
	Errors map[string]float64
	// Boxes holds the status of every box checked for its size.
	Boxes map[string]BoxStatus
}

// Checker is a convergence criterion evaluated after every run.
type Checker interface {
	Check(res output.Results) (Outcome, error)
}

func result(res output.Results, system string) (*output.Result, error) {
	r, ok := res[system]
	if !ok {
		return nil, fmt.Errorf("no results for system %s", system)
	}
	return r, nil
}

// stats returns the statistic name of every component of the system and
// records their relative errors in errs.
func stats(res output.Results, system string, components []string, name string, errs map[string]float64) ([]output.Statistic, error) {
	r, err := result(res, system)
	if err != nil {
		return nil, err
	}
	s := make([]output.Statistic, len(components))
	for i, c := range components {
		s[i] = r.Component(c).Stat(name)
		if rel, ok := RelativeError(s[i]); ok {
			errs[system+"/"+c] = rel
		}
	}
	return s, nil
}

func all(conv []bool) bool {
	for _, c := range conv {
		if !c {
			return false
		}
	}
	return true
}

// WidomChecker checks the Henry coefficients of the components in the
// framework System.
type WidomChecker struct {
	System     string
	Components []string
	Threshold  float64
}

// Check implements Checker.
func (c *WidomChecker) Check(res output.Results) (Outcome, error) {
	out := Outcome{Name: "widom", Errors: make(map[string]float64)}
	s, err := stats(res, c.System, c.Components, StatHenry, out.Errors)
	if err != nil {
		return out, fmt.Errorf("stats: %w", err)
	}
	out.Converged = all(Widom(s, c.Threshold))
	return out, nil
}

// LoadingChecker checks the absolute loadings of the components in System.
type LoadingChecker struct {
	System     string
	Components []string
	Threshold  float64
}

// Check implements Checker.
func (c *LoadingChecker) Check(res output.Results) (Outcome, error) {
	out := Outcome{Name: "loading", Errors: make(map[string]float64)}
	s, err := stats(res, c.System, c.Components, StatLoading, out.Errors)
	if err != nil {
		return out, fmt.Errorf("stats: %w", err)
	}
	out.Converged = all(Loading(s, c.Threshold))
	return out, nil
}

// TwoBoxChecker checks the absolute loadings of the components in both
// boxes of a Gibbs ensemble simulation.
type TwoBoxChecker struct {
	Boxes      [2]string
	Components []string
	Threshold  float64
}

// Check implements Checker.
func (c *TwoBoxChecker) Check(res output.Results) (Outcome, error) {
	out := Outcome{Name: "two-box", Errors: make(map[string]float64)}
	one, err := stats(res, c.Boxes[0], c.Components, StatLoading, out.Errors)
	if err != nil {
		return out, fmt.Errorf("stats: %w", err)
	}
	two, err := stats(res, c.Boxes[1], c.Components, StatLoading, out.Errors)
	if err != nil {
		return out, fmt.Errorf("stats: %w", err)
	}
	out.Converged = all(TwoBox(one, two, c.Threshold))
	return out, nil
}

// BoxSizeChecker checks that both boxes stay larger than twice CutOff.
type BoxSizeChecker struct {
	Boxes  [2]string
	CutOff float64
}

// Check implements Checker.
func (c *BoxSizeChecker) Check(res output.Results) (Outcome, error) {
	out := Outcome{Name: "box-size", Converged: true, Boxes: make(map[string]BoxStatus)}
	var rs [2]*output.Result
	for i, b := range c.Boxes {
		r, err := result(res, b)
		if err != nil {
			return out, err
		}
		rs[i] = r
	}

	one, two := BoxSize(rs[0], rs[1], c.CutOff)
	out.Boxes[c.Boxes[0]], out.Boxes[c.Boxes[1]] = one, two
	out.Converged = one.OK && two.OK
	return out, nil
}
