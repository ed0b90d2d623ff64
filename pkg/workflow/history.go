package workflow

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series returns, for every "system/component" key found in the history,
// the relative error of each run that computed it.
func Series(history []Step) map[string]plotter.XYs {
	series := make(map[string]plotter.XYs)
	for _, s := range history {
		for _, o := range s.Outcomes {
			for k, rel := range o.Errors {
				series[k] = append(series[k], plotter.XY{X: float64(s.Cycles), Y: rel})
			}
		}
	}
	return series
}

// Plot draws the relative errors against the number of cycles of every
// run. threshold, when positive, is drawn as a horizontal line. The format
// is given by the extension of path.
func Plot(path string, history []Step, threshold float64) error {
	series := Series(history)
	if len(series) == 0 {
		return fmt.Errorf("nothing to plot")
	}
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := plot.New()
	p.Title.Text = "Convergence"
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Cycles"
	p.Y.Label.Text = "Relative error"
	p.Add(plotter.NewGrid())

	for i, k := range keys {
		l, s, err := plotter.NewLinePoints(series[k])
		if err != nil {
			return fmt.Errorf("NewLinePoints: %w", err)
		}
		l.Color = plotutil.Color(i)
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(l, s)
		p.Legend.Add(k, l, s)
	}

	if threshold > 0 {
		t := plotter.NewFunction(func(float64) float64 { return threshold })
		t.Dashes = plotutil.Dashes(1)
		p.Add(t)
		p.Legend.Add("threshold", t)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}
