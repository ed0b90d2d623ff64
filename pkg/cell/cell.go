// Package cell computes how many times a crystallographic unit cell must be
// replicated so that the periodic supercell respects the minimum image
// convention for a given interaction cutoff.
package cell

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Params are the six cell parameters. Lengths are in Angstrom, angles in
// degrees.
type Params struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
}

// Check returns an error if the parameters do not describe a cell.
func (p Params) Check() error {
	if p.A <= 0 || p.B <= 0 || p.C <= 0 {
		return fmt.Errorf("cell lengths must be positive (%g %g %g)", p.A, p.B, p.C)
	}
	for _, ang := range []float64{p.Alpha, p.Beta, p.Gamma} {
		if ang <= 0 || ang >= 180 {
			return fmt.Errorf("cell angles must be in ]0, 180[ (%g %g %g)", p.Alpha, p.Beta, p.Gamma)
		}
	}
	if v := volumeFactor(p); v <= 0 || math.IsNaN(v) {
		return errors.New("cell angles do not describe a cell")
	}
	return nil
}

func volumeFactor(p Params) float64 {
	ca := math.Cos(p.Alpha * math.Pi / 180)
	cb := math.Cos(p.Beta * math.Pi / 180)
	cg := math.Cos(p.Gamma * math.Pi / 180)
	return 1 - ca*ca - cb*cb - cg*cg + 2*ca*cb*cg
}

// Matrix returns the cell vectors as the rows of a lower triangular matrix:
// the first vector along x, the second one in the xy plane.
func Matrix(p Params) *mat.Dense {
	alpha := p.Alpha * math.Pi / 180
	beta := p.Beta * math.Pi / 180
	gamma := p.Gamma * math.Pi / 180

	val := math.Sqrt(volumeFactor(p))
	return mat.NewDense(3, 3, []float64{
		p.A, 0, 0,
		p.B * math.Cos(gamma), p.B * math.Sin(gamma), 0,
		p.C * math.Cos(beta), p.C * (math.Cos(alpha) - math.Cos(beta)*math.Cos(gamma)) / math.Sin(gamma), p.C * val / math.Sin(gamma),
	})
}

// PerpendicularWidths returns the distances between opposite faces of the
// cell. They are the cell volume divided by the area of the face spanned by
// the two other vectors, and are shorter than the lengths for non
// orthogonal cells. The volume is the product of the diagonal of the
// triangular matrix, so that orthogonal cells get exact widths.
func PerpendicularWidths(p Params) [3]float64 {
	m := Matrix(p)
	vol := math.Abs(m.At(0, 0) * m.At(1, 1) * m.At(2, 2))

	var v [3]r3.Vec
	for i := range v {
		v[i] = r3.Vec{X: m.At(i, 0), Y: m.At(i, 1), Z: m.At(i, 2)}
	}

	var w [3]float64
	for i := range w {
		area := r3.Norm(r3.Cross(v[(i+1)%3], v[(i+2)%3]))
		w[i] = vol / area
	}
	return w
}

// Multipliers returns the number of replicas needed along each cell vector
// so that every perpendicular width of the supercell exceeds threshold
// (usually twice the cutoff). Each multiplier is at least 1.
func Multipliers(p Params, threshold float64) [3]int {
	w := PerpendicularWidths(p)
	var ucs [3]int
	for i := range ucs {
		ucs[i] = int(math.Ceil(threshold / w[i]))
		if ucs[i] < 1 {
			ucs[i] = 1
		}
	}
	return ucs
}
