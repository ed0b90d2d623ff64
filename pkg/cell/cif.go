package cell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var cifTags = []string{
	"_cell_length_a",
	"_cell_length_b",
	"_cell_length_c",
	"_cell_angle_alpha",
	"_cell_angle_beta",
	"_cell_angle_gamma",
}

// LoadCIF reads the cell parameters of a CIF file.
func LoadCIF(path string) (Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return Params{}, err
	}
	defer f.Close()

	p, err := ReadCIF(f)
	if err != nil {
		return Params{}, fmt.Errorf("ReadCIF: %w", err)
	}
	return p, nil
}

// ReadCIF reads the cell parameters of the first data block of a CIF file.
// Standard uncertainties such as "25.832(3)" are dropped.
func ReadCIF(r io.Reader) (Params, error) {
	var (
		vals  [6]float64
		found [6]bool
		data  int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if strings.HasPrefix(fields[0], "data_") {
			data++
			if data > 1 {
				break
			}
			continue
		}
		if len(fields) < 2 {
			continue
		}

		for k, tag := range cifTags {
			if !strings.EqualFold(fields[0], tag) {
				continue
			}
			v := fields[1]
			if i := strings.IndexByte(v, '('); i >= 0 {
				v = v[:i]
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Params{}, fmt.Errorf("%s: %w", tag, err)
			}
			vals[k] = f
			found[k] = true
		}
	}
	if err := sc.Err(); err != nil {
		return Params{}, err
	}

	for k, ok := range found {
		if !ok {
			return Params{}, fmt.Errorf("%s is missing", cifTags[k])
		}
	}

	p := Params{A: vals[0], B: vals[1], C: vals[2], Alpha: vals[3], Beta: vals[4], Gamma: vals[5]}
	if err := p.Check(); err != nil {
		return Params{}, err
	}
	return p, nil
}
