package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// parser reads a report line by line. It never goes back: each zone starts
// where the previous one stopped.
type parser struct {
	r      *bufio.Reader
	system string
	eof    bool

	// warnings are collected once the header zone is over.
	collect  bool
	warnings []Warning
	seen     map[string]struct{}

	res   *Result
	comps []*Section
	names []string
}

// Parse reads the report of one system. ncomponents is the number of
// components of the parameters, the header of the report must list exactly
// as many. Every WARNING line found after the header is returned once.
func Parse(r io.Reader, system string, ncomponents int) (*Result, []Warning, error) {
	p := &parser{
		r:      bufio.NewReader(r),
		system: system,
		seen:   make(map[string]struct{}),
		res: &Result{
			General:    newSection(),
			Components: make(map[string]*Section),
		},
		comps: make([]*Section, ncomponents),
	}
	for i := range p.comps {
		p.comps[i] = newSection()
	}

	if err := p.header(); err != nil {
		return nil, nil, fmt.Errorf("header: %w", err)
	}
	p.collect = true
	if err := p.energies(); err != nil {
		return nil, nil, fmt.Errorf("energies: %w", err)
	}
	if err := p.averages(); err != nil {
		return nil, nil, fmt.Errorf("averages: %w", err)
	}
	p.molecules()
	p.finish()

	return p.res, p.warnings, nil
}

// next returns the next line without its line break. ok is false at the end
// of the report.
func (p *parser) next() (line string, ok bool) {
	if p.eof {
		return "", false
	}
	line, err := p.r.ReadString('\n')
	if err != nil {
		p.eof = true
		if line == "" {
			return "", false
		}
	}
	line = strings.TrimRight(line, "\r\n")

	if p.collect && strings.Contains(line, markerWarning) {
		if _, ok := p.seen[line]; !ok {
			p.seen[line] = struct{}{}
			p.warnings = append(p.warnings, Warning{System: p.system, Line: line})
		}
	}
	return line, true
}

func (p *parser) skip(n int) {
	for i := 0; i < n; i++ {
		if _, ok := p.next(); !ok {
			return
		}
	}
}

// field returns the i-th token, counted from the end when i is negative. An
// out of range token is empty, which Float reads as null.
func field(fields []string, i int) string {
	if i < 0 {
		i += len(fields)
	}
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// header reads the component names and the per-component numbers until
// the initial energy status.
func (p *parser) header() error {
	var icomp int
	for {
		line, ok := p.next()
		if !ok {
			return &MalformedOutputError{Marker: MarkerInitialEnergy}
		}
		if strings.Contains(line, MarkerInitialEnergy) {
			break
		}
		if len(p.comps) == 0 {
			continue
		}

		cur := p.comps[icomp]
		fields := strings.Fields(line)
		switch {
		case strings.Contains(line, "Component") && strings.Contains(line, "molecule)"):
			if name := strings.Trim(field(fields, 2), "[]"); name != "" {
				p.names = append(p.names, name)
			}
			if strings.Contains(line, "(Adsorbate") {
				cur.Labels["molecule_type"] = "adsorbate"
			} else if strings.Contains(line, "(Cation") {
				cur.Labels["molecule_type"] = "cation"
			}
			continue
		case strings.Contains(line, "Framework Density"):
			p.res.General.Labels["framework_density"] = field(fields, 2)
			p.res.General.Labels["framework_density_unit"] = unit(field(fields, 3))
			continue
		}

		for _, q := range headerQuantities {
			if !strings.Contains(line, q.marker) {
				continue
			}
			cur.Quantities[q.name] = Quantity{Value: Float(field(fields, q.pos)), Unit: q.unit}
			if q.advance && icomp < len(p.comps)-1 {
				icomp++
			}
			break
		}
	}

	if len(p.names) != len(p.comps) {
		return &MalformedOutputError{
			Marker: "Component",
			Detail: fmt.Sprintf("found %d components, expected %d", len(p.names), len(p.comps)),
		}
	}
	for i, name := range p.names {
		if _, ok := p.res.Components[name]; ok {
			return &MalformedOutputError{Marker: "Component", Detail: fmt.Sprintf("%s is listed twice", name)}
		}
		p.res.Components[name] = p.comps[i]
	}
	p.res.Order = p.names
	return nil
}

// energies reads the initial and final energy snapshots until the averages.
// Each snapshot ends at its Adsorbate/Adsorbate Coulomb line.
func (p *parser) energies() error {
	reading, active := "initial", true
	for {
		line, ok := p.next()
		if !ok {
			return &MalformedOutputError{Marker: MarkerAverages}
		}
		if strings.Contains(line, MarkerAverages) {
			return nil
		}
		if strings.Contains(line, MarkerFinalEnergy) {
			reading, active = "final", true
			continue
		}
		if !active {
			continue
		}

		for _, t := range energyTerms {
			if !strings.Contains(line, t.marker) {
				continue
			}
			name := fmt.Sprintf("energy_%s_%s_%s", t.pair, t.term, reading)
			v := Float(field(strings.Fields(line), -1)).Scale(kToKJMol)
			p.res.General.Quantities[name] = Quantity{Value: v, Unit: "kJ/mol"}
			if t.pair == "ads/ads" && t.term == "coulomb" {
				active = false
			}
			break
		}
	}
}

// averages reads the block statistics until the loadings.
func (p *parser) averages() error {
	for {
		line, ok := p.next()
		if !ok {
			return &MalformedOutputError{Marker: MarkerMolecules}
		}
		if strings.Contains(line, MarkerMolecules) {
			return nil
		}

		if b, ok := matchBlock(line); ok {
			p.block(p.res.General, b)
			p.perComponent(b)
			continue
		}
		if e, ok := matchEnergyAverage(line); ok {
			p.energyAverage(e)
			continue
		}
		if strings.Contains(line, MarkerBoxLengths) {
			for _, b := range boxBlocks {
				p.block(p.res.General, b)
			}
		}
	}
}

func matchBlock(line string) (block, bool) {
	for _, b := range blocks {
		if strings.Contains(line, b.marker) {
			return b, true
		}
	}
	return block{}, false
}

func matchEnergyAverage(line string) (energyAverage, bool) {
	for _, e := range energyAverages {
		if strings.Contains(line, e.marker) {
			return e, true
		}
	}
	return energyAverage{}, false
}

// block reads lines until the one holding the average and stores the
// statistic in sec.
func (p *parser) block(sec *Section, b block) {
	for {
		line, ok := p.next()
		if !ok {
			return
		}
		if !strings.Contains(line, "Average") {
			continue
		}
		fields := strings.Fields(line)
		sec.Stats[b.name] = Statistic{
			Average: Float(field(fields, b.value)),
			Dev:     Float(field(fields, b.dev)),
			Unit:    unit(field(fields, b.unit)),
		}
		return
	}
}

// perComponent reads the repeats of b for each component, in order. The
// first line that does not name the expected component ends the repeats; it
// is consumed.
func (p *parser) perComponent(b block) {
	p.skip(b.skip)
	for i, name := range p.names {
		line, ok := p.next()
		if !ok || !strings.Contains(line, name) {
			return
		}
		p.block(p.comps[i], b)
		p.skip(b.skip)
	}
}

func (p *parser) energyAverage(e energyAverage) {
	var avg, dev [3]Value
	for {
		line, ok := p.next()
		if !ok {
			return
		}
		fields := strings.Fields(line)
		switch {
		case strings.Contains(line, "Average"):
			for i, pos := range energyAvgPos {
				avg[i] = Float(field(fields, pos)).Scale(kToKJMol)
			}
		case strings.Contains(line, "+/-"):
			for i, pos := range energyDevPos {
				dev[i] = Float(field(fields, pos)).Scale(kToKJMol)
			}
			for i, term := range energyTermNames {
				name := fmt.Sprintf("energy_%s_%s", e.pair, term)
				p.res.General.Stats[name] = Statistic{Average: avg[i], Dev: dev[i], Unit: "kJ/mol"}
			}
			return
		}
	}
}

// molecules reads the loadings of every component then the Widom lines
// until the end of the report.
func (p *parser) molecules() {
	var icomp int
	for icomp < len(p.comps) {
		line, ok := p.next()
		if !ok {
			return
		}
		fields := strings.Fields(line)
		switch {
		case strings.Contains(line, markerLoadingAbsolute):
			p.comps[icomp].Stats["loading_absolute"] = Statistic{
				Average: Float(field(fields, 5)),
				Dev:     Float(field(fields, 7)),
				Unit:    loadingUnit,
			}
		case strings.Contains(line, markerLoadingExcess):
			p.comps[icomp].Stats["loading_excess"] = Statistic{
				Average: Float(field(fields, 5)),
				Dev:     Float(field(fields, 7)),
				Unit:    loadingUnit,
			}
			icomp++
		}
	}

	for {
		line, ok := p.next()
		if !ok {
			return
		}
		for _, w := range widomLines {
			if !strings.Contains(line, w.marker) {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				break
			}
			for i, name := range p.names {
				if !strings.Contains(line, "["+name+"]") {
					continue
				}
				p.comps[i].Stats[w.name] = Statistic{
					Average: Float(field(fields, -4)),
					Dev:     Float(field(fields, -2)),
					Unit:    unit(field(fields, -1)),
				}
			}
			break
		}
	}
}

// finish nulls the Widom statistics RASPA did not compute and fills the
// missing adsorption energy.
func (p *parser) finish() {
	for _, sec := range p.comps {
		for _, name := range nulledOnZeroDev {
			s, ok := sec.Stats[name]
			if !ok {
				continue
			}
			if dev, valid := s.Dev.Get(); valid && dev == 0 {
				s.Average, s.Dev = Null, Null
				sec.Stats[name] = s
			}
		}
		if _, ok := sec.Stats["adsorption_energy_widom"]; !ok {
			sec.Stats["adsorption_energy_widom"] = Statistic{Unit: "kJ/mol"}
		}
	}
}
