package output

import "regexp"

// kToKJMol converts an energy in K to kJ/mol.
const kToKJMol = 8.314464919 / 1000

// Zone markers. The report is read once, each zone ending where the next
// marker is found.
const (
	MarkerStarted       = "Starting simulation"
	MarkerFinished      = "Simulation finished"
	MarkerInitialEnergy = "Current (initial full energy) Energy Status"
	MarkerFinalEnergy   = "Current (full final energy) Energy Status"
	MarkerAverages      = "Average properties of the system"
	MarkerMolecules     = "Number of molecules:"
	markerWarning       = "WARNING"
)

// unitChars are stripped from unit tokens such as "[A^3]".
var unitChars = regexp.MustCompile(`[{}()\[\]]`)

func unit(s string) string {
	return unitChars.ReplaceAllString(s, "")
}

// headerQuantity is a per-component number of the header: the token at pos
// of the line containing marker.
type headerQuantity struct {
	marker  string
	name    string
	pos     int
	unit    string
	advance bool
}

var headerQuantities = []headerQuantity{
	{"Conversion factor molecules/unit cell -> mol/kg:", "conversion_factor_molec_uc_to_mol_kg", 6, "(mol/kg)/(molec/uc)", false},
	{"Conversion factor molecules/unit cell -> gr/gr:", "conversion_factor_molec_uc_to_mg_g", 6, "(mg/g)/(molec/uc)", false},
	{"Conversion factor molecules/unit cell -> mg/g:", "conversion_factor_molec_uc_to_mg_g", 6, "(mg/g)/(molec/uc)", false},
	{"Conversion factor molecules/unit cell -> cm^3 STP/gr:", "conversion_factor_molec_uc_to_cm3stp_gr", 7, "(cm^3_STP/gr)/(molec/uc)", false},
	{"Conversion factor molecules/unit cell -> cm^3 STP/cm^3:", "conversion_factor_molec_uc_to_cm3stp_cm3", 7, "(cm^3_STP/cm^3)/(molec/uc)", false},
	{"MolFraction:", "mol_fraction", 1, "-", false},
	{"Partial pressure:", "partial_pressure", 2, "Pa", false},
	{"Partial fugacity:", "partial_fugacity", 2, "Pa", true},
}

// energyTerm is a line of an energy status snapshot. The value is the last
// token, in K.
type energyTerm struct {
	marker string
	pair   string
	term   string
}

var energyTerms = []energyTerm{
	{"Host/Adsorbate energy:", "host/ads", "tot"},
	{"Host/Adsorbate VDW energy:", "host/ads", "vdw"},
	{"Host/Adsorbate Coulomb energy:", "host/ads", "coulomb"},
	{"Adsorbate/Adsorbate energy:", "ads/ads", "tot"},
	{"Adsorbate/Adsorbate VDW energy:", "ads/ads", "vdw"},
	{"Adsorbate/Adsorbate Coulomb energy:", "ads/ads", "coulomb"},
}

// block is a statistic of the averages zone: the lines following marker
// end with one containing "Average" where the value, unit and deviation
// sit at the given token positions. When the statistic is repeated per
// component, skip lines separate each repeat from the previous one.
type block struct {
	marker string
	name   string
	value  int
	unit   int
	dev    int
	skip   int
}

var blocks = []block{
	{"Average Volume:", "cell_volume", 1, 2, 4, 0},
	{"Average Density:", "adsorbate_density", 1, 2, 4, 0},
	{"Heat of desorption:", "heat_of_desorption", 1, 4, 3, 4},
	{"Enthalpy of adsorption:", "enthalpy_of_adsorption", 1, 4, 3, 4},
	{"Tail-correction energy:", "tail_correction_energy", 1, 2, 4, 0},
}

// MarkerBoxLengths is followed by the six box statistics in this order.
const MarkerBoxLengths = "Average Box-lengths:"

var boxBlocks = []block{
	{name: "box_ax", value: 2, unit: 3, dev: 5},
	{name: "box_by", value: 2, unit: 3, dev: 5},
	{name: "box_cz", value: 2, unit: 3, dev: 5},
	{name: "box_alpha", value: 3, unit: 4, dev: 6},
	{name: "box_beta", value: 3, unit: 4, dev: 6},
	{name: "box_gamma", value: 3, unit: 4, dev: 6},
}

// energyAverage is an interaction energy of the averages zone. The average
// line holds the total, van der Waals and Coulomb terms at tokens 1, 5 and
// 7; the following "+/-" line holds their deviations at 1, 3 and 5.
type energyAverage struct {
	marker string
	pair   string
}

var energyAverages = []energyAverage{
	{"Average Adsorbate-Adsorbate energy:", "ads/ads"},
	{"Average Host-Adsorbate energy:", "host/ads"},
}

var (
	energyTermNames = [3]string{"tot", "vdw", "coulomb"}
	energyAvgPos    = [3]int{1, 5, 7}
	energyDevPos    = [3]int{1, 3, 5}
)

// Loading lines of the molecules zone. Excess closes the component.
const (
	markerLoadingAbsolute = "Average loading absolute [molecules/unit cell]"
	markerLoadingExcess   = "Average loading excess [molecules/unit cell]"
	loadingUnit           = "molecules/unit cell"
)

// widomLine is a per-component line tagged "[name]" in the molecules zone.
// The average is the fourth token from the end, the deviation the second
// and the unit the last.
type widomLine struct {
	marker string
	name   string
}

var widomLines = []widomLine{
	{" Average Widom Rosenbluth-weight:", "widom_rosenbluth_factor"},
	{" Average chemical potential: ", "chemical_potential"},
	{" Average Henry coefficient: ", "henry_coefficient"},
	{" Average  <U_gh>_1-<U_h>_0:", "adsorption_energy_widom"},
}

// nulledOnZeroDev are statistics RASPA prints with a zero deviation when
// Widom insertions were not performed.
var nulledOnZeroDev = []string{"henry_coefficient", "widom_rosenbluth_factor", "chemical_potential"}
