// Package units normalizes raw unit tokens to the canonical units of the
// ontology and rescales amounts when the magnitude changes.
//
// Every function in this package is pure. Callers decide whether an
// unrecognized token deserves a warning.
package units

import "strings"

// Canonical portion units.
const (
	Grams       = "grams"
	Millilitres = "millilitres"
)

// Canonical per-100 substance units.
const (
	MilligramPer100g = "mg/100g"
	CaloriePer100g   = "cal/100g"
)

// IUToMilligramVitaminA converts international units of Vitamin A to
// milligrams (0.3 µg retinol per IU). It does not apply to other substances.
const IUToMilligramVitaminA = 0.0003

// VitaminA is the only substance with an IU conversion.
const VitaminA = "VitaminA"

// Kind classifies a portion unit for scaling.
type Kind int

const (
	KindUnknown Kind = iota
	KindMass
	KindVolume
)

func (k Kind) String() string {
	switch k {
	case KindMass:
		return "mass"
	case KindVolume:
		return "volume"
	default:
		return "unknown"
	}
}

var portionUnits = map[string]struct {
	canonical string
	kind      Kind
}{
	"g":           {Grams, KindMass},
	"gram":        {Grams, KindMass},
	"grams":       {Grams, KindMass},
	"ml":          {Millilitres, KindVolume},
	"millilitre":  {Millilitres, KindVolume},
	"millilitres": {Millilitres, KindVolume},
	"milliliter":  {Millilitres, KindVolume},
	"milliliters": {Millilitres, KindVolume},
}

// Quantity is an amount with its unit.
type Quantity struct {
	Amount float64
	Unit   string
}

// NormalizePortionUnit maps a portion unit token such as "g" or "ML" to
// "grams" or "millilitres". Unrecognized tokens are returned unchanged with
// ok false.
func NormalizePortionUnit(raw string) (canonical string, ok bool) {
	def, found := portionUnits[strings.ToLower(strings.TrimSpace(raw))]
	if !found {
		return raw, false
	}
	return def.canonical, true
}

// PortionKind reports whether a portion unit measures mass or volume.
func PortionKind(unit string) Kind {
	def, found := portionUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !found {
		return KindUnknown
	}
	return def.kind
}

// ScaleFactor is the multiplier applied to a per-100 substance amount for a
// portion of the given size. Portions in grams or millilitres scale by
// amount/100. Any other unit yields 1.0 and ok false.
func ScaleFactor(portionAmount float64, portionUnit string) (factor float64, ok bool) {
	if PortionKind(portionUnit) == KindUnknown {
		return 1.0, false
	}
	return portionAmount / 100, true
}

type conversion struct {
	target string
	factor float64
	// only restricts the conversion to a single substance when set.
	only string
}

var substanceUnits = map[string]conversion{
	"mg/100g":  {target: MilligramPer100g, factor: 1},
	"μg/100g":  {target: MilligramPer100g, factor: 0.001},
	"µg/100g":  {target: MilligramPer100g, factor: 0.001},
	"mcg/100g": {target: MilligramPer100g, factor: 0.001},
	"ug/100g":  {target: MilligramPer100g, factor: 0.001},
	"g/100g":   {target: MilligramPer100g, factor: 1000},
	"cal/100g": {target: CaloriePer100g, factor: 1},
	"iu/100g":  {target: MilligramPer100g, factor: IUToMilligramVitaminA, only: VitaminA},
}

// Normalize converts a per-100 substance quantity to its canonical unit.
// The unit token is matched case-insensitively. Unrecognized tokens, and
// IU for any substance other than Vitamin A, are returned unchanged with
// recognized false.
func Normalize(substance string, q Quantity) (out Quantity, recognized bool) {
	conv, found := substanceUnits[strings.ToLower(strings.TrimSpace(q.Unit))]
	if !found || (conv.only != "" && conv.only != substance) {
		return q, false
	}
	return Quantity{Amount: q.Amount * conv.factor, Unit: conv.target}, true
}

// IsCanonicalSubstanceUnit reports whether unit is already in canonical
// per-100 form.
func IsCanonicalSubstanceUnit(unit string) bool {
	return unit == MilligramPer100g || unit == CaloriePer100g
}
