package lsq

import "math"

// bound describes the constraint kind of a single free parameter.
type bound int

const (
	unbounded bound = iota
	lowerOnly
	upperOnly
	twoSided
)

func boundOf(p Param) bound {
	hasMin := !math.IsInf(p.Min, -1) && !math.IsNaN(p.Min)
	hasMax := !math.IsInf(p.Max, 1) && !math.IsNaN(p.Max)
	switch {
	case hasMin && hasMax:
		return twoSided
	case hasMin:
		return lowerOnly
	case hasMax:
		return upperOnly
	default:
		return unbounded
	}
}

// clamp pulls v inside the bounds of p.
func clamp(p Param, v float64) float64 {
	switch boundOf(p) {
	case lowerOnly:
		return math.Max(v, p.Min)
	case upperOnly:
		return math.Min(v, p.Max)
	case twoSided:
		return math.Min(math.Max(v, p.Min), p.Max)
	}
	return v
}

// toInternal maps an external (bounded) value to the optimiser's variable.
func toInternal(p Param, v float64) float64 {
	v = clamp(p, v)
	switch boundOf(p) {
	case lowerOnly:
		return math.Sqrt((v-p.Min+1)*(v-p.Min+1) - 1)
	case upperOnly:
		return math.Sqrt((p.Max-v+1)*(p.Max-v+1) - 1)
	case twoSided:
		return math.Asin(2*(v-p.Min)/(p.Max-p.Min) - 1)
	}
	return v
}

// toExternal maps the optimiser's variable back into the bounded domain.
func toExternal(p Param, u float64) float64 {
	switch boundOf(p) {
	case lowerOnly:
		return p.Min - 1 + math.Sqrt(u*u+1)
	case upperOnly:
		return p.Max + 1 - math.Sqrt(u*u+1)
	case twoSided:
		return p.Min + (math.Sin(u)+1)*(p.Max-p.Min)/2
	}
	return u
}
