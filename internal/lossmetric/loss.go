// Package lossmetric holds the loss percentage formulas shared by all techniques.
package lossmetric

// zeroDenominator replaces a zero reference count so the ratio stays defined.
const zeroDenominator = 0.1

// FromGenerationReflection returns the loss implied by a T bit generation and
// reflection count, floored at 0.
func FromGenerationReflection(generation, reflection int64) float64 {
	return ratioLoss(generation, reflection)
}

// FromNominalCount returns the loss implied by a Q/R bit nominal length and the
// number of marked packets actually counted, floored at 0.
func FromNominalCount(nominal, count int64) float64 {
	return ratioLoss(nominal, count)
}

// FromPacketCount returns lost/overall as a percentage. It returns exactly 100
// when nothing was counted. There is no upper clamp: lost > overall yields a
// value above 100, which is left visible as a data quality signal.
func FromPacketCount(overall, lost int64) float64 {
	if overall == 0 {
		return 100
	}
	loss := float64(lost) / float64(overall) * 100
	if loss < 0 {
		return 0
	}
	return loss
}

func ratioLoss(reference, observed int64) float64 {
	denom := float64(reference)
	if reference == 0 {
		denom += zeroDenominator
	}
	loss := (1.0 - float64(observed)/denom) * 100
	if loss < 0 {
		return 0
	}
	return loss
}
