// Package density computes crowd density from person counts and classifies it
// into ordinal occupancy bands.
package density

// Band is an ordinal classification of crowd density.
type Band int

const (
	// BandLow is fewer than 1 person per m².
	BandLow Band = iota
	// BandMedium is 1 to 2 persons per m².
	BandMedium
	// BandHigh is 2 to 3 persons per m².
	BandHigh
	// BandVeryHigh is 3 or more persons per m².
	BandVeryHigh
)

// Band thresholds in persons per m².
const (
	mediumThreshold   = 1.0
	highThreshold     = 2.0
	veryHighThreshold = 3.0
)

// String returns the human-readable band name.
func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMedium:
		return "medium"
	case BandHigh:
		return "high"
	case BandVeryHigh:
		return "very high"
	default:
		return "unknown"
	}
}

// Density returns persons per m² for the given count and visible area.
// Area must be positive; callers validate it at configuration time.
func Density(count int, area float64) float64 {
	if area <= 0 {
		return 0
	}
	return float64(count) / area
}

// BandOf classifies a density value into its occupancy band.
func BandOf(d float64) Band {
	switch {
	case d < mediumThreshold:
		return BandLow
	case d < highThreshold:
		return BandMedium
	case d < veryHighThreshold:
		return BandHigh
	default:
		return BandVeryHigh
	}
}
