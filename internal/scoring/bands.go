package scoring

// Band is a coarse label for a score, used by presentation layers.
type Band string

const (
	BandExcellent Band = "excellent" // >= 90
	BandGood      Band = "good"      // >= 70
	BandFair      Band = "fair"      // >= 50
	BandWeak      Band = "weak"      // >= 30
	BandMiss      Band = "miss"
)

// BandFor maps a score to its band.
func BandFor(score int) Band {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 70:
		return BandGood
	case score >= 50:
		return BandFair
	case score >= 30:
		return BandWeak
	}
	return BandMiss
}
