package engine

// Level is the ordinal trust band derived from a total score.
type Level string

const (
	LevelVeryHigh Level = "very-high"
	LevelHigh     Level = "high"
	LevelNeutral  Level = "neutral"
	LevelLow      Level = "low"
	LevelHighRisk Level = "high-risk"
)

// TrustLevel maps a score to its band. Boundaries are inclusive lower bounds:
// a score of exactly 95 is very-high, exactly 35 is low.
func TrustLevel(score int) Level {
	switch {
	case score >= 95:
		return LevelVeryHigh
	case score >= 80:
		return LevelHigh
	case score >= 55:
		return LevelNeutral
	case score >= 35:
		return LevelLow
	default:
		return LevelHighRisk
	}
}
