// Package scoring maps timing error to points.
package scoring

// Score converts an accuracy error (ms between a player's reaction offset
// and the hidden target offset) into points. Lower error never scores
// fewer points than higher error. Tier boundaries are inclusive on the
// upper end.
func Score(accuracyMs int64) int {
	switch {
	case accuracyMs <= 50:
		return 100
	case accuracyMs <= 100:
		return 80
	case accuracyMs <= 200:
		return 60
	case accuracyMs <= 300:
		return 40
	case accuracyMs <= 500:
		return 20
	default:
		return 10
	}
}
