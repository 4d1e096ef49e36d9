// Package level maps accumulated XP to a level number and progress fraction.
//
// The canonical formula is level = floor(sqrt(xp/100)) + 1, so thresholds grow
// quadratically: level 2 at 100 XP, level 3 at 400 XP, level 4 at 900 XP.
package level

import "math"

// ForXP returns the level for a given XP total. Never below 1.
func ForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	lvl := int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
	if lvl < 1 {
		return 1
	}
	return lvl
}

// ThresholdForLevel returns the XP required to reach the given level.
func ThresholdForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return (level - 1) * (level - 1) * 100
}

// ProgressToNext returns the fraction of the way from the given level to the
// next one, clamped to [0, 1]. A stale level relative to xp is absorbed by the
// clamping rather than producing out-of-range values.
func ProgressToNext(xp, level int) float64 {
	if level < 1 {
		level = 1
	}
	current := ThresholdForLevel(level)
	next := ThresholdForLevel(level + 1)

	// Consecutive thresholds strictly increase for level >= 1.
	progress := float64(xp-current) / float64(next-current)
	return math.Min(1, math.Max(0, progress))
}
