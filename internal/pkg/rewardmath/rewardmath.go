// Package rewardmath holds the pure XP, level and LifeScore arithmetic shared by
// every reward path.
package rewardmath

import "math"

const (
	XP_PER_LEVEL  = 100
	LIFESCORE_MIN = 0
	LIFESCORE_MAX = 100

	LIFESCORE_STATUS_EXCELLENT = "excellent"
	LIFESCORE_STATUS_HIGH      = "high"
	LIFESCORE_STATUS_MEDIUM    = "medium"
	LIFESCORE_STATUS_LOW       = "low"
)

type XPProgress struct {
	Current    int `json:"current"`
	Required   int `json:"required"`
	Percentage int `json:"percentage"`
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// LevelFromXP maps total xp to a level, starting at 1.
func LevelFromXP(xp int) int {
	return nonNegative(xp)/XP_PER_LEVEL + 1
}

func XPProgressFor(xp int, level int) XPProgress {
	xp = nonNegative(xp)
	if level < 1 {
		level = 1
	}

	current := xp - (level-1)*XP_PER_LEVEL
	if current < 0 {
		current = 0
	}

	percentage := current * 100 / XP_PER_LEVEL
	if percentage > 100 {
		percentage = 100
	}

	return XPProgress{
		Current:    current,
		Required:   XP_PER_LEVEL,
		Percentage: percentage,
	}
}

func ClampLifeScore(v float64) int {
	r := int(math.Round(v))
	if r < LIFESCORE_MIN {
		return LIFESCORE_MIN
	}
	if r > LIFESCORE_MAX {
		return LIFESCORE_MAX
	}
	return r
}

// ApplyLifeScoreDelta adds delta to current and clamps the result.
func ApplyLifeScoreDelta(current int, delta int) int {
	return ClampLifeScore(float64(current) + float64(delta))
}

func LifeScoreStatus(v int) string {
	percentage := ClampLifeScore(float64(v)) * 100 / LIFESCORE_MAX
	switch {
	case percentage >= 80:
		return LIFESCORE_STATUS_EXCELLENT
	case percentage >= 60:
		return LIFESCORE_STATUS_HIGH
	case percentage >= 40:
		return LIFESCORE_STATUS_MEDIUM
	default:
		return LIFESCORE_STATUS_LOW
	}
}
