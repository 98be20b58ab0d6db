package rewardmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromXP(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{1000, 11},
	}

	for _, c := range cases {
		assert.Equal(t, c.level, LevelFromXP(c.xp), "xp=%d", c.xp)
	}
}

func TestLevelFromXPIsMonotonic(t *testing.T) {
	prev := LevelFromXP(0)
	for xp := 0; xp <= 5000; xp++ {
		level := LevelFromXP(xp)
		assert.GreaterOrEqual(t, level, 1)
		if level < prev {
			t.Fatalf("level decreased at xp=%d: %d < %d", xp, level, prev)
		}
		prev = level
	}
}

func TestXPProgressFor(t *testing.T) {
	p := XPProgressFor(250, LevelFromXP(250))
	assert.Equal(t, XPProgress{Current: 50, Required: 100, Percentage: 50}, p)

	p = XPProgressFor(0, 1)
	assert.Equal(t, XPProgress{Current: 0, Required: 100, Percentage: 0}, p)

	p = XPProgressFor(-10, 0)
	assert.Equal(t, 0, p.Current)
	assert.Equal(t, 100, p.Required)
}

func TestClampLifeScore(t *testing.T) {
	assert.Equal(t, 0, ClampLifeScore(-12))
	assert.Equal(t, 100, ClampLifeScore(140))
	assert.Equal(t, 43, ClampLifeScore(42.5))
	assert.Equal(t, 42, ClampLifeScore(42.4))
}

func TestApplyLifeScoreDeltaStaysInRange(t *testing.T) {
	deltas := []int{35, 80, -500, 12, 1000, -3, -99, 7, 250, -250}
	score := 50
	for _, d := range deltas {
		score = ApplyLifeScoreDelta(score, d)
		assert.GreaterOrEqual(t, score, LIFESCORE_MIN)
		assert.LessOrEqual(t, score, LIFESCORE_MAX)
		assert.Equal(t, score, ClampLifeScore(float64(score)))
	}
}

func TestLifeScoreStatus(t *testing.T) {
	assert.Equal(t, LIFESCORE_STATUS_EXCELLENT, LifeScoreStatus(80))
	assert.Equal(t, LIFESCORE_STATUS_HIGH, LifeScoreStatus(79))
	assert.Equal(t, LIFESCORE_STATUS_HIGH, LifeScoreStatus(60))
	assert.Equal(t, LIFESCORE_STATUS_MEDIUM, LifeScoreStatus(40))
	assert.Equal(t, LIFESCORE_STATUS_LOW, LifeScoreStatus(39))
	assert.Equal(t, LIFESCORE_STATUS_LOW, LifeScoreStatus(-5))
}
