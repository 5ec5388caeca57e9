// Package level maps cumulative XP to a level between MinLevel and MaxLevel.
package level

const (
	MinLevel = 1
	MaxLevel = 10
)

// thresholds[l] is the cumulative XP needed to reach level l.
var thresholds = [MaxLevel + 1]int64{
	1:  0,
	2:  200,
	3:  450,
	4:  750,
	5:  1100,
	6:  1500,
	7:  1950,
	8:  2450,
	9:  3050,
	10: 3650,
}

// For returns the level reached with xp. Callers keep xp >= 0; anything
// below the level 2 threshold is level 1.
func For(xp int64) int {
	for l := MaxLevel; l > MinLevel; l-- {
		if thresholds[l] <= xp {
			return l
		}
	}
	return MinLevel
}

// ThresholdFor returns the XP needed to reach level l. Levels outside
// [MinLevel, MaxLevel] are clamped.
func ThresholdFor(l int) int64 {
	l = max(min(l, MaxLevel), MinLevel)
	return thresholds[l]
}

// Progress describes where xp sits inside its level.
type Progress struct {
	Level         int     `json:"level"`
	XP            int64   `json:"xp"`
	LevelFloor    int64   `json:"level_floor"`
	NextThreshold int64   `json:"next_threshold"` // 0 at MaxLevel
	ToNext        int64   `json:"to_next"`
	Pct           float64 `json:"pct"` // 0.0–1.0 within the level, 1.0 at MaxLevel
}

// ProgressFor computes the display-ready progress for xp.
func ProgressFor(xp int64) Progress {
	l := For(xp)
	p := Progress{Level: l, XP: xp, LevelFloor: thresholds[l], Pct: 1}
	if l == MaxLevel {
		return p
	}
	p.NextThreshold = thresholds[l+1]
	p.ToNext = p.NextThreshold - xp
	span := float64(p.NextThreshold - p.LevelFloor)
	p.Pct = min(max(float64(xp-p.LevelFloor)/span, 0), 1)
	return p
}
