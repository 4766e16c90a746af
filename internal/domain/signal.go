package domain

// Direction of a trade signal or position.
type Direction string

// Direction constants.
const (
	DirectionNone  Direction = "NONE"
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Sign returns +1 for long, -1 for short, 0 for none.
func (d Direction) Sign() float64 {
	switch d {
	case DirectionLong:
		return 1
	case DirectionShort:
		return -1
	default:
		return 0
	}
}

// Opposite returns the reversed direction. None stays none.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionLong:
		return DirectionShort
	case DirectionShort:
		return DirectionLong
	default:
		return DirectionNone
	}
}

// Entry style tags carried on a signal.
const (
	EntryStylePullback = "PULLBACK"
	EntryStyleBreakout = "BREAKOUT"
	EntryStyleNone     = "NONE"
)

// Signal is produced per evaluated bar and not persisted beyond it.
type Signal struct {
	Direction  Direction
	Strength   float64 // raw technical strength in [0, 1]
	EntryStyle string  // PULLBACK | BREAKOUT | NONE
}

// QualityScore is the composite 0-100 admission metric computed per signal.
type QualityScore struct {
	TrendComponent     float64 // up to 25
	TechnicalComponent float64 // up to 25
	TimingComponent    float64 // up to 25
	ConditionComponent float64 // up to 25
	NewsAdjustment     float64 // signed, capped at +/- 10
	Total              float64 // clamped to [0, 100]
	SizeMultiplier     float64 // 1.0 | 0.75 | 0.5 | 0 (reject)
}

// Quality score size-multiplier breakpoints.
const (
	ScoreFullSize    = 80.0 // total >= 80 -> multiplier 1.0
	ScoreReducedSize = 60.0 // total >= 60 -> multiplier 0.75
	ScoreMinimumSize = 40.0 // total >= 40 -> multiplier 0.5; below -> reject
)
