package domain

import "math"

// Zone is a coaching classification of the projected monthly weight change.
type Zone int

const (
	ZoneUnknown Zone = iota
	ZoneDirtyBulk
	ZoneFastLane
	ZoneLeanBulk
	ZoneSteady
	ZoneMaintenance
	ZoneCutting
)

// String returns the display name of the zone.
func (z Zone) String() string {
	switch z {
	case ZoneDirtyBulk:
		return "Dirty Bulk"
	case ZoneFastLane:
		return "Fast Lane"
	case ZoneLeanBulk:
		return "Lean Bulk"
	case ZoneSteady:
		return "Steady"
	case ZoneMaintenance:
		return "Maintenance"
	case ZoneCutting:
		return "Cutting"
	default:
		return "Unknown"
	}
}

// Hint returns the coaching note attached to the zone.
func (z Zone) Hint() string {
	switch z {
	case ZoneDirtyBulk:
		return "gaining too fast, expect excess fat"
	case ZoneFastLane:
		return "beginner-rate gain, watch body fat"
	case ZoneLeanBulk:
		return "ideal lean-bulk rate"
	case ZoneSteady:
		return "cautious gain"
	case ZoneMaintenance:
		return "holding steady"
	case ZoneCutting:
		return "losing weight"
	default:
		return ""
	}
}

// ClassifyMonthlyGain maps a projected monthly gain (percent of body weight
// per 30 days) to a zone. Thresholds are evaluated in order, first match
// wins; a non-finite input yields ZoneUnknown.
func ClassifyMonthlyGain(p float64) Zone {
	switch {
	case math.IsNaN(p) || math.IsInf(p, 0):
		return ZoneUnknown
	case p > 1.5:
		return ZoneDirtyBulk
	case p > 1.0:
		return ZoneFastLane
	case p >= 0.5:
		return ZoneLeanBulk
	case p >= 0.25:
		return ZoneSteady
	case p >= 0:
		return ZoneMaintenance
	default:
		return ZoneCutting
	}
}
