package policy

const (
	// DefaultDistance is the grouping distance at standard sensitivity.
	DefaultDistance = 80
	// WideDistance is used at low sensitivity so nearby parts collapse into fewer findings.
	WideDistance = 100
	// NarrowDistance is used at high sensitivity so findings stay separate.
	NarrowDistance = 50

	lowSensitivity  = 1.0
	highSensitivity = 2.0
)

// DistanceForSensitivity picks the centroid grouping distance for a sensitivity setting.
//
// Sensitivity at or below 1.0 widens the distance to 100 pixels, at or above 2.0 narrows it to
// 50 pixels, anything in between keeps base.
func DistanceForSensitivity(sensitivity float64, base float32) float32 {
	switch {
	case sensitivity <= lowSensitivity:
		return WideDistance
	case sensitivity >= highSensitivity:
		return NarrowDistance
	default:
		return base
	}
}
