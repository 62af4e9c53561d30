// Package policy - maps the tunable sensitivity / bias pair onto the thresholds used to explain a
// verdict.
package policy

const (
	// DefaultSensitivity is the sensitivity the front end starts with.
	DefaultSensitivity = 1.5
	// DefaultBias is the bias the front end starts with.
	DefaultBias = 0.0
	// DefaultBase is the binary threshold at sensitivity 1.0 and bias 0.
	DefaultBase = 0.5

	// MinThreshold and MaxThreshold bound every derived binary threshold.
	MinThreshold = 0.05
	MaxThreshold = 0.95

	// sensitivityStep is how far the threshold moves per unit of sensitivity.
	sensitivityStep = 0.1
)

// Params are the two externally tuned knobs of the threshold policy.
type Params struct {
	Sensitivity float64 `json:"sensitivity" yaml:"sensitivity"`
	Bias        float64 `json:"bias" yaml:"bias"`
}

// DefaultParams returns sensitivity 1.5 and bias 0.0.
func DefaultParams() Params {
	return Params{Sensitivity: DefaultSensitivity, Bias: DefaultBias}
}

// BinaryThreshold derives the binary-segmentation threshold:
//
//	clamp(base - 0.1 * (sensitivity - 1.0) + bias, 0.05, 0.95)
//
// Higher sensitivity lowers the threshold so more pixels become foreground; bias is added
// directly. The result is in [0,1] and must be rescaled with ScaleThreshold before it is
// compared against a map stored in another range.
func BinaryThreshold(p Params, base float64) float64 {
	t := base - sensitivityStep*(p.Sensitivity-1.0) + p.Bias
	return min(max(t, MinThreshold), MaxThreshold)
}

// ScaleThreshold expresses a [0,1] threshold in the native range of a map whose values go up
// to maxValue (255 for 8-bit maps, 1 for normalized ones).
func ScaleThreshold(t float64, maxValue float32) float32 {
	if maxValue <= 0 {
		maxValue = 1
	}
	return float32(t) * maxValue
}
