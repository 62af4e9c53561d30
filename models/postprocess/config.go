package postprocess

import (
	"github.com/go-playground/validator/v10"
	"github.com/nvr-ai/go-camoxai/common"
	"github.com/pkg/errors"
)

const (
	// DefaultIoUThreshold is the overlap above which a lower-confidence detection is suppressed.
	DefaultIoUThreshold = 0.25
	// DefaultDistanceThreshold is the centroid distance in pixels below which detections group.
	DefaultDistanceThreshold = 80
	// DefaultMinConfidence drops detections the detector was barely sure about.
	DefaultMinConfidence = 0.10
)

// ConsolidationConfig tunes the consolidation pipeline.
type ConsolidationConfig struct {
	// IoU threshold for suppression, in [0,1].
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold" validate:"gte=0,lte=1"`
	// Centroid distance for grouping, in pixels. Policy dependent, see policy.DistanceForSensitivity.
	DistanceThreshold float32 `json:"distance_threshold" yaml:"distance_threshold" validate:"gte=0"`
	// Minimum detection confidence, in [0,1].
	MinConfidence float32 `json:"min_confidence" yaml:"min_confidence" validate:"gte=0,lte=1"`
}

// DefaultConsolidationConfig returns IoU 0.25, distance 80 and min confidence 0.10.
func DefaultConsolidationConfig() ConsolidationConfig {
	return ConsolidationConfig{
		IoUThreshold:      DefaultIoUThreshold,
		DistanceThreshold: DefaultDistanceThreshold,
		MinConfidence:     DefaultMinConfidence,
	}
}

var validate = validator.New()

// Validate returns an error wrapping common.ErrInvalidConfiguration when a threshold is outside
// its domain.
func (c ConsolidationConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return common.InvalidConfiguration("consolidation %s=%v violates %s=%s",
			fe.Field(), fe.Value(), fe.Tag(), fe.Param())
	}
	return common.InvalidConfiguration("consolidation: %v", err)
}
