// Package inference - Capability interfaces for the models that feed the decision hierarchy.
package inference

import (
	"context"
	"image"
	"sync"

	"github.com/nvr-ai/go-camoxai/common"
	"github.com/nvr-ai/go-camoxai/images"
)

// Maps holds the per-image outputs of the segmentation model.
type Maps struct {
	// Binary confidence map. Values lie in [0, MaxValue].
	Confidence images.Grid
	// Fixation (saliency) map. Values lie in [0, MaxValue].
	Fixation images.Grid
	// Native range of both maps: 1 for probabilities, 255 for 8-bit maps.
	MaxValue float32
}

// Segmenter produces the confidence and fixation maps of an image.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image) (Maps, error)
}

// PartDetector proposes object-part detections for an image.
type PartDetector interface {
	Detect(ctx context.Context, img image.Image) ([]Proposal, error)
}

// Loader builds the model capabilities. It is called at most once per Models.
type Loader func() (Segmenter, PartDetector, error)

// Models is the caller-owned handle to the inference capabilities.
//
// The capabilities are built once by the first Init call; later calls return the result of the
// first one. After Init, a Models can be read concurrently.
type Models struct {
	once      sync.Once
	segmenter Segmenter
	detector  PartDetector
	err       error
}

// NewModels returns a Models already holding the given capabilities.
//
// Arguments:
//   - segmenter: The segmentation model.
//   - detector: The object-part detector.
//
// Returns:
//   - *Models: The initialized handle.
func NewModels(segmenter Segmenter, detector PartDetector) *Models {
	m := &Models{}
	_ = m.Init(func() (Segmenter, PartDetector, error) {
		return segmenter, detector, nil
	})
	return m
}

// Init builds the capabilities with load unless that already happened.
//
// Arguments:
//   - load: The loader used on the first call.
//
// Returns:
//   - error: The error of the first load, if any.
func (m *Models) Init(load Loader) error {
	m.once.Do(func() {
		if load == nil {
			m.err = common.InvalidConfiguration("no model loader")
			return
		}
		m.segmenter, m.detector, m.err = load()
		if m.err == nil && (m.segmenter == nil || m.detector == nil) {
			m.err = common.InvalidConfiguration("model loader returned a nil capability")
		}
	})
	return m.err
}

// Segmenter returns the segmentation capability.
func (m *Models) Segmenter() (Segmenter, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	return m.segmenter, nil
}

// Detector returns the object-part detector capability.
func (m *Models) Detector() (PartDetector, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	return m.detector, nil
}

func (m *Models) ready() error {
	m.once.Do(func() {
		m.err = common.InvalidConfiguration("models used before Init")
	})
	return m.err
}
