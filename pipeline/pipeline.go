// Package pipeline - turns model outputs for one image into the inputs of the decision hierarchy
// and runs it.
package pipeline

import (
	"context"
	"image"

	"github.com/nvr-ai/go-camoxai/controller"
	"github.com/nvr-ai/go-camoxai/images"
	"github.com/nvr-ai/go-camoxai/inference"
	"github.com/nvr-ai/go-camoxai/logging"
	"github.com/nvr-ai/go-camoxai/models"
	"github.com/nvr-ai/go-camoxai/models/postprocess"
	"github.com/nvr-ai/go-camoxai/policy"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultWeakLevel is the normalized fixation level above which a cell is a weak area.
	DefaultWeakLevel = 1.0 / 3.0
	// DefaultScoreFloor drops detector proposals at or below this score.
	DefaultScoreFloor = 0.3
)

// Options configures a Pipeline.
type Options struct {
	Threshold policy.Params
	// Base is the binary threshold at sensitivity 1.0 and bias 0.
	Base          float64
	Consolidation postprocess.ConsolidationConfig
	WeakLevel     float32
	ScoreFloor    float32
	MaxNarrated   int
	// AdaptiveDistance derives the grouping distance from the sensitivity.
	AdaptiveDistance bool
	// ResampleMaps rescales maps that do not match the image size instead of failing.
	ResampleMaps bool
	// Extractor overrides the default contour extractor.
	Extractor images.BoxExtractor
}

// DefaultOptions returns the defaults used by the command line.
func DefaultOptions() Options {
	return Options{
		Threshold:     policy.DefaultParams(),
		Base:          policy.DefaultBase,
		Consolidation: postprocess.DefaultConsolidationConfig(),
		WeakLevel:     DefaultWeakLevel,
		ScoreFloor:    DefaultScoreFloor,
		MaxNarrated:   controller.DefaultMaxNarrated,
	}
}

// Sample holds the model outputs for one image.
type Sample struct {
	Name   string
	Width  int
	Height int
	// Binary confidence map. Empty means no object.
	Confidence images.Grid
	// Fixation map. Empty means no weak areas.
	Fixation images.Grid
	// Native range of both maps: 1 or 255.
	MaxValue  float32
	Proposals []inference.Proposal
}

// Pipeline explains samples with a fixed set of options. It is safe for concurrent use.
type Pipeline struct {
	opts      Options
	threshold float64
	hierarchy *controller.Hierarchy
	log       logrus.FieldLogger
}

// New validates opts and builds a Pipeline.
//
// Arguments:
//   - opts: The pipeline options.
//   - log: The logger, nil to discard.
//
// Returns:
//   - *Pipeline: The pipeline.
//   - error: An error wrapping common.ErrInvalidConfiguration if a threshold is out of domain.
func New(opts Options, log logrus.FieldLogger) (*Pipeline, error) {
	if opts.AdaptiveDistance {
		opts.Consolidation.DistanceThreshold = policy.DistanceForSensitivity(
			opts.Threshold.Sensitivity, opts.Consolidation.DistanceThreshold)
	}

	consolidator, err := postprocess.NewConsolidator(opts.Consolidation)
	if err != nil {
		return nil, err
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = images.ContourExtractor{}
	}

	hierarchy := controller.NewHierarchy(extractor, consolidator)
	if opts.MaxNarrated > 0 {
		hierarchy.MaxNarrated = opts.MaxNarrated
	}

	return &Pipeline{
		opts:      opts,
		threshold: policy.BinaryThreshold(opts.Threshold, opts.Base),
		hierarchy: hierarchy,
		log:       logging.OrDiscard(log),
	}, nil
}

// Threshold returns the binary threshold in [0,1] derived from the options.
func (p *Pipeline) Threshold() float64 {
	return p.threshold
}

// Options returns the effective options, with the adaptive distance applied.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Prepare derives the hierarchy input from a sample.
//
// The confidence map is binarized at the policy threshold rescaled to the map range, the
// normalized fixation map is masked with the binary map and the weak areas are the cells above
// the weak level. Proposals above the score floor become candidate part detections.
func (p *Pipeline) Prepare(ctx context.Context, s Sample) (controller.Input, error) {
	confidence, err := p.fit(s.Confidence, s, "confidence map")
	if err != nil {
		return controller.Input{}, err
	}
	fixation, err := p.fit(s.Fixation, s, "fixation map")
	if err != nil {
		return controller.Input{}, err
	}

	binary := images.Binarize(confidence, policy.ScaleThreshold(p.threshold, s.MaxValue))
	if err := ctx.Err(); err != nil {
		return controller.Input{}, err
	}

	masked, err := images.MaskWith(images.Normalize(fixation, s.MaxValue), binary)
	if err != nil {
		return controller.Input{}, err
	}
	weak := images.WeakRegions(masked, p.opts.WeakLevel)

	candidates, err := p.Candidates(s)
	if err != nil {
		return controller.Input{}, err
	}

	return controller.Input{
		Name:        s.Name,
		Width:       s.Width,
		Height:      s.Height,
		Binary:      binary,
		WeakRegions: weak,
		Candidates:  candidates,
	}, nil
}

// fit returns g sized to the sample image. An empty map becomes all zeros.
func (p *Pipeline) fit(g images.Grid, s Sample, what string) (images.Grid, error) {
	if g.Empty() {
		return images.NewGrid(s.Width, s.Height), nil
	}
	if err := g.SameSize(what, s.Width, s.Height); err != nil {
		if !p.opts.ResampleMaps {
			return images.Grid{}, err
		}
		return images.ResampleGrid(g, s.Width, s.Height, s.MaxValue)
	}
	return g, nil
}

// Candidates converts the proposals of a sample into part detections in pixel coordinates.
//
// Proposals scoring at or below the score floor are dropped. A class id outside the part
// vocabulary is an error.
func (p *Pipeline) Candidates(s Sample) ([]postprocess.RawDetection, error) {
	var out []postprocess.RawDetection
	for _, prop := range s.Proposals {
		if prop.Score <= p.opts.ScoreFloor {
			continue
		}
		part, err := prop.Part()
		if err != nil {
			return nil, err
		}
		out = append(out, postprocess.RawDetection{
			Box:        prop.ToBox(s.Width, s.Height),
			Confidence: prop.Score,
			Label:      models.PossessiveLabel(part),
		})
	}
	return out, nil
}

// Explain runs the decision hierarchy for one sample.
//
// Arguments:
//   - ctx: Cancels the run between stages.
//   - s: The model outputs for the image.
//
// Returns:
//   - *controller.Outcome: The explanation.
//   - error: ctx.Err() on cancellation, or the first error of a stage.
func (p *Pipeline) Explain(ctx context.Context, s Sample) (*controller.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in, err := p.Prepare(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := p.hierarchy.Decide(in)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logging.Fields{
		logging.ImageKey:     s.Name,
		logging.LevelKey:     out.Level.String(),
		logging.WeakAreasKey: len(out.WeakAreas),
		logging.FindingsKey:  len(out.Findings),
	}).Debug("decision reached")

	return out, nil
}

// ExplainImage runs the models on img and explains the result.
func (p *Pipeline) ExplainImage(ctx context.Context, m *inference.Models, name string, img image.Image) (*controller.Outcome, error) {
	segmenter, err := m.Segmenter()
	if err != nil {
		return nil, err
	}
	detector, err := m.Detector()
	if err != nil {
		return nil, err
	}

	maps, err := segmenter.Segment(ctx, img)
	if err != nil {
		return nil, err
	}
	proposals, err := detector.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return p.Explain(ctx, Sample{
		Name:       name,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Confidence: maps.Confidence,
		Fixation:   maps.Fixation,
		MaxValue:   maps.MaxValue,
		Proposals:  proposals,
	})
}
