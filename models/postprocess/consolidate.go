package postprocess

import "github.com/nvr-ai/go-camoxai/images"

// Consolidate reduces raw part detections to ranked findings.
//
// The pipeline is: drop detections below MinConfidence, stable-sort by confidence, greedy NMS at
// IoUThreshold, group by centroid distance below DistanceThreshold, merge each group, rank by
// confidence. It is a pure function of its input. Empty or fully filtered input yields no
// findings and no error; only an out-of-domain config is an error.
func Consolidate(detections []RawDetection, config ConsolidationConfig) ([]Finding, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	kept := Filter(detections, config.MinConfidence)
	if len(kept) == 0 {
		return nil, nil
	}

	survivors := ApplyGreedyNMS(SortByConfidence(kept), config.IoUThreshold)
	groups := GroupByDistance(survivors, config.DistanceThreshold)

	findings := make([]Finding, 0, len(groups))
	for _, g := range groups {
		f, err := Merge(g)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}

	return Rank(findings), nil
}

// Consolidator binds a ConsolidationConfig to Consolidate.
type Consolidator struct {
	Config ConsolidationConfig
}

// NewConsolidator validates config and returns a Consolidator for it.
func NewConsolidator(config ConsolidationConfig) (*Consolidator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Consolidator{Config: config}, nil
}

// Consolidate runs the consolidation pipeline with the bound config.
func (c *Consolidator) Consolidate(detections []RawDetection) ([]Finding, error) {
	return Consolidate(detections, c.Config)
}

// AttributeToBoxes pairs candidate detections with the weak-area boxes they overlap.
//
// One detection is emitted per overlapping (box, candidate) pair, in box order, so a candidate
// overlapping two boxes appears twice; suppression collapses such duplicates later.
func AttributeToBoxes(boxes []images.Box, candidates []RawDetection) []RawDetection {
	var out []RawDetection
	for _, box := range boxes {
		for _, c := range candidates {
			if images.Overlaps(box, c.Box) {
				out = append(out, c)
			}
		}
	}
	return out
}
