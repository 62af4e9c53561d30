// Package postprocess - consolidates raw object-part detections into ranked findings.
package postprocess

import (
	"fmt"
	"strings"

	"github.com/nvr-ai/go-camoxai/images"
)

// GenericLabel is the label of a finding that mixes more than two distinct parts.
const GenericLabel = "Camouflaged object"

// RawDetection is a single object-part detection in image pixel coordinates.
type RawDetection struct {
	// The bounding box of the detection.
	Box images.Box
	// The detector confidence in [0,1].
	Confidence float32
	// The part label, usually possessive ("Object's leg").
	Label string
}

// PartStat counts the members of a finding that share a part name.
type PartStat struct {
	Name          string
	Count         int
	MaxConfidence float32
}

// Finding is a group of nearby detections merged into one human-readable result.
//
// Findings are created by Merge or MergeFindings and never mutated afterwards.
type Finding struct {
	// Union of the member boxes.
	Box images.Box
	// Highest member confidence.
	Confidence float32
	// Mean member confidence.
	AvgConfidence float32
	// "Object (<part>)" or GenericLabel.
	Label string
	// Number of member detections.
	PartCount int
	// Part histogram in first-encountered order.
	Parts []PartStat
}

// Histogram returns the part name -> member count mapping.
func (f Finding) Histogram() map[string]int {
	h := make(map[string]int, len(f.Parts))
	for _, p := range f.Parts {
		h[p.Name] += p.Count
	}
	return h
}

// Breakdown formats the part histogram, e.g. "leg(2), eye(1)".
func (f Finding) Breakdown() string {
	parts := make([]string, 0, len(f.Parts))
	for _, p := range f.Parts {
		parts = append(parts, fmt.Sprintf("%s(%d)", p.Name, p.Count))
	}
	return strings.Join(parts, ", ")
}

// String formats the finding for narration, e.g. "Object (leg) (85%): leg(2), eye(1)".
func (f Finding) String() string {
	s := fmt.Sprintf("%s (%.0f%%)", f.Label, f.Confidence*100)
	if b := f.Breakdown(); b != "" {
		s += ": " + b
	}
	return s
}

// Detection returns the finding as a single raw detection.
func (f Finding) Detection() RawDetection {
	return RawDetection{Box: f.Box, Confidence: f.Confidence, Label: f.Label}
}
