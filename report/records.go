// Package report - serializable records of decision outcomes and the sinks that persist them.
package report

import (
	"github.com/nvr-ai/go-camoxai/controller"
	"github.com/nvr-ai/go-camoxai/images"
	"github.com/nvr-ai/go-camoxai/models/postprocess"
)

// Item names the image a weak area record belongs to.
type Item struct {
	Name           string `json:"name"`
	NumOfWeakAreas int    `json:"num_of_weak_areas"`
}

// WeakAreaRecord is the Level 2 artifact of an image.
type WeakAreaRecord struct {
	Item         Item         `json:"item"`
	WeakAreaBBox []images.Box `json:"weak_area_bbox"`
}

// FindingRecord is the serialized form of a consolidated finding.
type FindingRecord struct {
	BBox          images.Box     `json:"bbox"`
	Confidence    float32        `json:"confidence"`
	AvgConfidence float32        `json:"avg_confidence"`
	Label         string         `json:"label"`
	PartCount     int            `json:"part_count"`
	Parts         map[string]int `json:"parts"`
}

// StatsRecord summarizes one image: whether an object was present and how many weak areas it had.
type StatsRecord struct {
	Name string `json:"name,omitempty"`
	Obj  int    `json:"obj"`
	Weak int    `json:"weak"`
}

// Report bundles every artifact of one outcome.
type Report struct {
	Message   string          `json:"message"`
	Level     string          `json:"level"`
	Verdict   string          `json:"verdict"`
	WeakAreas WeakAreaRecord  `json:"weak_areas"`
	Findings  []FindingRecord `json:"findings"`
	Stats     StatsRecord     `json:"stats"`
}

// NewWeakAreaRecord builds the weak area record of an outcome under name.
func NewWeakAreaRecord(name string, o *controller.Outcome) WeakAreaRecord {
	boxes := o.WeakAreas
	if boxes == nil {
		boxes = []images.Box{}
	}
	return WeakAreaRecord{
		Item:         Item{Name: name, NumOfWeakAreas: len(boxes)},
		WeakAreaBBox: boxes,
	}
}

// NewFindingRecord converts a finding.
func NewFindingRecord(f postprocess.Finding) FindingRecord {
	return FindingRecord{
		BBox:          f.Box,
		Confidence:    f.Confidence,
		AvgConfidence: f.AvgConfidence,
		Label:         f.Label,
		PartCount:     f.PartCount,
		Parts:         f.Histogram(),
	}
}

// NewStatsRecord summarizes an outcome.
func NewStatsRecord(name string, o *controller.Outcome) StatsRecord {
	s := StatsRecord{Name: name, Weak: len(o.WeakAreas)}
	if o.ObjectPresent {
		s.Obj = 1
	}
	return s
}

// FromOutcome builds the full report of an outcome.
func FromOutcome(name string, o *controller.Outcome) Report {
	findings := make([]FindingRecord, 0, len(o.Findings))
	for _, f := range o.Findings {
		findings = append(findings, NewFindingRecord(f))
	}
	return Report{
		Message:   o.Message(),
		Level:     o.Level.String(),
		Verdict:   o.Verdict.String(),
		WeakAreas: NewWeakAreaRecord(name, o),
		Findings:  findings,
		Stats:     NewStatsRecord(name, o),
	}
}
