package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-camoxai/common"
	"github.com/nvr-ai/go-camoxai/images"
	"github.com/nvr-ai/go-camoxai/models"
)

// maxNamedParts is the largest number of distinct parts a finding can hold and still be named
// after one of them.
const maxNamedParts = 2

// Merge combines one spatial group of detections into a Finding.
//
// The box is the union of the member boxes, the confidence is the member maximum and the average
// is the member mean. Part names are taken from the labels with the possessive prefix stripped.
// With more than two distinct parts the label is GenericLabel, otherwise it names the part with
// the highest member confidence (the first one in group order on ties).
func Merge(group []RawDetection) (Finding, error) {
	if len(group) == 0 {
		return Finding{}, common.InvalidInput("merge of an empty detection group")
	}

	singles := make([]Finding, len(group))
	for i, d := range group {
		name := models.PartName(d.Label)
		singles[i] = Finding{
			Box:           d.Box,
			Confidence:    d.Confidence,
			AvgConfidence: d.Confidence,
			PartCount:     1,
			Parts:         []PartStat{{Name: name, Count: 1, MaxConfidence: d.Confidence}},
		}
	}
	return MergeFindings(singles)
}

// MergeFindings combines already merged findings into one.
//
// Merging a single finding reproduces it unchanged, so findings can be fed back through grouping
// without drifting.
func MergeFindings(findings []Finding) (Finding, error) {
	if len(findings) == 0 {
		return Finding{}, common.InvalidInput("merge of an empty finding group")
	}

	boxes := make([]images.Box, len(findings))
	var (
		best   float32
		total  float64
		weight float64
		count  int
		parts  []PartStat
		index  = map[string]int{}
	)

	for i, f := range findings {
		boxes[i] = f.Box
		if i == 0 || f.Confidence > best {
			best = f.Confidence
		}

		w := float64(max(f.PartCount, 1))
		total += float64(f.AvgConfidence) * w
		weight += w
		count += f.PartCount

		for _, p := range f.Parts {
			k, ok := index[p.Name]
			if !ok {
				index[p.Name] = len(parts)
				parts = append(parts, p)
				continue
			}
			parts[k].Count += p.Count
			if p.MaxConfidence > parts[k].MaxConfidence {
				parts[k].MaxConfidence = p.MaxConfidence
			}
		}
	}

	box, err := images.UnionBox(boxes)
	if err != nil {
		return Finding{}, err
	}

	return Finding{
		Box:           box,
		Confidence:    best,
		AvgConfidence: float32(total / weight),
		Label:         labelFor(parts),
		PartCount:     count,
		Parts:         parts,
	}, nil
}

// labelFor picks the summary label of a part histogram.
func labelFor(parts []PartStat) string {
	if len(parts) == 0 || len(parts) > maxNamedParts {
		return GenericLabel
	}

	top := parts[0]
	for _, p := range parts[1:] {
		if p.MaxConfidence > top.MaxConfidence {
			top = p
		}
	}
	if top.Name == GenericLabel {
		return GenericLabel
	}
	return models.ObjectLabel(top.Name)
}

// Rank orders findings by descending confidence, keeping the merge order on ties.
func Rank(findings []Finding) []Finding {
	ranked := make([]Finding, len(findings))
	copy(ranked, findings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}
