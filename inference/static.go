package inference

import (
	"context"
	"image"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/nvr-ai/go-camoxai/common"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StaticDetector replays precomputed proposals, whatever the image.
type StaticDetector struct {
	Proposals []Proposal
}

// Detect implements PartDetector.
func (d StaticDetector) Detect(ctx context.Context, _ image.Image) ([]Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Proposal, len(d.Proposals))
	copy(out, d.Proposals)
	return out, nil
}

// StaticSegmenter replays precomputed maps, whatever the image.
type StaticSegmenter struct {
	Maps Maps
}

// Segment implements Segmenter.
func (s StaticSegmenter) Segment(ctx context.Context, _ image.Image) (Maps, error) {
	if err := ctx.Err(); err != nil {
		return Maps{}, err
	}
	return s.Maps, nil
}

// detectorOutput is the output dictionary of the object-part detector.
type detectorOutput struct {
	Boxes   [][]float32 `json:"detection_boxes"`
	Scores  []float32   `json:"detection_scores"`
	Classes []float32   `json:"detection_classes"`
	Count   *float32    `json:"num_detections,omitempty"`
}

// DecodeProposals reads a detector output dictionary.
//
// The dictionary carries parallel detection_boxes, detection_scores and detection_classes lists
// and an optional num_detections that truncates them.
func DecodeProposals(r io.Reader) ([]Proposal, error) {
	var out detectorOutput
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, common.InvalidInput("decode detector output: %v", err)
	}

	n := len(out.Boxes)
	if len(out.Scores) != n || len(out.Classes) != n {
		return nil, common.InvalidInput("detector output has %d boxes, %d scores and %d classes",
			n, len(out.Scores), len(out.Classes))
	}
	if out.Count != nil && int(*out.Count) < n {
		n = max(int(*out.Count), 0)
	}

	proposals := make([]Proposal, 0, n)
	for i := 0; i < n; i++ {
		if len(out.Boxes[i]) != 4 {
			return nil, common.InvalidInput("detection %d has %d box coordinates", i, len(out.Boxes[i]))
		}
		proposals = append(proposals, Proposal{
			Box:   [4]float32{out.Boxes[i][0], out.Boxes[i][1], out.Boxes[i][2], out.Boxes[i][3]},
			Score: out.Scores[i],
			Class: int(out.Classes[i]),
		})
	}
	return proposals, nil
}

// LoadProposals reads a detector output dictionary from path.
func LoadProposals(path string) ([]Proposal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open detections %s", path)
	}
	defer f.Close()

	proposals, err := DecodeProposals(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode detections %s", path)
	}
	return proposals, nil
}
