package inference

import (
	"fmt"

	"github.com/nvr-ai/go-camoxai/images"
	"github.com/nvr-ai/go-camoxai/models"
)

// Proposal is a raw part detection as the detector emits it.
type Proposal struct {
	// Normalized [ymin, xmin, ymax, xmax] in [0,1].
	Box [4]float32
	// Detector score in [0,1].
	Score float32
	// 1-based class id into models.PartVocabulary.
	Class int
}

// ToBox scales the normalized box to pixel coordinates of a width x height image.
func (p Proposal) ToBox(width, height int) images.Box {
	w, h := float32(width), float32(height)
	return images.NewBox(p.Box[1]*w, p.Box[0]*h, p.Box[3]*w, p.Box[2]*h)
}

// Part resolves the class id to a part name.
func (p Proposal) Part() (string, error) {
	return models.ResolvePart(p.Class)
}

func (p Proposal) String() string {
	return fmt.Sprintf("class %d (score %.2f): [%.3f, %.3f, %.3f, %.3f]",
		p.Class, p.Score, p.Box[0], p.Box[1], p.Box[2], p.Box[3])
}
