package imageio

import (
	"github.com/nvr-ai/go-camoxai/images"
	"github.com/nvr-ai/go-camoxai/inference"
	"github.com/nvr-ai/go-camoxai/pipeline"
	"github.com/nvr-ai/go-camoxai/util"
)

// LoadSample reads the image and maps of one sample.
//
// The maps are resampled to the image size. Missing maps stay empty and missing detections
// leave the sample without proposals.
func LoadSample(files util.SampleFiles) (pipeline.Sample, error) {
	img, err := Open(files.Image)
	if err != nil {
		return pipeline.Sample{}, err
	}
	b := img.Bounds()

	s := pipeline.Sample{
		Name:     files.Name,
		Width:    b.Dx(),
		Height:   b.Dy(),
		MaxValue: MaxGray,
	}

	if s.Confidence, err = loadOptional(files.Confidence, s.Width, s.Height); err != nil {
		return pipeline.Sample{}, err
	}
	if s.Fixation, err = loadOptional(files.Fixation, s.Width, s.Height); err != nil {
		return pipeline.Sample{}, err
	}
	if files.Detections != "" {
		if s.Proposals, err = inference.LoadProposals(files.Detections); err != nil {
			return pipeline.Sample{}, err
		}
	}
	return s, nil
}

func loadOptional(path string, width, height int) (images.Grid, error) {
	if path == "" {
		return images.Grid{}, nil
	}
	return LoadGray(path, width, height)
}
