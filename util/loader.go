package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SampleFiles locates the inputs of one image.
type SampleFiles struct {
	// Name is the image file name, e.g. "moth.jpg".
	Name string
	// Image is the path to the image file.
	Image string
	// Confidence is the path to the binary confidence map, empty when missing.
	Confidence string
	// Fixation is the path to the fixation map, empty when missing.
	Fixation string
	// Detections is the path to the detector output, empty when missing.
	Detections string
}

// SampleDirs names the directories LoadSampleSet reads.
type SampleDirs struct {
	Images     string
	Confidence string
	Fixation   string
	Detections string
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".webp": true}

// LoadSampleSet lists the images of a directory and pairs each with its maps.
//
// Maps are matched by base name: "moth.jpg" pairs with "moth.png" in the confidence and fixation
// directories and with "moth.json" in the detections directory. A missing map leaves its path
// empty; the pipeline treats it as all zeros.
//
// Arguments:
// - dirs: Directories holding the images and their maps.
//
// Returns:
// - []SampleFiles: One entry per image, sorted by name.
// - error: Error if the image directory cannot be read.
func LoadSampleSet(dirs SampleDirs) ([]SampleFiles, error) {
	files, err := os.ReadDir(dirs.Images)
	if err != nil {
		return nil, errors.Wrapf(err, "read image dir %s", dirs.Images)
	}

	var samples []SampleFiles
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(file.Name()))
		if !imageExts[ext] {
			continue
		}
		base := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))

		samples = append(samples, SampleFiles{
			Name:       file.Name(),
			Image:      filepath.Join(dirs.Images, file.Name()),
			Confidence: findMap(dirs.Confidence, base, ".png", ".jpg", ".jpeg", ".bmp", ".webp"),
			Fixation:   findMap(dirs.Fixation, base, ".png", ".jpg", ".jpeg", ".bmp", ".webp"),
			Detections: findMap(dirs.Detections, base, ".json"),
		})
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Name < samples[j].Name
	})

	return samples, nil
}

// findMap returns the first existing dir/base+ext, or "".
func findMap(dir, base string, exts ...string) string {
	if dir == "" {
		return ""
	}
	for _, ext := range exts {
		path := filepath.Join(dir, base+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
