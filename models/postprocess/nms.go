// Package postprocess - provides Non-Maximum Suppression for part detections.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-camoxai/images"
)

// Filter drops detections whose confidence is below minConfidence, keeping input order.
//
// Returns nil when nothing survives.
func Filter(detections []RawDetection, minConfidence float32) []RawDetection {
	var kept []RawDetection
	for _, d := range detections {
		if d.Confidence < minConfidence {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

// SortByConfidence returns a copy of detections ordered by descending confidence.
//
// The sort is stable: equal confidences keep their input order, which makes suppression and
// grouping reproducible.
func SortByConfidence(detections []RawDetection) []RawDetection {
	sorted := make([]RawDetection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	return sorted
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Each not-yet-suppressed detection is kept in turn and suppresses every later, not-yet-suppressed
// detection whose IoU with it exceeds iouThreshold. Suppression is checked against kept boxes
// only; suppressed boxes never suppress anything.
//
// Arguments:
//   - detections: Slice of detections sorted by descending confidence (see SortByConfidence).
//   - iouThreshold: IoU threshold above which overlapping boxes are suppressed.
//
// Returns:
//   - Kept detections in input order. If no detections are provided, returns nil.
func ApplyGreedyNMS(detections []RawDetection, iouThreshold float32) []RawDetection {
	n := len(detections)
	if n == 0 {
		return nil
	}

	filtered := make([]RawDetection, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := detections[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}

			// Suppress if IoU exceeds threshold
			if images.IoU(anchor.Box, detections[j].Box) > iouThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
