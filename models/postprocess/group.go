package postprocess

import "github.com/nvr-ai/go-camoxai/images"

// GroupByDistance partitions detections into spatial groups.
//
// Detections must be ordered by descending confidence. The first unassigned detection anchors a
// new group that takes every later unassigned detection whose centroid lies closer than
// distanceThreshold to the anchor. Membership is decided against the anchor only, so the
// grouping is not transitive and depends on the input order.
func GroupByDistance(detections []RawDetection, distanceThreshold float32) [][]RawDetection {
	n := len(detections)
	if n == 0 {
		return nil
	}

	assigned := make([]bool, n)
	var groups [][]RawDetection

	for i := 0; i < n; i++ {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		group := []RawDetection{detections[i]}

		for j := i + 1; j < n; j++ {
			if assigned[j] {
				continue
			}
			if images.CentroidDistance(detections[i].Box, detections[j].Box) < distanceThreshold {
				assigned[j] = true
				group = append(group, detections[j])
			}
		}

		groups = append(groups, group)
	}

	return groups
}
