package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupLabels(groups [][]RawDetection) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		for _, d := range g {
			out[i] = append(out[i], d.Label)
		}
	}
	return out
}

func TestGroupByDistance(t *testing.T) {
	tests := []struct {
		name   string
		in     []RawDetection
		thresh float32
		want   [][]string
	}{
		{
			name: "empty",
			want: [][]string{},
		},
		{
			name: "membership is decided against the anchor only",
			in: []RawDetection{
				det("a", 0.9, 0, 0, 10, 10),
				det("b", 0.8, 60, 0, 70, 10),
				det("c", 0.7, 120, 0, 130, 10), // 60 from b, 120 from a
			},
			thresh: 80,
			want:   [][]string{{"a", "b"}, {"c"}},
		},
		{
			name: "distance equal to the threshold does not group",
			in: []RawDetection{
				det("a", 0.9, 0, 0, 10, 10),
				det("b", 0.8, 80, 0, 90, 10),
			},
			thresh: 80,
			want:   [][]string{{"a"}, {"b"}},
		},
		{
			name: "later anchor picks up leftovers",
			in: []RawDetection{
				det("a", 0.9, 0, 0, 10, 10),
				det("b", 0.8, 300, 0, 310, 10),
				det("c", 0.7, 20, 0, 30, 10),
				det("d", 0.6, 330, 0, 340, 10),
			},
			thresh: 80,
			want:   [][]string{{"a", "c"}, {"b", "d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := groupLabels(GroupByDistance(tt.in, tt.thresh))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroupByDistance_EveryDetectionInExactlyOneGroup(t *testing.T) {
	in := []RawDetection{
		det("a", 0.9, 0, 0, 10, 10),
		det("b", 0.8, 40, 40, 50, 50),
		det("c", 0.7, 90, 90, 100, 100),
		det("d", 0.6, 130, 130, 140, 140),
		det("e", 0.5, 500, 500, 510, 510),
	}

	groups := GroupByDistance(in, 80)
	seen := map[string]int{}
	for _, g := range groups {
		require.NotEmpty(t, g)
		for _, d := range g {
			seen[d.Label]++
		}
	}
	assert.Len(t, seen, len(in))
	for label, n := range seen {
		assert.Equal(t, 1, n, label)
	}
}
