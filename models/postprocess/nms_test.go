package postprocess

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-camoxai/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func det(label string, conf float32, x1, y1, x2, y2 float32) RawDetection {
	return RawDetection{Box: images.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, Confidence: conf, Label: label}
}

func TestFilter(t *testing.T) {
	in := []RawDetection{
		det("Object's leg", 0.05, 0, 0, 1, 1),
		det("Object's eye", 0.10, 0, 0, 1, 1),
		det("Object's arm", 0.50, 0, 0, 1, 1),
	}

	out := Filter(in, 0.10)
	require.Len(t, out, 2)
	assert.Equal(t, "Object's eye", out[0].Label, "confidence equal to the minimum is kept")
	assert.Equal(t, "Object's arm", out[1].Label)

	assert.Nil(t, Filter(in, 0.9))
	assert.Nil(t, Filter(nil, 0.1))
}

func TestSortByConfidence_StableOnTies(t *testing.T) {
	in := []RawDetection{
		det("a", 0.5, 0, 0, 1, 1),
		det("b", 0.9, 0, 0, 1, 1),
		det("c", 0.5, 0, 0, 1, 1),
		det("d", 0.9, 0, 0, 1, 1),
	}

	out := SortByConfidence(in)
	labels := make([]string, len(out))
	for i, d := range out {
		labels[i] = d.Label
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, labels)
	assert.Equal(t, "a", in[0].Label, "input must not be reordered")
}

func TestApplyGreedyNMS(t *testing.T) {
	tests := []struct {
		name   string
		in     []RawDetection
		thresh float32
		want   []string
	}{
		{
			name: "empty",
			want: nil,
		},
		{
			name:   "heavy overlap keeps the first",
			in:     []RawDetection{det("a", 0.9, 0, 0, 10, 10), det("b", 0.8, 1, 1, 11, 11)},
			thresh: 0.25,
			want:   []string{"a"},
		},
		{
			name:   "disjoint boxes survive",
			in:     []RawDetection{det("a", 0.9, 0, 0, 10, 10), det("b", 0.8, 50, 50, 60, 60)},
			thresh: 0.25,
			want:   []string{"a", "b"},
		},
		{
			name: "suppressed boxes do not suppress",
			in: []RawDetection{
				det("a", 0.9, 0, 0, 10, 10),
				det("b", 0.8, 5, 0, 15, 10),  // IoU(a,b) = 1/3
				det("c", 0.7, 10, 0, 20, 10), // IoU(a,c) = 0, IoU(b,c) = 1/3
			},
			thresh: 0.25,
			want:   []string{"a", "c"},
		},
		{
			name:   "IoU equal to the threshold is kept",
			in:     []RawDetection{det("a", 0.9, 0, 0, 10, 10), det("b", 0.8, 5, 0, 15, 10)},
			thresh: 1.0 / 3.0,
			want:   []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyGreedyNMS(tt.in, tt.thresh)
			var got []string
			for _, d := range out {
				got = append(got, d.Label)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyGreedyNMS_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(30)
		in := make([]RawDetection, n)
		for i := range in {
			x, y := rng.Float32()*200, rng.Float32()*200
			w, h := 5+rng.Float32()*60, 5+rng.Float32()*60
			in[i] = det("p", rng.Float32(), x, y, x+w, y+h)
		}

		sorted := SortByConfidence(in)
		out := ApplyGreedyNMS(sorted, DefaultIoUThreshold)

		require.NotEmpty(t, out)
		assert.Equal(t, sorted[0], out[0], "highest confidence detection is always kept")
		for _, o := range out {
			assert.Contains(t, in, o, "output must be a subset of the input")
		}
		for i := range out {
			for j := i + 1; j < len(out); j++ {
				assert.LessOrEqual(t, images.IoU(out[i].Box, out[j].Box), float32(DefaultIoUThreshold))
			}
		}
	}
}
