package inference

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvr-ai/go-camoxai/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProposals(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Proposal
		wantErr bool
	}{
		{
			name: "full output",
			input: `{
				"detection_boxes": [[0.1, 0.2, 0.3, 0.4], [0.5, 0.5, 0.9, 0.8]],
				"detection_scores": [0.9, 0.2],
				"detection_classes": [1.0, 6.0]
			}`,
			want: []Proposal{
				{Box: [4]float32{0.1, 0.2, 0.3, 0.4}, Score: 0.9, Class: 1},
				{Box: [4]float32{0.5, 0.5, 0.9, 0.8}, Score: 0.2, Class: 6},
			},
		},
		{
			name: "num_detections truncates",
			input: `{
				"detection_boxes": [[0.1, 0.2, 0.3, 0.4], [0.5, 0.5, 0.9, 0.8]],
				"detection_scores": [0.9, 0.2],
				"detection_classes": [3, 4],
				"num_detections": 1
			}`,
			want: []Proposal{{Box: [4]float32{0.1, 0.2, 0.3, 0.4}, Score: 0.9, Class: 3}},
		},
		{
			name:  "empty output",
			input: `{"detection_boxes": [], "detection_scores": [], "detection_classes": []}`,
			want:  []Proposal{},
		},
		{
			name:    "ragged lists",
			input:   `{"detection_boxes": [[0, 0, 1, 1]], "detection_scores": [], "detection_classes": [1]}`,
			wantErr: true,
		},
		{
			name:    "short box",
			input:   `{"detection_boxes": [[0, 0, 1]], "detection_scores": [0.5], "detection_classes": [1]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   `detection_boxes`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeProposals(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadProposals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moth.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"detection_boxes": [[0, 0, 0.5, 0.5]], "detection_scores": [0.7], "detection_classes": [2]}`), 0o644))

	got, err := LoadProposals(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Class)

	_, err = LoadProposals(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
