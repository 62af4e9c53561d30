package models

import (
	"testing"

	"github.com/nvr-ai/go-camoxai/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePart(t *testing.T) {
	for i, want := range PartVocabulary {
		got, err := ResolvePart(i + 1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, i+1, PartIndex(want))
	}

	for _, id := range []int{0, -1, len(PartVocabulary) + 1} {
		_, err := ResolvePart(id)
		assert.True(t, errors.Is(err, common.ErrInvalidInput), "class id %d", id)
	}
	assert.Zero(t, PartIndex("wing"))
}

func TestPartName(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Object's leg", "leg"},
		{"Object (eye)", "eye"},
		{PossessiveLabel("tail"), "tail"},
		{ObjectLabel("arm"), "arm"},
		{"shadow", "shadow"},
		{"Camouflaged object", "Camouflaged object"},
		{"Object's ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, PartName(tt.label))
		})
	}
}
