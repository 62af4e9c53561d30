package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-camoxai/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Output: &buf, NoColors: true})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithFields(Fields{RunIDKey: "r-1", ImageKey: "moth.png"}).Debug("decided")
	out := buf.String()
	assert.Contains(t, out, "decided")
	assert.Contains(t, out, "run_id:r-1")
	assert.Contains(t, out, "image:moth.png")
}

func TestNew_DefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf, NoColors: true})
	require.NoError(t, err)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidConfiguration))
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camoxai.log")
	logger, err := New(Options{Output: &bytes.Buffer{}, File: path, NoColors: true})
	require.NoError(t, err)

	logger.Info("to file")
	assert.FileExists(t, path)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := logrus.New()
	assert.Same(t, l, OrDiscard(l))
}
