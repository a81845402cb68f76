package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "comic_translator.log")

	logger, closer, err := New(Config{Level: "debug", File: path})
	require.NoError(t, err)
	logger.WithFields(logrus.Fields{"stage": "download", "page": "p1"}).Info("Downloaded page")
	logger.Debug("details")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `msg="Downloaded page"`)
	assert.Contains(t, out, "stage=download")
	assert.Contains(t, out, "page=p1")
	assert.Contains(t, out, "level=debug")
	assert.Regexp(t, `time="\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}"`, out)
}

func TestNewAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	for _, msg := range []string{"first", "second"} {
		logger, closer, err := New(Config{File: path})
		require.NoError(t, err)
		logger.Info(msg)
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=first")
	assert.Contains(t, string(data), "msg=second")
}

func TestNewLevels(t *testing.T) {
	logger, closer, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.NoError(t, closer.Close())

	_, _, err = New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}
