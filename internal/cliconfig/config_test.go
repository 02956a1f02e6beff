package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "montu.yaml")
	content := "dir: /data/store\nlock_timeout: 2s\npipeline_budget: 5000\nverbose: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/store", cfg.Dir)
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
	assert.Equal(t, 5000, cfg.PipelineBudget)
	assert.True(t, cfg.Verbose)
}

func TestLoad_ExplicitMissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIO)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "montu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\t bad"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, core.ErrIO)
}
