package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAbsolutePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := GetAbsolutePath("")
	assert.Error(t, err)

	got, err := GetAbsolutePath("~/problems/metadata.json")
	require.NoError(t, err)
	resolvedHome, err := filepath.EvalSymlinks(home)
	require.NoError(t, err)
	assert.Contains(t, []string{
		filepath.Join(home, "problems", "metadata.json"),
		filepath.Join(resolvedHome, "problems", "metadata.json"),
	}, got)

	got, err = GetAbsolutePath("~backup")
	require.NoError(t, err)
	assert.Equal(t, "~backup", filepath.Base(got), "only ~ and ~/ expand to the home directory")
}

func TestGetDefaultConfigPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)

	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Empty(t, path, "missing config file must not be an error")

	dir, err := ConfigDir()
	require.NoError(t, err)
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: x\n"), 0o644))

	path, err = GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), path)
}
