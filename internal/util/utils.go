package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
)

const appDirName = "sqltutor"

// GetAbsolutePath expands a leading ~ and makes path absolute. Symlinks are
// resolved when the target exists; a missing path is returned as is.
func GetAbsolutePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(i18n.T("util_error_path_is_empty"))
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New(i18n.T("util_error_resolve_home_directory"))
		}
		path = filepath.Join(home, path[1:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(i18n.T("util_error_get_absolute_path"))
	}
	switch resolved, err := filepath.EvalSymlinks(abs); {
	case err == nil:
		return resolved, nil
	case errors.Is(err, fs.ErrNotExist):
		return abs, nil
	default:
		return "", fmt.Errorf(i18n.T("util_error_resolve_symlinks"), err)
	}
}

// ConfigDir returns ~/.config/sqltutor (or the platform equivalent).
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf(i18n.T("util_error_determine_config_directory"), err)
	}
	return filepath.Join(configDir, appDirName), nil
}

// GetDefaultConfigPath returns the default path for the configuration file
// if it exists, otherwise returns an empty string.
func GetDefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	defaultConfigPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(defaultConfigPath); err != nil {
		if os.IsNotExist(err) {
			return "", nil // Return no error for non-existent config path
		}
		return "", fmt.Errorf(i18n.T("util_error_accessing_config_path"), err)
	}
	return defaultConfigPath, nil
}

// EnsureDir creates dir (and parents) when missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
