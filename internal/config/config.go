// Package config resolves sqltutor settings from defaults, the YAML config
// file, a .env file and SQLTUTOR_* environment variables, in increasing order
// of precedence. Command-line flags are applied on top by the cli package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/util"
)

const envPrefix = "SQLTUTOR_"

type Config struct {
	APIURL             string        `yaml:"api_url"`
	Listen             string        `yaml:"listen"`
	DataDir            string        `yaml:"data_dir"`
	DraftDelay         time.Duration `yaml:"draft_delay"`
	FlushDraftsOnLeave bool          `yaml:"flush_drafts_on_leave"`
	Timeout            time.Duration `yaml:"timeout"`
	Language           string        `yaml:"language"`
	Debug              int           `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		APIURL:     "http://localhost:8000/api",
		Listen:     "127.0.0.1:3000",
		DraftDelay: 500 * time.Millisecond,
		Timeout:    30 * time.Second,
		Language:   "en",
	}
}

// Load builds the configuration. An empty path means the default
// ~/.config/sqltutor/config.yaml, which may be absent.
func Load(path string) (ret *Config, err error) {
	ret = Default()

	var configDir string
	if configDir, err = util.ConfigDir(); err != nil {
		return
	}

	if path == "" {
		if path, err = util.GetDefaultConfigPath(); err != nil {
			return
		}
	} else if path, err = util.GetAbsolutePath(path); err != nil {
		return
	}

	if path != "" {
		if err = ret.loadFile(path); err != nil {
			return
		}
	}

	envFile := filepath.Join(configDir, ".env")
	if loadErr := godotenv.Load(envFile); loadErr != nil && !os.IsNotExist(loadErr) {
		debuglog.Log("could not load %s: %v\n", envFile, loadErr)
	}
	if err = ret.applyEnv(); err != nil {
		return
	}

	if ret.DataDir == "" {
		ret.DataDir = configDir
	} else if ret.DataDir, err = util.GetAbsolutePath(ret.DataDir); err != nil {
		return
	}

	err = ret.Validate()
	return
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf(i18n.T("config_error_read_file"), path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf(i18n.T("config_error_parse_file"), path, err)
	}
	return nil
}

func (c *Config) applyEnv() (err error) {
	c.APIURL = getEnv("API_URL", c.APIURL)
	c.Listen = getEnv("LISTEN", c.Listen)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.Language = getEnv("LANGUAGE", c.Language)
	c.Debug = getEnvAsInt("DEBUG", c.Debug)
	c.FlushDraftsOnLeave = getEnvAsBool("FLUSH_DRAFTS_ON_LEAVE", c.FlushDraftsOnLeave)
	if c.DraftDelay, err = getEnvAsDuration("DRAFT_DELAY", c.DraftDelay); err != nil {
		return
	}
	c.Timeout, err = getEnvAsDuration("TIMEOUT", c.Timeout)
	return
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("%s", i18n.T("config_error_api_url_required"))
	}
	if c.DraftDelay <= 0 {
		return fmt.Errorf(i18n.T("config_error_positive_duration"), "draft_delay")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf(i18n.T("config_error_positive_duration"), "timeout")
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return nil
}

// StoragePath is the SQLite file holding credentials and drafts.
func (c *Config) StoragePath() string {
	return filepath.Join(c.DataDir, "storage.db")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(envPrefix + key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf(i18n.T("config_error_invalid_duration"), envPrefix+key, err)
	}
	return d, nil
}
