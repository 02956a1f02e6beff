// Package cliconfig loads the optional montu.yaml configuration file used by
// the CLI. Flags always win over the file; the file wins over defaults.
package cliconfig

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// DefaultFile is the config filename discovered in the working directory.
const DefaultFile = "montu.yaml"

// Config configures the CLI's connection to a store.
type Config struct {
	Dir            string        `yaml:"dir"`
	LockTimeout    time.Duration `yaml:"lock_timeout"`
	PipelineBudget int           `yaml:"pipeline_budget"`
	Verbose        bool          `yaml:"verbose"`
}

// Load reads a config file. An empty path means discovery: montu.yaml in the
// working directory, missing file is not an error and yields the zero config.
// An explicit path that does not exist is an error.
func Load(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		wd, err := os.Getwd()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(wd, DefaultFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, &core.IOError{Path: path, Op: "read config", Err: err}
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &core.IOError{Path: path, Op: "parse config", Err: err}
	}
	return cfg, nil
}
