package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/types"
)

type arbiterFile struct {
	BindAddr string `yaml:"bind_addr"`
	DataDir  string `yaml:"data_dir"`
	Sys      struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"sys"`
}

// LoadArbiterConfig reads path and applies any ARBITER_/SYS_ environment
// overrides, then returns the resolved types.ArbiterConfig.
func LoadArbiterConfig(path string) (*types.ArbiterConfig, error) {
	var f arbiterFile
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, "LoadArbiterConfig", err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, "LoadArbiterConfig", err)
		}
	}

	cfg := &types.ArbiterConfig{
		BindAddr: f.BindAddr,
		DataDir:  f.DataDir,
		LogLevel: f.Sys.LogLevel,
	}

	applyStringOverride("ARBITER_BIND_ADDR", &cfg.BindAddr)
	applyStringOverride("ARBITER_DATA_DIR", &cfg.DataDir)
	applyStringOverride("SYS_LOG_LEVEL", &cfg.LogLevel)

	if cfg.BindAddr == "" {
		cfg.BindAddr = "0.0.0.0:7070"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
