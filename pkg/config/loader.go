package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// DefaultPath is consulted when no --config flag is given. A missing file
// there is fine; the defaults apply.
const DefaultPath = "/etc/fwdctl/fwdctl.yaml"

// Load builds the configuration: defaults, overlaid with the yaml file at
// path when it exists. An explicitly requested path that is missing or
// malformed is an error; the default path is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return expandPaths(cfg)
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return expandPaths(cfg)
}

// expandPaths resolves a leading ~ in every configured path.
func expandPaths(cfg Config) (Config, error) {
	for _, p := range []*string{&cfg.RuleFile, &cfg.StateDir, &cfg.LogFile, &cfg.EngineLogFile} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return Config{}, fmt.Errorf("failed to expand path %s: %w", *p, err)
		}
		*p = expanded
	}
	return cfg, nil
}
