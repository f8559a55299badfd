package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/antstudent/dmp"
)

// fileConfig mirrors dmp.Config's tunable fields for YAML overrides loaded
// via --config. Fields are pointers so an absent key in the file leaves the
// corresponding dmp.NewDefaultConfig() value untouched. DiffTimeout is a
// string (e.g. "2s") since yaml.v2 has no special handling for
// time.Duration's underlying int64 and would otherwise reject a duration
// literal like "2s".
type fileConfig struct {
	DiffTimeout          *string  `yaml:"diff_timeout"`
	DiffEditCost         *int     `yaml:"diff_edit_cost"`
	MatchDistance        *int     `yaml:"match_distance"`
	MatchMaxBits         *int     `yaml:"match_max_bits"`
	MatchThreshold       *float64 `yaml:"match_threshold"`
	PatchDeleteThreshold *float64 `yaml:"patch_delete_threshold"`
	PatchMargin          *int     `yaml:"patch_margin"`
}

// loadConfig reads path (if non-empty) as a YAML fileConfig and applies any
// present fields onto dmp.NewDefaultConfig(). An empty path just returns the
// defaults.
func loadConfig(path string) (*dmp.Config, error) {
	config := dmp.NewDefaultConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	if fc.DiffTimeout != nil {
		d, err := time.ParseDuration(*fc.DiffTimeout)
		if err != nil {
			return nil, err
		}
		config.DiffTimeout = d
	}
	if fc.DiffEditCost != nil {
		config.DiffEditCost = *fc.DiffEditCost
	}
	if fc.MatchDistance != nil {
		config.MatchDistance = *fc.MatchDistance
	}
	if fc.MatchMaxBits != nil {
		config.MatchMaxBits = *fc.MatchMaxBits
	}
	if fc.MatchThreshold != nil {
		config.MatchThreshold = *fc.MatchThreshold
	}
	if fc.PatchDeleteThreshold != nil {
		config.PatchDeleteThreshold = *fc.PatchDeleteThreshold
	}
	if fc.PatchMargin != nil {
		config.PatchMargin = *fc.PatchMargin
	}
	return config, nil
}
