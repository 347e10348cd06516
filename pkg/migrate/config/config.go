package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/baderkha/dbporter/pkg/conditional"
	"github.com/baderkha/dbporter/pkg/migrate/config/sourcecfg"
	"github.com/baderkha/dbporter/pkg/migrate/config/targetcfg"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

const (
	// DefaultBatchRecordSize : rows per insert batch when the job does not say
	DefaultBatchRecordSize = 5000
	// CheckpointFileName : well known name of the checkpoint in the temp dir
	CheckpointFileName = "DBPORTER_MIGRATION_CHECKPOINT"

	CheckpointBackendFile   = "file"
	CheckpointBackendSqlite = "sqlite"
)

// CheckpointOptions : where completed units are remembered between runs
type CheckpointOptions struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// Config : configuration for the job
type Config struct {
	RootDir         string                `json:"root_dir"`
	BatchRecordSize int                   `json:"max_batch_record_size"`
	Destination     targetcfg.Destination `json:"destination"`
	Sources         []sourcecfg.Source    `json:"sources"`
	Orders          []Order               `json:"orders"`
	Truncates       *[]string             `json:"truncates"`
	Initials        []string              `json:"initials"`
	Checkpoint      CheckpointOptions     `json:"checkpoint"`
	ScriptsS3       *targetcfg.S3Options  `json:"scripts_s3"`
}

// Read : decodes a job document and fills in defaults
func Read(fs afero.Fs, path string) (Config, error) {
	var cfg Config
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("config : could not read %s : %w", path, err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config : could not decode %s : %w", path, err)
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

// ApplyDefaults : fills zero valued knobs
func (c *Config) ApplyDefaults() {
	c.BatchRecordSize = conditional.Ternary(c.BatchRecordSize > 0, c.BatchRecordSize, DefaultBatchRecordSize)
	c.Checkpoint.Backend = conditional.Coalesce(c.Checkpoint.Backend, CheckpointBackendFile)
	c.Checkpoint.Path = conditional.Coalesce(c.Checkpoint.Path, filepath.Join(os.TempDir(), CheckpointFileName))
	c.RootDir = conditional.Coalesce(c.RootDir, ".")
}

// Validate : reports every problem in the job at once
func (c *Config) Validate() error {
	var finalErr error
	if c.Destination.Name == "" {
		finalErr = multierror.Append(finalErr, fmt.Errorf("destination : name is required"))
	}
	if c.Destination.URL == "" || c.Destination.Driver == "" {
		finalErr = multierror.Append(finalErr, fmt.Errorf("destination : driver and url are required"))
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.Name == "" {
			finalErr = multierror.Append(finalErr, fmt.Errorf("sources[%d] : name is required", i))
			continue
		}
		if seen[s.Name] {
			finalErr = multierror.Append(finalErr, fmt.Errorf("sources[%d] : duplicate name %s", i, s.Name))
		}
		if s.Name == c.Destination.Name {
			finalErr = multierror.Append(finalErr, fmt.Errorf("sources[%d] : name %s clashes with the destination", i, s.Name))
		}
		if s.IsRelational() && s.Driver == "" {
			finalErr = multierror.Append(finalErr, fmt.Errorf("sources[%d] : %s has a url but no driver", i, s.Name))
		}
		seen[s.Name] = true
	}
	for i, o := range c.Orders {
		if o.Table == "" {
			finalErr = multierror.Append(finalErr, fmt.Errorf("orders[%d] : table is required", i))
		}
		for _, key := range []string{OptBeforeScript, OptAfterScript, OptBeforeInsert} {
			if v, ok := o.Options[key]; ok {
				if _, isString := v.(string); !isString {
					finalErr = multierror.Append(finalErr, fmt.Errorf("orders[%d] : option %s must be a string", i, key))
				}
			}
		}
	}
	switch c.Checkpoint.Backend {
	case CheckpointBackendFile, CheckpointBackendSqlite:
	default:
		finalErr = multierror.Append(finalErr, fmt.Errorf("checkpoint : unknown backend %s", c.Checkpoint.Backend))
	}
	return finalErr
}

// TruncateList : the explicit truncate list and whether the job supplied one
func (c *Config) TruncateList() ([]string, bool) {
	if c.Truncates == nil {
		return nil, false
	}
	return *c.Truncates, true
}
