// Package config defines the pipeline configuration document and its
// validation rules. The document is loaded once at process start and is
// read-only afterwards; every field a selected stage needs is checked
// eagerly at load time so a missing key fails before any stage work begins.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// supportedVersions is the semver range of configuration documents this
// binary understands. The version field is optional; absent means pre-1.0
// documents written before the field existed.
const supportedVersions = "^1"

// Stages records which pipeline stages a run has selected. Validation only
// checks the sections that selected stages actually need.
type Stages struct {
	Clean  bool
	Split  bool
	Map    bool
	Upload bool
}

// Any reports whether at least one stage is selected.
func (s Stages) Any() bool {
	return s.Clean || s.Split || s.Map || s.Upload
}

// All returns a Stages value with every stage selected.
func All() Stages {
	return Stages{Clean: true, Split: true, Map: true, Upload: true}
}

// CleanData holds the Cleaner stage paths.
type CleanData struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// SplitDataset holds the Partitioner stage parameters.
type SplitDataset struct {
	DatasetPath string `json:"dataset_path" yaml:"dataset_path"`
	NChunks     int    `json:"n_chunks" yaml:"n_chunks"`
	OutputDir   string `json:"output_dir" yaml:"output_dir"`
}

// Mapping holds the external RML mapper invocation parameters. RMLPath may
// be a single ruleset file or a directory of rulesets.
type Mapping struct {
	RMLPath    string `json:"rml_path" yaml:"rml_path"`
	OutputPath string `json:"output_path" yaml:"output_path"`
	MapperPath string `json:"mapper_path" yaml:"mapper_path"`
}

// UploadToGraphDB holds the triple-store upload parameters.
type UploadToGraphDB struct {
	GraphDBURL  string `json:"graphDB_url" yaml:"graphDB_url"`
	GraphDBRepo string `json:"graphDB_repo" yaml:"graphDB_repo"`
}

// CleanRules carries optional operator overrides for the Cleaner's lookup
// tables. Empty fields fall back to the package defaults in internal/clean.
type CleanRules struct {
	DateColumns    []string          `json:"date_columns" yaml:"date_columns"`
	DateLayouts    []string          `json:"date_layouts" yaml:"date_layouts"`
	UnitColumn     string            `json:"unit_column" yaml:"unit_column"`
	NoUnitMarkers  []string          `json:"no_unit_markers" yaml:"no_unit_markers"`
	QualityColumn  string            `json:"quality_column" yaml:"quality_column"`
	QualityLabels  map[string]string `json:"quality_labels" yaml:"quality_labels"`
	PropertyColumn string            `json:"property_column" yaml:"property_column"`
	PropertySource string            `json:"property_source" yaml:"property_source"`
}

// Config is the top-level pipeline configuration document.
type Config struct {
	Version         string           `json:"version" yaml:"version"`
	CleanData       *CleanData       `json:"clean_data" yaml:"clean_data"`
	SplitDataset    *SplitDataset    `json:"split_dataset" yaml:"split_dataset"`
	Mapping         *Mapping         `json:"mapping" yaml:"mapping"`
	UploadToGraphDB *UploadToGraphDB `json:"upload_to_graphDB" yaml:"upload_to_graphDB"`
	CleanRules      *CleanRules      `json:"clean_rules" yaml:"clean_rules"`
}

// Validate checks the configuration against the selected stages. It returns
// the first problem found, always naming the section and field at fault.
func (c *Config) Validate(stages Stages) error {
	if err := c.validateVersion(); err != nil {
		return err
	}

	if stages.Clean {
		if err := c.validateClean(); err != nil {
			return err
		}
	}
	if stages.Split {
		if err := c.validateSplit(); err != nil {
			return err
		}
	}
	if stages.Map {
		if err := c.validateMapping(); err != nil {
			return err
		}
	}
	if stages.Upload {
		if err := c.validateUpload(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateVersion() error {
	if c.Version == "" {
		return nil
	}

	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("config version %q is not a valid semantic version: %w", c.Version, err)
	}

	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return fmt.Errorf("parsing supported version range: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("config version %s is outside the supported range %s", c.Version, supportedVersions)
	}

	return nil
}

func (c *Config) validateClean() error {
	if c.CleanData == nil {
		return errors.New("clean stage selected but config has no clean_data section")
	}
	if c.CleanData.Input == "" {
		return errors.New("clean_data.input must not be empty")
	}
	if c.CleanData.Output == "" {
		return errors.New("clean_data.output must not be empty")
	}
	return nil
}

func (c *Config) validateSplit() error {
	if c.SplitDataset == nil {
		return errors.New("split stage selected but config has no split_dataset section")
	}
	if c.SplitDataset.DatasetPath == "" {
		return errors.New("split_dataset.dataset_path must not be empty")
	}
	if c.SplitDataset.NChunks < 1 {
		return fmt.Errorf("split_dataset.n_chunks must be >= 1, got %d", c.SplitDataset.NChunks)
	}
	if c.SplitDataset.OutputDir == "" {
		return errors.New("split_dataset.output_dir must not be empty")
	}
	return nil
}

func (c *Config) validateMapping() error {
	if c.Mapping == nil {
		return errors.New("map stage selected but config has no mapping section")
	}
	// The map stage reads the Partitioner's output directory.
	if c.SplitDataset == nil || c.SplitDataset.OutputDir == "" {
		return errors.New("map stage selected but split_dataset.output_dir is not set")
	}
	if c.Mapping.RMLPath == "" {
		return errors.New("mapping.rml_path must not be empty")
	}
	if c.Mapping.OutputPath == "" {
		return errors.New("mapping.output_path must not be empty")
	}
	if c.Mapping.MapperPath == "" {
		return errors.New("mapping.mapper_path must not be empty")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.UploadToGraphDB == nil {
		return errors.New("upload stage selected but config has no upload_to_graphDB section")
	}
	// The upload stage reads the Mapper's output directory.
	if c.Mapping == nil || c.Mapping.OutputPath == "" {
		return errors.New("upload stage selected but mapping.output_path is not set")
	}
	if c.UploadToGraphDB.GraphDBURL == "" {
		return errors.New("upload_to_graphDB.graphDB_url must not be empty")
	}
	if !strings.HasPrefix(c.UploadToGraphDB.GraphDBURL, "http://") &&
		!strings.HasPrefix(c.UploadToGraphDB.GraphDBURL, "https://") {
		return fmt.Errorf("upload_to_graphDB.graphDB_url %q must be an http(s) URL", c.UploadToGraphDB.GraphDBURL)
	}
	if c.UploadToGraphDB.GraphDBRepo == "" {
		return errors.New("upload_to_graphDB.graphDB_repo must not be empty")
	}
	return nil
}

// ChunkDir returns the directory the Mapper should read chunk files from.
// The mapping stage always consumes the Partitioner's output directory.
func (c *Config) ChunkDir() string {
	if c.SplitDataset == nil {
		return ""
	}
	return c.SplitDataset.OutputDir
}

// resolvePath makes relative config paths absolute against the directory
// containing the config file, so a run behaves the same from any cwd.
func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// resolvePaths rewrites every path field relative to the config file's
// directory.
func (c *Config) resolvePaths(configPath string) {
	base := filepath.Dir(configPath)

	if c.CleanData != nil {
		c.CleanData.Input = resolvePath(base, c.CleanData.Input)
		c.CleanData.Output = resolvePath(base, c.CleanData.Output)
	}
	if c.SplitDataset != nil {
		c.SplitDataset.DatasetPath = resolvePath(base, c.SplitDataset.DatasetPath)
		c.SplitDataset.OutputDir = resolvePath(base, c.SplitDataset.OutputDir)
	}
	if c.Mapping != nil {
		c.Mapping.RMLPath = resolvePath(base, c.Mapping.RMLPath)
		c.Mapping.OutputPath = resolvePath(base, c.Mapping.OutputPath)
		c.Mapping.MapperPath = resolvePath(base, c.Mapping.MapperPath)
	}
}

// statConfigFile verifies the config path exists before parsing so the
// error message distinguishes "missing file" from "bad syntax".
func statConfigFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config file %s is a directory", path)
	}
	return nil
}
