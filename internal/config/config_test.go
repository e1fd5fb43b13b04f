package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
	"version": "1.0.0",
	"clean_data": {"input": "raw.csv", "output": "clean.csv"},
	"split_dataset": {"dataset_path": "clean.csv", "n_chunks": 3, "output_dir": "chunks"},
	"mapping": {"rml_path": "mapper.rml.ttl", "output_path": "rdf", "mapper_path": "rmlmapper.jar"},
	"upload_to_graphDB": {"graphDB_url": "http://localhost:7200", "graphDB_repo": "sensors"}
}`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", validJSON)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.CleanData)
	require.NotNil(t, cfg.SplitDataset)
	require.NotNil(t, cfg.Mapping)
	require.NotNil(t, cfg.UploadToGraphDB)

	assert.Equal(t, 3, cfg.SplitDataset.NChunks)
	assert.Equal(t, "http://localhost:7200", cfg.UploadToGraphDB.GraphDBURL)
	assert.Equal(t, "sensors", cfg.UploadToGraphDB.GraphDBRepo)

	// Relative paths resolve against the config file's directory.
	base := filepath.Dir(path)
	assert.Equal(t, filepath.Join(base, "raw.csv"), cfg.CleanData.Input)
	assert.Equal(t, filepath.Join(base, "chunks"), cfg.SplitDataset.OutputDir)
	assert.Equal(t, filepath.Join(base, "rmlmapper.jar"), cfg.Mapping.MapperPath)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
clean_data:
  input: raw.csv
  output: clean.csv
split_dataset:
  dataset_path: clean.csv
  n_chunks: 5
  output_dir: chunks
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.SplitDataset)
	assert.Equal(t, 5, cfg.SplitDataset.NChunks)
	assert.Nil(t, cfg.Mapping)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		errMsg string
	}{
		{
			name:   "missing file",
			setup:  func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") },
			errMsg: "config file",
		},
		{
			name:   "directory instead of file",
			setup:  func(t *testing.T) string { return t.TempDir() },
			errMsg: "is a directory",
		},
		{
			name:   "malformed JSON",
			setup:  func(t *testing.T) string { return writeConfig(t, "bad.json", "{not json") },
			errMsg: "parsing JSON config",
		},
		{
			name:   "malformed YAML",
			setup:  func(t *testing.T) string { return writeConfig(t, "bad.yaml", "\tbad: [") },
			errMsg: "parsing YAML config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.setup(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_PerStage(t *testing.T) {
	full := func() *Config {
		return &Config{
			CleanData:       &CleanData{Input: "a", Output: "b"},
			SplitDataset:    &SplitDataset{DatasetPath: "b", NChunks: 2, OutputDir: "d"},
			Mapping:         &Mapping{RMLPath: "r", OutputPath: "o", MapperPath: "m"},
			UploadToGraphDB: &UploadToGraphDB{GraphDBURL: "http://host:7200", GraphDBRepo: "repo"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		stages  Stages
		wantErr string
	}{
		{
			name:   "all stages valid",
			mutate: func(*Config) {},
			stages: All(),
		},
		{
			name:    "clean selected without section",
			mutate:  func(c *Config) { c.CleanData = nil },
			stages:  Stages{Clean: true},
			wantErr: "no clean_data section",
		},
		{
			name:   "missing clean section ignored when stage unselected",
			mutate: func(c *Config) { c.CleanData = nil },
			stages: Stages{Split: true},
		},
		{
			name:    "empty clean output",
			mutate:  func(c *Config) { c.CleanData.Output = "" },
			stages:  Stages{Clean: true},
			wantErr: "clean_data.output",
		},
		{
			name:    "zero chunk count",
			mutate:  func(c *Config) { c.SplitDataset.NChunks = 0 },
			stages:  Stages{Split: true},
			wantErr: "n_chunks must be >= 1",
		},
		{
			name:    "negative chunk count",
			mutate:  func(c *Config) { c.SplitDataset.NChunks = -3 },
			stages:  Stages{Split: true},
			wantErr: "n_chunks must be >= 1",
		},
		{
			name:    "map needs chunk directory",
			mutate:  func(c *Config) { c.SplitDataset = nil },
			stages:  Stages{Map: true},
			wantErr: "split_dataset.output_dir",
		},
		{
			name:    "map needs mapper path",
			mutate:  func(c *Config) { c.Mapping.MapperPath = "" },
			stages:  Stages{Map: true},
			wantErr: "mapping.mapper_path",
		},
		{
			name:    "upload needs mapping output",
			mutate:  func(c *Config) { c.Mapping = nil },
			stages:  Stages{Upload: true},
			wantErr: "mapping.output_path",
		},
		{
			name:    "upload rejects non-http URL",
			mutate:  func(c *Config) { c.UploadToGraphDB.GraphDBURL = "localhost:7200" },
			stages:  Stages{Upload: true},
			wantErr: "must be an http(s) URL",
		},
		{
			name:    "upload needs repository",
			mutate:  func(c *Config) { c.UploadToGraphDB.GraphDBRepo = "" },
			stages:  Stages{Upload: true},
			wantErr: "graphDB_repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full()
			tt.mutate(cfg)
			err := cfg.Validate(tt.stages)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Version(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr string
	}{
		{name: "absent version accepted", version: ""},
		{name: "supported version", version: "1.2.3"},
		{name: "unsupported major", version: "2.0.0", wantErr: "outside the supported range"},
		{name: "garbage version", version: "not-a-version", wantErr: "not a valid semantic version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Version: tt.version}
			err := cfg.Validate(Stages{})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStages(t *testing.T) {
	assert.False(t, Stages{}.Any())
	assert.True(t, Stages{Upload: true}.Any())
	assert.Equal(t, Stages{Clean: true, Split: true, Map: true, Upload: true}, All())
}
