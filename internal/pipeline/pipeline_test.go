package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphetl/rdfpipe/internal/config"
	"github.com/graphetl/rdfpipe/internal/dataset"
)

// fakeMapper writes a trivial RDF document per call and records the chunk
// paths it saw.
type fakeMapper struct {
	inputs []string
	err    error
}

func (m *fakeMapper) Map(_ context.Context, _, inputPath, outputPath string) error {
	m.inputs = append(m.inputs, inputPath)
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(outputPath, []byte("<http://x/s> <http://x/p> <http://x/o> .\n"), 0o600)
}

// fakeUploader records uploaded file names.
type fakeUploader struct {
	uploads []string
}

func (u *fakeUploader) Upload(_ context.Context, rdfPath string) error {
	u.uploads = append(u.uploads, filepath.Base(rdfPath))
	return nil
}

// testConfig builds a full config rooted in dir and writes a 9-row raw
// dataset with a MM/DD/YYYY date column.
func testConfig(t *testing.T, dir string, nChunks int) *config.Config {
	t.Helper()

	var b strings.Builder
	b.WriteString("id,data_rilevazione,unit\n")
	for i := 0; i < 9; i++ {
		fmt.Fprintf(&b, "%d,03/%02d/2024,-\n", i, i+1)
	}
	input := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(input, []byte(b.String()), 0o600))

	cleaned := filepath.Join(dir, "clean.csv")
	return &config.Config{
		CleanData: &config.CleanData{Input: input, Output: cleaned},
		SplitDataset: &config.SplitDataset{
			DatasetPath: cleaned,
			NChunks:     nChunks,
			OutputDir:   filepath.Join(dir, "chunks"),
		},
		Mapping: &config.Mapping{
			RMLPath:    writeFile(t, dir, "mapper.rml.ttl", "rules {csv_file_path}"),
			OutputPath: filepath.Join(dir, "rdf"),
			MapperPath: "/opt/rmlmapper.jar",
		},
		UploadToGraphDB: &config.UploadToGraphDB{
			GraphDBURL:  "http://localhost:7200",
			GraphDBRepo: "sensors",
		},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunner_EndToEnd(t *testing.T) {
	// The spec's end-to-end scenario: 9 rows, cleaned then split into 3
	// chunks of 3 rows, mapped and uploaded one file per chunk.
	dir := t.TempDir()
	cfg := testConfig(t, dir, 3)

	mapper := &fakeMapper{}
	uploader := &fakeUploader{}
	runner := NewWithCollaborators(cfg, mapper, uploader)

	summary, err := runner.Run(context.Background(), config.All())
	require.NoError(t, err)

	assert.Equal(t, []string{"clean", "split", "map", "upload"}, summary.StagesRun)
	assert.Equal(t, 9, summary.RowsCleaned)
	assert.Equal(t, []int{3, 3, 3}, summary.ChunkSizes)
	assert.Equal(t, 3, summary.FilesMapped)
	assert.Equal(t, 3, summary.FilesUploaded)
	assert.NotEmpty(t, summary.RunID)

	// Every chunk's dates are canonical and concatenating chunks in order
	// reproduces the cleaned dataset exactly.
	cleaned, err := dataset.ReadFile(cfg.CleanData.Output)
	require.NoError(t, err)

	var rejoined [][]string
	for i := 0; i < 3; i++ {
		chunk, err := dataset.ReadFile(filepath.Join(cfg.SplitDataset.OutputDir,
			fmt.Sprintf("data_chunk_%04d.csv", i)))
		require.NoError(t, err)
		require.Len(t, chunk.Rows, 3)
		for _, row := range chunk.Rows {
			assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, row[1])
		}
		rejoined = append(rejoined, chunk.Rows...)
	}
	assert.Equal(t, cleaned.Rows, rejoined)

	assert.Equal(t, []string{"output_0.ttl", "output_1.ttl", "output_2.ttl"}, uploader.uploads)
}

func TestRunner_StageSubsets(t *testing.T) {
	tests := []struct {
		name       string
		stages     config.Stages
		wantStages []string
	}{
		{name: "clean only", stages: config.Stages{Clean: true}, wantStages: []string{"clean"}},
		{
			name:       "clean and split",
			stages:     config.Stages{Clean: true, Split: true},
			wantStages: []string{"clean", "split"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := testConfig(t, dir, 3)

			runner := NewWithCollaborators(cfg, &fakeMapper{}, &fakeUploader{})
			summary, err := runner.Run(context.Background(), tt.stages)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStages, summary.StagesRun)
		})
	}
}

func TestRunner_ValidationFailsBeforeStageWork(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, 3)
	cfg.SplitDataset.NChunks = 0

	mapper := &fakeMapper{}
	runner := NewWithCollaborators(cfg, mapper, &fakeUploader{})

	summary, err := runner.Run(context.Background(), config.All())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Empty(t, summary.StagesRun)
	assert.Empty(t, mapper.inputs, "no collaborator may run on invalid config")

	// Even the clean stage, whose own config is fine, must not have run.
	_, statErr := os.Stat(cfg.CleanData.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunner_StopsAtFirstFatalStage(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, 20) // more chunks than rows: split fails

	mapper := &fakeMapper{}
	uploader := &fakeUploader{}
	runner := NewWithCollaborators(cfg, mapper, uploader)

	summary, err := runner.Run(context.Background(), config.All())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "split stage")
	assert.Equal(t, []string{"clean"}, summary.StagesRun, "completed stages stay completed")
	assert.Empty(t, mapper.inputs)
	assert.Empty(t, uploader.uploads)
}

func TestRunner_MapFailureStillReportsMappedCount(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, 3)

	runner := NewWithCollaborators(cfg, &fakeMapper{err: assert.AnError}, &fakeUploader{})
	summary, err := runner.Run(context.Background(),
		config.Stages{Clean: true, Split: true, Map: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "map stage")
	assert.Equal(t, 0, summary.FilesMapped)
	assert.Equal(t, []string{"clean", "split"}, summary.StagesRun)
}

func TestSummary_String(t *testing.T) {
	s := &Summary{
		RunID:       "01J8TESTRUNID",
		StagesRun:   []string{"clean", "split"},
		RowsCleaned: 1234567,
		ChunkSizes:  []int{3, 3, 3},
	}

	out := s.String()
	assert.Contains(t, out, "01J8TESTRUNID")
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "3 chunks")
}

func TestSummary_String_NoStages(t *testing.T) {
	s := &Summary{RunID: "01J8TESTRUNID"}
	assert.Contains(t, s.String(), "no stages completed")
}
