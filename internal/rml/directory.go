package rml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/graphetl/rdfpipe/internal/logging"
)

// OutputFileName returns the RDF output name for chunk index i under a
// single ruleset.
func OutputFileName(i int) string {
	return fmt.Sprintf("output_%d.ttl", i)
}

// outputFileNameMulti returns the RDF output name for chunk i mapped under
// ruleset j when the ruleset path is a directory.
func outputFileNameMulti(i, j int) string {
	return fmt.Sprintf("output_%d_%d.ttl", i, j)
}

// MapDirectory applies the ruleset at rulesetPath to every chunk file in
// chunkDir, writing one RDF file per (chunk, ruleset) pair into outputDir.
// rulesetPath may be a single file or a directory of ruleset files.
//
// Chunks are processed one at a time in sorted name order. A failed chunk
// is recorded and the remaining chunks still run; the returned error joins
// every per-chunk failure. It returns the number of RDF files produced.
func MapDirectory(ctx context.Context, mapper Mapper, chunkDir, rulesetPath, outputDir string) (int, error) {
	log := logging.FromContext(ctx)

	chunks, err := sortedFiles(chunkDir)
	if err != nil {
		return 0, fmt.Errorf("reading chunk directory %s: %w", chunkDir, err)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("chunk directory %s contains no files", chunkDir)
	}

	rulesets, singleRuleset, err := resolveRulesets(rulesetPath)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating RDF output directory %s: %w", outputDir, err)
	}

	mapped := 0
	var failures []error
	for i, chunk := range chunks {
		for j, ruleset := range rulesets {
			outName := OutputFileName(i)
			if !singleRuleset {
				outName = outputFileNameMulti(i, j)
			}
			outPath := filepath.Join(outputDir, outName)

			log.Info().
				Str("component", "rml").
				Str("operation", "map_directory").
				Str("chunk", chunk).
				Str("ruleset", ruleset).
				Msg("mapping chunk")

			if err := mapper.Map(ctx, ruleset, chunk, outPath); err != nil {
				log.Error().
					Str("component", "rml").
					Str("chunk", chunk).
					Err(err).
					Msg("mapping failed, continuing with remaining chunks")
				failures = append(failures, err)
				continue
			}
			mapped++
		}
	}

	if len(failures) > 0 {
		return mapped, fmt.Errorf("mapping failed for %d of %d chunks: %w",
			len(failures), len(chunks), errors.Join(failures...))
	}

	return mapped, nil
}

// resolveRulesets expands rulesetPath into the list of ruleset files to
// apply. A plain file yields itself; a directory yields its files in
// sorted order.
func resolveRulesets(rulesetPath string) ([]string, bool, error) {
	info, err := os.Stat(rulesetPath)
	if err != nil {
		return nil, false, fmt.Errorf("ruleset path %s: %w", rulesetPath, err)
	}

	if !info.IsDir() {
		return []string{rulesetPath}, true, nil
	}

	files, err := sortedFiles(rulesetPath)
	if err != nil {
		return nil, false, fmt.Errorf("reading ruleset directory %s: %w", rulesetPath, err)
	}
	if len(files) == 0 {
		return nil, false, fmt.Errorf("ruleset directory %s contains no files", rulesetPath)
	}

	return files, false, nil
}

// sortedFiles lists the regular files in dir as full paths, sorted by name
// for a stable processing order.
func sortedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	return files, nil
}
