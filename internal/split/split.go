// Package split implements the Partitioner stage: slicing a cleaned
// dataset into N contiguous chunk files of near-equal size.
package split

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/graphetl/rdfpipe/internal/dataset"
	"github.com/graphetl/rdfpipe/internal/logging"
)

// chunkFilePattern yields names that sort lexically in chunk order.
const chunkFilePattern = "data_chunk_%04d.csv"

// ChunkFileName returns the deterministic file name for chunk index i.
func ChunkFileName(i int) string {
	return fmt.Sprintf(chunkFilePattern, i)
}

// ChunkSizes distributes r rows over n chunks. Every chunk receives
// floor(r/n) rows and the first r%n chunks receive one extra row, so sizes
// are non-increasing across chunk order and sum to r.
func ChunkSizes(r, n int) []int {
	base := r / n
	extra := r % n

	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}

// SplitFile reads the dataset at datasetPath and writes nChunks chunk files
// into outputDir, creating the directory if absent. Pre-existing files in
// outputDir are left alone. No chunk file is written unless the chunk count
// is valid for the dataset's row count. It returns the chunk sizes written,
// in chunk order.
func SplitFile(ctx context.Context, datasetPath string, nChunks int, outputDir string) ([]int, error) {
	log := logging.FromContext(ctx)
	log.Info().
		Str("component", "split").
		Str("operation", "split_file").
		Str("dataset", datasetPath).
		Int("n_chunks", nChunks).
		Str("output_dir", outputDir).
		Msg("splitting dataset")

	if nChunks < 1 {
		return nil, fmt.Errorf("chunk count must be >= 1, got %d", nChunks)
	}

	table, err := dataset.ReadFile(datasetPath)
	if err != nil {
		return nil, err
	}

	r := table.NumRows()
	if nChunks > r {
		return nil, fmt.Errorf("chunk count %d exceeds dataset row count %d in %s", nChunks, r, datasetPath)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating chunk directory %s: %w", outputDir, err)
	}

	sizes := ChunkSizes(r, nChunks)
	start := 0
	for i, size := range sizes {
		chunk := table.Slice(start, start+size)
		path := filepath.Join(outputDir, ChunkFileName(i))
		if err := dataset.WriteFile(chunk, path); err != nil {
			return nil, err
		}

		log.Debug().
			Str("component", "split").
			Int("chunk", i).
			Int("rows", size).
			Str("path", path).
			Msg("chunk written")

		start += size
	}

	log.Info().
		Str("component", "split").
		Int("chunks", nChunks).
		Int("rows", r).
		Msg("dataset split")

	return sizes, nil
}
