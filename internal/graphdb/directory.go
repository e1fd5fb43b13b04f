package graphdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/graphetl/rdfpipe/internal/logging"
)

// UploadDirectory uploads every RDF file under rdfPath in sorted name
// order, one at a time. rdfPath may also name a single file. A failed
// upload is recorded and the remaining files still go out; successful
// uploads are never retracted. The returned error joins every per-file
// failure. It returns the number of files uploaded successfully.
func UploadDirectory(ctx context.Context, uploader Uploader, rdfPath string) (int, error) {
	log := logging.FromContext(ctx)

	files, err := rdfFiles(rdfPath)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("RDF path %s contains no files", rdfPath)
	}

	uploaded := 0
	var failures []error
	for _, file := range files {
		if err := uploader.Upload(ctx, file); err != nil {
			log.Error().
				Str("component", "graphdb").
				Str("file", file).
				Err(err).
				Msg("upload failed, continuing with remaining files")
			failures = append(failures, err)
			continue
		}
		uploaded++
	}

	if len(failures) > 0 {
		return uploaded, fmt.Errorf("upload failed for %d of %d RDF files: %w",
			len(failures), len(files), errors.Join(failures...))
	}

	return uploaded, nil
}

// rdfFiles expands rdfPath into the files to upload: the path itself if it
// is a regular file, otherwise the directory's files sorted by name.
func rdfFiles(rdfPath string) ([]string, error) {
	info, err := os.Stat(rdfPath)
	if err != nil {
		return nil, fmt.Errorf("RDF path %s: %w", rdfPath, err)
	}

	if !info.IsDir() {
		return []string{rdfPath}, nil
	}

	entries, err := os.ReadDir(rdfPath)
	if err != nil {
		return nil, fmt.Errorf("reading RDF directory %s: %w", rdfPath, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(rdfPath, e.Name()))
	}
	sort.Strings(files)

	return files, nil
}
