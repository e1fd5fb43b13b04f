// Package graphdb transmits RDF documents into a GraphDB-compatible triple
// store over the repository statements endpoint. Each document is one POST;
// the store merges the triples into the named repository.
package graphdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"

	"github.com/graphetl/rdfpipe/internal/logging"
)

// Uploader transmits one RDF file into the configured repository.
// Implementations report only success or failure per file.
type Uploader interface {
	Upload(ctx context.Context, rdfPath string) error
}

// Client uploads RDF files to a GraphDB repository over HTTP.
type Client struct {
	baseURL    string
	repository string
	httpClient *http.Client
}

// NewClient returns a Client for the repository at baseURL. The base URL is
// the server root (e.g. http://localhost:7200); the statements endpoint is
// derived from it and the repository name.
func NewClient(baseURL, repository string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		repository: repository,
		httpClient: http.DefaultClient,
	}
}

// statementsURL returns the graph-store endpoint for the repository.
func (c *Client) statementsURL() string {
	return fmt.Sprintf("%s/repositories/%s/statements", c.baseURL, c.repository)
}

// serializations maps RDF file extensions to their MIME type and knakk/rdf
// format. Files with an unknown extension are sent as Turtle, the mapping
// engine's default output serialization.
var serializations = map[string]struct {
	contentType string
	format      rdf.Format
}{
	".ttl": {"text/turtle", rdf.Turtle},
	".nt":  {"application/n-triples", rdf.NTriples},
	".n3":  {"text/n3", rdf.Turtle},
	".rdf": {"application/rdf+xml", rdf.RDFXML},
	".xml": {"application/rdf+xml", rdf.RDFXML},
}

// Upload POSTs the RDF file at rdfPath to the repository statements
// endpoint. Any non-2xx response is an error carrying the status and
// response body.
func (c *Client) Upload(ctx context.Context, rdfPath string) error {
	log := logging.FromContext(ctx)

	data, err := os.ReadFile(rdfPath)
	if err != nil {
		return fmt.Errorf("reading RDF file %s: %w", rdfPath, err)
	}

	ser, ok := serializations[strings.ToLower(filepath.Ext(rdfPath))]
	if !ok {
		ser = serializations[".ttl"]
	}

	// Triple count is best-effort diagnostics only: the pipeline makes no
	// RDF correctness guarantee, so an undecodable file is still uploaded.
	if count, countErr := countTriples(data, ser.format); countErr == nil {
		log.Debug().
			Str("component", "graphdb").
			Str("file", rdfPath).
			Int("triples", count).
			Msg("decoded RDF document")
	} else {
		log.Warn().
			Str("component", "graphdb").
			Str("file", rdfPath).
			Err(countErr).
			Msg("could not decode RDF document, uploading as-is")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.statementsURL(), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building upload request for %s: %w", rdfPath, err)
	}
	req.Header.Set("Content-Type", ser.contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("uploading %s to repository %s: %w", rdfPath, c.repository, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("uploading %s to repository %s: server returned %s: %s",
			rdfPath, c.repository, resp.Status, strings.TrimSpace(string(body)))
	}

	log.Info().
		Str("component", "graphdb").
		Str("operation", "upload").
		Str("file", rdfPath).
		Str("repository", c.repository).
		Msg("RDF file uploaded")

	return nil
}

// countTriples decodes data in the given serialization and returns the
// number of triples.
func countTriples(data []byte, format rdf.Format) (int, error) {
	dec := rdf.NewTripleDecoder(bytes.NewReader(data), format)

	count := 0
	for {
		if _, err := dec.Decode(); err != nil {
			if err == io.EOF {
				return count, nil
			}
			return count, err
		}
		count++
	}
}
