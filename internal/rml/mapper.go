// Package rml invokes the external RML mapping engine that converts chunk
// files into RDF documents. The pipeline never interprets mapping rules or
// RDF content; it only resolves paths, launches the engine, and surfaces
// its exit status.
package rml

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/graphetl/rdfpipe/internal/logging"
)

// csvPathPlaceholder is the token in a ruleset template that the runner
// replaces with the chunk file's absolute path.
const csvPathPlaceholder = "{csv_file_path}"

// Mapper converts one tabular input file into one RDF output file under a
// declarative ruleset. Implementations report only success or failure; the
// mapping rules themselves are opaque to the pipeline.
type Mapper interface {
	Map(ctx context.Context, rulesetPath, inputPath, outputPath string) error
}

// javaArgs are the fixed JVM options used for every RMLMapper invocation.
// The mapper loads entire chunks into heap, hence the large ceiling.
var javaArgs = []string{"-Xms512m", "-Xmx10g", "-XX:+UseG1GC"}

// JavaRunner runs the RMLMapper JAR as a subprocess.
type JavaRunner struct {
	// MapperPath is the path to the RMLMapper JAR file.
	MapperPath string
	// JavaBin overrides the java executable; empty means "java" on PATH.
	JavaBin string
}

// NewJavaRunner returns a JavaRunner for the given RMLMapper JAR.
func NewJavaRunner(mapperPath string) *JavaRunner {
	return &JavaRunner{MapperPath: mapperPath}
}

// Map renders the ruleset template against inputPath and runs the mapper,
// writing RDF to outputPath. The engine's stderr is folded into the error
// on non-zero exit.
func (r *JavaRunner) Map(ctx context.Context, rulesetPath, inputPath, outputPath string) error {
	log := logging.FromContext(ctx)

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return fmt.Errorf("resolving chunk path %s: %w", inputPath, err)
	}

	rendered, cleanup, err := renderRuleset(rulesetPath, absInput)
	if err != nil {
		return err
	}
	defer cleanup()

	javaBin := r.JavaBin
	if javaBin == "" {
		javaBin = "java"
	}

	args := append([]string{}, javaArgs...)
	args = append(args, "-jar", r.MapperPath, "-m", rendered, "-o", outputPath)

	log.Debug().
		Str("component", "rml").
		Str("operation", "map").
		Str("ruleset", rulesetPath).
		Str("input", absInput).
		Str("output", outputPath).
		Msg("invoking mapping engine")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, javaBin, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mapping engine failed for %s: %w: %s",
			absInput, err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

// renderRuleset substitutes the chunk path into the ruleset template and
// writes the result to a temporary file. The returned cleanup removes the
// temporary file; it is safe to call even when rendering changed nothing.
func renderRuleset(rulesetPath, csvPath string) (string, func(), error) {
	content, err := os.ReadFile(rulesetPath)
	if err != nil {
		return "", nil, fmt.Errorf("reading ruleset %s: %w", rulesetPath, err)
	}

	rendered := strings.ReplaceAll(string(content), csvPathPlaceholder, csvPath)

	tmp, err := os.CreateTemp("", "rdfpipe-ruleset-*.rml.ttl")
	if err != nil {
		return "", nil, fmt.Errorf("creating temporary ruleset: %w", err)
	}

	if _, err := tmp.WriteString(rendered); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("writing temporary ruleset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("closing temporary ruleset: %w", err)
	}

	name := tmp.Name()
	return name, func() { os.Remove(name) }, nil
}
