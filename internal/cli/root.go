// Package cli defines the rdfpipe command surface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/graphetl/rdfpipe/internal/logging"
)

// NewRootCmd creates the root cobra command for the rdfpipe CLI.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rdfpipe",
		Short: "CSV to triple-store batch pipeline",
		Long: `rdfpipe cleans a tabular dataset, partitions it into chunks, converts
each chunk to RDF via an external RML mapping engine, and uploads the
resulting triples to a GraphDB repository.

Stages run strictly in sequence and are individually selectable; all
stage parameters come from a single configuration document.`,
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "info"
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				level = "debug"
			}
			logger := logging.New(level)
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
		},
	}

	cmd.PersistentFlags().StringP("settings", "s", "", "path to the pipeline configuration document (JSON or YAML)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(newRunCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Run the whole pipeline
  rdfpipe run --settings config.json --all

  # Re-run only the cleaning stage
  rdfpipe run --settings config.json --clean

  # Map already-split chunks and upload the result
  rdfpipe run --settings config.json --map --upload

  # Check a configuration document without running anything
  rdfpipe config validate --settings config.json`

// settingsPath returns the required --settings flag value.
func settingsPath(cmd *cobra.Command) (string, error) {
	path, err := cmd.Flags().GetString("settings")
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", errMissingSettings
	}
	return path, nil
}
