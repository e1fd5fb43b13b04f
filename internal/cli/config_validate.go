package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graphetl/rdfpipe/internal/config"
)

// newConfigCmd creates the "config" command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration operations",
	}
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

// newConfigValidateCmd creates the command that validates a configuration
// document against every stage, without running anything.
func newConfigValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration document",
		Long: `Validate parses the configuration document and checks every stage
section, so a document that passes here supports any stage selection.`,
		Example: `  # Validate before a long run
  rdfpipe config validate --settings config.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd)
		},
	}

	return cmd
}

func runConfigValidate(cmd *cobra.Command) error {
	path, err := settingsPath(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := cfg.Validate(config.All()); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("configuration %s is valid\n", path)

	return nil
}
