package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/graphetl/rdfpipe/internal/config"
	"github.com/graphetl/rdfpipe/internal/logging"
	"github.com/graphetl/rdfpipe/internal/pipeline"
)

var errMissingSettings = errors.New("a configuration document is required: pass --settings <path>")

// errNoStages is returned when run is invoked without any stage flag.
// Doing nothing silently is not an option; the operator must say what to run.
var errNoStages = errors.New("no stage selected: pass --all or at least one of --clean, --split, --map, --upload")

// runParams holds the stage-selection flags for the run command.
type runParams struct {
	clean  bool
	split  bool
	mapRML bool
	upload bool
	all    bool
}

// stages converts the flag set to the stage selection, with --all
// overriding the individual flags.
func (p runParams) stages() config.Stages {
	if p.all {
		return config.All()
	}
	return config.Stages{Clean: p.clean, Split: p.split, Map: p.mapRML, Upload: p.upload}
}

// newRunCmd creates the "run" subcommand that executes selected pipeline
// stages in order.
func newRunCmd() *cobra.Command {
	var params runParams

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run selected pipeline stages",
		Long: `Run executes the selected stages strictly in order: clean, split, map,
upload. Each stage reads its parameters from the configuration document;
selecting a stage whose config section is missing is an error reported
before any stage work begins.`,
		Example: runCmdExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeRun(cmd, params)
		},
	}

	cmd.Flags().BoolVarP(&params.clean, "clean", "c", false, "clean the dataset")
	cmd.Flags().BoolVarP(&params.split, "split", "p", false, "split the cleaned dataset into chunks")
	cmd.Flags().BoolVarP(&params.mapRML, "map", "m", false, "run the RML mapping engine on each chunk")
	cmd.Flags().BoolVarP(&params.upload, "upload", "u", false, "upload RDF files to the GraphDB repository")
	cmd.Flags().BoolVarP(&params.all, "all", "a", false, "run every stage")

	return cmd
}

const runCmdExample = `  # Full pipeline
  rdfpipe run --settings config.json --all

  # Clean and split only
  rdfpipe run --settings config.json --clean --split

  # Retry the upload stage after fixing the repository URL
  rdfpipe run --settings config.json --upload`

// executeRun loads the configuration, builds the runner, and executes the
// selected stages.
func executeRun(cmd *cobra.Command, params runParams) error {
	stages := params.stages()
	if !stages.Any() {
		// cobra prints the usage text alongside the returned error.
		return errNoStages
	}

	path, err := settingsPath(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	runner := pipeline.New(cfg)
	summary, err := runner.Run(ctx, stages)
	if err != nil {
		log.Error().
			Str("component", "cli").
			Err(err).
			Msg("pipeline run failed")
		return err
	}

	cmd.Println(summary.String())

	return nil
}
