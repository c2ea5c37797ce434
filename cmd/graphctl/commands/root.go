package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"graphcore/domain/core/aggregates"
	"graphcore/infrastructure/config"
	"graphcore/infrastructure/di"
	pkgerrors "graphcore/pkg/errors"
)

// app carries the state shared by every subcommand of one invocation
type app struct {
	rulesFile   string
	verbose     bool
	showMetrics bool
	graphName   string
	roles       map[string]string

	container *di.Container
	cleanup   func()
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// ExitCode maps an error returned by Execute to a process exit code: 2 when
// the input was rejected, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case pkgerrors.IsValidation(err), pkgerrors.IsNotFound(err):
		return 2
	default:
		return 1
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "graphctl",
		Short: "Plan and run cascading deletes on stencil documents",
		Long: `graphctl - inspect and edit graphs described by stencil documents.

A stencil document is a nested YAML or JSON tree of shapes. Shapes whose
stencil is a connector stencil (CONNECTOR_STENCILS) become connectors;
all others become nodes, nested through childShapes.

Examples:
  # Show what deleting a lane would do
  graphctl plan process.yaml lane1

  # Delete it, rolling back if a rule refuses part of it
  graphctl delete --rules rules.yaml --atomic process.yaml lane1

  # Re-check a document every time the rule file changes
  graphctl check --rules rules.yaml --watch process.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.rulesFile, "rules", "r", "", "rule file (overrides RULES_FILE)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&a.showMetrics, "metrics", false, "print command metrics to stderr on exit")
	flags.StringVar(&a.graphName, "name", "", "graph name (defaults to the file name)")
	flags.StringToStringVar(&a.roles, "role", nil, "extra role label per stencil, e.g. --role Task=activity")

	root.AddCommand(newPlanCmd(a), newDeleteCmd(a), newCheckCmd(a))
	return root
}

// init loads configuration and wires the container
func (a *app) init() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config not available: %w", err)
	}
	if a.rulesFile != "" {
		cfg.RulesFile = a.rulesFile
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	if a.showMetrics {
		cfg.EnableMetrics = true
	}

	container, cleanup, err := di.InitializeContainer(cfg)
	if err != nil {
		return err
	}
	for stencil, role := range a.roles {
		container.Stencils.WithRoles(map[string][]string{stencil: {role}})
	}
	a.container, a.cleanup = container, cleanup
	return nil
}

func (a *app) close(w io.Writer) error {
	if a.container == nil {
		return nil
	}
	defer func() {
		_ = a.container.Logger.Sync()
		a.cleanup()
	}()

	if !a.showMetrics {
		return nil
	}
	families, err := a.container.Collector.Registry().Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// load builds the graph described by the document at path
func (a *app) load(ctx context.Context, path string) (*aggregates.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	name := a.graphName
	if name == "" {
		name = path
	}
	return a.container.Stencils.Read(ctx, f, name)
}
