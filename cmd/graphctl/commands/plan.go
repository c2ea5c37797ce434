package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"graphcore/domain/core/valueobjects"
	"graphcore/domain/services/safedelete"
)

func newPlanCmd(a *app) *cobra.Command {
	var showEvents bool

	cmd := &cobra.Command{
		Use:   "plan <document> <node-id>",
		Short: "Print the safe-delete plan for a node",
		Long: `Print the commands a safe delete of the node would run, evaluated
against the rule file without changing anything.

With --events the raw cascade is printed instead: every structural
relationship visited, children expanded before their parent.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			g, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			id, err := valueobjects.NewNodeIDFromString(args[1])
			if err != nil {
				return err
			}

			if showEvents {
				node, err := g.GetNode(id)
				if err != nil {
					return err
				}
				return a.container.Processor.Walk(node, func(depth int, ev safedelete.Event) error {
					fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), ev)
					return nil
				})
			}

			plan := a.container.Factory.BuildByID(id)
			res, err := a.container.NewSession(g).Allow(ctx, plan)
			if err != nil {
				return err
			}
			printPlan(out, plan, 0)
			printResult(out, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEvents, "events", false, "print the cascade events instead of commands")
	return cmd
}
