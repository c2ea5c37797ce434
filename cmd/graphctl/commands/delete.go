package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"graphcore/application/commands"
	"graphcore/application/session"
	"graphcore/domain/core/valueobjects"
	"graphcore/domain/versioning"
)

func newDeleteCmd(a *app) *cobra.Command {
	var (
		atomic bool
		diff   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "delete <document> <node-id>",
		Short: "Safe-delete a node and print the remaining graph",
		Long: `Safe-delete a node: its children are deleted first, connectors leaving
the deleted nodes are removed and connectors pointing at them are detached.

A rule violation stops the cascade where it happened. Commands already
applied stay applied unless --atomic is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch output {
			case "text", "yaml":
			default:
				return fmt.Errorf("unknown output format %q, use text or yaml", output)
			}

			g, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			id, err := valueobjects.NewNodeIDFromString(args[1])
			if err != nil {
				return err
			}

			before, err := versioning.Take(g)
			if err != nil {
				return err
			}

			s := a.container.NewSession(g)
			del := a.container.Factory.BuildByID(id)

			var res commands.Result
			state := session.AtomicStateCompleted
			if atomic {
				res, state, err = s.ExecuteAtomic(ctx, del)
			} else {
				res, err = s.Execute(ctx, del)
			}
			if err != nil {
				return err
			}

			summary := summarize(g)
			summary.Result = string(res.Type)
			for _, v := range res.Violations {
				summary.Violations = append(summary.Violations, v.String())
			}

			if output == "yaml" {
				return writeYAML(out, summary)
			}
			printResult(out, res)
			if res.IsError() {
				if state == session.AtomicStateCompensated {
					fmt.Fprintln(out, "rolled back")
				} else {
					fmt.Fprintf(out, "partially applied: %d of %d commands\n", len(del.Executed()), len(del.Commands()))
				}
			}
			if diff {
				after, err := versioning.Take(g)
				if err != nil {
					return err
				}
				changes, err := versioning.Compare(before, after)
				if err != nil {
					return err
				}
				printDiff(out, changes)
			}
			printGraph(out, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&atomic, "atomic", false, "undo applied commands when the delete is refused")
	cmd.Flags().BoolVar(&diff, "diff", false, "print which nodes and edges changed")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or yaml")
	return cmd
}
