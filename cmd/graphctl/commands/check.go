package commands

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/rules"
)

func newCheckCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check <document>",
		Short: "Evaluate a document against the rule file",
		Long: `Evaluate every node, child edge and attached connector of a document
against the rule file and list the violations.

With --watch the check runs again each time the rule file changes, until
interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if a.container.Config.RulesFile == "" {
				return fmt.Errorf("a rule file is required, use --rules or RULES_FILE")
			}
			g, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}

			if !watch {
				if n := check(out, g, a.container.Rules); n > 0 {
					return fmt.Errorf("%d rule violations with ERROR severity", n)
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w, stopWatch, err := a.container.WatchRules()
			if err != nil {
				return err
			}
			defer stopWatch()

			w.OnReload(func(rs *rules.RuleSet, err error) {
				if err != nil {
					fmt.Fprintf(out, "rule file rejected: %v\n", err)
					return
				}
				fmt.Fprintf(out, "rules reloaded: %s\n", rs.Name)
				check(out, g, a.container.Rules)
			})
			check(out, g, a.container.Rules)

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check whenever the rule file changes")
	return cmd
}

// check prints the violations of g and returns how many are errors
func check(w io.Writer, g *aggregates.Graph, rm *rules.Reloadable) int {
	violations := rules.Check(g, rm)
	name := "<none>"
	if rs := rm.Current(); rs != nil {
		name = rs.Name
	}
	if len(violations) == 0 {
		fmt.Fprintf(w, "%s: ok against %s\n", g.Name(), name)
		return 0
	}
	fmt.Fprintf(w, "%s: %d violations against %s\n", g.Name(), len(violations), name)
	printViolations(w, violations)
	return len(violations.Errors())
}
