// Command graphctl plans and runs cascading deletes on stencil documents
// and checks them against rule files.
//
// Usage:
//
//	graphctl [flags] <command> [args]
//
// Commands:
//
//	plan    - print the safe-delete plan for a node
//	delete  - run the safe delete and print what is left
//	check   - evaluate a document against the rule file
//
// Configuration is read from the environment (ENVIRONMENT, LOG_LEVEL,
// RULES_FILE, ...); flags override it.
package main

import (
	"fmt"
	"os"

	"graphcore/cmd/graphctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(commands.ExitCode(err))
	}
}
