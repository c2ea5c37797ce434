package commands

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"graphcore/application/commands"
	"graphcore/domain/core/aggregates"
	"graphcore/domain/rules"
	"graphcore/domain/versioning"
)

type composite interface {
	Commands() []commands.Command
}

// printPlan writes cmd and, for composites, its children indented below it
func printPlan(w io.Writer, cmd commands.Command, depth int) {
	indent := strings.Repeat("  ", depth)
	if c, ok := cmd.(composite); ok {
		fmt.Fprintf(w, "%s%s [%s]\n", indent, cmd.Name(), label(cmd))
		for _, child := range c.Commands() {
			printPlan(w, child, depth+1)
		}
		return
	}
	fmt.Fprintf(w, "%s%s\n", indent, cmd)
}

// label is the argument list of a command's String form
func label(cmd commands.Command) string {
	s := cmd.String()
	if i := strings.IndexByte(s, '('); i >= 0 && strings.HasSuffix(s, ")") {
		return s[i+1 : len(s)-1]
	}
	return s
}

func printResult(w io.Writer, res commands.Result) {
	fmt.Fprintf(w, "result: %s\n", res.Type)
	printViolations(w, res.Violations)
}

func printViolations(w io.Writer, violations rules.Violations) {
	for _, v := range violations {
		fmt.Fprintf(w, "  - %s\n", v)
	}
}

type nodeSummary struct {
	ID      string   `yaml:"id"`
	Stencil string   `yaml:"stencil"`
	Labels  []string `yaml:"labels,omitempty"`
	Parent  string   `yaml:"parent,omitempty"`
}

type edgeSummary struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Role   string `yaml:"role,omitempty"`
	Source string `yaml:"source"`
	Target string `yaml:"target,omitempty"`
}

type graphSummary struct {
	Name       string        `yaml:"name"`
	Result     string        `yaml:"result,omitempty"`
	Violations []string      `yaml:"violations,omitempty"`
	Nodes      []nodeSummary `yaml:"nodes"`
	Edges      []edgeSummary `yaml:"edges"`
}

func summarize(g *aggregates.Graph) graphSummary {
	s := graphSummary{Name: g.Name()}
	for _, n := range g.Nodes() {
		ns := nodeSummary{ID: n.ID().String(), Stencil: n.Definition().Stencil}
		for _, l := range n.Definition().Labels {
			if l != ns.Stencil {
				ns.Labels = append(ns.Labels, l)
			}
		}
		if p := n.Parent(); p != nil {
			ns.Parent = p.ID().String()
		}
		s.Nodes = append(s.Nodes, ns)
	}
	for _, e := range g.Edges() {
		es := edgeSummary{ID: e.ID().String(), Kind: string(e.Kind()), Role: e.Role()}
		if e.Source() != nil {
			es.Source = e.Source().ID().String()
		}
		if e.Target() != nil {
			es.Target = e.Target().ID().String()
		}
		s.Edges = append(s.Edges, es)
	}
	return s
}

func printGraph(w io.Writer, s graphSummary) {
	fmt.Fprintf(w, "graph %q: %d nodes, %d edges\n", s.Name, len(s.Nodes), len(s.Edges))
	for _, n := range s.Nodes {
		parent := ""
		if n.Parent != "" {
			parent = " in " + n.Parent
		}
		fmt.Fprintf(w, "  node %s (%s)%s\n", n.ID, n.Stencil, parent)
	}
	for _, e := range s.Edges {
		target := e.Target
		if target == "" {
			target = "<detached>"
		}
		fmt.Fprintf(w, "  edge %s %s %s -> %s\n", e.ID, e.Kind, e.Source, target)
	}
}

// printDiff writes one line per changed element, nodes first
func printDiff(w io.Writer, d versioning.Diff) {
	if d.Empty() {
		fmt.Fprintln(w, "no changes")
		return
	}
	for _, part := range []struct {
		kind    string
		changes versioning.Changes
	}{{"node", d.Nodes}, {"edge", d.Edges}} {
		for _, id := range part.changes.Removed {
			fmt.Fprintf(w, "- %s %s\n", part.kind, id)
		}
		for _, id := range part.changes.Updated {
			fmt.Fprintf(w, "~ %s %s\n", part.kind, id)
		}
		for _, id := range part.changes.Added {
			fmt.Fprintf(w, "+ %s %s\n", part.kind, id)
		}
	}
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
