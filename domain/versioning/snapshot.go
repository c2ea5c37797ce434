// Package versioning fingerprints graph states so two points in a graph's
// history can be compared.
package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
)

// NodeState is the observable state of a node at snapshot time
type NodeState struct {
	Stencil string               `json:"stencil"`
	Labels  []string             `json:"labels,omitempty"`
	Parent  string               `json:"parent,omitempty"`
	Bounds  *valueobjects.Bounds `json:"bounds,omitempty"`
}

// EdgeState is the observable state of an edge at snapshot time
type EdgeState struct {
	Kind         entities.EdgeKind    `json:"kind"`
	Role         string               `json:"role,omitempty"`
	Source       string               `json:"source,omitempty"`
	Target       string               `json:"target,omitempty"`
	SourceMagnet int                  `json:"source_magnet,omitempty"`
	TargetMagnet int                  `json:"target_magnet,omitempty"`
	Dockers      []valueobjects.Point `json:"dockers,omitempty"`
}

// Snapshot captures a graph's nodes and edges. Checksum only depends on
// graph content, not on the aggregate version or timestamps.
type Snapshot struct {
	GraphID  string               `json:"graph_id"`
	Version  int                  `json:"version"`
	Checksum string               `json:"checksum"`
	Nodes    map[string]NodeState `json:"nodes"`
	Edges    map[string]EdgeState `json:"edges"`
	TakenAt  time.Time            `json:"taken_at"`
}

// Take snapshots the current state of g
func Take(g *aggregates.Graph) (Snapshot, error) {
	if g == nil {
		return Snapshot{}, fmt.Errorf("graph cannot be nil")
	}

	s := Snapshot{
		GraphID: g.ID().String(),
		Version: g.Version(),
		Nodes:   make(map[string]NodeState, g.NodeCount()),
		Edges:   make(map[string]EdgeState, g.EdgeCount()),
		TakenAt: time.Now(),
	}

	for _, n := range g.Nodes() {
		def := n.Definition()
		ns := NodeState{Stencil: def.Stencil}
		if len(def.Labels) > 0 {
			ns.Labels = append([]string(nil), def.Labels...)
			sort.Strings(ns.Labels)
		}
		if p := n.Parent(); p != nil {
			ns.Parent = p.ID().String()
		}
		if b, ok := n.Bounds(); ok {
			ns.Bounds = &b
		}
		s.Nodes[n.ID().String()] = ns
	}

	for _, e := range g.Edges() {
		es := EdgeState{Kind: e.Kind(), Role: e.Role()}
		if e.Source() != nil {
			es.Source = e.Source().ID().String()
		}
		if e.Target() != nil {
			es.Target = e.Target().ID().String()
		}
		if view, ok := e.View(); ok {
			es.SourceMagnet = view.SourceMagnet
			es.TargetMagnet = view.TargetMagnet
			es.Dockers = view.Dockers
		}
		s.Edges[e.ID().String()] = es
	}

	checksum, err := calculateChecksum(s.Nodes, s.Edges)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to calculate checksum: %w", err)
	}
	s.Checksum = checksum
	return s, nil
}

// Matches reports whether both snapshots hold the same graph content
func (s Snapshot) Matches(other Snapshot) bool {
	return s.Checksum == other.Checksum
}

// encoding/json sorts map keys, so the encoding is deterministic
func calculateChecksum(nodes map[string]NodeState, edges map[string]EdgeState) (string, error) {
	data, err := json.Marshal(struct {
		Nodes map[string]NodeState `json:"nodes"`
		Edges map[string]EdgeState `json:"edges"`
	}{nodes, edges})
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// Changes lists element ids by what happened to them, each list sorted
type Changes struct {
	Added   []string `json:"added,omitempty" yaml:"added,omitempty"`
	Removed []string `json:"removed,omitempty" yaml:"removed,omitempty"`
	Updated []string `json:"updated,omitempty" yaml:"updated,omitempty"`
}

// Empty reports whether nothing changed
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Updated) == 0
}

// Diff is the difference between two snapshots of the same graph
type Diff struct {
	FromVersion int     `json:"from_version" yaml:"from_version"`
	ToVersion   int     `json:"to_version" yaml:"to_version"`
	Nodes       Changes `json:"nodes" yaml:"nodes"`
	Edges       Changes `json:"edges" yaml:"edges"`
}

// Empty reports whether the two snapshots hold the same content
func (d Diff) Empty() bool {
	return d.Nodes.Empty() && d.Edges.Empty()
}

// Compare computes what changed going from one snapshot to the other
func Compare(from, to Snapshot) (Diff, error) {
	if from.GraphID != to.GraphID {
		return Diff{}, fmt.Errorf("snapshots belong to different graphs: %s and %s", from.GraphID, to.GraphID)
	}
	return Diff{
		FromVersion: from.Version,
		ToVersion:   to.Version,
		Nodes:       compareMaps(from.Nodes, to.Nodes, nodeStateEqual),
		Edges:       compareMaps(from.Edges, to.Edges, edgeStateEqual),
	}, nil
}

func compareMaps[T any](from, to map[string]T, equal func(a, b T) bool) Changes {
	var c Changes
	for id, before := range from {
		after, ok := to[id]
		switch {
		case !ok:
			c.Removed = append(c.Removed, id)
		case !equal(before, after):
			c.Updated = append(c.Updated, id)
		}
	}
	for id := range to {
		if _, ok := from[id]; !ok {
			c.Added = append(c.Added, id)
		}
	}
	sort.Strings(c.Added)
	sort.Strings(c.Removed)
	sort.Strings(c.Updated)
	return c
}

func nodeStateEqual(a, b NodeState) bool {
	if a.Stencil != b.Stencil || a.Parent != b.Parent || len(a.Labels) != len(b.Labels) {
		return false
	}
	for i := range a.Labels {
		if a.Labels[i] != b.Labels[i] {
			return false
		}
	}
	switch {
	case a.Bounds == nil && b.Bounds == nil:
		return true
	case a.Bounds == nil || b.Bounds == nil:
		return false
	}
	return *a.Bounds == *b.Bounds
}

func edgeStateEqual(a, b EdgeState) bool {
	if a.Kind != b.Kind || a.Role != b.Role || a.Source != b.Source || a.Target != b.Target ||
		a.SourceMagnet != b.SourceMagnet || a.TargetMagnet != b.TargetMagnet || len(a.Dockers) != len(b.Dockers) {
		return false
	}
	for i := range a.Dockers {
		if a.Dockers[i] != b.Dockers[i] {
			return false
		}
	}
	return true
}
