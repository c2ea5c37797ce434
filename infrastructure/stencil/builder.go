package stencil

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"graphcore/application/commands"
	"graphcore/application/commands/bus"
	"graphcore/domain/config"
	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	pkgerrors "graphcore/pkg/errors"
)

// Builder turns stencil documents into graphs. Every mutation goes through
// the command manager with no rules, so the result is whatever the document
// describes.
type Builder struct {
	manager *bus.CommandManager
	cfg     *config.DomainConfig
	roles   map[string][]string
	logger  *zap.Logger
}

// NewBuilder creates a builder. Shapes whose stencil is one of
// cfg.ConnectorStencils become connectors.
func NewBuilder(manager *bus.CommandManager, cfg *config.DomainConfig, logger *zap.Logger) *Builder {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		manager: manager,
		cfg:     cfg,
		roles:   make(map[string][]string),
		logger:  logger,
	}
}

// WithRoles adds role labels per stencil id, on top of the stencil id itself
func (b *Builder) WithRoles(roles map[string][]string) *Builder {
	for stencil, labels := range roles {
		b.roles[stencil] = append(b.roles[stencil], labels...)
	}
	return b
}

// Read parses r and builds the graph it describes
func (b *Builder) Read(ctx context.Context, r io.Reader, name string) (*aggregates.Graph, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, doc, name)
}

// Build creates a graph named name from doc. An empty name falls back to
// the configured default graph name.
func (b *Builder) Build(ctx context.Context, doc *Document, name string) (*aggregates.Graph, error) {
	if name == "" {
		name = b.cfg.DefaultGraphName
	}
	g, err := aggregates.NewGraphWithConfig(name, b.cfg)
	if err != nil {
		return nil, err
	}
	ec := commands.NewExecutionContext(g, nil, b.logger)

	run := func(cmd commands.Command) error {
		res, err := b.manager.Execute(ctx, ec, cmd)
		if err != nil {
			return pkgerrors.Wrapf(err, "building %s", cmd)
		}
		if res.IsError() {
			return fmt.Errorf("building %s: refused: %s", cmd, res.Violations)
		}
		return nil
	}
	send := func(req commands.Request) error {
		cmd, err := b.manager.Build(req)
		if err != nil {
			return err
		}
		return run(cmd)
	}

	if err := send(commands.ClearGraphRequest{}); err != nil {
		return nil, err
	}

	sources, err := b.connectorSources(doc)
	if err != nil {
		return nil, err
	}

	var nodes, children, connectors int
	for _, s := range doc.Shapes {
		if b.cfg.IsConnectorStencil(s.Stencil) {
			continue
		}
		if err := send(b.registerRequest(s)); err != nil {
			return nil, err
		}
		nodes++

		parent, ok := doc.Shape(s.Parent)
		if !ok || b.cfg.IsConnectorStencil(parent.Stencil) {
			continue
		}
		if err := send(commands.AddChildRequest{ParentID: parent.ID, ChildID: s.ID}); err != nil {
			return nil, err
		}
		children++
	}

	for _, s := range doc.Shapes {
		if !b.cfg.IsConnectorStencil(s.Stencil) {
			continue
		}
		if err := b.connect(doc, s, sources[s.ID], run); err != nil {
			return nil, err
		}
		connectors++
	}

	g.MarkEventsAsCommitted()
	b.logger.Info("Graph built from stencil document",
		zap.String("graph", name),
		zap.Int("nodes", nodes),
		zap.Int("children", children),
		zap.Int("connectors", connectors),
	)
	return g, nil
}

func (b *Builder) registerRequest(s *Shape) commands.RegisterNodeRequest {
	req := commands.RegisterNodeRequest{
		NodeID:     s.ID,
		Stencil:    s.Stencil,
		Labels:     b.roles[s.Stencil],
		Properties: s.Properties,
	}
	if s.Bounds != nil {
		req.Bounds = &commands.BoundsRequest{
			UpperLeftX:  s.Bounds.UpperLeft.X,
			UpperLeftY:  s.Bounds.UpperLeft.Y,
			LowerRightX: s.Bounds.LowerRight.X,
			LowerRightY: s.Bounds.LowerRight.Y,
		}
	}
	return req
}

// connectorSources maps each connector to the node listing it as outgoing
func (b *Builder) connectorSources(doc *Document) (map[string]string, error) {
	sources := make(map[string]string)
	for _, s := range doc.Shapes {
		if b.cfg.IsConnectorStencil(s.Stencil) {
			continue
		}
		for _, out := range s.Outgoing {
			target, ok := doc.Shape(out)
			if !ok {
				return nil, referenceNotFound(s.ID, out)
			}
			if !b.cfg.IsConnectorStencil(target.Stencil) {
				return nil, malformed(fmt.Sprintf("shape %q lists %q as outgoing but it is not a connector", s.ID, out))
			}
			if prev, dup := sources[out]; dup {
				return nil, malformed(fmt.Sprintf("connector %q leaves both %q and %q", out, prev, s.ID))
			}
			sources[out] = s.ID
		}
	}
	return sources, nil
}

// connect adds a connector shape as a view edge and attaches its target
func (b *Builder) connect(doc *Document, s *Shape, source string, run func(commands.Command) error) error {
	if source == "" {
		return pkgerrors.NewDomainError(pkgerrors.DomainInfrastructureError, pkgerrors.ErrStencilReferenceNotFound.Code,
			fmt.Sprintf("connector %q has no source shape", s.ID)).WithDetail("shape_id", s.ID)
	}
	if len(s.Outgoing) > 1 {
		return malformed(fmt.Sprintf("connector %q has %d targets", s.ID, len(s.Outgoing)))
	}

	edgeID, err := valueobjects.NewEdgeIDFromString(s.ID)
	if err != nil {
		return malformed(err.Error())
	}
	edge := entities.NewViewEdge(edgeID, s.Stencil, entities.ViewConnector{Dockers: s.Dockers})
	if err := run(commands.NewAddConnector(valueobjects.MustNodeID(source), edge, 0)); err != nil {
		return err
	}

	if len(s.Outgoing) == 0 {
		return nil
	}
	target, ok := doc.Shape(s.Outgoing[0])
	if !ok || b.cfg.IsConnectorStencil(target.Stencil) {
		return referenceNotFound(s.ID, s.Outgoing[0])
	}
	return run(commands.NewSetConnectionTargetByID(edgeID, valueobjects.MustNodeID(target.ID), 0))
}

func referenceNotFound(shapeID, ref string) error {
	return pkgerrors.NewDomainError(pkgerrors.DomainInfrastructureError, pkgerrors.ErrStencilReferenceNotFound.Code,
		fmt.Sprintf("shape %q references unknown node %q", shapeID, ref)).
		WithDetail("shape_id", shapeID).
		WithDetail("reference", ref)
}
