package commands

import (
	"fmt"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	pkgerrors "graphcore/pkg/errors"
)

// RequestKind identifies a request type
type RequestKind string

const (
	KindSafeDeleteNode      RequestKind = "safe_delete_node"
	KindRegisterNode        RequestKind = "register_node"
	KindDeregisterNode      RequestKind = "deregister_node"
	KindAddChild            RequestKind = "add_child"
	KindRemoveChild         RequestKind = "remove_child"
	KindAddConnector        RequestKind = "add_connector"
	KindSetConnectionTarget RequestKind = "set_connection_target"
	KindDeleteConnector     RequestKind = "delete_connector"
	KindClearGraph          RequestKind = "clear_graph"
)

// Request is a parameterized description of a command. Requests carry
// plain ids and are validated with struct tags before being built.
type Request interface {
	Kind() RequestKind
}

// SafeDeleteNodeRequest deletes a node and its dependents
type SafeDeleteNodeRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
}

// BoundsRequest is an optional view rectangle
type BoundsRequest struct {
	UpperLeftX  float64 `json:"upper_left_x"`
	UpperLeftY  float64 `json:"upper_left_y"`
	LowerRightX float64 `json:"lower_right_x"`
	LowerRightY float64 `json:"lower_right_y"`
}

// RegisterNodeRequest creates a node; an empty NodeID gets a generated one
type RegisterNodeRequest struct {
	NodeID     string            `json:"node_id"`
	Stencil    string            `json:"stencil" validate:"required"`
	Labels     []string          `json:"labels" validate:"max=50,dive,required"`
	Properties map[string]string `json:"properties"`
	Bounds     *BoundsRequest    `json:"bounds,omitempty"`
}

// DeregisterNodeRequest removes a node without cascading
type DeregisterNodeRequest struct {
	NodeID string `json:"node_id" validate:"required"`
}

// AddChildRequest links parent to child
type AddChildRequest struct {
	EdgeID   string `json:"edge_id"`
	ParentID string `json:"parent_id" validate:"required"`
	ChildID  string `json:"child_id" validate:"required"`
}

// RemoveChildRequest unlinks parent from child
type RemoveChildRequest struct {
	ParentID string `json:"parent_id" validate:"required"`
	ChildID  string `json:"child_id" validate:"required"`
}

// AddConnectorRequest creates a connector; with a TargetID it is attached
// in the same step.
type AddConnectorRequest struct {
	EdgeID       string `json:"edge_id"`
	Role         string `json:"role" validate:"required"`
	EdgeKind     string `json:"kind" validate:"omitempty,oneof=view connector"`
	SourceID     string `json:"source_id" validate:"required"`
	SourceMagnet int    `json:"source_magnet" validate:"gte=0"`
	TargetID     string `json:"target_id"`
	TargetMagnet int    `json:"target_magnet" validate:"gte=0"`
}

// SetConnectionTargetRequest rebinds a connector; an empty TargetID
// detaches it.
type SetConnectionTargetRequest struct {
	EdgeID   string `json:"edge_id" validate:"required"`
	TargetID string `json:"target_id"`
	Magnet   int    `json:"magnet" validate:"gte=0"`
}

// DeleteConnectorRequest removes a connector
type DeleteConnectorRequest struct {
	EdgeID string `json:"edge_id" validate:"required"`
}

// ClearGraphRequest empties the graph
type ClearGraphRequest struct{}

func (SafeDeleteNodeRequest) Kind() RequestKind      { return KindSafeDeleteNode }
func (RegisterNodeRequest) Kind() RequestKind        { return KindRegisterNode }
func (DeregisterNodeRequest) Kind() RequestKind      { return KindDeregisterNode }
func (AddChildRequest) Kind() RequestKind            { return KindAddChild }
func (RemoveChildRequest) Kind() RequestKind         { return KindRemoveChild }
func (AddConnectorRequest) Kind() RequestKind        { return KindAddConnector }
func (SetConnectionTargetRequest) Kind() RequestKind { return KindSetConnectionTarget }
func (DeleteConnectorRequest) Kind() RequestKind     { return KindDeleteConnector }
func (ClearGraphRequest) Kind() RequestKind          { return KindClearGraph }

type requestBuilder func(f *Factory, req Request) (Command, error)

var requestBuilders = map[RequestKind]requestBuilder{
	KindSafeDeleteNode: func(f *Factory, req Request) (Command, error) {
		r := req.(SafeDeleteNodeRequest)
		id, err := nodeID("candidate_id", r.CandidateID)
		if err != nil {
			return nil, err
		}
		return f.BuildByID(id), nil
	},
	KindRegisterNode: func(f *Factory, req Request) (Command, error) {
		r := req.(RegisterNodeRequest)
		id := valueobjects.NewNodeID()
		if r.NodeID != "" {
			var err error
			if id, err = nodeID("node_id", r.NodeID); err != nil {
				return nil, err
			}
		}
		def := entities.NewDefinition(r.Stencil, r.Labels...)
		for k, v := range r.Properties {
			def = def.WithProperty(k, v)
		}
		node := entities.NewNode(id, def)
		if r.Bounds != nil {
			b, err := valueobjects.NewBounds(
				valueobjects.Point{X: r.Bounds.UpperLeftX, Y: r.Bounds.UpperLeftY},
				valueobjects.Point{X: r.Bounds.LowerRightX, Y: r.Bounds.LowerRightY},
			)
			if err != nil {
				return nil, invalidRequest("bounds", err)
			}
			node.SetBounds(b)
		}
		return NewRegisterNode(node), nil
	},
	KindDeregisterNode: func(f *Factory, req Request) (Command, error) {
		r := req.(DeregisterNodeRequest)
		id, err := nodeID("node_id", r.NodeID)
		if err != nil {
			return nil, err
		}
		return NewDeregisterNodeByID(id), nil
	},
	KindAddChild: func(f *Factory, req Request) (Command, error) {
		r := req.(AddChildRequest)
		parent, err := nodeID("parent_id", r.ParentID)
		if err != nil {
			return nil, err
		}
		child, err := nodeID("child_id", r.ChildID)
		if err != nil {
			return nil, err
		}
		edge, err := optionalEdgeID("edge_id", r.EdgeID)
		if err != nil {
			return nil, err
		}
		return NewAddChild(parent, child, edge), nil
	},
	KindRemoveChild: func(f *Factory, req Request) (Command, error) {
		r := req.(RemoveChildRequest)
		parent, err := nodeID("parent_id", r.ParentID)
		if err != nil {
			return nil, err
		}
		child, err := nodeID("child_id", r.ChildID)
		if err != nil {
			return nil, err
		}
		return NewRemoveChild(parent, child), nil
	},
	KindAddConnector: func(f *Factory, req Request) (Command, error) {
		r := req.(AddConnectorRequest)
		source, err := nodeID("source_id", r.SourceID)
		if err != nil {
			return nil, err
		}
		edgeID, err := optionalEdgeID("edge_id", r.EdgeID)
		if err != nil {
			return nil, err
		}
		if edgeID.IsZero() {
			edgeID = valueobjects.NewEdgeID()
		}

		var edge *entities.Edge
		if r.EdgeKind == string(entities.EdgeKindConnector) {
			edge = entities.NewConnectorEdge(edgeID, r.Role)
		} else {
			edge = entities.NewViewEdge(edgeID, r.Role, entities.ViewConnector{})
		}

		add := NewAddConnector(source, edge, r.SourceMagnet)
		if r.TargetID == "" {
			return add, nil
		}
		target, err := nodeID("target_id", r.TargetID)
		if err != nil {
			return nil, err
		}
		return NewComposite(NameAddConnector, true, add,
			NewSetConnectionTargetByID(edgeID, target, r.TargetMagnet)), nil
	},
	KindSetConnectionTarget: func(f *Factory, req Request) (Command, error) {
		r := req.(SetConnectionTargetRequest)
		edge, err := edgeID("edge_id", r.EdgeID)
		if err != nil {
			return nil, err
		}
		var target valueobjects.NodeID
		if r.TargetID != "" {
			if target, err = nodeID("target_id", r.TargetID); err != nil {
				return nil, err
			}
		}
		return NewSetConnectionTargetByID(edge, target, r.Magnet), nil
	},
	KindDeleteConnector: func(f *Factory, req Request) (Command, error) {
		r := req.(DeleteConnectorRequest)
		edge, err := edgeID("edge_id", r.EdgeID)
		if err != nil {
			return nil, err
		}
		return NewDeleteConnectorByID(edge), nil
	},
	KindClearGraph: func(f *Factory, req Request) (Command, error) {
		return NewClearGraph(), nil
	},
}

// FromRequest builds the command a request describes. The request must be
// passed by value.
func (f *Factory) FromRequest(req Request) (Command, error) {
	if req == nil {
		return nil, pkgerrors.NewDomainError(pkgerrors.DomainValidationError, pkgerrors.ErrUnknownRequest.Code,
			"request is nil")
	}
	build, ok := requestBuilders[req.Kind()]
	if !ok {
		return nil, pkgerrors.NewDomainError(pkgerrors.DomainValidationError, pkgerrors.ErrUnknownRequest.Code,
			fmt.Sprintf("no command registered for request kind %q", req.Kind())).
			WithDetail("kind", string(req.Kind()))
	}
	return build(f, req)
}

// RequestKinds lists every kind FromRequest understands
func RequestKinds() []RequestKind {
	return []RequestKind{
		KindSafeDeleteNode, KindRegisterNode, KindDeregisterNode,
		KindAddChild, KindRemoveChild, KindAddConnector,
		KindSetConnectionTarget, KindDeleteConnector, KindClearGraph,
	}
}

func nodeID(field, raw string) (valueobjects.NodeID, error) {
	id, err := valueobjects.NewNodeIDFromString(raw)
	if err != nil {
		return valueobjects.NodeID{}, invalidRequest(field, err)
	}
	return id, nil
}

func edgeID(field, raw string) (valueobjects.EdgeID, error) {
	id, err := valueobjects.NewEdgeIDFromString(raw)
	if err != nil {
		return valueobjects.EdgeID{}, invalidRequest(field, err)
	}
	return id, nil
}

func optionalEdgeID(field, raw string) (valueobjects.EdgeID, error) {
	if raw == "" {
		return valueobjects.EdgeID{}, nil
	}
	return edgeID(field, raw)
}

func invalidRequest(field string, cause error) error {
	return pkgerrors.NewDomainError(pkgerrors.DomainValidationError, pkgerrors.ErrInvalidRequest.Code,
		fmt.Sprintf("%s is invalid", field)).
		WithDetail("field", field).
		WithCause(cause)
}
