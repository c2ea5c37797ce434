// Package bus runs commands through a middleware pipeline and dispatches
// requests to the commands they describe.
package bus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"graphcore/application/commands"
	pkgerrors "graphcore/pkg/errors"
	"graphcore/pkg/utils"
)

// Operation is the command method a call invokes
type Operation string

const (
	OperationAllow   Operation = "allow"
	OperationExecute Operation = "execute"
	OperationUndo    Operation = "undo"
)

// Call is one invocation travelling through the pipeline
type Call struct {
	Operation Operation
	Command   commands.Command
	Context   *commands.ExecutionContext
}

// Handler handles a call
type Handler interface {
	Handle(ctx context.Context, call Call) (commands.Result, error)
}

// HandlerFunc is an adapter to allow functions to be used as handlers
type HandlerFunc func(ctx context.Context, call Call) (commands.Result, error)

// Handle implements Handler
func (f HandlerFunc) Handle(ctx context.Context, call Call) (commands.Result, error) {
	return f(ctx, call)
}

// Middleware wraps a handler
type Middleware func(next Handler) Handler

// Pipeline chains multiple middleware together
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a new middleware pipeline
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{
		middlewares: middlewares,
	}
}

// Then wraps handler so the first middleware is the outermost
func (p *Pipeline) Then(handler Handler) Handler {
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}

// dispatch is the innermost handler: it invokes the command itself
func dispatch(_ context.Context, call Call) (commands.Result, error) {
	switch call.Operation {
	case OperationAllow:
		return call.Command.Allow(call.Context)
	case OperationExecute:
		return call.Command.Execute(call.Context)
	case OperationUndo:
		return call.Command.Undo(call.Context)
	default:
		return commands.Result{}, fmt.Errorf("unknown operation %q", call.Operation)
	}
}

// CommandManager allows, executes and undoes commands against an
// execution context. It adds no locking; callers serialize calls per
// graph.
type CommandManager struct {
	factory *commands.Factory
	handler Handler
	logger  *zap.Logger
}

// NewCommandManager creates a manager running calls through middlewares
func NewCommandManager(factory *commands.Factory, logger *zap.Logger, middlewares ...Middleware) *CommandManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandManager{
		factory: factory,
		handler: NewPipeline(middlewares...).Then(HandlerFunc(dispatch)),
		logger:  logger,
	}
}

// Factory returns the factory requests are built with
func (m *CommandManager) Factory() *commands.Factory {
	return m.factory
}

// Allow evaluates cmd's rules without mutating the graph
func (m *CommandManager) Allow(ctx context.Context, ec *commands.ExecutionContext, cmd commands.Command) (commands.Result, error) {
	return m.handler.Handle(ctx, Call{Operation: OperationAllow, Command: cmd, Context: ec})
}

// Execute runs cmd
func (m *CommandManager) Execute(ctx context.Context, ec *commands.ExecutionContext, cmd commands.Command) (commands.Result, error) {
	return m.handler.Handle(ctx, Call{Operation: OperationExecute, Command: cmd, Context: ec})
}

// Undo reverts cmd
func (m *CommandManager) Undo(ctx context.Context, ec *commands.ExecutionContext, cmd commands.Command) (commands.Result, error) {
	return m.handler.Handle(ctx, Call{Operation: OperationUndo, Command: cmd, Context: ec})
}

// Build validates req and returns the command it describes
func (m *CommandManager) Build(req commands.Request) (commands.Command, error) {
	if req == nil {
		return nil, pkgerrors.NewDomainError(pkgerrors.DomainValidationError, pkgerrors.ErrUnknownRequest.Code,
			"request is nil")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, pkgerrors.NewDomainError(pkgerrors.DomainValidationError, pkgerrors.ErrInvalidRequest.Code,
			fmt.Sprintf("%s request failed validation", req.Kind())).WithCause(err)
	}
	return m.factory.FromRequest(req)
}

// Send builds the command req describes and executes it. The command is
// returned so the caller can undo it later.
func (m *CommandManager) Send(ctx context.Context, ec *commands.ExecutionContext, req commands.Request) (commands.Command, commands.Result, error) {
	cmd, err := m.Build(req)
	if err != nil {
		m.logger.Debug("Request rejected", zap.Error(err))
		return nil, commands.Result{}, err
	}

	res, err := m.Execute(ctx, ec, cmd)
	return cmd, res, err
}
