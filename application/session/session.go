// Package session serializes command execution against one graph and
// keeps the history needed to undo it.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphcore/application/commands"
	"graphcore/application/commands/bus"
	"graphcore/domain/core/aggregates"
	"graphcore/domain/rules"
	"graphcore/domain/versioning"
	pkgerrors "graphcore/pkg/errors"
)

// AtomicState is the outcome of an atomic execution
type AtomicState string

const (
	AtomicStateCompleted          AtomicState = "COMPLETED"
	AtomicStateCompensated        AtomicState = "COMPENSATED"
	AtomicStateCompensationFailed AtomicState = "COMPENSATION_FAILED"
)

// Session owns a graph. Every call takes the session lock, so commands
// against the same graph never interleave.
type Session struct {
	mu      sync.Mutex
	id      string
	ec      *commands.ExecutionContext
	manager *bus.CommandManager
	history []commands.Command
	logger  *zap.Logger
}

// New creates a session over g. rm may be nil.
func New(g *aggregates.Graph, rm rules.Manager, manager *bus.CommandManager, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	logger = logger.With(zap.String("session_id", id), zap.String("graph", g.Name()))
	return &Session{
		id:      id,
		ec:      commands.NewExecutionContext(g, rm, logger),
		manager: manager,
		logger:  logger,
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// View runs fn with the graph while holding the session lock. fn must not
// keep the graph beyond the call.
func (s *Session) View(fn func(g *aggregates.Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ec.Graph)
}

// Allow evaluates cmd without mutating the graph
func (s *Session) Allow(ctx context.Context, cmd commands.Command) (commands.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Allow(ctx, s.ec, cmd)
}

// Execute runs cmd and records it for Undo once it executed
func (s *Session) Execute(ctx context.Context, cmd commands.Command) (commands.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execute(ctx, cmd)
}

func (s *Session) execute(ctx context.Context, cmd commands.Command) (commands.Result, error) {
	res, err := s.manager.Execute(ctx, s.ec, cmd)
	if cmd.State() == commands.StateExecuted {
		s.history = append(s.history, cmd)
	}
	return res, err
}

// Send builds the command req describes and executes it
func (s *Session) Send(ctx context.Context, req commands.Request) (commands.Command, commands.Result, error) {
	cmd, err := s.manager.Build(req)
	if err != nil {
		return nil, commands.Result{}, err
	}
	res, err := s.Execute(ctx, cmd)
	return cmd, res, err
}

// ExecuteAtomic runs cmd and, when it is refused by an ERROR or fails,
// undoes whatever part of it was applied. The returned state tells whether
// the graph is back where it started, checked against a snapshot taken
// before the call.
func (s *Session) ExecuteAtomic(ctx context.Context, cmd commands.Command) (commands.Result, AtomicState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Starting atomic execution", zap.String("command", cmd.String()))

	before, snapErr := versioning.Take(s.ec.Graph)
	if snapErr != nil {
		return commands.Result{}, AtomicStateCompensated, snapErr
	}

	res, err := s.manager.Execute(ctx, s.ec, cmd)
	if err == nil && !res.IsError() {
		if cmd.State() == commands.StateExecuted {
			s.history = append(s.history, cmd)
		}
		return res, AtomicStateCompleted, nil
	}

	if cmd.State() != commands.StateExecuted {
		return res, AtomicStateCompensated, err
	}

	s.logger.Info("Compensating partially applied command",
		zap.String("command", cmd.String()),
		zap.Stringer("result", res),
		zap.Error(err),
	)
	if _, undoErr := s.manager.Undo(ctx, s.ec, cmd); undoErr != nil {
		s.logger.Error("Compensation failed",
			zap.String("command", cmd.String()),
			zap.Error(undoErr),
		)
		if err != nil {
			return res, AtomicStateCompensationFailed, fmt.Errorf("%w (compensation failed: %v)", err, undoErr)
		}
		return res, AtomicStateCompensationFailed, fmt.Errorf("compensation failed: %w", undoErr)
	}

	after, snapErr := versioning.Take(s.ec.Graph)
	if snapErr != nil {
		return res, AtomicStateCompensationFailed, snapErr
	}
	if !before.Matches(after) {
		diff, _ := versioning.Compare(before, after)
		s.logger.Error("Compensation left the graph changed",
			zap.String("command", cmd.String()),
			zap.Strings("nodes_removed", diff.Nodes.Removed),
			zap.Strings("edges_removed", diff.Edges.Removed),
			zap.Strings("edges_updated", diff.Edges.Updated),
		)
		return res, AtomicStateCompensationFailed, fmt.Errorf("compensation of %s did not restore the graph", cmd)
	}
	return res, AtomicStateCompensated, err
}

// Undo reverts the most recently executed command
func (s *Session) Undo(ctx context.Context) (commands.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return nil, pkgerrors.NewStateError(pkgerrors.ErrCommandNotExecuted, "Undo")
	}
	last := s.history[len(s.history)-1]
	if _, err := s.manager.Undo(ctx, s.ec, last); err != nil {
		return nil, err
	}
	s.history = s.history[:len(s.history)-1]
	s.logger.Debug("Command undone", zap.String("command", last.String()))
	return last, nil
}

// History lists the undoable commands, oldest first
func (s *Session) History() []commands.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]commands.Command(nil), s.history...)
}
