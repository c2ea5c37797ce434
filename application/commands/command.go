// Package commands holds the reversible graph mutations. Every change to a
// graph goes through a Command: it is checked against the configured rules
// with Allow, applied with Execute and reverted with Undo.
package commands

import (
	"fmt"

	"go.uber.org/zap"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/rules"
	pkgerrors "graphcore/pkg/errors"
)

// ResultType is the outcome of a command
type ResultType string

const (
	ResultSuccess ResultType = "SUCCESS"
	ResultWarning ResultType = "WARNING"
	ResultError   ResultType = "ERROR"
)

// Result carries the outcome and every violation reported on the way.
// ResultError always comes with at least one error-severity violation.
type Result struct {
	Type       ResultType
	Violations rules.Violations
}

// Success is the result of a command with nothing to report
func Success() Result {
	return Result{Type: ResultSuccess}
}

// NewResult derives the outcome from the violations
func NewResult(violations rules.Violations) Result {
	switch {
	case violations.HasErrors():
		return Result{Type: ResultError, Violations: violations}
	case violations.HasWarnings():
		return Result{Type: ResultWarning, Violations: violations}
	default:
		return Result{Type: ResultSuccess, Violations: violations}
	}
}

// IsError reports whether the command was refused
func (r Result) IsError() bool {
	return r.Type == ResultError
}

// Merge appends other's violations and recomputes the outcome
func (r Result) Merge(other Result) Result {
	merged := make(rules.Violations, 0, len(r.Violations)+len(other.Violations))
	merged = append(merged, r.Violations...)
	merged = append(merged, other.Violations...)
	return NewResult(merged)
}

func (r Result) String() string {
	if len(r.Violations) == 0 {
		return string(r.Type)
	}
	return fmt.Sprintf("%s: %s", r.Type, r.Violations)
}

// ExecutionContext is what a command runs against. Rules may be nil, in
// which case no structural rule is evaluated.
type ExecutionContext struct {
	Graph  *aggregates.Graph
	Rules  rules.Manager
	Logger *zap.Logger
}

// NewExecutionContext creates a context; a nil logger is replaced by a
// no-op one.
func NewExecutionContext(g *aggregates.Graph, rm rules.Manager, logger *zap.Logger) *ExecutionContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionContext{Graph: g, Rules: rm, Logger: logger}
}

// HasRules reports whether a rule manager is configured
func (ec *ExecutionContext) HasRules() bool {
	return ec.Rules != nil
}

func (ec *ExecutionContext) log() *zap.Logger {
	if ec.Logger == nil {
		return zap.NewNop()
	}
	return ec.Logger
}

// Command is a single-use graph mutation.
//
// When Allow, Execute or Undo return a non-nil error the command could not
// run at all (for instance its arguments no longer resolve) and the
// returned Result carries no information.
type Command interface {
	fmt.Stringer

	// Name identifies the command type
	Name() string

	// Allow evaluates the command's rules without mutating anything
	Allow(ec *ExecutionContext) (Result, error)

	// Execute checks and applies the mutation. A Result of type ERROR
	// means nothing was applied.
	Execute(ec *ExecutionContext) (Result, error)

	// Undo reverts a successful Execute
	Undo(ec *ExecutionContext) (Result, error)

	// State reports where the command is in its lifecycle
	State() State
}

// State of a command's lifecycle
type State string

const (
	StateUnexecuted State = "UNEXECUTED"
	StateAllowed    State = "ALLOWED"
	StateDisallowed State = "DISALLOWED"
	StateExecuted   State = "EXECUTED"
	StateUndone     State = "UNDONE"
)

// lifecycle enforces execute-at-most-once and undo-only-after-execute
type lifecycle struct {
	state State
}

func (l *lifecycle) State() State {
	if l.state == "" {
		return StateUnexecuted
	}
	return l.state
}

func (l *lifecycle) beginExecute(name string) error {
	switch l.State() {
	case StateExecuted, StateUndone:
		return pkgerrors.NewStateError(pkgerrors.ErrCommandAlreadyExecuted, name)
	}
	return nil
}

func (l *lifecycle) beginUndo(name string) error {
	if l.State() != StateExecuted {
		return pkgerrors.NewStateError(pkgerrors.ErrCommandNotExecuted, name)
	}
	return nil
}

func (l *lifecycle) recordAllow(r Result) {
	switch l.State() {
	case StateUnexecuted, StateAllowed, StateDisallowed:
		if r.IsError() {
			l.state = StateDisallowed
		} else {
			l.state = StateAllowed
		}
	}
}

// mutation is the part of an elementary command that differs between
// command types; the lifecycle around it is shared.
type mutation interface {
	Name() string
	check(ec *ExecutionContext) (Result, error)
	apply(ec *ExecutionContext) error
	revert(ec *ExecutionContext) error
}

func allow(ec *ExecutionContext, l *lifecycle, m mutation) (Result, error) {
	res, err := m.check(ec)
	if err != nil {
		return Result{}, err
	}
	l.recordAllow(res)
	return res, nil
}

func execute(ec *ExecutionContext, l *lifecycle, m mutation) (Result, error) {
	if err := l.beginExecute(m.Name()); err != nil {
		return Result{}, err
	}

	res, err := m.check(ec)
	if err != nil {
		l.state = StateDisallowed
		return Result{}, err
	}
	if res.IsError() {
		l.state = StateDisallowed
		ec.log().Debug("Command refused by rules",
			zap.String("command", m.Name()),
			zap.Stringer("violations", res.Violations),
		)
		return res, nil
	}

	if err := m.apply(ec); err != nil {
		l.state = StateDisallowed
		return Result{}, err
	}
	l.state = StateExecuted
	return res, nil
}

func undo(ec *ExecutionContext, l *lifecycle, m mutation) (Result, error) {
	if err := l.beginUndo(m.Name()); err != nil {
		return Result{}, err
	}
	if err := m.revert(ec); err != nil {
		return Result{}, err
	}
	l.state = StateUndone
	return Success(), nil
}

// evaluate turns violations into a Result, treating a nil manager as no rules
func evaluate(ec *ExecutionContext, fn func(rules.Manager) rules.Violations) Result {
	if !ec.HasRules() {
		return Success()
	}
	return NewResult(fn(ec.Rules))
}
