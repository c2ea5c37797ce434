package commands

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Composite runs an ordered list of commands as one. Execution stops at the
// first command reporting ERROR and nothing already applied is rolled back;
// callers wanting all-or-nothing undo the composite themselves.
type Composite struct {
	lifecycle
	name      string
	delegates bool
	commands  []Command
	executed  []Command
}

// NewComposite creates a composite. When delegateRules is true Allow asks
// each child; otherwise only the composite-level check applies.
func NewComposite(name string, delegateRules bool, cmds ...Command) *Composite {
	return &Composite{
		name:      name,
		delegates: delegateRules,
		commands:  append([]Command(nil), cmds...),
	}
}

// Add appends a command
func (c *Composite) Add(cmd Command) *Composite {
	c.commands = append(c.commands, cmd)
	return c
}

func (c *Composite) Name() string {
	return c.name
}

// Commands returns the children in execution order
func (c *Composite) Commands() []Command {
	return append([]Command(nil), c.commands...)
}

// Executed returns the children that were applied, in execution order
func (c *Composite) Executed() []Command {
	return append([]Command(nil), c.executed...)
}

// DelegatesRulesToChildren reports whether Allow evaluates the children
func (c *Composite) DelegatesRulesToChildren() bool {
	return c.delegates
}

// Allow implements Command
func (c *Composite) Allow(ec *ExecutionContext) (Result, error) {
	res, err := c.allowChildren(ec)
	if err != nil {
		return Result{}, err
	}
	c.recordAllow(res)
	return res, nil
}

func (c *Composite) allowChildren(ec *ExecutionContext) (Result, error) {
	if !c.delegates {
		return Success(), nil
	}

	res := Success()
	for _, cmd := range c.commands {
		childRes, err := cmd.Allow(ec)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", c.name, err)
		}
		res = res.Merge(childRes)
		if res.IsError() {
			break
		}
	}
	return res, nil
}

// Execute implements Command. A child returning an error aborts the
// composite with that error; children applied before it stay applied and
// can be reverted with Undo.
func (c *Composite) Execute(ec *ExecutionContext) (Result, error) {
	if err := c.beginExecute(c.name); err != nil {
		return Result{}, err
	}

	res := Success()
	for _, cmd := range c.commands {
		childRes, err := cmd.Execute(ec)
		if cmd.State() == StateExecuted {
			c.executed = append(c.executed, cmd)
		}
		if err != nil {
			c.settle()
			return res, fmt.Errorf("%s: %w", c.name, err)
		}

		res = res.Merge(childRes)
		if childRes.IsError() {
			ec.log().Debug("Composite halted",
				zap.String("command", c.name),
				zap.String("failed", cmd.String()),
				zap.Int("executed", len(c.executed)),
			)
			break
		}
	}

	c.settle()
	return res, nil
}

// settle leaves the composite undoable as soon as one child was applied
func (c *Composite) settle() {
	if len(c.executed) > 0 {
		c.state = StateExecuted
	} else {
		c.state = StateDisallowed
	}
}

// Undo implements Command, reverting executed children in reverse order
func (c *Composite) Undo(ec *ExecutionContext) (Result, error) {
	if err := c.beginUndo(c.name); err != nil {
		return Result{}, err
	}

	res := Success()
	for i := len(c.executed) - 1; i >= 0; i-- {
		childRes, err := c.executed[i].Undo(ec)
		if err != nil {
			return res, fmt.Errorf("%s: undo %s: %w", c.name, c.executed[i], err)
		}
		res = res.Merge(childRes)
	}
	c.state = StateUndone
	return res, nil
}

func (c *Composite) String() string {
	parts := make([]string, len(c.commands))
	for i, cmd := range c.commands {
		parts[i] = cmd.String()
	}
	return fmt.Sprintf("%s[%s]", c.name, strings.Join(parts, ", "))
}
