package errors

import (
	"fmt"
	"strings"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates malformed input or command arguments
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainBusinessRuleError indicates a structural constraint of the graph was broken
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"

	// DomainNotFoundError indicates an element was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainConflictError indicates a conflict with existing state
	DomainConflictError DomainErrorType = "CONFLICT"

	// DomainStateError indicates a command was used outside its lifecycle
	DomainStateError DomainErrorType = "STATE_ERROR"

	// DomainInfrastructureError indicates a failure reading configuration or documents
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type      DomainErrorType        `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Retryable bool                   `json:"retryable"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// WithCause adds a cause to the error
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// Is matches on type and code so sentinels below work with errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Sentinels for errors.Is. Never attach details to these; use the
// constructors below, which return fresh instances.
var (
	// Command errors
	ErrBadCommandArguments = NewDomainError(
		DomainValidationError,
		"BAD_COMMAND_ARGUMENTS",
		"Command arguments cannot be resolved against the graph",
	)

	ErrCommandAlreadyExecuted = NewDomainError(
		DomainStateError,
		"COMMAND_ALREADY_EXECUTED",
		"Command has already been executed",
	)

	ErrCommandNotExecuted = NewDomainError(
		DomainStateError,
		"COMMAND_NOT_EXECUTED",
		"Command has not been executed",
	)

	ErrUnknownRequest = NewDomainError(
		DomainValidationError,
		"UNKNOWN_REQUEST",
		"No command is registered for the request kind",
	)

	ErrInvalidRequest = NewDomainError(
		DomainValidationError,
		"INVALID_REQUEST",
		"Request failed validation",
	)

	// Node errors
	ErrNodeNotFound = NewDomainError(
		DomainNotFoundError,
		"NODE_NOT_FOUND",
		"The requested node does not exist",
	)

	ErrDuplicateNode = NewDomainError(
		DomainConflictError,
		"DUPLICATE_NODE",
		"A node with this id already exists in the graph",
	)

	ErrInvalidNodeID = NewDomainError(
		DomainValidationError,
		"INVALID_NODE_ID",
		"Node id cannot be empty",
	)

	// Graph errors
	ErrGraphLimitExceeded = NewDomainError(
		DomainBusinessRuleError,
		"GRAPH_LIMIT_EXCEEDED",
		"Maximum number of graph elements exceeded",
	)

	ErrGraphNameRequired = NewDomainError(
		DomainValidationError,
		"GRAPH_NAME_REQUIRED",
		"Graph name is required",
	)

	ErrContainmentCycle = NewDomainError(
		DomainBusinessRuleError,
		"CONTAINMENT_CYCLE",
		"Child edges form a cycle",
	)

	ErrContainmentTooDeep = NewDomainError(
		DomainBusinessRuleError,
		"CONTAINMENT_TOO_DEEP",
		"Containment hierarchy exceeds the configured depth",
	)

	// Edge errors
	ErrEdgeNotFound = NewDomainError(
		DomainNotFoundError,
		"EDGE_NOT_FOUND",
		"The requested edge does not exist",
	)

	ErrDuplicateEdge = NewDomainError(
		DomainConflictError,
		"DUPLICATE_EDGE",
		"An edge with this id already exists in the graph",
	)

	ErrInvalidEdgeID = NewDomainError(
		DomainValidationError,
		"INVALID_EDGE_ID",
		"Edge id cannot be empty",
	)

	// Configuration and document errors
	ErrInvalidRuleSet = NewDomainError(
		DomainInfrastructureError,
		"INVALID_RULE_SET",
		"Rule set definition is invalid",
	)

	ErrStencilMalformed = NewDomainError(
		DomainInfrastructureError,
		"STENCIL_MALFORMED",
		"Stencil document cannot be parsed",
	)

	ErrStencilReferenceNotFound = NewDomainError(
		DomainInfrastructureError,
		"STENCIL_REFERENCE_NOT_FOUND",
		"Stencil document references an unknown resource",
	)
)

// NewBadCommandArguments reports a command whose candidate cannot be resolved.
func NewBadCommandArguments(command string, id string, message string) *DomainError {
	return NewDomainError(DomainValidationError, ErrBadCommandArguments.Code, message).
		WithDetails(map[string]interface{}{"command": command, "id": id})
}

// NewNodeNotFound reports a node id absent from the graph.
func NewNodeNotFound(id string) *DomainError {
	return NewDomainError(DomainNotFoundError, ErrNodeNotFound.Code,
		fmt.Sprintf("node %q does not exist", id)).WithDetail("node_id", id)
}

// NewEdgeNotFound reports an edge id absent from the graph.
func NewEdgeNotFound(id string) *DomainError {
	return NewDomainError(DomainNotFoundError, ErrEdgeNotFound.Code,
		fmt.Sprintf("edge %q does not exist", id)).WithDetail("edge_id", id)
}

// NewStateError reports a lifecycle violation for the named command.
func NewStateError(sentinel *DomainError, command string) *DomainError {
	return NewDomainError(sentinel.Type, sentinel.Code,
		fmt.Sprintf("%s: %s", command, strings.ToLower(sentinel.Message))).
		WithDetail("command", command)
}

// ValidationErrors aggregates multiple validation errors
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*DomainError, 0),
	}
}

// Add adds a validation error
func (v *ValidationErrors) Add(field string, message string) {
	err := NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field)
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// Fields groups messages by the field they refer to
func (v *ValidationErrors) Fields() map[string][]string {
	result := make(map[string][]string)
	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}
		result[field] = append(result[field], err.Message)
	}
	return result
}
