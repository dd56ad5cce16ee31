package tools

import (
	"fmt"

	"github.com/alucardeht/x-mcp/pkg/protocol"
)

type ToolError struct {
	Code    int64
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

func NewToolNotFoundError(name string) *ToolError {
	return &ToolError{
		Code:    protocol.CodeMethodNotFound,
		Message: fmt.Sprintf("Unknown tool: %s", name),
	}
}

func NewToolExecutionError(name string, err error) *ToolError {
	return &ToolError{
		Code:    protocol.CodeInternalError,
		Message: fmt.Sprintf("Error executing tool %s: %v", name, err),
	}
}

// NewInvalidArgumentsError wraps a decode or validation failure on tool
// arguments.
func NewInvalidArgumentsError(err error) *ToolError {
	return &ToolError{
		Code:    protocol.CodeInvalidParams,
		Message: fmt.Sprintf("invalid arguments: %v", err),
	}
}
