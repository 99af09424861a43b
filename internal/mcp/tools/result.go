package tools

import (
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/talentsync/internal/domain"
)

// textResult returns a text-only ToolResult
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// envelopeResult turns an orchestration envelope into a tool result. The envelope
// is the structured output; a failed envelope is flagged as a tool error.
func envelopeResult[T any](tool string, res domain.Result[T], summarize func(T) string) (*sdkmcp.CallToolResult, any, error) {
	if !res.Success {
		out := textResult(fmt.Sprintf("[%s] %s: %s", tool, res.Error.Kind, res.Error.Message))
		out.IsError = true
		return out, res, nil
	}
	return textResult(fmt.Sprintf("[%s] %s", tool, summarize(res.Data))), res, nil
}

func invalidParams[T any](tool string) (*sdkmcp.CallToolResult, any, error) {
	res := domain.Respond(*new(T), domain.NewValidationError("params", "arguments are required"))
	return envelopeResult(tool, res, nil)
}
