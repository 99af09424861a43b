package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const systemPromptTemplate = `You are a recruiting assistant working a talent pipeline.

YOUR ROLE:
- Capture LinkedIn profiles as talents and place them in job pipelines
- Keep pipelines tidy: stages, removals, reconsideration of rejected talents
- Report pipeline state and export it to spreadsheets on request

TOOL USAGE GUIDELINES:
- Before capturing a profile, call validate_profile to see whether it is already stored
- create_or_update_talent returns immediately; the ATS sync runs in the background,
  so a PENDING sync status is expected and not an error
- Placing a talent in a job is attach_talent_to_job; pass match_score and ai_review
  only when you actually evaluated the fit
- Use list_jobs to resolve a job by name before attaching anyone to it
- For "who is in the pipeline" questions use candidates_for_job; for one talent in one job use candidate_for_job
- Use get_talent for a full profile and edit_talent to change a stored talent by id%s

RULES:
1. Never invent ids; take them from tool results
2. If a tool fails, explain the error kind (validation, not_found, provider) in plain language
3. Do not delete talents unless the user asks for it explicitly`

const maxIterations = 10

// Agent drives an Anthropic tool-use loop over the talentsync MCP tools
type Agent struct {
	session  *mcp.ClientSession
	llm      anthropic.Client
	model    anthropic.Model
	system   string
	tools    []*mcp.Tool
	toolDefs []anthropic.ToolUnionParam
}

// AgentConfig configures NewAgent
type AgentConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	SheetsID string
}

func NewAgent(ctx context.Context, cfg AgentConfig) (*Agent, error) {
	mcpClient := mcp.NewClient(&mcp.Implementation{
		Name:    "talentsync-agent",
		Version: "0.2.0",
	}, nil)

	fmt.Printf("Connecting to MCP server at: %s\n", cfg.Endpoint)
	session, err := mcpClient.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: cfg.Endpoint}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server at %s: %w", cfg.Endpoint, err)
	}

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	sheets := ""
	if cfg.SheetsID != "" {
		sheets = fmt.Sprintf("\n- For pipeline_export ALWAYS use spreadsheet_id %q; do not ask the user for it", cfg.SheetsID)
	}

	return &Agent{
		session:  session,
		llm:      anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:    anthropic.Model(cfg.Model),
		system:   fmt.Sprintf(systemPromptTemplate, sheets),
		tools:    listed.Tools,
		toolDefs: toolParams(listed.Tools),
	}, nil
}

func (a *Agent) Close() error {
	return a.session.Close()
}

// RunQuery answers one user request, calling tools until the model stops asking for them
func (a *Agent) RunQuery(ctx context.Context, query string) error {
	fmt.Printf("\nUser Query: %s\n\n", query)
	fmt.Println(strings.Repeat("=", 80))

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
	}

	for i := 1; i <= maxIterations; i++ {
		if i == 1 {
			fmt.Println("[Agent] Analyzing your request...")
		} else {
			fmt.Printf("[Agent] Processing step %d...\n", i)
		}

		msg, err := a.llm.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     a.model,
			MaxTokens: 2048,
			System:    []anthropic.TextBlockParam{{Text: a.system}},
			Messages:  messages,
			Tools:     a.toolDefs,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("anthropic API error: %w", err)
		}
		messages = append(messages, msg.ToParam())

		var (
			text    strings.Builder
			results []anthropic.ContentBlockParamUnion
		)
		for _, block := range msg.Content {
			switch v := block.AsAny().(type) {
			case anthropic.TextBlock:
				text.WriteString(v.Text)
			case anthropic.ToolUseBlock:
				fmt.Printf("\n[Tool] %s\n", v.Name)
				out, isErr := a.callTool(ctx, v.Name, v.Input)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if isErr {
					fmt.Printf("[Error] %s\n", out)
				}
				results = append(results, anthropic.NewToolResultBlock(v.ID, out, isErr))
			}
		}

		if len(results) > 0 {
			messages = append(messages, anthropic.NewUserMessage(results...))
			continue
		}

		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println(text.String())
		fmt.Println(strings.Repeat("=", 80))
		return nil
	}

	return errors.New("max iterations reached")
}

// callTool runs one MCP tool and flattens its text content for the model
func (a *Agent) callTool(ctx context.Context, name string, raw json.RawMessage) (string, bool) {
	args := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return fmt.Sprintf("invalid tool input: %v", err), true
		}
	}

	toolCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	res, err := a.session.CallTool(toolCtx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return err.Error(), true
	}

	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	if res.StructuredContent != nil {
		if b, err := json.Marshal(res.StructuredContent); err == nil {
			parts = append(parts, string(b))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "tool executed successfully")
	}
	return strings.Join(parts, "\n"), res.IsError
}

// toolParams converts MCP tool schemas into Anthropic tool definitions
func toolParams(tools []*mcp.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}
		if m := schemaMap(t.InputSchema); m != nil {
			if props, ok := m["properties"].(map[string]any); ok {
				schema.Properties = props
			}
			if req, ok := m["required"].([]any); ok {
				for _, r := range req {
					if s, ok := r.(string); ok {
						schema.Required = append(schema.Required, s)
					}
				}
			}
		}

		param := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &param})
	}
	return out
}

// schemaMap normalizes whatever schema representation the SDK decoded into a plain map
func schemaMap(schema any) map[string]any {
	switch s := schema.(type) {
	case nil:
		return nil
	case map[string]any:
		return s
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return nil
		}
		return m
	}
}
