package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Smoke test against a running server. Each step feeds ids into the next.
func main() {
	ctx := context.Background()

	endpoint := os.Getenv("MCP_URL")
	if endpoint == "" {
		endpoint = "http://localhost:8080/mcp/stream"
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "talentsync-test-client",
		Version: "0.2.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	log.Printf("Connected to server (session ID: %s)\n", session.ID())

	testListTools(ctx, session)

	jobID := dataString(call(ctx, session, "create_job", map[string]any{
		"name":        "Senior Go Engineer",
		"description": "Backend services and data plumbing",
	}), "id")

	call(ctx, session, "validate_profile", map[string]any{
		"profile_url": "https://www.linkedin.com/in/test-client-talent/",
	})

	upsert := call(ctx, session, "create_or_update_talent", map[string]any{
		"talent": map[string]any{
			"linkedinUrl": "https://www.linkedin.com/in/test-client-talent/",
			"name":        "Test Client Talent",
			"headline":    "Go developer",
			"matchScore":  81,
		},
		"job_id": jobID,
	})
	talentID := ""
	if talent, ok := data(upsert)["talent"].(map[string]any); ok {
		talentID, _ = talent["id"].(string)
	}

	call(ctx, session, "attach_talent_to_job", map[string]any{
		"job_id":      jobID,
		"talent_id":   talentID,
		"match_score": 88,
		"ai_review":   map[string]any{"summary": "strong backend background"},
	})

	candidates := call(ctx, session, "candidates_for_job", map[string]any{"job_id": jobID})
	if list, ok := data(candidates)["candidates"].([]any); ok && len(list) > 0 {
		if c, ok := list[0].(map[string]any); ok {
			if app, ok := c["application"].(map[string]any); ok {
				appID, _ := app["id"].(string)
				call(ctx, session, "update_application_stage", map[string]any{
					"application_id": appID,
					"stage":          "Interview",
				})
			}
		}
	}

	call(ctx, session, "candidate_for_job", map[string]any{"job_id": jobID, "talent_id": talentID})
	call(ctx, session, "edit_talent", map[string]any{
		"talent_id": talentID,
		"changes":   map[string]any{"location": "Remote"},
	})
	call(ctx, session, "get_talent", map[string]any{"talent_id": talentID})
	call(ctx, session, "list_talents", map[string]any{"search_term": "test-client"})
	call(ctx, session, "list_jobs", map[string]any{"status": "all"})
	call(ctx, session, "delete_talent", map[string]any{"talent_id": talentID})

	fmt.Println("\nAll tests completed")
}

func testListTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: list tools")

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		log.Fatalf("list tools failed: %v", err)
	}

	for _, tool := range tools.Tools {
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
}

// call runs one tool, prints its result and returns the structured envelope
func call(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) map[string]any {
	fmt.Printf("\nTEST: %s\n", name)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		log.Printf("%s failed: %v", name, err)
		return nil
	}

	printResult(result)
	if result.IsError {
		fmt.Printf("%s returned an error envelope\n", name)
	} else {
		fmt.Printf("%s passed\n", name)
	}

	envelope, _ := result.StructuredContent.(map[string]any)
	return envelope
}

func data(envelope map[string]any) map[string]any {
	d, _ := envelope["data"].(map[string]any)
	return d
}

func dataString(envelope map[string]any, key string) string {
	s, _ := data(envelope)[key].(string)
	return s
}

func printResult(result *mcp.CallToolResult) {
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			fmt.Println(text.Text)
		}
	}
	if result.StructuredContent != nil {
		b, err := json.MarshalIndent(result.StructuredContent, "", "  ")
		if err == nil {
			fmt.Println(string(b))
		}
	}
}
