package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	endpoint := os.Getenv("MCP_URL")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}
	if !strings.HasSuffix(endpoint, "/mcp/stream") {
		endpoint = strings.TrimSuffix(endpoint, "/") + "/mcp/stream"
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable must be set")
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-sonnet-4-5"
	}

	sheetsID := os.Getenv("GOOGLE_SHEETS_ID")

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("MCP Server URL: %s\n", endpoint)
	fmt.Printf("Model: %s\n", model)
	if sheetsID != "" {
		fmt.Printf("Google Sheets ID: %s\n", sheetsID)
	}
	fmt.Println(strings.Repeat("=", 80))

	agent, err := NewAgent(ctx, AgentConfig{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    model,
		SheetsID: sheetsID,
	})
	if err != nil {
		log.Fatalf("Failed to create agent: %v", err)
	}
	defer func() { _ = agent.Close() }()

	fmt.Printf("\nLoaded %d tools\n", len(agent.tools))
	for i, tool := range agent.tools {
		fmt.Printf("  %d. %s - %s\n", i+1, tool.Name, tool.Description)
	}

	if len(os.Args) > 1 {
		if err := agent.RunQuery(ctx, strings.Join(os.Args[1:], " ")); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}

	fmt.Println("\nType 'quit' or 'exit' to end the session.")

	inputs := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputs <- scanner.Text()
		}
		close(inputs)
	}()

	for {
		fmt.Print("\nYour request: ")

		select {
		case <-ctx.Done():
			fmt.Println("\nShutdown complete.")
			return
		case input, ok := <-inputs:
			if !ok {
				return
			}
			input = strings.TrimSpace(input)
			switch strings.ToLower(input) {
			case "":
				continue
			case "quit", "exit", "q":
				return
			}

			if err := agent.RunQuery(ctx, input); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				fmt.Printf("\nAn error occurred: %v\n", err)
			}
		}
	}
}
