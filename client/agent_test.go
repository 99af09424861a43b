package main

import (
	"testing"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolParamsCarriesSchema(t *testing.T) {
	tools := []*mcp.Tool{
		{
			Name:        "attach_talent_to_job",
			Description: "Place a talent in a job pipeline",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"job_id":    map[string]any{"type": "string"},
					"talent_id": map[string]any{"type": "string"},
				},
				"required": []any{"job_id", "talent_id"},
			},
		},
		{Name: "list_jobs"},
	}

	params := toolParams(tools)
	require.Len(t, params, 2)

	attach := params[0].OfTool
	require.NotNil(t, attach)
	assert.Equal(t, "attach_talent_to_job", attach.Name)
	assert.ElementsMatch(t, []string{"job_id", "talent_id"}, attach.InputSchema.Required)
	props, ok := attach.InputSchema.Properties.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "job_id")

	list := params[1].OfTool
	require.NotNil(t, list)
	assert.Empty(t, list.InputSchema.Required)
}

func TestSchemaMapRoundTripsStructs(t *testing.T) {
	type schema struct {
		Type     string   `json:"type"`
		Required []string `json:"required"`
	}

	m := schemaMap(schema{Type: "object", Required: []string{"job_id"}})
	require.NotNil(t, m)
	assert.Equal(t, "object", m["type"])
	assert.Equal(t, []any{"job_id"}, m["required"])
	assert.Nil(t, schemaMap(nil))
}
