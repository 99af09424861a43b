package mcp

import (
	"context"
	"strconv"

	"github.com/honeycarbs/talentsync/internal/mcp/tools"
	sheetsclient "github.com/honeycarbs/talentsync/pkg/sheets"
)

var pipelineHeader = []string{"Name", "Handle", "Headline", "Stage", "Status", "Match score", "Sync", "InHire ID"}

// sheetsWriter adapts the Sheets client to tools.SheetWriter
type sheetsWriter struct {
	client *sheetsclient.Client
}

func (w sheetsWriter) WritePipeline(ctx context.Context, spreadsheetID, tab string, rows []tools.PipelineRow, replace bool) error {
	if w.client == nil {
		return sheetsclient.ErrNotConfigured
	}
	return w.client.WriteTable(ctx, spreadsheetID, tab, sheetsclient.Table{
		Header: pipelineHeader,
		Rows:   pipelineValues(rows),
	}, replace)
}

func pipelineValues(rows []tools.PipelineRow) [][]any {
	values := make([][]any, len(rows))
	for i, row := range rows {
		score := ""
		if row.MatchScore != nil {
			score = strconv.FormatFloat(*row.MatchScore, 'f', -1, 64)
		}
		values[i] = []any{
			row.Name,
			row.Handle,
			row.Headline,
			row.Stage,
			row.Status,
			score,
			row.SyncStatus,
			row.ExternalID,
		}
	}
	return values
}
