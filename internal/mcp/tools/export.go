package tools

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/talentsync/internal/domain"
)

// PipelineReader loads the pipeline view of one job
type PipelineReader interface {
	CandidatesForJob(ctx context.Context, jobID string) domain.Result[domain.JobCandidates]
}

// SheetWriter writes pipeline rows to a spreadsheet tab
type SheetWriter interface {
	WritePipeline(ctx context.Context, spreadsheetID, tab string, rows []PipelineRow, replace bool) error
}

// PipelineRow is one exported candidate
type PipelineRow struct {
	Name       string   `json:"name"`
	Handle     string   `json:"handle"`
	Headline   string   `json:"headline,omitempty"`
	Stage      string   `json:"stage"`
	Status     string   `json:"status"`
	MatchScore *float64 `json:"match_score,omitempty"`
	SyncStatus string   `json:"sync_status"`
	ExternalID string   `json:"external_id,omitempty"`
}

// ExportPipelineParams defines the arguments for the pipeline_export tool
type ExportPipelineParams struct {
	JobID         string `json:"job_id" jsonschema:"Job whose candidates are exported"`
	SpreadsheetID string `json:"spreadsheet_id" jsonschema:"Google Sheets document ID"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab name, default Sheet1"`
	Replace       bool   `json:"replace,omitempty" jsonschema:"Clear the tab and rewrite it instead of appending"`
}

// ExportReport summarizes an export
type ExportReport struct {
	JobID         string    `json:"job_id"`
	SpreadsheetID string    `json:"spreadsheet_id"`
	Tab           string    `json:"tab,omitempty"`
	WrittenRows   int       `json:"written_rows"`
	Mode          string    `json:"mode"`
	CompletedAt   time.Time `json:"completed_at"`
}

// PipelineRows flattens the candidates of a job into export rows
func PipelineRows(v domain.JobCandidates) []PipelineRow {
	rows := make([]PipelineRow, 0, len(v.Candidates))
	for _, c := range v.Candidates {
		score := c.Application.MatchScore
		if score == nil {
			score = c.Talent.MatchScore
		}
		rows = append(rows, PipelineRow{
			Name:       c.Talent.Name,
			Handle:     c.Talent.Handle,
			Headline:   c.Talent.Headline,
			Stage:      c.Application.Stage,
			Status:     c.Talent.Status,
			MatchScore: score,
			SyncStatus: c.Talent.SyncStatus,
			ExternalID: c.Talent.ExternalID,
		})
	}
	return rows
}

// WithPipelineExport registers the pipeline_export tool
func WithPipelineExport(reader PipelineReader, writer SheetWriter) Option {
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "pipeline_export",
			Description: "Export the candidates of a job to Google Sheets",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params *ExportPipelineParams) (*sdkmcp.CallToolResult, any, error) {
			const tool = "pipeline_export"
			if params == nil {
				return invalidParams[ExportReport](tool)
			}
			return envelopeResult(tool, exportPipeline(ctx, reader, writer, *params), func(r ExportReport) string {
				return fmt.Sprintf("%d row(s) written to %s (%s)", r.WrittenRows, r.SpreadsheetID, r.Mode)
			})
		})
	}
}

func exportPipeline(ctx context.Context, reader PipelineReader, writer SheetWriter, params ExportPipelineParams) domain.Result[ExportReport] {
	if params.SpreadsheetID == "" {
		return domain.Respond(ExportReport{}, domain.NewValidationError("spreadsheet_id", "is required"))
	}

	view := reader.CandidatesForJob(ctx, params.JobID)
	if !view.Success {
		return domain.Result[ExportReport]{Error: view.Error}
	}

	report := ExportReport{
		JobID:         params.JobID,
		SpreadsheetID: params.SpreadsheetID,
		Tab:           params.Tab,
		Mode:          "append",
	}
	if params.Replace {
		report.Mode = "replace"
	}

	rows := PipelineRows(view.Data)
	if err := writer.WritePipeline(ctx, params.SpreadsheetID, params.Tab, rows, params.Replace); err != nil {
		return domain.Respond(report, &domain.ProviderError{Op: "sheets_export", Err: err})
	}

	report.WrittenRows = len(rows)
	report.CompletedAt = time.Now().UTC()
	return domain.Respond(report, nil)
}
