package mcp

import (
	"context"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/talentsync/internal/mcp/tools"
	"github.com/honeycarbs/talentsync/internal/metrics"
	"github.com/honeycarbs/talentsync/internal/orchestrator"
	"github.com/honeycarbs/talentsync/internal/repository"
	tsync "github.com/honeycarbs/talentsync/internal/sync"
	"github.com/honeycarbs/talentsync/pkg/logging"
)

// ToolRegistry registers the talentsync tools on an MCP server
type ToolRegistry struct {
	logger *logging.Logger
}

// Resources is everything the server and the CLI run against
type Resources struct {
	Store        repository.Store
	Orchestrator *orchestrator.Orchestrator
	Dispatcher   *tsync.Dispatcher
	Sweeper      *tsync.Sweeper
	Collector    *metrics.Collector
	Sheets       tools.SheetWriter
}

func NewToolRegistry(logger *logging.Logger) *ToolRegistry {
	return &ToolRegistry{logger: logger}
}

func (r *ToolRegistry) RegisterAll(server *sdkmcp.Server, res *Resources) error {
	if res == nil || res.Orchestrator == nil {
		return errors.New("mcp: orchestrator is required")
	}

	sheets := res.Sheets
	if sheets == nil {
		sheets = sheetsWriter{}
	}

	tools.Register(server, r.logger,
		tools.WithTalentTools(res.Orchestrator),
		tools.WithPipelineTools(res.Orchestrator),
		tools.WithPipelineExport(res.Orchestrator, sheets),
	)
	return nil
}

// Shutdown drains background work. The store is closed by the cleanup returned
// from InitializeResources, after this has returned.
func (res *Resources) Shutdown(ctx context.Context) error {
	if res.Dispatcher == nil {
		return nil
	}
	if err := res.Dispatcher.Shutdown(ctx); err != nil && !errors.Is(err, tsync.ErrDispatcherClosed) {
		return err
	}
	return nil
}
