//go:build wireinject
// +build wireinject

package mcp

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/talentsync/internal/config"
	"github.com/honeycarbs/talentsync/pkg/logging"
)

// InitializeResources creates Resources with all resources wired up.
// The returned cleanup closes the record store.
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	wire.Build(
		// Infrastructure
		provideStore,
		provideCollector,
		provideCache,

		// External services
		provideExternalProvider,
		provideEnricher,
		provideSheetsWriter,

		// Sync
		provideSyncer,
		provideDispatcher,
		provideSweeper,

		// Orchestration
		provideOrchestrator,
		newResources,
	)

	return nil, nil, nil
}
