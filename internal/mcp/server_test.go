package mcp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/talentsync/internal/cache"
	"github.com/honeycarbs/talentsync/internal/config"
	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/metrics"
	"github.com/honeycarbs/talentsync/internal/orchestrator"
	"github.com/honeycarbs/talentsync/internal/provider/providertest"
	"github.com/honeycarbs/talentsync/internal/storage/storetest"
	tsync "github.com/honeycarbs/talentsync/internal/sync"
	"github.com/honeycarbs/talentsync/pkg/logging"
)

func newTestResources(t *testing.T) (*Resources, *providertest.Fake) {
	t.Helper()

	store := storetest.NewSQLite(t)
	fake := providertest.New()
	collector := metrics.NewCollector(nil)

	syncer, err := tsync.NewSyncer(store, fake, nil, collector)
	require.NoError(t, err)
	dispatcher := tsync.NewDispatcher(syncer, nil, tsync.WithRecorder(collector))

	orch, err := orchestrator.New(
		orchestrator.WithStore(store),
		orchestrator.WithProvider(fake),
		orchestrator.WithDispatcher(dispatcher),
		orchestrator.WithCache(cache.NewMemory(cache.WithRecorder(collector))),
	)
	require.NoError(t, err)

	res := newResources(store, orch, dispatcher, tsync.NewSweeper(store, syncer, nil, tsync.SweepConfig{}), collector, sheetsWriter{})
	t.Cleanup(func() { _ = res.Shutdown(context.Background()) })
	return res, fake
}

func newTestServer(t *testing.T, metricsEnabled bool) (*httptest.Server, *Resources, *providertest.Fake) {
	t.Helper()

	res, fake := newTestResources(t)
	cfg := config.Config{Host: "127.0.0.1", Port: "0", MetricsEnabled: metricsEnabled}
	srv, err := NewServer(logging.NewNop(), cfg, res)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, res, fake
}

func TestNewServerRequiresOrchestrator(t *testing.T) {
	_, err := NewServer(logging.NewNop(), config.Config{}, &Resources{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	ts, _, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	metricsResp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, metricsResp.StatusCode)
}

func TestStreamableToolCallSyncsTalent(t *testing.T) {
	ts, res, fake := newTestServer(t, true)
	ctx := context.Background()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "server-test", Version: "v0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.URL + "/mcp/stream"}, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	out, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name: "create_or_update_talent",
		Arguments: map[string]any{
			"talent": map[string]any{"linkedinUrl": "https://www.linkedin.com/in/ada-lovelace/", "name": "Ada Lovelace"},
		},
	})
	require.NoError(t, err)
	require.False(t, out.IsError)

	require.Eventually(t, func() bool {
		got, err := res.Store.FindTalentByHandle(ctx, "ada-lovelace")
		return err == nil && got.SyncStatus == domain.SyncSynced
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, fake.CreateCount())

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `talentsync_sync_attempts_total{outcome="synced"} 1`)
}
