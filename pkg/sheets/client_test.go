package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type call struct {
	method string
	path   string
	values [][]any
}

func newTestClient(t *testing.T) (*Client, func() []call) {
	t.Helper()

	var (
		mu    sync.Mutex
		calls []call
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path}
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.values = body.Values

		mu.Lock()
		calls = append(calls, c)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Config{
		Endpoint: srv.URL + "/",
		Options:  []option.ClientOption{option.WithHTTPClient(srv.Client())},
	})
	require.NoError(t, err)

	return client, func() []call {
		mu.Lock()
		defer mu.Unlock()
		return append([]call(nil), calls...)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	require.Error(t, err)
}

func TestWriteTableReplaceClearsThenWritesHeader(t *testing.T) {
	client, calls := newTestClient(t)

	err := client.WriteTable(context.Background(), "sheet-1", "Pipeline", Table{
		Header: []string{"name", "stage"},
		Rows:   [][]any{{"Ada", "applied"}},
	}, true)
	require.NoError(t, err)

	got := calls()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.True(t, strings.HasSuffix(got[0].path, ":clear"), got[0].path)
	assert.Equal(t, http.MethodPut, got[1].method)
	require.Len(t, got[1].values, 2)
	assert.Equal(t, []any{"name", "stage"}, got[1].values[0])
	assert.Equal(t, []any{"Ada", "applied"}, got[1].values[1])
}

func TestWriteTableAppendSkipsHeader(t *testing.T) {
	client, calls := newTestClient(t)

	err := client.WriteTable(context.Background(), "sheet-1", "", Table{
		Header: []string{"name"},
		Rows:   [][]any{{"Ada"}, {"Grace"}},
	}, false)
	require.NoError(t, err)

	got := calls()
	require.Len(t, got, 1)
	assert.True(t, strings.HasSuffix(got[0].path, ":append"), got[0].path)
	assert.Contains(t, got[0].path, "Sheet1")
	assert.Len(t, got[0].values, 2)
}

func TestNilClientIsNotConfigured(t *testing.T) {
	var c *Client
	err := c.AppendValues(context.Background(), "id", "A1", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
