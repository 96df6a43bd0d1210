package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/substack-cli/api"
	"github.com/open-cli-collective/substack-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/substack-cli/internal/mdxsync"
	"github.com/open-cli-collective/substack-cli/internal/view"
)

func syncServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/archive":
			if r.URL.Query().Get("offset") != "0" {
				w.Write([]byte(`[]`))
				return
			}
			w.Write([]byte(`[
				{"slug": "open", "title": "Open", "post_date": "2024-03-02T00:00:00.000Z"},
				{"slug": "paid", "title": "Paid", "post_date": "2024-03-01T00:00:00.000Z"}
			]`))
		case "/api/v1/posts":
			w.Write([]byte(`[]`))
		case "/api/v1/posts/open":
			w.Write([]byte(`{"slug": "open", "body_html": "<p>Open body</p>"}`))
		case "/api/v1/posts/paid":
			w.Write([]byte(`{"slug": "paid", "body_html": null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestRunSync(t *testing.T) {
	server := syncServer(t)
	defer server.Close()

	dir := t.TempDir()
	var buf bytes.Buffer
	opts := &syncOptions{GlobalOptions: cmdutil.GlobalOptions{NoColor: true}, out: &buf}
	syncer := &mdxsync.Syncer{Client: api.NewClient(server.URL), Dir: dir}

	require.NoError(t, runSync(context.Background(), opts, view.FormatTable, syncer))

	output := buf.String()
	assert.Contains(t, output, "Synced 2, skipped 0 (up to date), deleted 0, total 2")
	assert.Contains(t, output, "1 posts written as placeholders")

	for _, name := range []string{"open.mdx", "paid.mdx"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunSync_JSON(t *testing.T) {
	server := syncServer(t)
	defer server.Close()

	var buf bytes.Buffer
	opts := &syncOptions{GlobalOptions: cmdutil.GlobalOptions{NoColor: true}, out: &buf}
	syncer := &mdxsync.Syncer{Client: api.NewClient(server.URL), Dir: t.TempDir()}

	require.NoError(t, runSync(context.Background(), opts, view.FormatJSON, syncer))

	var result mdxsync.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, mdxsync.Result{Total: 2, Synced: 2, Unavailable: 1}, result)
}

func TestRunSync_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	opts := &syncOptions{GlobalOptions: cmdutil.GlobalOptions{NoColor: true}, out: &bytes.Buffer{}}
	syncer := &mdxsync.Syncer{Client: api.NewClient(server.URL), Dir: t.TempDir()}

	err := runSync(context.Background(), opts, view.FormatTable, syncer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync failed")
}

func TestNewCmdSync_Flags(t *testing.T) {
	cmd := NewCmdSync()

	concurrency, err := cmd.Flags().GetInt("concurrency")
	require.NoError(t, err)
	assert.Equal(t, mdxsync.DefaultConcurrency, concurrency)

	delay, err := cmd.Flags().GetDuration("delay")
	require.NoError(t, err)
	assert.Equal(t, mdxsync.DefaultDelay, delay)
}
