package archive

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveCSV = `DATE,TEXT,COORDS
2026-03-08 20:10:00,"THEFT at 1 MAIN ST, PORT [A1]",45.50 -122.65
2026-03-09 01:30:00,"ASSAULT at 2 OAK ST, PORT [A2]",45.52 -122.60
short row
2026-03-09 02:00:00,"VANDALISM at 3 ELM ST, PORT",
`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, slog.Default())
}

func TestFetch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(archiveCSV))
	})

	batch, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 3, "ragged rows are skipped, blank coords are kept")

	first := batch[0]
	assert.Equal(t, "THEFT at 1 MAIN ST, PORT [A1]", first.Summary)
	assert.Equal(t, "2026-03-08 20:10:00", first.Timestamp)
	assert.Equal(t, "45.50 -122.65", first.Coordinates)
	assert.Equal(t, "archive", first.Source)

	assert.Empty(t, batch[2].Coordinates)
}

func TestFetch_HeaderOnly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("DATE,TEXT,COORDS\n"))
	})

	batch, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestFetch_MissingColumn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("DATE,TEXT\n2026-03-08 20:10:00,THEFT at 1 MAIN ST\n"))
	})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "COORDS"`)
}

func TestFetch_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
