package feed

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

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:georss="http://www.georss.org/georss">
  <title>Portland Police 911 Incidents</title>
  <updated>2026-03-09T18:10:00-07:00</updated>
  <entry>
    <id>tag:portlandonline.com,2026:incident/F1</id>
    <title>VANDALISM at 3 ELM ST, PORT [F1]</title>
    <summary>VANDALISM at 3 ELM ST, PORT [F1]</summary>
    <updated>2026-03-09T18:05:00-07:00</updated>
    <georss:point>45.49 -122.63</georss:point>
  </entry>
  <entry>
    <id></id>
    <title>placeholder without identifier</title>
    <summary>placeholder</summary>
    <updated>2026-03-09T18:06:00-07:00</updated>
  </entry>
  <entry>
    <id>tag:portlandonline.com,2026:incident/F2</id>
    <title>THEFT at 1 MAIN ST, PORT [F2]</title>
    <summary>THEFT at 1 MAIN ST, PORT [F2]</summary>
    <updated>2026-03-09T18:07:00-07:00</updated>
    <georss:point>45.50 -122.65</georss:point>
  </entry>
</feed>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, slog.Default())
}

func TestFetch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(feedXML))
	})

	batch, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 2, "entries without an identifier are skipped")

	first := batch[0]
	assert.Equal(t, "VANDALISM at 3 ELM ST, PORT [F1]", first.Summary)
	assert.Equal(t, "2026-03-09T18:05:00-07:00", first.Timestamp)
	assert.Equal(t, "45.49 -122.63", first.Coordinates)
	assert.Equal(t, "feed", first.Source)
}

func TestFetch_MalformedXML(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<feed><entry>"))
	})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode feed")
}

func TestFetch_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFetch_EmptyFeed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"><updated>2026-03-09T18:10:00-07:00</updated></feed>`))
	})

	batch, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch)
}
