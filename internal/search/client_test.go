package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewdocs/docmeta/internal/extraction"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string][]byte
	failWith int
}

func (f *fakeES) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.bodies[r.URL.Path] = body
		status := f.failWith
		f.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
			return
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":"d1","title":"Passport","expires_on":"2024-01-01"}}]}}`))
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		}
	}
}

func newTestClient(t *testing.T, fake *fakeES) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "crew_documents", nil)
	require.NoError(t, err)
	return c
}

func TestIndexSendsDocument(t *testing.T) {
	fake := &fakeES{bodies: map[string][]byte{}}
	c := newTestClient(t, fake)

	res := extraction.Result{
		Title:      "Ship Security Officer",
		IssuedOn:   "2023-01-15",
		ExpiresOn:  "2027-08-03",
		Confidence: extraction.Confidence{Title: 0.85, IssuedOn: 0.9, ExpiresOn: 0.9},
	}
	require.NoError(t, c.Index(context.Background(), NewDocument("doc-1", "sso.pdf", "Security", res)))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Contains(t, fake.requests, "PUT /crew_documents/_doc/doc-1")

	var sent Document
	require.NoError(t, json.Unmarshal(fake.bodies["/crew_documents/_doc/doc-1"], &sent))
	require.Equal(t, "Ship Security Officer", sent.Title)
	require.Equal(t, "Security", sent.Category)
	require.Equal(t, "2027-08-03", sent.ExpiresOn)
}

func TestIndexReportsServerError(t *testing.T) {
	fake := &fakeES{bodies: map[string][]byte{}, failWith: http.StatusBadRequest}
	c := newTestClient(t, fake)

	err := c.Index(context.Background(), Document{ID: "x", Title: "Passport"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestExpiringBefore(t *testing.T) {
	fake := &fakeES{bodies: map[string][]byte{}}
	c := newTestClient(t, fake)

	docs, err := c.ExpiringBefore(context.Background(), "2025-01-01", 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "Passport", docs[0].Title)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Contains(t, string(fake.bodies["/crew_documents/_search"]), `"lt":"2025-01-01"`)
}

func TestPing(t *testing.T) {
	fake := &fakeES{bodies: map[string][]byte{}}
	c := newTestClient(t, fake)
	require.NoError(t, c.Ping(context.Background()))
}
