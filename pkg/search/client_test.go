package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	apiKey string
	ctype  string
	index  Index
}

type requestLog struct {
	mu    sync.Mutex
	calls []recordedRequest
}

func (l *requestLog) add(r recordedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, r)
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.calls...)
}

func newIndexServer(t *testing.T, statuses ...int) (*httptest.Server, *requestLog) {
	t.Helper()
	var (
		log      requestLog
		attempts int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query().Get("api-version"),
			apiKey: r.Header.Get("api-key"),
			ctype:  r.Header.Get("Content-Type"),
		}
		_ = json.NewDecoder(r.Body).Decode(&rec.index)
		log.add(rec)

		n := int(atomic.AddInt32(&attempts, 1)) - 1
		status := http.StatusCreated
		if n < len(statuses) {
			status = statuses[n]
		}
		w.WriteHeader(status)
		if status >= 400 {
			_, _ = w.Write([]byte(`{"error":{"code":"InvalidRequest","message":"bad index"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(rec.index)
	}))
	t.Cleanup(srv.Close)
	return srv, &log
}

func TestIndexClient_CreateOrUpdateIndex(t *testing.T) {
	srv, calls := newIndexServer(t)
	client := NewIndexClient(ClientConfig{Timeout: 5 * time.Second}, zap.NewNop())

	err := client.CreateOrUpdateIndex(context.Background(), srv.URL, "admin-key-1", NewVectorIndex("rag-vector-index"))
	require.NoError(t, err)

	require.Len(t, calls.all(), 1)
	got := calls.all()[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/indexes/rag-vector-index", got.path)
	assert.Equal(t, DefaultAPIVersion, got.query)
	assert.Equal(t, "admin-key-1", got.apiKey)
	assert.Equal(t, "application/json", got.ctype)
	assert.Equal(t, "rag-vector-index", got.index.Name)
	assert.Len(t, got.index.Fields, 5)
}

func TestIndexClient_RepeatedPutIsIdempotent(t *testing.T) {
	srv, calls := newIndexServer(t, http.StatusCreated, http.StatusOK)
	client := NewIndexClient(ClientConfig{}, zap.NewNop())

	idx := NewVectorIndex("docs")
	require.NoError(t, client.CreateOrUpdateIndex(context.Background(), srv.URL, "k", idx))
	require.NoError(t, client.CreateOrUpdateIndex(context.Background(), srv.URL+"/", "k", idx))

	got := calls.all()
	require.Len(t, got, 2)
	assert.Equal(t, got[0].path, got[1].path)
}

func TestIndexClient_ErrorStatus(t *testing.T) {
	srv, calls := newIndexServer(t, http.StatusBadRequest)
	client := NewIndexClient(ClientConfig{}, zap.NewNop())

	err := client.CreateOrUpdateIndex(context.Background(), srv.URL, "k", NewVectorIndex("docs"))
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "bad index")
	assert.Len(t, calls.all(), 1)
}

func TestIndexClient_NoRetryByDefault(t *testing.T) {
	srv, calls := newIndexServer(t, http.StatusServiceUnavailable, http.StatusCreated)
	client := NewIndexClient(ClientConfig{}, zap.NewNop())

	err := client.CreateOrUpdateIndex(context.Background(), srv.URL, "k", NewVectorIndex("docs"))
	require.Error(t, err)
	assert.Len(t, calls.all(), 1)
}

func TestIndexClient_RetriesWhenConfigured(t *testing.T) {
	srv, calls := newIndexServer(t, http.StatusServiceUnavailable, http.StatusCreated)
	client := NewIndexClient(ClientConfig{
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}, zap.NewNop())

	err := client.CreateOrUpdateIndex(context.Background(), srv.URL, "k", NewVectorIndex("docs"))
	require.NoError(t, err)
	assert.Len(t, calls.all(), 2)
}

func TestIndexClient_InvalidInput(t *testing.T) {
	client := NewIndexClient(ClientConfig{}, zap.NewNop())

	err := client.CreateOrUpdateIndex(context.Background(), "not a url", "k", NewVectorIndex("docs"))
	assert.Error(t, err)

	err = client.CreateOrUpdateIndex(context.Background(), "https://example.search.windows.net", "k", &Index{})
	assert.Error(t, err)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://mysearchacct1234.search.windows.net", Endpoint("mysearchacct1234"))
}
