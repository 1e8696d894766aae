package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0, 2)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate"}, names)
}

func TestMigrateCommand_RejectsUnknownDirection(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"migrate", "sideways"})
	root.SetOut(new(discard))
	root.SetErr(new(discard))

	assert.Error(t, root.Execute())
}

func TestNewRouter_MemoryStorage(t *testing.T) {
	cfg := &config.Config{
		StorageDriver:  config.StorageDriverMemory,
		IsProduction:   true,
		RequestTimeout: time.Second,
		RateLimit:      "100-M",
		ListPageSize:   50,
	}
	logger := newLogger("error")
	store := memory.NewStore()
	m := metrics.New(prometheus.NewRegistry())
	m.RegisterLineCount(store.CountLines)

	r, err := newRouter(cfg, logger, &storage{repos: memory.NewRepositoryProvider(store), close: func() {}}, m)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ledger_http_requests_total{method="GET",route="/api/v1/accounts",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "ledger_journal_lines 0")
}

func TestNewRouter_BadRateLimit(t *testing.T) {
	cfg := &config.Config{StorageDriver: config.StorageDriverMemory, IsProduction: true, RateLimit: "often"}
	_, err := newRouter(cfg, newLogger("error"), &storage{repos: memory.NewRepositoryProvider(memory.NewStore()), close: func() {}}, metrics.New(prometheus.NewRegistry()))
	assert.Error(t, err)
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
