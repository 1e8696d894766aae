package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_AlwaysOK(t *testing.T) {
	r := newTestRouter(&portssvc.ServiceContainer{Account: new(MockAccountService), Journal: new(MockJournalService)}, handlers.Probes{})

	rec := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestReady_PingsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	r := newTestRouter(&portssvc.ServiceContainer{Account: new(MockAccountService), Journal: new(MockJournalService)}, handlers.Probes{Ready: db})

	mock.ExpectPing()
	rec := doJSON(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	rec = doJSON(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReady_WithoutDatabase(t *testing.T) {
	r := newTestRouter(&portssvc.ServiceContainer{Account: new(MockAccountService), Journal: new(MockJournalService)}, handlers.Probes{})

	rec := doJSON(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memory")
}

func TestMetricsRouteMounted(t *testing.T) {
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ledger_up 1\n"))
	})
	r := newTestRouter(&portssvc.ServiceContainer{Account: new(MockAccountService), Journal: new(MockJournalService)}, handlers.Probes{Metrics: metricsHandler})

	rec := doJSON(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ledger_up")
}
