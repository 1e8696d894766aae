package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"ok":         nil,
		"validation": apperrors.NewValidationError("name", "must not be empty"),
		"not_found":  fmt.Errorf("wrapped: %w", apperrors.NewNotFoundError("account", "a1")),
		"conflict":   apperrors.NewConflictError("account", "a1", "in use"),
		"imbalance":  &apperrors.ImbalanceError{DebitTotal: decimal.NewFromInt(1), CreditTotal: decimal.Zero},
		"policy":     &apperrors.PolicyError{Policy: "credit_coverage", AccountID: "a1"},
		"error":      errors.New("disk on fire"),
	}
	for want, err := range cases {
		assert.Equal(t, want, Outcome(err), "error %v", err)
	}
}

func TestRecordOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordOperation("post_entry", nil)
	m.RecordOperation("post_entry", nil)
	m.RecordOperation("post_entry", apperrors.ErrImbalance)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("post_entry", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("post_entry", "imbalance")))
}

func TestObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/api/v1/accounts/:accountID", "200", 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/accounts/:accountID", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpRequestDuration))
}

func TestRegisterLineCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RegisterLineCount(func(context.Context) (int64, error) { return 42, nil })

	expected := `
# HELP ledger_journal_lines Number of journal lines recorded in the ledger.
# TYPE ledger_journal_lines gauge
ledger_journal_lines 42
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ledger_journal_lines"))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RegisterBuildInfo("test")
	m.RecordOperation("register_account", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `ledger_build_info{version="test"} 1`)
	assert.Contains(t, body, `ledger_operations_total{operation="register_account",outcome="ok"} 1`)
}
