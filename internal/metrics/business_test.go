package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine matches a Prometheus sample by name, partial labels and value. The
// exporter adds otel scope labels, hence the regex.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	assert.Regexp(t, name+`\{[^}]*`+labels+`[^}]*\} `+value, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusError, StatusOf(errors.New("boom")))
}

func TestBusinessMetrics(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider("credstore_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(ctx))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "credstore_test")
	require.NoError(t, err)

	bm.RecordOperation(ctx, "credentials", "credential_set", StatusSuccess)
	bm.RecordOperation(ctx, "credentials", "credential_set", StatusSuccess)
	bm.RecordOperation(ctx, "credentials", "credential_set", StatusError)
	bm.RecordOperation(ctx, "auth", "permission_check", StatusSuccess)

	bm.RecordDuration(ctx, "credentials", "credential_set", 40*time.Millisecond, StatusSuccess)
	bm.RecordDuration(ctx, "credentials", "credential_set", 60*time.Millisecond, StatusSuccess)

	output := scrape(t, provider)

	assertMetricLine(t, output, `credstore_test_operations_total`,
		`domain="credentials".*operation="credential_set".*status="success"`, `2`)
	assertMetricLine(t, output, `credstore_test_operations_total`,
		`domain="credentials".*operation="credential_set".*status="error"`, `1`)
	assertMetricLine(t, output, `credstore_test_operations_total`,
		`domain="auth".*operation="permission_check".*status="success"`, `1`)
	assertMetricLine(t, output, `credstore_test_operation_duration_seconds_count`,
		`domain="credentials".*operation="credential_set".*status="success"`, `2`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	noOp := NewNoOpBusinessMetrics()
	assert.IsType(t, &NoOpBusinessMetrics{}, noOp)

	assert.NotPanics(t, func() {
		noOp.RecordOperation(context.Background(), "credentials", "credential_get", StatusError)
		noOp.RecordDuration(context.Background(), "credentials", "credential_get", time.Second, StatusError)
	})
}
