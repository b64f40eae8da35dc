package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"shopadmin/internal/metrics"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := metrics.New("shopadmin")

	m.BulkImported.WithLabelValues("category").Add(2)
	m.LoginAttempts.WithLabelValues("success").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.BulkImported.WithLabelValues("category")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginAttempts.WithLabelValues("success")))

	families, err := m.Registry.Gather()
	assert.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "shopadmin_catalog_bulk_imported_total")
	assert.Contains(t, names, "shopadmin_auth_login_attempts_total")
}

func TestObserveHelpers_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveLogin("success")
		m.ObserveBulkImport(1, 2)
		m.ObservePasswordReset("requested")
	})

	m = metrics.New("test")
	m.ObserveBulkImport(1, 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.BulkImported.WithLabelValues("product")))
}
