package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.EntrySaved()
	m.EntrySaved()
	m.FilterQuery(true)
	m.Export("pdf", "ok")
	m.Export("xlsx", "empty")
	m.LogoFallback()
	m.StaleResult()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.entriesSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filterQueries.WithLabelValues("true")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.filterQueries.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("xlsx", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logoFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.staleResults))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.EntrySaved()
		m.FilterQuery(false)
		m.Export("pdf", "error")
		m.LogoFallback()
		m.StaleResult()
	})
	assert.Nil(t, m.Registry())
}

func TestHandler(t *testing.T) {
	m := New()
	m.EntrySaved()

	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "drystore_entries_saved_total 1")
}
