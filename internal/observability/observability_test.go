package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"}, config.AppConfig{Name: "helpdesk-service"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/tickets/:id", http.MethodGet, 200, 10*time.Millisecond)
	m.RecordRequest("/api/tickets/:id", http.MethodGet, 503, time.Millisecond)
	m.RecordPolicyDenial("update", "cross-department access")
	m.RecordEventPublished("ticket_created", nil)
	m.RecordEventPublished("ticket_created", errors.New("broker down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reqTotal.WithLabelValues("/api/tickets/:id", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.req5xxTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.policyDenials.WithLabelValues("update", "cross-department access")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("ticket_created", "error")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordPolicyDenial("read", "x") })
}

func TestRequestLoggerPropagatesMeta(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/ping/:id", func(c *fiber.Ctx) error {
		meta, ok := RequestMetaFromContext(c.UserContext())
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(meta.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping/7", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-1", resp.Header.Get(HeaderRequestID))

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/ping/:id", entries[0].ContextMap()["route"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reqTotal.WithLabelValues("/ping/:id", http.MethodGet, "200")))
}
