package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) ComponentHealth { return ComponentHealth{Status: StatusUp} }

func TestRunWorstStatusWins(t *testing.T) {
	c := NewChecker()
	c.Register("index", up)
	assert.Equal(t, StatusUp, c.Run(context.Background()).Status)

	c.Register("redis", PingCheck(nil, true))
	assert.Equal(t, StatusDegraded, c.Run(context.Background()).Status)

	c.Register("postgres", PingCheck(func(context.Context) error { return errors.New("refused") }, false))
	report := c.Run(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Len(t, report.Components, 3)
	assert.Equal(t, "refused", report.Components["postgres"].Message)
	assert.NotEmpty(t, report.Components["index"].Latency)
}

func TestPingCheck(t *testing.T) {
	ok := PingCheck(func(context.Context) error { return nil }, false)
	assert.Equal(t, StatusUp, ok(context.Background()).Status)

	failing := func(context.Context) error { return errors.New("timeout") }
	assert.Equal(t, StatusDegraded, PingCheck(failing, true)(context.Background()).Status)
	assert.Equal(t, StatusDown, PingCheck(failing, false)(context.Background()).Status)
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("index", up)
	c.Register("redis", PingCheck(nil, true))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusDegraded, report.Status)

	c.Register("index", func(context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDown, Message: "index not frozen"}
	})
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
