package executor

import (
	"net/http/httptest"

	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
)

func scrape(m *metrics.Metrics) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}
