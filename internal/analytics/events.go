package analytics

import "time"

// QueryEvent describes one answered query.
type QueryEvent struct {
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs float64   `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Failed    bool      `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Recorder receives query events. Implementations must not block the caller.
type Recorder interface {
	Record(QueryEvent)
}

type multi []Recorder

func (m multi) Record(e QueryEvent) {
	for _, r := range m {
		r.Record(e)
	}
}

// Fanout returns a Recorder that forwards each event to every non-nil r.
func Fanout(rs ...Recorder) Recorder {
	out := make(multi, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
