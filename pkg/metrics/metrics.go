package metrics

import (
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
)

const (
	SearchRequests  = "search_requests"
	SearchLatencyMs = "search_latency_ms"
	SearchErrors    = "search_errors"
	AlertsNotified  = "alerts_notified"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

// InitMetrics opens the time series store under <workdir>/data/metrics
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		return nil
	}
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(path.Join(workdir, "data", "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Milliseconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return errors.Wrap(err, "open metrics storage")
	}
	storage = s
	return nil
}

// Record writes one point; a no-op until InitMetrics succeeded
func Record(metric string, value float64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{{
		Metric:    metric,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().UnixMilli(), Value: value},
	}})
}

// Summary aggregates the points of a metric over a window
type Summary struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
	Max   float64 `json:"max"`
}

// Summarize aggregates the points recorded during the last window
func Summarize(metric string, window time.Duration) (Summary, error) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	var sum Summary
	if s == nil {
		return sum, nil
	}
	end := time.Now().Add(time.Millisecond)
	points, err := s.Select(metric, nil, end.Add(-window).UnixMilli(), end.UnixMilli())
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return sum, nil
	}
	if err != nil {
		return sum, errors.Wrapf(err, "select %s", metric)
	}
	for _, p := range points {
		sum.Count++
		sum.Sum += p.Value
		if p.Value > sum.Max {
			sum.Max = p.Value
		}
	}
	if sum.Count > 0 {
		sum.Avg = sum.Sum / float64(sum.Count)
	}
	return sum, nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
