// AngelaMos | 2026
// metrics.go

package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steago_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "steago_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	principalResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steago_principal_resolutions_total",
		Help: "Bearer token subject lookups by outcome",
	}, []string{"result"})

	entitiesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steago_entities_created_total",
		Help: "Entity create calls by kind and outcome",
	}, []string{"kind", "result"})

	lifecycleDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steago_lifecycle_denials_total",
		Help: "Requests refused by the status gate",
	}, []string{"kind", "status"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steago_rate_limited_total",
		Help: "Requests rejected with 429 by scope",
	}, []string{"scope"})
)

// Result labels.
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultError    = "error"
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultInvalid  = "invalid"
)

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func ObservePrincipalResolution(result string) {
	principalResolutions.WithLabelValues(result).Inc()
}

func ObserveEntityCreated(kind, result string) {
	entitiesCreated.WithLabelValues(kind, result).Inc()
}

func ObserveLifecycleDenial(kind, status string) {
	lifecycleDenials.WithLabelValues(kind, status).Inc()
}

func ObserveRateLimited(scope string) {
	rateLimited.WithLabelValues(scope).Inc()
}

// RegisterDBStats exports sql.DB pool statistics.
func RegisterDBStats(db *sql.DB, name string) error {
	return prometheus.Register(collectors.NewDBStatsCollector(db, name))
}

// RegisterRedisStats exports go-redis pool statistics.
func RegisterRedisStats(stats func() *redis.PoolStats) error {
	gauges := map[string]func(*redis.PoolStats) float64{
		"hits":        func(s *redis.PoolStats) float64 { return float64(s.Hits) },
		"misses":      func(s *redis.PoolStats) float64 { return float64(s.Misses) },
		"timeouts":    func(s *redis.PoolStats) float64 { return float64(s.Timeouts) },
		"total_conns": func(s *redis.PoolStats) float64 { return float64(s.TotalConns) },
		"idle_conns":  func(s *redis.PoolStats) float64 { return float64(s.IdleConns) },
		"stale_conns": func(s *redis.PoolStats) float64 { return float64(s.StaleConns) },
	}

	for name, read := range gauges {
		g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "steago_redis_pool_" + name,
			Help: "go-redis pool statistic " + name,
		}, func() float64 { return read(stats()) })

		if err := prometheus.Register(g); err != nil {
			return err
		}
	}

	return nil
}

func Handler() http.Handler {
	return promhttp.Handler()
}
