package monitor

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector metrics collector
type MetricsCollector struct {
	// Business metrics
	checkoutTotal        *prometheus.CounterVec
	checkoutDuration     *prometheus.HistogramVec
	notificationTotal    *prometheus.CounterVec
	notificationDuration *prometheus.HistogramVec
	orderCreationTotal   *prometheus.CounterVec
	basketMutationTotal  *prometheus.CounterVec
	userRegistrationTotal *prometheus.CounterVec
	userLoginTotal       *prometheus.CounterVec

	// System metrics
	httpRequestTotal    *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Database metrics
	dbConnectionsActive prometheus.Gauge
	dbConnectionsIdle   prometheus.Gauge

	// Runtime metrics
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
}

// NewMetricsCollector creates a metrics collector
func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{}
	mc.initMetrics()
	return mc
}

// initMetrics initializes all metrics
func (mc *MetricsCollector) initMetrics() {
	mc.checkoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "Total number of checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	mc.checkoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of checkout attempts",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	mc.notificationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_notification_total",
			Help: "Total number of post-checkout notifications by channel",
		},
		[]string{"channel", "status"},
	)

	mc.notificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_notification_duration_seconds",
			Help:    "Duration of post-checkout notifications",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	mc.orderCreationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_creation_total",
			Help: "Total number of order creations",
		},
		[]string{"status"},
	)

	mc.basketMutationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "basket_mutation_total",
			Help: "Total number of basket mutations",
		},
		[]string{"operation", "status"},
	)

	mc.userRegistrationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_registration_total",
			Help: "Total number of user registrations",
		},
		[]string{"status"},
	)

	mc.userLoginTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_login_total",
			Help: "Total number of user logins",
		},
		[]string{"status"},
	)

	mc.httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	mc.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	mc.dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	mc.dbConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	mc.memoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "memory_usage_bytes",
			Help: "Memory usage in bytes",
		},
	)

	mc.goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goroutine_count",
			Help: "Number of goroutines",
		},
	)
}

// RecordCheckout records a checkout attempt
func (mc *MetricsCollector) RecordCheckout(outcome string, duration time.Duration) {
	mc.checkoutTotal.WithLabelValues(outcome).Inc()
	mc.checkoutDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordNotification records a post-checkout notification attempt
func (mc *MetricsCollector) RecordNotification(channel, status string, duration time.Duration) {
	mc.notificationTotal.WithLabelValues(channel, status).Inc()
	mc.notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordOrderCreation records an order creation
func (mc *MetricsCollector) RecordOrderCreation(status string) {
	mc.orderCreationTotal.WithLabelValues(status).Inc()
}

// RecordBasketMutation records a basket mutation
func (mc *MetricsCollector) RecordBasketMutation(operation, status string) {
	mc.basketMutationTotal.WithLabelValues(operation, status).Inc()
}

// RecordUserRegistration records a user registration
func (mc *MetricsCollector) RecordUserRegistration(status string) {
	mc.userRegistrationTotal.WithLabelValues(status).Inc()
}

// RecordUserLogin records a user login
func (mc *MetricsCollector) RecordUserLogin(status string) {
	mc.userLoginTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request
func (mc *MetricsCollector) RecordHTTPRequest(method, path, status string) {
	mc.httpRequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordHTTPDuration records HTTP request duration
func (mc *MetricsCollector) RecordHTTPDuration(method, path string, duration time.Duration) {
	mc.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateDBConnections updates database connection gauges
func (mc *MetricsCollector) UpdateDBConnections(active, idle int) {
	mc.dbConnectionsActive.Set(float64(active))
	mc.dbConnectionsIdle.Set(float64(idle))
}

// UpdateSystemMetrics updates runtime gauges
func (mc *MetricsCollector) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mc.memoryUsage.Set(float64(m.Alloc))
	mc.goroutineCount.Set(float64(runtime.NumGoroutine()))
}

// StartSystemMetricsCollection starts the periodic runtime metrics loop
func (mc *MetricsCollector) StartSystemMetricsCollection(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mc.UpdateSystemMetrics()
		}
	}
}
