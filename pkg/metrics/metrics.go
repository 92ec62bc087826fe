package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus метрик сервиса
type Metrics struct {
	serviceName string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal    *prometheus.CounterVec
	dbQueryDuration   *prometheus.HistogramVec
	dbOpenConnections *prometheus.GaugeVec
	dbInUse           *prometheus.GaugeVec
	dbIdle            *prometheus.GaugeVec
	dbWaitCount       *prometheus.GaugeVec

	bookingsCreated   *prometheus.CounterVec
	bookingConflicts  *prometheus.CounterVec
	idempotentReplays *prometheus.CounterVec
	slotsGenerated    *prometheus.HistogramVec
}

// New создает метрики и регистрирует их в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики в указанном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		dbQueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		}, []string{"service", "operation", "status"}),

		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),

		dbOpenConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections to the database",
		}, []string{"service"}),

		dbInUse: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		dbIdle: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),

		dbWaitCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		bookingsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of committed bookings",
		}, []string{"service"}),

		bookingConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Total number of rejected booking attempts by reason",
		}, []string{"service", "reason"}),

		idempotentReplays: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_idempotent_replays_total",
			Help: "Total number of booking requests answered from the idempotency store",
		}, []string{"service"}),

		slotsGenerated: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "available_slots_returned",
			Help:    "Number of available slots returned per request",
			Buckets: []float64{0, 1, 4, 8, 16, 32, 64},
		}, []string{"service"}),
	}
}

// ServiceName возвращает имя сервиса для лейблов
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// RecordHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// RecordDBQuery записывает метрики запроса к БД
func (m *Metrics) RecordDBQuery(service, operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil && err != sql.ErrNoRows {
		status = "error"
	}
	m.dbQueriesTotal.WithLabelValues(service, operation, status).Inc()
	m.dbQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// SetDBStats обновляет метрики пула соединений
func (m *Metrics) SetDBStats(service string, stats sql.DBStats) {
	m.dbOpenConnections.WithLabelValues(service).Set(float64(stats.OpenConnections))
	m.dbInUse.WithLabelValues(service).Set(float64(stats.InUse))
	m.dbIdle.WithLabelValues(service).Set(float64(stats.Idle))
	m.dbWaitCount.WithLabelValues(service).Set(float64(stats.WaitCount))
}

// IncBookingCreated увеличивает счётчик созданных бронирований
func (m *Metrics) IncBookingCreated() {
	m.bookingsCreated.WithLabelValues(m.serviceName).Inc()
}

// IncBookingConflict увеличивает счётчик отклонённых бронирований
func (m *Metrics) IncBookingConflict(reason string) {
	m.bookingConflicts.WithLabelValues(m.serviceName, reason).Inc()
}

// IncIdempotentReplay увеличивает счётчик повторных ответов по ключу идемпотентности
func (m *Metrics) IncIdempotentReplay() {
	m.idempotentReplays.WithLabelValues(m.serviceName).Inc()
}

// ObserveAvailableSlots записывает количество возвращённых слотов
func (m *Metrics) ObserveAvailableSlots(count int) {
	m.slotsGenerated.WithLabelValues(m.serviceName).Observe(float64(count))
}
