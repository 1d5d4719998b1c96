package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса.
// Регистрируется один раз при старте, все методы потокобезопасны.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal   *prometheus.CounterVec
	dbQueryDuration  *prometheus.HistogramVec
	dbOpenConns      prometheus.Gauge
	dbIdleConns      prometheus.Gauge
	dbWaitingQueries prometheus.Gauge

	slotsGenerated     prometheus.Counter
	holdsAcquired      prometheus.Counter
	holdsRejected      *prometheus.CounterVec
	holdsReclaimed     prometheus.Counter
	bookingTransitions *prometheus.CounterVec
}

// New создает и регистрирует метрики с указанным service-лейблом
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests.",
				ConstLabels: constLabels,
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds.",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		dbQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "db_queries_total",
				Help:        "Total number of database queries by operation and result.",
				ConstLabels: constLabels,
			},
			[]string{"operation", "result"},
		),
		dbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "db_query_duration_seconds",
				Help:        "Database query duration in seconds.",
				ConstLabels: constLabels,
				Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"operation"},
		),
		dbOpenConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of open database connections.",
			ConstLabels: constLabels,
		}),
		dbIdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections.",
			ConstLabels: constLabels,
		}),
		dbWaitingQueries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_waiting_queries",
			Help:        "Number of queries waiting for a connection.",
			ConstLabels: constLabels,
		}),
		slotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "slots_generated_total",
			Help:        "Total number of candidate slots generated.",
			ConstLabels: constLabels,
		}),
		holdsAcquired: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "slot_holds_acquired_total",
			Help:        "Total number of slot holds granted.",
			ConstLabels: constLabels,
		}),
		holdsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "slot_holds_rejected_total",
				Help:        "Total number of rejected slot hold attempts by reason.",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		holdsReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "slot_holds_reclaimed_total",
			Help:        "Total number of expired slot holds reclaimed.",
			ConstLabels: constLabels,
		}),
		bookingTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "booking_transitions_total",
				Help:        "Total number of booking state transitions by target status.",
				ConstLabels: constLabels,
			},
			[]string{"status"},
		),
	}

	prometheus.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueriesTotal,
		m.dbQueryDuration,
		m.dbOpenConns,
		m.dbIdleConns,
		m.dbWaitingQueries,
		m.slotsGenerated,
		m.holdsAcquired,
		m.holdsRejected,
		m.holdsReclaimed,
		m.bookingTransitions,
	)

	return m
}

// ObserveHTTPRequest фиксирует выполненный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует выполненный запрос к БД
func (m *Metrics) ObserveDBQuery(operation, result string, duration time.Duration) {
	m.dbQueriesTotal.WithLabelValues(operation, result).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет gauge-метрики пула соединений
func (m *Metrics) SetDBPoolStats(open, idle, waiting int) {
	m.dbOpenConns.Set(float64(open))
	m.dbIdleConns.Set(float64(idle))
	m.dbWaitingQueries.Set(float64(waiting))
}

// AddSlotsGenerated увеличивает счетчик сгенерированных слотов
func (m *Metrics) AddSlotsGenerated(n int) {
	m.slotsGenerated.Add(float64(n))
}

// IncHoldAcquired увеличивает счетчик успешных холдов
func (m *Metrics) IncHoldAcquired() {
	m.holdsAcquired.Inc()
}

// IncHoldRejected увеличивает счетчик отклоненных холдов по причине
func (m *Metrics) IncHoldRejected(reason string) {
	m.holdsRejected.WithLabelValues(reason).Inc()
}

// AddHoldsReclaimed увеличивает счетчик вычищенных истекших холдов
func (m *Metrics) AddHoldsReclaimed(n int) {
	m.holdsReclaimed.Add(float64(n))
}

// IncBookingTransition увеличивает счетчик переходов бронирования в статус
func (m *Metrics) IncBookingTransition(status string) {
	m.bookingTransitions.WithLabelValues(status).Inc()
}
