// Package metrics agrupa los collectors Prometheus del servicio.
package metrics

import (
	"database/sql"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once   sync.Once
	regErr error

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        prometheus.Gauge

	// Dominio
	otpIssuedTotal  *prometheus.CounterVec
	relaySendsTotal *prometheus.CounterVec
	emailLogErrors  prometheus.Counter
)

// Resultados de negocio usados como label.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultInvalid = "invalid"
)

// Config agrupa lo necesario para exponer /metrics.
type Config struct {
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
	DB       *sql.DB // opcional: expone stats del pool
}

// Register inicializa las métricas (una sola vez) y devuelve el handler de /metrics.
func Register(cfg Config) (http.Handler, error) {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	once.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo",
		})

		otpIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_issued_total",
			Help: "OTPs emitidos por propósito y resultado",
		}, []string{"purpose", "result"})

		relaySendsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "email_relay_sends_total",
			Help: "Envíos del relay por resultado (ok|failed|invalid)",
		}, []string{"result"})

		emailLogErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "email_log_write_errors_total",
			Help: "Errores al persistir el log de envíos",
		})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			otpIssuedTotal, relaySendsTotal, emailLogErrors,
		} {
			if err := registerCollector(reg, c); err != nil {
				regErr = err
				return
			}
		}
	})
	if regErr != nil {
		return nil, regErr
	}

	if cfg.DB != nil {
		if err := registerCollector(reg, newDBStatsCollector(cfg.DB)); err != nil {
			return nil, err
		}
	}

	if cfg.Gatherer != nil {
		return promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// ObserveHTTP registra un request finalizado.
func ObserveHTTP(method, path string, status int, seconds float64) {
	if httpRequestsTotal == nil {
		return
	}
	p := NormalizePath(path)
	m := strings.ToUpper(method)
	httpRequestsTotal.WithLabelValues(m, p, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(m, p).Observe(seconds)
}

// InflightAdd ajusta el gauge de requests en vuelo.
func InflightAdd(delta float64) {
	if httpInflight != nil {
		httpInflight.Add(delta)
	}
}

// RecordOTPIssued registra una emisión de OTP.
func RecordOTPIssued(purpose, result string) {
	if otpIssuedTotal != nil {
		otpIssuedTotal.WithLabelValues(purpose, result).Inc()
	}
}

// RecordRelaySend registra el resultado de un envío del relay.
func RecordRelaySend(result string) {
	if relaySendsTotal != nil {
		relaySendsTotal.WithLabelValues(result).Inc()
	}
}

// RecordEmailLogError cuenta un log de envío que no se pudo persistir.
func RecordEmailLogError() {
	if emailLogErrors != nil {
		emailLogErrors.Inc()
	}
}

// dbStatsCollector expone gauges del pool database/sql.
type dbStatsCollector struct {
	db *sql.DB

	openDesc  *prometheus.Desc
	inUseDesc *prometheus.Desc
	idleDesc  *prometheus.Desc
	waitDesc  *prometheus.Desc
}

func newDBStatsCollector(db *sql.DB) *dbStatsCollector {
	return &dbStatsCollector{
		db:        db,
		openDesc:  prometheus.NewDesc("db_pool_open_connections", "Conexiones abiertas", nil, nil),
		inUseDesc: prometheus.NewDesc("db_pool_in_use", "Conexiones en uso", nil, nil),
		idleDesc:  prometheus.NewDesc("db_pool_idle", "Conexiones inactivas", nil, nil),
		waitDesc:  prometheus.NewDesc("db_pool_wait_count_total", "Esperas por conexión", nil, nil),
	}
}

func (c *dbStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openDesc
	ch <- c.inUseDesc
	ch <- c.idleDesc
	ch <- c.waitDesc
}

func (c *dbStatsCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.db.Stats()
	ch <- prometheus.MustNewConstMetric(c.openDesc, prometheus.GaugeValue, float64(st.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.inUseDesc, prometheus.GaugeValue, float64(st.InUse))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(st.Idle))
	ch <- prometheus.MustNewConstMetric(c.waitDesc, prometheus.CounterValue, float64(st.WaitCount))
}

var (
	uuidSegmentRE = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
)

// NormalizePath colapsa segmentos dinámicos (uploads, ids) para acotar la cardinalidad.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" || clean == "/" {
		return "/"
	}

	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	// todo lo que cuelga de /uploads es un archivo
	if out[0] == "uploads" && len(out) > 1 {
		out = []string{"uploads", ":file"}
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
