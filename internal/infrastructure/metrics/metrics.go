package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Reckonix-api/internal/domain/access"
)

var _ access.Observer = (*Metrics)(nil)

// Metrics agrupa las métricas Prometheus del servicio.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Control de acceso
	AccessDecisionsTotal *prometheus.CounterVec

	// Backfill
	BackfillModifiedTotal *prometheus.CounterVec
	BackfillSkippedTotal  *prometheus.CounterVec
}

// NewMetrics crea y registra las métricas en registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reckonix_http_requests_total",
				Help: "Total de peticiones HTTP",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reckonix_http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AccessDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reckonix_access_decisions_total",
				Help: "Decisiones del motor de permisos",
			},
			[]string{"resource", "action", "decision"},
		),
		BackfillModifiedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reckonix_backfill_modified_total",
				Help: "Registros a los que el backfill asignó empresa",
			},
			[]string{"collection", "dry_run"},
		),
		BackfillSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reckonix_backfill_skipped_total",
				Help: "Colecciones omitidas por no existir",
			},
			[]string{"collection"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AccessDecisionsTotal,
		m.BackfillModifiedTotal,
		m.BackfillSkippedTotal,
	)
	return m
}

// Decision implementa access.Observer.
func (m *Metrics) Decision(_ *access.Context, resource, action string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	m.AccessDecisionsTotal.WithLabelValues(resource, action, decision).Inc()
}

// CollectionBackfilled registra el resultado de una colección del backfill.
func (m *Metrics) CollectionBackfilled(collection string, modified int64, dryRun bool) {
	m.BackfillModifiedTotal.WithLabelValues(collection, strconv.FormatBool(dryRun)).Add(float64(modified))
}

// CollectionSkipped registra una colección inexistente.
func (m *Metrics) CollectionSkipped(collection string) {
	m.BackfillSkippedTotal.WithLabelValues(collection).Inc()
}

// Middleware mide cada petición usando la ruta registrada (no la URL) para acotar cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < http.StatusBadRequest {
				status = http.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone el registry en formato Prometheus.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
