// Package metrics expone contadores Prometheus de la API y del negocio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cotizaciones"

// Recorder implementa ports.Metrics y registra las peticiones HTTP.
type Recorder struct {
	registry *prometheus.Registry

	cellWrites   *prometheus.CounterVec
	documents    prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewRecorder crea un registro propio con los colectores de proceso y Go.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		cellWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_writes_total",
			Help:      "Escrituras de celdas de grilla por alcance, tipo y resultado.",
		}, []string{"scope", "kind", "result"}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_issued_total",
			Help:      "PDFs de cotización emitidos y archivados.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.cellWrites, r.documents, r.httpRequests, r.httpLatency,
	)
	return r
}

// CellWritten cuenta una escritura de celda.
func (r *Recorder) CellWritten(scope, kind string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.cellWrites.WithLabelValues(scope, kind, result).Inc()
}

// DocumentIssued cuenta un PDF archivado.
func (r *Recorder) DocumentIssued() { r.documents.Inc() }

// ObserveHTTP registra una petición; route es el patrón, no la URL.
func (r *Recorder) ObserveHTTP(method, route string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler sirve el formato de exposición de Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry para tests y colectores adicionales.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
