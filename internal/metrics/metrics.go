// Package metrics собирает prometheus-метрики отдачи файлов.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "missionfiles"

// Metrics хранит счётчики ответов, отданных байт и открытых дескрипторов.
type Metrics struct {
	Responses   *prometheus.CounterVec
	BytesServed prometheus.Counter
	OpenHandles prometheus.Gauge
}

// New создаёт метрики и регистрирует их в reg. При reg == nil метрики не регистрируются.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "File responses by kind (whole, single, multipart, error) and HTTP status.",
		}, []string{"kind", "status"}),
		BytesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_served_total",
			Help:      "Body bytes written to clients, multipart framing included.",
		}),
		OpenHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_handles",
			Help:      "File handles currently open for streaming.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Responses, m.BytesServed, m.OpenHandles)
	}
	return m
}

// ObserveResponse учитывает завершённый ответ.
func (m *Metrics) ObserveResponse(kind string, status int, sent int64) {
	if m == nil {
		return
	}
	m.Responses.WithLabelValues(kind, strconv.Itoa(status)).Inc()
	if sent > 0 {
		m.BytesServed.Add(float64(sent))
	}
}

func (m *Metrics) HandleOpened() {
	if m != nil {
		m.OpenHandles.Inc()
	}
}

func (m *Metrics) HandleClosed() {
	if m != nil {
		m.OpenHandles.Dec()
	}
}
