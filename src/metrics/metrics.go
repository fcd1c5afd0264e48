// Package metrics counts simulation events in a per-run prometheus registry.
package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/danmuck/procsim/src/sim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "procsim"

// Metrics is a sim.Observer. Each instance owns its registry so several runs
// can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	Commands     *prometheus.CounterVec
	Deliveries   prometheus.Counter
	Matches      prometheus.Counter
	Blocked      *prometheus.CounterVec
	Halts        prometheus.Counter
	ChannelDepth prometheus.Gauge
	PeakDepth    prometheus.Gauge

	peak int
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Command lines processed, by outcome",
			},
			[]string{"outcome"},
		),
		Deliveries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Messages consumed from the channel by a RECV",
		}),
		Matches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Rendezvous resolved by the drain loop",
		}),
		Blocked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocked_total",
				Help:      "Failed match attempts, by blocked process (1-based)",
			},
			[]string{"process"},
		),
		Halts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "halts_total",
			Help:      "Runs that reached the halted state",
		}),
		ChannelDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channel_depth",
			Help:      "Undelivered messages in the channel",
		}),
		PeakDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channel_depth_peak",
			Help:      "Highest channel depth seen",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Observe(e sim.Event) {
	switch e.Kind {
	case sim.EventAccepted, sim.EventRejected:
		m.Commands.WithLabelValues(string(e.Kind)).Inc()
	case sim.EventDelivered:
		m.Deliveries.Inc()
	case sim.EventMatched:
		m.Matches.Inc()
	case sim.EventBlocked:
		m.Blocked.WithLabelValues(strconv.Itoa(e.Process + 1)).Inc()
	case sim.EventHalted:
		m.Halts.Inc()
	}

	m.ChannelDepth.Set(float64(e.Pending))
	if e.Pending > m.peak {
		m.peak = e.Pending
		m.PeakDepth.Set(float64(m.peak))
	}
}

// Sample is one gathered series.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

func (s Sample) Key() string {
	if s.Labels == "" {
		return s.Name
	}
	return s.Name + "{" + s.Labels + "}"
}

// Summary gathers every counter and gauge, sorted by series key.
func (m *Metrics) Summary() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var samples []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var value float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				value = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				value = metric.GetGauge().GetValue()
			default:
				continue
			}
			samples = append(samples, Sample{
				Name:   mf.GetName(),
				Labels: labelString(metric.GetLabel()),
				Value:  value,
			})
		}
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Key() < samples[j].Key() })
	return samples, nil
}

func labelString(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return strings.Join(parts, ",")
}
