// Package metrics exposes HomeGuardian counters and gauges to Prometheus.
//
// Collector observes commands and notifications, samples the channel's
// client count and the controller's device count on scrape, and times
// HTTP requests. Everything is registered on a private registry served by
// Handler, so several collectors can coexist in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/homeguardian-core/internal/controller"
	"github.com/nerrad567/homeguardian-core/internal/notify"
)

// Namespace prefixes every metric name.
const Namespace = "homeguardian"

// Command results used as the "result" label.
const (
	ResultOK         = "ok"
	ResultFailed     = "failed"
	ResultUnresolved = "unresolved"
)

// Collector implements controller.Observer and notify.Dispatcher.
type Collector struct {
	registry *prometheus.Registry

	commandsTotal      *prometheus.CounterVec
	followUpsTotal     prometheus.Counter
	eventsTotal        *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// Gauges supplies values sampled at scrape time. Nil functions are skipped.
type Gauges struct {
	ChannelClients func() int
	Devices        func() int
}

// New creates a collector with Go runtime and process metrics included.
func New(g Gauges) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Commands handled by the controller, including follow-ups.",
		}, []string{"device_id", "command", "result"}),
		followUpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "follow_up_commands_total",
			Help:      "Commands issued by one device to another.",
		}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "device_events_total",
			Help:      "Device events by kind.",
		}, []string{"kind"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "notifications_dispatched_total",
			Help:      "Notifications handed to dispatchers.",
		}, []string{"kind"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.commandsTotal,
		c.followUpsTotal,
		c.eventsTotal,
		c.notificationsTotal,
		c.httpRequestsTotal,
		c.httpDuration,
	)

	if g.ChannelClients != nil {
		c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "channel_clients",
			Help:      "Connected command-channel clients.",
		}, func() float64 { return float64(g.ChannelClients()) }))
	}
	if g.Devices != nil {
		c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "devices_registered",
			Help:      "Devices registered with the controller.",
		}, func() float64 { return float64(g.Devices()) }))
	}

	return c
}

// CommandHandled implements controller.Observer.
func (c *Collector) CommandHandled(r controller.CommandResult) {
	result := ResultFailed
	switch {
	case !r.Resolved:
		result = ResultUnresolved
	case r.OK:
		result = ResultOK
	}
	// Unresolved IDs are caller-supplied; keep them out of the label set.
	deviceID := r.DeviceID
	if !r.Resolved {
		deviceID = "unknown"
	}
	c.commandsTotal.WithLabelValues(deviceID, commandName(r.Command), result).Inc()

	if r.Depth > 0 {
		c.followUpsTotal.Inc()
	}
	for _, ev := range r.Events {
		c.eventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	}
}

// Dispatch implements notify.Dispatcher.
func (c *Collector) Dispatch(n notify.Notification) {
	kind := "user"
	if n.Emergency {
		kind = "emergency"
	}
	c.notificationsTotal.WithLabelValues(kind).Inc()
}

// ObserveHTTP records one HTTP request.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
