package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry          *prometheus.Registry
	installsStarted   prometheus.Counter
	installsCompleted prometheus.Counter
	whitelistDenied   prometheus.Counter
	callbackFailures  prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		installsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinup_installs_started_total",
			Help: "OAuth flows started.",
		}),
		installsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinup_installs_completed_total",
			Help: "OAuth flows that stored a token.",
		}),
		whitelistDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinup_whitelist_denied_total",
			Help: "Install attempts rejected by the whitelist.",
		}),
		callbackFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinup_callback_failures_total",
			Help: "OAuth callbacks that failed validation or exchange.",
		}),
	}
	m.registry.MustRegister(m.installsStarted, m.installsCompleted, m.whitelistDenied, m.callbackFailures)
	return m
}
