package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	HttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	ChainReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chain_reads_total",
			Help: "Contract state reads by result",
		},
		[]string{"result"},
	)

	PlaysRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plays_recorded_total",
			Help: "Total game plays appended to history",
		},
	)
)

// Register adds the collectors to reg. Pass prometheus.DefaultRegisterer in
// main; tests use a fresh registry.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{HttpRequests, ChainReads, PlaysRecorded} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
