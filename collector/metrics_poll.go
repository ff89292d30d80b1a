package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/weperezh01/router-telemetry/poller"
)

// AddMetricsPoll exposes the state of one polling loop, labelled by loop name.
func AddMetricsPoll(registry prometheus.Registerer, states map[string]poller.PollState) {
	runningGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "poll_running",
		Help: "Whether the polling loop is active",
	}, []string{"loop"})
	registry.MustRegister(runningGaugeVec)
	lastSuccessGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "poll_last_success_timestamp_seconds",
		Help: "Time of the last successful fetch",
	}, []string{"loop"})
	registry.MustRegister(lastSuccessGaugeVec)
	failingGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "poll_failing",
		Help: "Whether the last fetch of the loop failed",
	}, []string{"loop"})
	registry.MustRegister(failingGaugeVec)

	for loop, st := range states {
		var running, failing float64
		if st.Running {
			running = 1
		}
		if st.LastError != "" {
			failing = 1
		}
		runningGaugeVec.WithLabelValues(loop).Set(running)
		failingGaugeVec.WithLabelValues(loop).Set(failing)
		if !st.LastSuccessAt.IsZero() {
			lastSuccessGaugeVec.WithLabelValues(loop).Set(float64(st.LastSuccessAt.UnixNano()) / 1e9)
		}
	}
}
