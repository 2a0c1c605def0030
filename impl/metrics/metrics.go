package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitMetrics initializes metrics. If the passed port is zero, no action is taken. Otherwise
// the function creates all the artcache metrics and registers them with the default prometheus
// registry (which already carries the go runtime and process collectors), then starts an HTTP
// server to serve them under the '/metrics' path.
func InitMetrics(port int) {
	if port == 0 {
		return
	}
	addArtcacheMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
