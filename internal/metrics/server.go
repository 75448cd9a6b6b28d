package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the default Prometheus registry for mounting at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
