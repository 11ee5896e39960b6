package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		wbRequests,
		wbRateLimited,
		wbAnswerRetries,
	)
}

var (
	wbRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wb_api_requests_total",
			Help: "Outbound Wildberries API requests per endpoint and status class.",
		},
		[]string{"endpoint", "status"},
	)

	wbRateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wb_api_rate_limited_total",
			Help: "429 responses honored with a server-supplied wait.",
		},
	)

	wbAnswerRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wb_answer_retries_total",
			Help: "Retried answer submissions after a failed attempt.",
		},
	)
)

// IncWBRequest records one outbound call. status is the HTTP status code, or
// 0 for a transport error.
func IncWBRequest(endpoint string, status int) {
	class := "error"
	if status > 0 {
		class = strconv.Itoa(status/100) + "xx"
	}
	wbRequests.WithLabelValues(norm(endpoint), class).Inc()
}

func IncWBRateLimited() {
	wbRateLimited.Inc()
}

func IncAnswerRetry() {
	wbAnswerRetries.Inc()
}
