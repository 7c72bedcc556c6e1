package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "apikb_http_requests_total",
		Help: "HTTP requests served, by path and status.",
	},
	[]string{"path", "status"},
)

func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		requestsTotal.WithLabelValues(c.FullPath(), strconv.Itoa(c.Writer.Status())).Inc()
	}
}
