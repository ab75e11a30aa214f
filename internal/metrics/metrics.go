package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "HTTP requests by method and status code",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// list is favorite, shopping_cart or subscription; op is add or remove;
	// result is ok or the error code returned to the client.
	ListOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_list_operations_total",
			Help: "Toggle-list add/remove attempts by outcome",
		},
		[]string{"list", "op", "result"},
	)

	RecipeWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Successful recipe create/update/delete operations",
		},
		[]string{"op"},
	)

	ShoppingListDownloadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Shopping lists rendered for download",
		},
	)
)

func RecordListOperation(list, op, result string) {
	ListOperationsTotal.WithLabelValues(list, op, result).Inc()
}

func RecordRecipeWrite(op string) {
	RecipeWritesTotal.WithLabelValues(op).Inc()
}

func RecordShoppingListDownload() {
	ShoppingListDownloadsTotal.Inc()
}

// Middleware records request count and latency once the handler chain returns.
// Label values outlive the request buffer, so the method is copied.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := utils.CopyString(c.Method())
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry in Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
