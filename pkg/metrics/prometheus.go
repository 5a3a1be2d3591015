package metrics

// Request instrumentation derived from github.com/zsais/go-gin-prometheus,
// reduced to the four standard collectors and served through promhttp.

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var httpLabels = []string{"code", "method", "url"}

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code, method and route.",
	Type:        "counter_vec",
	Args:        httpLabels,
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        httpLabels,
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        httpLabels,
}

var reqSz = &Metric{
	ID:          "reqSz",
	Name:        "req_sz_bytes",
	Description: "The HTTP request sizes in bytes.",
	Type:        "summary_vec",
	Args:        httpLabels,
}

const defaultMetricPath = "/metrics"

// unmatchedRoute labels requests gin could not route, so that scanners
// probing random paths do not create one series per path.
const unmatchedRoute = "unmatched"

// RouteLabelFn maps a request to the "url" label.
type RouteLabelFn func(c *gin.Context) string

// RouteTemplate labels a request with its registered route, e.g.
// "/api/v1/payments/:id" rather than the concrete payment id.
func RouteTemplate(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return unmatchedRoute
}

// Prometheus instruments a gin engine and exposes the default registry.
type Prometheus struct {
	reqCnt       *prometheus.CounterVec
	reqDur       *prometheus.HistogramVec
	reqSz, resSz *prometheus.SummaryVec

	metricsPath string
	routeLabel  RouteLabelFn
	log         *zap.SugaredLogger
}

type NewPrometheusOptions struct {
	Subsystem   string
	MetricsPath string
	RouteLabel  RouteLabelFn
	Logger      *zap.SugaredLogger
}

func NewPrometheus(opts NewPrometheusOptions) *Prometheus {
	p := &Prometheus{
		metricsPath: opts.MetricsPath,
		routeLabel:  opts.RouteLabel,
		log:         opts.Logger,
	}
	if p.metricsPath == "" {
		p.metricsPath = defaultMetricPath
	}
	if p.routeLabel == nil {
		p.routeLabel = RouteTemplate
	}
	if p.log == nil {
		p.log = zap.NewNop().Sugar()
	}

	reg := prometheus.DefaultRegisterer
	p.reqCnt = register(reg, NewMetric(reqCnt, opts.Subsystem)).(*prometheus.CounterVec)
	p.reqDur = register(reg, NewMetric(reqDur, opts.Subsystem)).(*prometheus.HistogramVec)
	p.reqSz = register(reg, NewMetric(reqSz, opts.Subsystem)).(*prometheus.SummaryVec)
	p.resSz = register(reg, NewMetric(resSz, opts.Subsystem)).(*prometheus.SummaryVec)
	return p
}

// Use instruments e and mounts the metrics endpoint on it.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	e.GET(p.metricsPath, prometheusHandler())
}

// UseWithSeparateListener instruments e but serves the metrics endpoint on
// its own listener, keeping scrapes out of the access log.
func (p *Prometheus) UseWithSeparateListener(e *gin.Engine, addr string) {
	e.Use(p.HandlerFunc())

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(p.metricsPath, prometheusHandler())
	go func() {
		if err := r.Run(addr); err != nil {
			p.log.Errorw("metrics server stopped", "addr", addr, "err", err)
		}
	}()
}

func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.metricsPath {
			c.Next()
			return
		}

		start := time.Now()
		in := float64(computeApproximateRequestSize(c.Request))

		c.Next()

		labels := []string{strconv.Itoa(c.Writer.Status()), c.Request.Method, p.routeLabel(c)}
		p.reqDur.WithLabelValues(labels...).Observe(MillisecondsSince(start))
		p.reqCnt.WithLabelValues(labels...).Inc()
		p.reqSz.WithLabelValues(labels...).Observe(in)
		p.resSz.WithLabelValues(labels...).Observe(float64(c.Writer.Size()))
	}
}

func prometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// MillisecondsSince returns the elapsed time since start in fractional milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

func computeApproximateRequestSize(r *http.Request) int {
	s := len(r.Method) + len(r.Proto) + len(r.Host)
	if r.URL != nil {
		s += len(r.URL.Path)
	}
	for name, values := range r.Header {
		s += len(name)
		for _, value := range values {
			s += len(value)
		}
	}
	if r.ContentLength > 0 {
		s += int(r.ContentLength)
	}
	return s
}
