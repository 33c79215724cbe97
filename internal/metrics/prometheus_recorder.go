package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	transformDuration *prom.HistogramVec
	transformResults  *prom.CounterVec
	transformErrors   *prom.CounterVec
	layoutLookups     *prom.CounterVec
	batchDuration     prom.Histogram
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		transformDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "mdxlayout",
			Name:      "transform_duration_seconds",
			Help:      "Duration of single-file transforms",
			Buckets:   prom.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"result"}),
		transformResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mdxlayout",
			Name:      "transform_results_total",
			Help:      "Transform results by terminal state",
		}, []string{"result"}),
		transformErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mdxlayout",
			Name:      "transform_errors_total",
			Help:      "Failed transforms by error category",
		}, []string{"category"}),
		layoutLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mdxlayout",
			Name:      "layout_lookups_total",
			Help:      "Layout file lookups by outcome",
		}, []string{"result"}),
		batchDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "mdxlayout",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a batch run over a pages directory",
			Buckets:   prom.DefBuckets,
		}),
	}
	reg.MustRegister(pr.transformDuration, pr.transformResults, pr.transformErrors, pr.layoutLookups, pr.batchDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveTransformDuration(result ResultLabel, d time.Duration) {
	if p == nil || p.transformDuration == nil {
		return
	}
	p.transformDuration.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTransformResult(result ResultLabel) {
	if p == nil || p.transformResults == nil {
		return
	}
	p.transformResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncTransformError(category string) {
	if p == nil || p.transformErrors == nil {
		return
	}
	p.transformErrors.WithLabelValues(category).Inc()
}

func (p *PrometheusRecorder) IncLayoutLookup(found bool) {
	if p == nil || p.layoutLookups == nil {
		return
	}
	res := "missing"
	if found {
		res = "found"
	}
	p.layoutLookups.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveBatchDuration(d time.Duration) {
	if p == nil || p.batchDuration == nil {
		return
	}
	p.batchDuration.Observe(d.Seconds())
}
