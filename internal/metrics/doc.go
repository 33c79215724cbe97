// Package metrics provides transform observability for mdxlayout.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs a nil check:
//
//	l := loader.New(cfg, loader.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on the given registry. A CLI
// run can persist the registry with WriteTextfile for a node_exporter
// textfile collector.
package metrics
