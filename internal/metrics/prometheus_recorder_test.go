package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveTransformDuration(ResultWrapped, 2*time.Millisecond)
	pr.IncTransformResult(ResultWrapped)
	pr.IncTransformResult(ResultWrapped)
	pr.IncTransformResult(ResultPassThrough)
	pr.IncTransformError("not_found")
	pr.IncLayoutLookup(true)
	pr.IncLayoutLookup(false)
	pr.ObserveBatchDuration(time.Second)

	require.Equal(t, 2.0, testutil.ToFloat64(pr.transformResults.WithLabelValues("wrapped")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.transformResults.WithLabelValues("pass_through")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.transformErrors.WithLabelValues("not_found")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.layoutLookups.WithLabelValues("missing")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_NilReceiverIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncTransformResult(ResultFailed)
	pr.IncLayoutLookup(true)
	pr.ObserveBatchDuration(time.Second)
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncTransformResult(ResultWrapped)
	r.ObserveTransformDuration(ResultWrapped, time.Millisecond)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncTransformResult(ResultWrapped)

	path := filepath.Join(t.TempDir(), "mdxlayout.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `mdxlayout_transform_results_total{result="wrapped"} 1`))
}
