package expfmt

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheus/client_metrics_core/exemplar"
	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

func TestOpenMetricsCounterWithoutTimestampOrExemplar(t *testing.T) {
	snap := model.CounterSnapshot{
		Metadata: model.Metadata{Name: "my_counter", Type: model.TypeCounter},
		Points:   []model.CounterDataPoint{{Value: 1.1}},
	}

	var buf bytes.Buffer
	require.NoError(t, OpenMetricsWriter{}.Write(&buf, model.MetricSnapshots{snap}, 0))

	want := "# TYPE my_counter counter\n" +
		"my_counter_total 1.1\n" +
		"# EOF\n"
	assert.Equal(t, want, buf.String())
}

func TestOpenMetricsCounterWithExemplarAndCreated(t *testing.T) {
	exemplarLabels := labels.MustNew(
		labels.Label{Name: "env", Value: "prod"},
		labels.Label{Name: "span_id", Value: "12345"},
		labels.Label{Name: "trace_id", Value: "abcde"},
	)
	ex := &exemplar.Exemplar{Labels: exemplarLabels, Value: 1.7, Timestamp: time.UnixMilli(1672850685829)}

	snap := model.CounterSnapshot{
		Metadata: model.Metadata{Name: "service_time_seconds", Help: "total time spent serving", Unit: "seconds", Type: model.TypeCounter},
		Points: []model.CounterDataPoint{
			{
				Labels:                 labels.MustNew(labels.Label{Name: "path", Value: "/hello"}, labels.Label{Name: "status", Value: "200"}),
				Value:                  0.8,
				CreatedTimestampMillis: 1672850585820,
				Exemplar:               ex,
			},
			{
				Labels:                 labels.MustNew(labels.Label{Name: "path", Value: "/hello"}, labels.Label{Name: "status", Value: "500"}),
				Value:                  0.9,
				CreatedTimestampMillis: 1672850585820,
				Exemplar:               ex,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, OpenMetricsWriter{}.Write(&buf, model.MetricSnapshots{snap}, 1672850685829))

	want := "# TYPE service_time_seconds counter\n" +
		"# UNIT service_time_seconds seconds\n" +
		"# HELP service_time_seconds total time spent serving\n" +
		`service_time_seconds_total{path="/hello",status="200"} 0.8 1672850685.829 # {env="prod",span_id="12345",trace_id="abcde"} 1.7 1672850685.829` + "\n" +
		`service_time_seconds_created{path="/hello",status="200"} 1672850585.820` + "\n" +
		`service_time_seconds_total{path="/hello",status="500"} 0.9 1672850685.829 # {env="prod",span_id="12345",trace_id="abcde"} 1.7 1672850685.829` + "\n" +
		`service_time_seconds_created{path="/hello",status="500"} 1672850585.820` + "\n" +
		"# EOF\n"
	assert.Equal(t, want, buf.String())
}

func TestOpenMetricsHistogramBucketOrderingAndTotals(t *testing.T) {
	ex200 := &exemplar.Exemplar{Value: 2.0, Timestamp: time.UnixMilli(1)}
	exInf := &exemplar.Exemplar{Value: 4.1, Timestamp: time.UnixMilli(1)}

	snap := model.HistogramSnapshot{
		Metadata: model.Metadata{Name: "response_size_bytes", Help: "help", Unit: "bytes", Type: model.TypeHistogram},
		Points: []model.HistogramDataPoint{
			{
				Labels: labels.Of("status", "200"),
				Count:  4,
				Sum:    4.1,
				Buckets: []model.Bucket{
					{UpperBound: 2.2, Count: 2, Exemplar: ex200},
					{UpperBound: math.Inf(1), Count: 4, Exemplar: exInf},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, OpenMetricsWriter{}.Write(&buf, model.MetricSnapshots{snap}, 0))

	out := buf.String()
	countIdx := indexOf(out, "response_size_bytes_count")
	sumIdx := indexOf(out, "response_size_bytes_sum")
	bucketIdx := indexOf(out, "response_size_bytes_bucket")
	require.True(t, bucketIdx < countIdx)
	require.True(t, countIdx < sumIdx)
	assert.Contains(t, out, `le="2.2"`)
	assert.Contains(t, out, `le="+Inf"`)
	assert.Contains(t, out, `response_size_bytes_count{status="200"} 4`)
	assert.Contains(t, out, `response_size_bytes_sum{status="200"} 4.1`)
}

func TestOpenMetricsSummaryWithNoObjectivesHasOnlyCountAndSum(t *testing.T) {
	snap := model.SummarySnapshot{
		Metadata: model.Metadata{Name: "latency_seconds", Type: model.TypeSummary},
		Points:   []model.SummaryDataPoint{{Count: 3, Sum: 1.2}},
	}

	var buf bytes.Buffer
	require.NoError(t, OpenMetricsWriter{}.Write(&buf, model.MetricSnapshots{snap}, 0))

	want := "# TYPE latency_seconds summary\n" +
		"latency_seconds_count 3\n" +
		"latency_seconds_sum 1.2\n" +
		"# EOF\n"
	assert.Equal(t, want, buf.String())
}

func TestOpenMetricsStateSetOrdersStatesByName(t *testing.T) {
	snap := model.StateSetSnapshot{
		Metadata: model.Metadata{Name: "my_states", Type: model.TypeStateSet},
		Points: []model.StateSetDataPoint{{
			States: []model.State{{Name: "bb", Enabled: false}, {Name: "a", Enabled: true}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, OpenMetricsWriter{}.Write(&buf, model.MetricSnapshots{snap}, 0))

	want := "# TYPE my_states stateset\n" +
		`my_states{my_states="a"} 1` + "\n" +
		`my_states{my_states="bb"} 0` + "\n" +
		"# EOF\n"
	assert.Equal(t, want, buf.String())
}

func TestOpenMetricsInfoEmitsInfoSuffixAndConstantOne(t *testing.T) {
	snap := model.InfoSnapshot{
		Metadata: model.Metadata{Name: "version", Type: model.TypeInfo},
		Points:   []model.InfoDataPoint{{Labels: labels.Of("version", "1.2.3")}},
	}

	var buf bytes.Buffer
	require.NoError(t, OpenMetricsWriter{}.Write(&buf, model.MetricSnapshots{snap}, 0))

	want := "# TYPE version info\n" +
		`version_info{version="1.2.3"} 1.0` + "\n" +
		"# EOF\n"
	assert.Equal(t, want, buf.String())
}

func TestPrometheusTextOmitsUnitAndCreatedAndEOF(t *testing.T) {
	snap := model.CounterSnapshot{
		Metadata: model.Metadata{Name: "service_time_seconds", Unit: "seconds", Type: model.TypeCounter},
		Points:   []model.CounterDataPoint{{Value: 0.8, CreatedTimestampMillis: 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, PrometheusTextWriter{}.Write(&buf, model.MetricSnapshots{snap}, 0))

	want := "# TYPE service_time_seconds counter\n" +
		"service_time_seconds_total 0.8\n"
	assert.Equal(t, want, buf.String())
}

func TestWriterIdempotence(t *testing.T) {
	snap := model.CounterSnapshot{
		Metadata: model.Metadata{Name: "c", Type: model.TypeCounter},
		Points:   []model.CounterDataPoint{{Value: 3}, {Labels: labels.Of("k", "v"), Value: 5}},
	}

	var buf1, buf2 bytes.Buffer
	require.NoError(t, OpenMetricsWriter{}.Write(&buf1, model.MetricSnapshots{snap}, 42))
	require.NoError(t, OpenMetricsWriter{}.Write(&buf2, model.MetricSnapshots{snap}, 42))
	assert.Equal(t, buf1.String(), buf2.String())
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
