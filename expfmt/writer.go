package expfmt

import (
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_metrics_core/model"
)

// Writer renders a full scrape result to w in one of the two supported
// exposition formats (§4.9). scrapeTimestampMillis, when non-zero, is
// stamped onto every sample line; zero means "omitted" (§4.9's
// per-series scrapeTimestampMillis rule, applied uniformly across one
// scrape).
type Writer interface {
	ContentType() string
	Write(w io.Writer, snaps model.MetricSnapshots, scrapeTimestampMillis int64) error
}

// OpenMetricsWriter implements the OpenMetrics text format 1.0.0.
type OpenMetricsWriter struct{}

// ContentType implements Writer.
func (OpenMetricsWriter) ContentType() string { return OpenMetricsContentType }

// Write implements Writer.
func (OpenMetricsWriter) Write(w io.Writer, snaps model.MetricSnapshots, scrapeTimestampMillis int64) error {
	cw := &countingWriter{w: w}
	for _, s := range snaps {
		writeFamily(cw, s, true, scrapeTimestampMillis)
	}
	io.WriteString(cw, "# EOF\n")
	return cw.err
}

// PrometheusTextWriter implements the Prometheus text format 0.0.4.
type PrometheusTextWriter struct{}

// ContentType implements Writer.
func (PrometheusTextWriter) ContentType() string { return PrometheusContentType }

// Write implements Writer.
func (PrometheusTextWriter) Write(w io.Writer, snaps model.MetricSnapshots, scrapeTimestampMillis int64) error {
	cw := &countingWriter{w: w}
	for _, s := range snaps {
		writeFamily(cw, s, false, scrapeTimestampMillis)
	}
	return cw.err
}

// countingWriter records the first write error so every call site along
// the rendering path can ignore individual io.Writer errors and the
// caller still gets WriteError (§7) surfaced once at the end.
type countingWriter struct {
	w   io.Writer
	err error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(p)
	if err != nil {
		cw.err = fmt.Errorf("expfmt: write error: %w", err)
	}
	return n, err
}

func writeFamily(w io.Writer, s model.MetricSnapshot, openMetrics bool, ts int64) {
	switch snap := s.(type) {
	case model.CounterSnapshot:
		writeCounterFamily(w, snap, openMetrics, ts)
	case model.GaugeSnapshot:
		writeGaugeFamily(w, snap, openMetrics, ts)
	case model.SummarySnapshot:
		writeSummaryFamily(w, snap, openMetrics, ts)
	case model.HistogramSnapshot:
		writeHistogramFamily(w, snap, openMetrics, ts)
	case model.InfoSnapshot:
		writeInfoFamily(w, snap, openMetrics, ts)
	case model.StateSetSnapshot:
		writeStateSetFamily(w, snap, openMetrics, ts)
	case model.UnknownSnapshot:
		writeUnknownFamily(w, snap, openMetrics, ts)
	}
}

// writePreamble writes the "# TYPE", optional "# UNIT", and optional
// "# HELP" lines shared by every family (§6.2's metricfamily rule).
func writePreamble(w io.Writer, md model.Metadata, typeName string, openMetrics bool) string {
	full := md.FullName()
	fmt.Fprintf(w, "# TYPE %s %s\n", full, typeName)
	if openMetrics && md.Unit != "" {
		fmt.Fprintf(w, "# UNIT %s %s\n", full, md.Unit)
	}
	if md.Help != "" {
		fmt.Fprintf(w, "# HELP %s %s\n", full, escapeHelp(md.Help))
	}
	return full
}

func openMetricsType(t model.MetricType) string { return string(t) }

// prometheusType maps a model.MetricType onto the Prometheus text
// format's smaller type vocabulary (§4.9: "Type set: counter, gauge,
// summary, histogram, untyped"). OpenMetrics-only kinds degrade to
// their closest Prometheus counterpart so the classic format can still
// carry them.
func prometheusType(t model.MetricType) string {
	switch t {
	case model.TypeUnknown:
		return "untyped"
	case model.TypeInfo, model.TypeStateSet:
		return "gauge"
	case model.TypeGaugeHistogram:
		return "histogram"
	default:
		return string(t)
	}
}

func sortCounterPoints(points []model.CounterDataPoint) []model.CounterDataPoint {
	out := append([]model.CounterDataPoint(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return labelValueKey(out[i].Labels) < labelValueKey(out[j].Labels) })
	return out
}

func sortGaugePoints(points []model.GaugeDataPoint) []model.GaugeDataPoint {
	out := append([]model.GaugeDataPoint(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return labelValueKey(out[i].Labels) < labelValueKey(out[j].Labels) })
	return out
}

func sortSummaryPoints(points []model.SummaryDataPoint) []model.SummaryDataPoint {
	out := append([]model.SummaryDataPoint(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return labelValueKey(out[i].Labels) < labelValueKey(out[j].Labels) })
	return out
}

func sortHistogramPoints(points []model.HistogramDataPoint) []model.HistogramDataPoint {
	out := append([]model.HistogramDataPoint(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return labelValueKey(out[i].Labels) < labelValueKey(out[j].Labels) })
	return out
}

func sortInfoPoints(points []model.InfoDataPoint) []model.InfoDataPoint {
	out := append([]model.InfoDataPoint(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return labelValueKey(out[i].Labels) < labelValueKey(out[j].Labels) })
	return out
}

func sortStateSetPoints(points []model.StateSetDataPoint) []model.StateSetDataPoint {
	out := append([]model.StateSetDataPoint(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return labelValueKey(out[i].Labels) < labelValueKey(out[j].Labels) })
	return out
}

func sortUnknownPoints(points []model.UnknownDataPoint) []model.UnknownDataPoint {
	out := append([]model.UnknownDataPoint(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return labelValueKey(out[i].Labels) < labelValueKey(out[j].Labels) })
	return out
}
