package expfmt

import (
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_metrics_core/labels"
	"github.com/prometheus/client_metrics_core/model"
)

func writeTimestamp(w io.Writer, ts int64) {
	if ts == 0 {
		return
	}
	fmt.Fprintf(w, " %s", formatTimestampMillis(ts))
}

func writeCounterFamily(w io.Writer, s model.CounterSnapshot, openMetrics bool, ts int64) {
	typeName := openMetricsType(model.TypeCounter)
	if !openMetrics {
		typeName = prometheusType(model.TypeCounter)
	}
	full := writePreamble(w, s.Metadata, typeName, openMetrics)

	// §4.9: OpenMetrics always suffixes _total. Prometheus text appends
	// _total only if the base name does not already end with it.
	sampleName := full + "_total"
	if !openMetrics && hasSuffix(full, "_total") {
		sampleName = full
	}

	for _, p := range sortCounterPoints(s.Points) {
		io.WriteString(w, sampleName)
		writeLabelSet(w, p.Labels)
		fmt.Fprintf(w, " %s", formatValue(p.Value, openMetrics))
		writeTimestamp(w, ts)
		writeExemplar(w, p.Exemplar, openMetrics)
		io.WriteString(w, "\n")

		if openMetrics && p.CreatedTimestampMillis != 0 {
			fmt.Fprintf(w, "%s_created", full)
			writeLabelSet(w, p.Labels)
			fmt.Fprintf(w, " %s\n", formatTimestampMillis(p.CreatedTimestampMillis))
		}
	}
}

func writeGaugeFamily(w io.Writer, s model.GaugeSnapshot, openMetrics bool, ts int64) {
	typeName := openMetricsType(model.TypeGauge)
	if !openMetrics {
		typeName = prometheusType(model.TypeGauge)
	}
	full := writePreamble(w, s.Metadata, typeName, openMetrics)

	for _, p := range sortGaugePoints(s.Points) {
		io.WriteString(w, full)
		writeLabelSet(w, p.Labels)
		fmt.Fprintf(w, " %s", formatValue(p.Value, openMetrics))
		writeTimestamp(w, ts)
		writeExemplar(w, p.Exemplar, openMetrics)
		io.WriteString(w, "\n")
	}
}

func writeSummaryFamily(w io.Writer, s model.SummarySnapshot, openMetrics bool, ts int64) {
	typeName := openMetricsType(model.TypeSummary)
	if !openMetrics {
		typeName = prometheusType(model.TypeSummary)
	}
	full := writePreamble(w, s.Metadata, typeName, openMetrics)

	for _, p := range sortSummaryPoints(s.Points) {
		quantiles := append([]model.Quantile(nil), p.Quantiles...)
		sort.Slice(quantiles, func(i, j int) bool { return quantiles[i].Quantile < quantiles[j].Quantile })
		for _, q := range quantiles {
			io.WriteString(w, full)
			writeLabelSet(w, p.Labels, labels.Label{Name: "quantile", Value: formatValue(q.Quantile, false)})
			fmt.Fprintf(w, " %s", formatValue(q.Value, openMetrics))
			writeTimestamp(w, ts)
			io.WriteString(w, "\n")
		}

		fmt.Fprintf(w, "%s_count", full)
		writeLabelSet(w, p.Labels)
		fmt.Fprintf(w, " %s", formatCount(p.Count))
		writeTimestamp(w, ts)
		io.WriteString(w, "\n")

		fmt.Fprintf(w, "%s_sum", full)
		writeLabelSet(w, p.Labels)
		fmt.Fprintf(w, " %s", formatValue(p.Sum, openMetrics))
		writeTimestamp(w, ts)
		io.WriteString(w, "\n")

		if openMetrics && p.CreatedTimestampMillis != 0 {
			fmt.Fprintf(w, "%s_created", full)
			writeLabelSet(w, p.Labels)
			fmt.Fprintf(w, " %s\n", formatTimestampMillis(p.CreatedTimestampMillis))
		}
	}
}

func writeHistogramFamily(w io.Writer, s model.HistogramSnapshot, openMetrics bool, ts int64) {
	isGauge := s.Metadata.Type == model.TypeGaugeHistogram
	typeName := openMetricsType(s.Metadata.Type)
	if !openMetrics {
		typeName = prometheusType(s.Metadata.Type)
	}
	full := writePreamble(w, s.Metadata, typeName, openMetrics)

	countSuffix, sumSuffix := "_count", "_sum"
	if isGauge && openMetrics {
		countSuffix, sumSuffix = "_gcount", "_gsum"
	}

	for _, p := range sortHistogramPoints(s.Points) {
		for _, b := range p.Buckets {
			fmt.Fprintf(w, "%s_bucket", full)
			writeLabelSet(w, p.Labels, labels.Label{Name: "le", Value: formatValue(b.UpperBound, false)})
			fmt.Fprintf(w, " %s", formatCount(b.Count))
			writeTimestamp(w, ts)
			if openMetrics {
				writeExemplar(w, b.Exemplar, true)
			}
			io.WriteString(w, "\n")
		}

		fmt.Fprintf(w, "%s%s", full, countSuffix)
		writeLabelSet(w, p.Labels)
		fmt.Fprintf(w, " %s", formatCount(p.Count))
		writeTimestamp(w, ts)
		io.WriteString(w, "\n")

		fmt.Fprintf(w, "%s%s", full, sumSuffix)
		writeLabelSet(w, p.Labels)
		fmt.Fprintf(w, " %s", formatValue(p.Sum, openMetrics))
		writeTimestamp(w, ts)
		io.WriteString(w, "\n")

		if openMetrics && p.CreatedTimestampMillis != 0 {
			fmt.Fprintf(w, "%s_created", full)
			writeLabelSet(w, p.Labels)
			fmt.Fprintf(w, " %s\n", formatTimestampMillis(p.CreatedTimestampMillis))
		}
	}
}

func writeInfoFamily(w io.Writer, s model.InfoSnapshot, openMetrics bool, ts int64) {
	typeName := openMetricsType(model.TypeInfo)
	if !openMetrics {
		typeName = prometheusType(model.TypeInfo)
	}
	full := writePreamble(w, s.Metadata, typeName, openMetrics)
	sampleName := full
	if openMetrics {
		sampleName = full + "_info"
	}

	for _, p := range sortInfoPoints(s.Points) {
		io.WriteString(w, sampleName)
		writeLabelSet(w, p.Labels)
		fmt.Fprintf(w, " %s", formatValue(1.0, openMetrics))
		writeTimestamp(w, ts)
		io.WriteString(w, "\n")
	}
}

func writeStateSetFamily(w io.Writer, s model.StateSetSnapshot, openMetrics bool, ts int64) {
	typeName := openMetricsType(model.TypeStateSet)
	if !openMetrics {
		typeName = prometheusType(model.TypeStateSet)
	}
	full := writePreamble(w, s.Metadata, typeName, openMetrics)

	for _, p := range sortStateSetPoints(s.Points) {
		states := append([]model.State(nil), p.States...)
		sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
		for _, st := range states {
			io.WriteString(w, full)
			writeLabelSet(w, p.Labels, labels.Label{Name: full, Value: st.Name})
			value := uint64(0)
			if st.Enabled {
				value = 1
			}
			fmt.Fprintf(w, " %s", formatCount(value))
			writeTimestamp(w, ts)
			io.WriteString(w, "\n")
		}
	}
}

func writeUnknownFamily(w io.Writer, s model.UnknownSnapshot, openMetrics bool, ts int64) {
	typeName := openMetricsType(model.TypeUnknown)
	if !openMetrics {
		typeName = prometheusType(model.TypeUnknown)
	}
	full := writePreamble(w, s.Metadata, typeName, openMetrics)

	for _, p := range sortUnknownPoints(s.Points) {
		io.WriteString(w, full)
		writeLabelSet(w, p.Labels)
		fmt.Fprintf(w, " %s", formatValue(p.Value, openMetrics))
		writeTimestamp(w, ts)
		io.WriteString(w, "\n")
	}
}

func hasSuffix(s, suf string) bool {
	return len(s) >= len(suf) && s[len(s)-len(suf):] == suf
}
