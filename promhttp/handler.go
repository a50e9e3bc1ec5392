// Copyright 2015 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package promhttp exposes a Registry over HTTP, negotiating between
// the OpenMetrics and Prometheus text exposition formats via the
// request's Accept header (§4.9's two content types). It is scrape
// transport, kept outside the core per §1's scope note, sitting
// alongside expfmt the same way the teacher's own promhttp package
// sits alongside prometheus.
package promhttp

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/prometheus/client_metrics_core/expfmt"
	"github.com/prometheus/client_metrics_core/metrics"
)

// HandlerOpts configures Handler.
type HandlerOpts struct {
	// ErrorLog receives write and collector failures. Nil disables logging.
	ErrorLog func(v ...any)

	// Now stamps the scrape timestamp on every sample. Nil means the
	// writer omits per-sample timestamps entirely, which is the
	// conventional choice for a pull scrape (the scraping Prometheus
	// server stamps its own arrival time).
	Now func() int64
}

// Handler returns an http.Handler that scrapes reg on every request and
// renders it in whichever format the request's Accept header prefers,
// falling back to the Prometheus text format.
func Handler(reg *metrics.Registry, opts HandlerOpts) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snaps, failures := reg.Scrape()
		for _, f := range failures {
			if opts.ErrorLog != nil {
				opts.ErrorLog(f)
			}
		}

		writer := negotiateWriter(r.Header.Get("Accept"))
		var ts int64
		if opts.Now != nil {
			ts = opts.Now()
		}

		var buf bytes.Buffer
		if err := writer.Write(&buf, snaps, ts); err != nil {
			if opts.ErrorLog != nil {
				opts.ErrorLog(err)
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", writer.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	})
}

func negotiateWriter(accept string) expfmt.Writer {
	if strings.Contains(accept, "application/openmetrics-text") {
		return expfmt.OpenMetricsWriter{}
	}
	return expfmt.PrometheusTextWriter{}
}
