// Copyright 2014 The Prometheus Authors
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

// Package pushgateway implements the pushgateway URL/grouping-key
// encoding contract of §6.3, grounded on the original Java
// PushGateway.java's base64url/makeUrl logic, and the HTTP PUT
// mechanics of the teacher's prometheus/push.go Pusher.
package pushgateway

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_metrics_core/expfmt"
	"github.com/prometheus/client_metrics_core/metrics"
)

// Pusher pushes a Registry's scrape to a pushgateway endpoint.
type Pusher struct {
	url      string
	job      string
	grouping []groupingPair
	registry *metrics.Registry
	writer   expfmt.Writer
	client   *http.Client
}

type groupingPair struct {
	name, value string
}

// New returns a Pusher targeting the given pushgateway base URL (e.g.
// "http://localhost:9091") for job.
func New(pushURL, job string, reg *metrics.Registry) *Pusher {
	return &Pusher{
		url:      strings.TrimRight(pushURL, "/"),
		job:      job,
		registry: reg,
		writer:   expfmt.PrometheusTextWriter{},
		client:   &http.Client{},
	}
}

// Format selects the exposition writer used for the pushed body.
func (p *Pusher) Format(w expfmt.Writer) *Pusher {
	p.writer = w
	return p
}

// SetTimeout bounds the underlying HTTP client's dial+request timeout,
// mirroring the teacher's Pusher.SetTimeout.
func (p *Pusher) SetTimeout(d time.Duration) *Pusher {
	var dial func(network, addr string) (net.Conn, error)
	if d != 0 {
		dial = func(network, address string) (net.Conn, error) {
			deadline := time.Now().Add(d)
			conn, err := (&net.Dialer{Deadline: deadline}).Dial(network, address)
			if err == nil {
				conn.SetDeadline(deadline)
			}
			return conn, err
		}
	}
	p.client.Transport = &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		Dial:              dial,
		DisableKeepAlives: dial != nil,
	}
	return p
}

// Grouping adds a grouping-key label to the push URL.
func (p *Pusher) Grouping(name, value string) *Pusher {
	p.grouping = append(p.grouping, groupingPair{name: name, value: value})
	return p
}

// InstanceIPGroupingKey adds an "instance" grouping label set to the
// local outbound IP address, mirroring the Java client's
// instanceIPGroupingKey() convenience method: it opens a UDP "connection"
// to a public address purely to let the OS pick the local interface,
// without sending any packet.
func (p *Pusher) InstanceIPGroupingKey() (*Pusher, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, fmt.Errorf("pushgateway: could not determine local IP: %w", err)
	}
	defer conn.Close()
	addr := conn.LocalAddr().(*net.UDPAddr)
	return p.Grouping("instance", addr.IP.String()), nil
}

// base64url is base64.RawURLEncoding's alphabet applied to standard
// base64 output, matching PushGateway.java's own base64url(): encode
// with the standard alphabet, then substitute '+' -> '-' and '/' -> '_'.
func base64url(v string) string {
	s := base64.StdEncoding.EncodeToString([]byte(v))
	s = strings.ReplaceAll(s, "+", "-")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// makeURL builds the push endpoint path per §6.3: a value containing
// '/' or an empty value is rewritten as "<key>@base64/<base64url(value)>"
// (empty value becomes literal "="); every other value is a plain
// urlencoded path segment.
func (p *Pusher) makeURL() (string, error) {
	if p.job == "" {
		return "", errors.New("pushgateway: job name must not be empty")
	}
	var b strings.Builder
	b.WriteString(p.url)
	b.WriteString("/metrics/job/")
	b.WriteString(url.PathEscape(p.job))

	for _, g := range p.grouping {
		b.WriteString("/")
		if strings.Contains(g.value, "/") || g.value == "" {
			b.WriteString(g.name)
			b.WriteString("@base64/")
			if g.value == "" {
				b.WriteString("=")
			} else {
				b.WriteString(base64url(g.value))
			}
			continue
		}
		b.WriteString(g.name)
		b.WriteString("/")
		b.WriteString(url.PathEscape(g.value))
	}
	return b.String(), nil
}

// Push scrapes the registry and PUTs the rendered body to the
// pushgateway, mirroring the teacher's Pusher.Push except that the body
// is one of the text exposition formats instead of the delimited
// protobuf stream, since this module carries no protobuf dependency.
func (p *Pusher) Push() error {
	endpoint, err := p.makeURL()
	if err != nil {
		return err
	}

	snaps, _ := p.registry.Scrape()
	var buf bytes.Buffer
	if err := p.writer.Write(&buf, snaps, 0); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", p.writer.ContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return &url.Error{Op: "PUT", URL: endpoint, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return nil
}
