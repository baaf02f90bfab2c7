// SPDX-License-Identifier: AGPL-3.0-or-later
// hqfbp-go - Hamradio Quick File Broadcasting Protocol implementation
// Copyright (C) 2023-2024 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/loic-fejoz/hqfbp-go>

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exposed by the metrics server.
type Metrics struct {
	PDUsGeneratedTotal   *prometheus.CounterVec
	PDUsIngestedTotal    *prometheus.CounterVec
	SessionsCompleted    prometheus.Counter
	SessionsTimedOut     prometheus.Counter
	ChunkQuality         prometheus.Histogram
	ActiveSessions       prometheus.Gauge
}

// NewMetrics constructs and registers the HQFBP collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		PDUsGeneratedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hqfbp_pdus_generated_total",
			Help: "The total number of PDUs produced by the generator",
		}, []string{"kind"}),
		PDUsIngestedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hqfbp_pdus_ingested_total",
			Help: "The total number of PDUs processed by the deframer",
		}, []string{"outcome"}),
		SessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hqfbp_sessions_completed_total",
			Help: "The total number of sessions that reassembled a message",
		}),
		SessionsTimedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hqfbp_sessions_timed_out_total",
			Help: "The total number of sessions evicted by the session timeout",
		}),
		ChunkQuality: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hqfbp_chunk_quality",
			Help:    "Quality score observed per accepted chunk",
			Buckets: prometheus.LinearBuckets(0, 4, 10),
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hqfbp_active_sessions",
			Help: "The current number of sessions tracked by the deframer",
		}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.PDUsGeneratedTotal)
	prometheus.MustRegister(m.PDUsIngestedTotal)
	prometheus.MustRegister(m.SessionsCompleted)
	prometheus.MustRegister(m.SessionsTimedOut)
	prometheus.MustRegister(m.ChunkQuality)
	prometheus.MustRegister(m.ActiveSessions)
}

// RecordGenerated increments the PDUs-generated counter for kind
// ("data" or "announcement").
func (m *Metrics) RecordGenerated(kind string) {
	m.PDUsGeneratedTotal.WithLabelValues(kind).Inc()
}

// RecordIngested increments the PDUs-ingested counter for outcome (the
// deframer reports "accepted" or "malformed").
func (m *Metrics) RecordIngested(outcome string) {
	m.PDUsIngestedTotal.WithLabelValues(outcome).Inc()
}

// RecordSessionCompleted marks a session as having reassembled successfully.
func (m *Metrics) RecordSessionCompleted() {
	m.SessionsCompleted.Inc()
}

// RecordSessionTimedOut marks a session as evicted by timeout.
func (m *Metrics) RecordSessionTimedOut() {
	m.SessionsTimedOut.Inc()
}

// ObserveChunkQuality records the quality score of an accepted chunk.
func (m *Metrics) ObserveChunkQuality(q float64) {
	m.ChunkQuality.Observe(q)
}

// SetActiveSessions sets the current number of tracked sessions.
func (m *Metrics) SetActiveSessions(count float64) {
	m.ActiveSessions.Set(count)
}
