// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/united-manufacturing-hub/payment-core/pkg/logger"
	"github.com/united-manufacturing-hub/payment-core/pkg/sentry"
)

const (
	// Component labels.
	ComponentStateManager = "state_manager"
	ComponentRegistry     = "state_registry"
	ComponentHTTPAPI      = "http_api"
)

var (
	// Namespace and subsystem for all metrics.
	namespace = "payment"
	subsystem = "core"

	// Error counters.
	errorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors encountered by component",
		},
		[]string{"component", "reason"},
	)

	// Committed transitions by edge.
	transitionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transitions_total",
			Help:      "Total number of committed state transitions by edge",
		},
		[]string{"from", "to"},
	)

	// Execute timing.
	executeTime = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "execute_duration_milliseconds",
			Help:      "Time taken to execute an action (in milliseconds)",
			Objectives: map[float64]float64{
				0.5:  0.01, // 50th percentile with 1% error
				0.9:  0.01, // 90th percentile with 1% error
				0.95: 0.01, // 95th percentile with 1% error
				0.99: 0.01, // 99th percentile with 1% error
			},
		},
		[]string{"component"},
	)

	// Active state gauge (0=AwaitingInfo, 1=EMVPayment, 2=PaymentSuccess, -1=Unknown).
	currentState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_state",
			Help:      "Currently active state (0=AwaitingInfo, 1=EMVPayment, 2=PaymentSuccess, -1=Unknown)",
		},
	)

	// Event stream accounting.
	eventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_published_total",
			Help:      "Total number of transition events published to the stream",
		},
	)

	eventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_dropped_total",
			Help:      "Total number of transition events dropped because the stream was closed",
		},
	)
)

// IncErrorCount increments the error counter for a component and reason.
func IncErrorCount(component, reason string) {
	errorCounter.WithLabelValues(component, reason).Inc()
}

// IncTransitionCount increments the committed-transition counter for an edge.
func IncTransitionCount(from, to string) {
	transitionCounter.WithLabelValues(from, to).Inc()
}

// ObserveExecuteTime records the duration of one Execute call.
func ObserveExecuteTime(component string, duration time.Duration) {
	executeTime.WithLabelValues(component).Observe(float64(duration.Milliseconds()))
}

// SetCurrentState records the numeric code of the currently active state.
func SetCurrentState(code float64) {
	currentState.Set(code)
}

// IncEventsPublished increments the published-event counter.
func IncEventsPublished() {
	eventsPublished.Inc()
}

// IncEventsDropped increments the dropped-event counter.
func IncEventsDropped() {
	eventsDropped.Inc()
}

// SetupMetricsEndpoint starts an HTTP server to expose metrics
// This should be called once at application startup.
func SetupMetricsEndpoint(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.ReportIssue(err, sentry.IssueTypeFatal, logger.For("metrics"))
		}
	}()

	return server
}
