// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package metrics exposes Prometheus collectors for the provisioning
// engine: task/layer durations, preset run outcomes, presets in flight, and
// exec transport retries, registered with the default Prometheus registry.
// The exec daemon's HTTP request metrics live in pkg/server, not here.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TaskDuration records how long each named task took, per preset.
	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapctl_task_duration_seconds",
			Help:    "Duration of individual provisioning tasks",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"preset", "task"},
	)

	// LayerDuration records how long each scheduler layer took, per preset.
	LayerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapctl_layer_duration_seconds",
			Help:    "Duration of each task-graph scheduler layer",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"preset"},
	)

	// PresetRunsTotal counts completed preset runs by outcome.
	PresetRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapctl_preset_runs_total",
			Help: "Total preset provisioning runs by outcome",
		},
		[]string{"preset", "outcome"},
	)

	// PresetsInFlight gauges the number of presets currently provisioning.
	PresetsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapctl_presets_in_flight",
			Help: "Number of preset provisioning runs currently executing",
		},
	)

	// ExecRetriesTotal counts transport-level retries by transport kind.
	ExecRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapctl_exec_retries_total",
			Help: "Total exec transport retries",
		},
		[]string{"transport"},
	)
)

// ObserveTask records a task's duration for the given preset.
func ObserveTask(preset, task string, d time.Duration) {
	TaskDuration.WithLabelValues(preset, task).Observe(d.Seconds())
}

// ObserveLayer records a scheduler layer's duration for the given preset.
func ObserveLayer(preset string, d time.Duration) {
	LayerDuration.WithLabelValues(preset).Observe(d.Seconds())
}

// RecordPresetOutcome increments the outcome counter; outcome is typically
// "success" or "failure".
func RecordPresetOutcome(preset, outcome string) {
	PresetRunsTotal.WithLabelValues(preset, outcome).Inc()
}
