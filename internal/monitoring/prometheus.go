// Copyright 2025 EURECOM
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

package monitoring

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UEsByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ue_registration_state_total",
			Help: "Number of UEs by registration state",
		},
		[]string{"instanceId", "state"},
	)

	RecordsEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_records_encoded_total",
			Help: "Registration records encoded by the UE fleet",
		},
		[]string{"instanceId"},
	)

	RecordsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_records_decoded_total",
			Help: "Registration records decoded by the registry",
		},
		[]string{"instanceId"},
	)

	DecodeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_decode_failures_total",
			Help: "Registration records dropped by the registry, by failure kind",
		},
		[]string{"instanceId", "kind"},
	)

	AllocatedTmsis = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "allocated_tmsi_total",
			Help: "TMSIs currently allocated to registered UEs",
		},
		[]string{"instanceId"},
	)
)

func init() {
	prometheus.MustRegister(UEsByState, RecordsEncoded, RecordsDecoded, DecodeFailures, AllocatedTmsis)
}

func StartMetricsServer() {
	log.Printf("starting prometheus metrics server on :9090")
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		err := http.ListenAndServe(":9090", nil) // metrics on :9090
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not start metrics server: %s", err.Error())
		}
	}()
}
