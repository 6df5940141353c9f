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

package ran

import (
	"math/rand/v2"

	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/models"
)

var transitions = map[models.RegState][]models.Transition{

	models.RegStateNotRegNotSearching: {
		{To: models.RegStateNotRegSearching, Probability: 0.85, Procedure: models.InitialSearch}, // ue powered on, starts plmn selection
		{To: models.RegStateNotRegNotSearching, Probability: 0.15, Procedure: models.NoProcedure},
	},
	models.RegStateNotRegSearching: {
		{To: models.RegStateHome, Probability: 0.78, Procedure: models.Registration},    // found home plmn
		{To: models.RegStateRoaming, Probability: 0.08, Procedure: models.RoamingEntry}, // found visited plmn
		{To: models.RegStateDenied, Probability: 0.05, Procedure: models.RegistrationDenied},
		{To: models.RegStateNotRegSearching, Probability: 0.07, Procedure: models.NoProcedure}, // search still in progress
		{To: models.RegStateUnknown, Probability: 0.02, Procedure: models.NoProcedure},         // modem lost track of state
	},
	models.RegStateHome: {
		{To: models.RegStateHome, Probability: 0.97, Procedure: models.NoProcedure},
		{To: models.RegStateNotRegSearching, Probability: 0.02, Procedure: models.ServiceLoss},
		{To: models.RegStateNotRegNotSearching, Probability: 0.01, Procedure: models.Deregistration}, // detach / airplane mode
	},
	models.RegStateRoaming: {
		{To: models.RegStateRoaming, Probability: 0.95, Procedure: models.NoProcedure},
		{To: models.RegStateHome, Probability: 0.03, Procedure: models.RoamingReturn},
		{To: models.RegStateNotRegSearching, Probability: 0.02, Procedure: models.ServiceLoss},
	},
	models.RegStateDenied: {
		{To: models.RegStateNotRegSearching, Probability: 0.70, Procedure: models.RetryAfterDenial},
		{To: models.RegStateDenied, Probability: 0.25, Procedure: models.NoProcedure}, // backoff timer still running
		{To: models.RegStateNotRegNotSearching, Probability: 0.05, Procedure: models.Deregistration},
	},
	models.RegStateUnknown: {
		{To: models.RegStateNotRegSearching, Probability: 0.90, Procedure: models.InitialSearch},
		{To: models.RegStateUnknown, Probability: 0.10, Procedure: models.NoProcedure},
	},
}

// Reject causes paired with denials, 3GPP TS 24.301 9.9.3.9 flavored:
// illegal UE, PLMN not allowed, TA not allowed, roaming not allowed in TA,
// no suitable cells, congestion.
var denialCauses = []int32{3, 11, 12, 13, 15, 22}

func NextState(current models.RegState) (models.RegState, models.RegProcedure) {
	rnd := rand.Float64()
	cumulative := 0.0
	for _, t := range transitions[current] {
		cumulative += t.Probability
		if rnd < cumulative {
			return t.To, t.Procedure
		}
	}
	return current, models.NoProcedure // fallback
}

func pickDenialCause() int32 {
	return denialCauses[rand.IntN(len(denialCauses))]
}
