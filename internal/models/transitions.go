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

package models

type RegProcedure string

const (
	NoProcedure        RegProcedure = "NONE"
	InitialSearch      RegProcedure = "PLMN_SEARCH"
	Registration       RegProcedure = "REGISTRATION"
	RegistrationDenied RegProcedure = "REGISTRATION_DENIED"
	RoamingEntry       RegProcedure = "ROAMING_ENTRY"
	RoamingReturn      RegProcedure = "ROAMING_RETURN"
	ServiceLoss        RegProcedure = "LOSS_OF_SERVICE"
	Deregistration     RegProcedure = "DEREGISTRATION"
	RetryAfterDenial   RegProcedure = "RETRY_AFTER_DENIAL"
)

type Transition struct {
	To          RegState
	Probability float64
	Procedure   RegProcedure
}
