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

import (
	"time"

	"github.com/giuliocarot0/gitc"
)

// RegistryTask is the gitc task name the registry listens on.
const RegistryTask = "REGISTRY"

const (
	UeToRegistryType gitc.MessageType = iota
	RegistryToUeType
)

type RegistryEventType string

const (
	EventRegistrationStateReport RegistryEventType = "REGISTRATION_STATE_REPORT"
	EventDeregistration          RegistryEventType = "DEREGISTRATION"
)

// UeToRegistryMsg carries one encoded registration record from a UE to the
// registry task. Record holds the parcel encoding, not the decoded value, so
// the registry exercises the same decode path an off-process consumer would.
type UeToRegistryMsg struct {
	EventType RegistryEventType
	TimeStamp time.Time
	Supi      string
	Gpsi      string // MSISDN in E.164 format (e.g., "+33612345678")
	PlmnId    PlmnId
	Record    []byte
}

type RegistryToUeMsg struct {
}
