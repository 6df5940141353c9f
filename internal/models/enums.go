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

import "fmt"

// All registration enumerations are plain int32-backed codes. Values outside
// the defined sets are accepted everywhere and rendered as "Unknown <value>";
// the producer and consumer are expected to agree on any extension codes out
// of band.

// Domain selects circuit-switched or packet-switched network services.
type Domain int32

const (
	DomainCS Domain = 1
	DomainPS Domain = 2
)

func (d Domain) String() string {
	switch d {
	case DomainCS:
		return "CS"
	case DomainPS:
		return "PS"
	}
	return fmt.Sprintf("Unknown %d", int32(d))
}

// TransportType identifies the access medium carrying the registration.
type TransportType int32

const (
	TransportWWAN TransportType = 1
	TransportWLAN TransportType = 2
)

func (t TransportType) String() string {
	switch t {
	case TransportWWAN:
		return "WWAN"
	case TransportWLAN:
		return "WLAN"
	}
	return fmt.Sprintf("Unknown %d", int32(t))
}

// RegState is the device's standing with a network operator.
type RegState int32

const (
	RegStateNotRegNotSearching RegState = 0
	RegStateHome               RegState = 1
	RegStateNotRegSearching    RegState = 2
	RegStateDenied             RegState = 3
	RegStateUnknown            RegState = 4
	RegStateRoaming            RegState = 5
)

func (s RegState) String() string {
	switch s {
	case RegStateNotRegNotSearching:
		return "NOT_REG_NOT_SEARCHING"
	case RegStateHome:
		return "HOME"
	case RegStateNotRegSearching:
		return "NOT_REG_SEARCHING"
	case RegStateDenied:
		return "DENIED"
	case RegStateUnknown:
		return "UNKNOWN"
	case RegStateRoaming:
		return "ROAMING"
	}
	return fmt.Sprintf("Unknown %d", int32(s))
}

// Registered reports whether the state corresponds to a usable registration.
func (s RegState) Registered() bool {
	return s == RegStateHome || s == RegStateRoaming
}

// ServiceType is one entry of a record's available-services sequence.
type ServiceType int32

const (
	ServiceVoice     ServiceType = 1
	ServiceData      ServiceType = 2
	ServiceSms       ServiceType = 3
	ServiceVideo     ServiceType = 4
	ServiceEmergency ServiceType = 5
)

func (t ServiceType) String() string {
	switch t {
	case ServiceVoice:
		return "VOICE"
	case ServiceData:
		return "DATA"
	case ServiceSms:
		return "SMS"
	case ServiceVideo:
		return "VIDEO"
	case ServiceEmergency:
		return "EMERGENCY"
	}
	return fmt.Sprintf("Unknown %d", int32(t))
}

// Access network technology codes, aligned with the radio interface layer's
// NETWORK_TYPE table. Only the subset the tracker produces is named; any
// other code still flows through untouched.
const (
	TechUnknown int32 = 0
	TechGPRS    int32 = 1
	TechEDGE    int32 = 2
	TechUMTS    int32 = 3
	TechHSDPA   int32 = 8
	TechHSUPA   int32 = 9
	TechHSPA    int32 = 10
	TechLTE     int32 = 13
	TechHSPAP   int32 = 15
	TechGSM     int32 = 16
	TechIWLAN   int32 = 18
	TechNR      int32 = 20
)

var techNames = map[int32]string{
	TechUnknown: "UNKNOWN",
	TechGPRS:    "GPRS",
	TechEDGE:    "EDGE",
	TechUMTS:    "UMTS",
	TechHSDPA:   "HSDPA",
	TechHSUPA:   "HSUPA",
	TechHSPA:    "HSPA",
	TechLTE:     "LTE",
	TechHSPAP:   "HSPA+",
	TechGSM:     "GSM",
	TechIWLAN:   "IWLAN",
	TechNR:      "NR",
}

// TechName renders an access network technology code, tolerating codes the
// table does not know.
func TechName(code int32) string {
	if name, ok := techNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown %d", code)
}
