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
	"fmt"

	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/parcel"
)

// A registration record carries at most one specialized sub-state, voice or
// data. The variant is a single tagged field so the exclusivity holds by
// construction; on the wire the two variants still occupy two independent
// presence slots (voice first) so the field order matches the radio
// interface layer's layout.

type subState interface {
	fmt.Stringer
	encodeTo(w *parcel.Writer)
	equal(other subState) bool
}

// VoiceSubState holds the CDMA-flavored indicators reported with a
// circuit-switched registration.
type VoiceSubState struct {
	SupportsConcurrentServices bool
	RoamingIndicator           int32
	SystemIsInPrl              int32
	DefaultRoamingIndicator    int32
}

func (v *VoiceSubState) encodeTo(w *parcel.Writer) {
	w.WriteBool(v.SupportsConcurrentServices)
	w.WriteInt32(v.RoamingIndicator)
	w.WriteInt32(v.SystemIsInPrl)
	w.WriteInt32(v.DefaultRoamingIndicator)
}

func decodeVoiceSubState(r *parcel.Reader) (*VoiceSubState, error) {
	v := &VoiceSubState{}
	var err error
	if v.SupportsConcurrentServices, err = r.ReadBool("voiceState.css"); err != nil {
		return nil, err
	}
	if v.RoamingIndicator, err = r.ReadInt32("voiceState.roamingIndicator"); err != nil {
		return nil, err
	}
	if v.SystemIsInPrl, err = r.ReadInt32("voiceState.systemIsInPrl"); err != nil {
		return nil, err
	}
	if v.DefaultRoamingIndicator, err = r.ReadInt32("voiceState.defaultRoamingIndicator"); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *VoiceSubState) equal(other subState) bool {
	o, ok := other.(*VoiceSubState)
	return ok && *v == *o
}

func (v *VoiceSubState) String() string {
	return fmt.Sprintf("VoiceSubState{css=%t roamingIndicator=%d systemIsInPrl=%d defaultRoamingIndicator=%d}",
		v.SupportsConcurrentServices, v.RoamingIndicator, v.SystemIsInPrl, v.DefaultRoamingIndicator)
}

// DataSubState holds the data-registration specifics.
type DataSubState struct {
	MaxDataCalls int32
}

func (d *DataSubState) encodeTo(w *parcel.Writer) {
	w.WriteInt32(d.MaxDataCalls)
}

func decodeDataSubState(r *parcel.Reader) (*DataSubState, error) {
	max, err := r.ReadInt32("dataState.maxDataCalls")
	if err != nil {
		return nil, err
	}
	return &DataSubState{MaxDataCalls: max}, nil
}

func (d *DataSubState) equal(other subState) bool {
	o, ok := other.(*DataSubState)
	return ok && *d == *o
}

func (d *DataSubState) String() string {
	return fmt.Sprintf("DataSubState{maxDataCalls=%d}", d.MaxDataCalls)
}

func subStateEqual(a, b subState) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.equal(b)
}
