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
	"hash/fnv"
	"strings"

	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/parcel"
)

// A RegistrationInfo describes a mobile network registration state as
// reported by the radio interface layer. It is immutable after construction
// and is safely shared across goroutines without locking.
//
// Construction is deliberately permissive: field values are taken as given,
// including codes outside the sets defined in this package, so records from
// a newer producer still encode, decode and render. Callers wanting the
// documented contracts checked use Validate.
type RegistrationInfo struct {
	domain        Domain
	transportType TransportType
	regState      RegState
	accessTech    int32
	rejectCause   int32
	emergencyOnly bool
	services      []ServiceType
	cellIdentity  CellIdentity
	subState      subState
}

// NewRegistrationInfo builds a record with neither voice nor data
// specifics. cell may be nil when the serving cell is not known.
func NewRegistrationInfo(domain Domain, transport TransportType, state RegState,
	accessTech int32, rejectCause int32, emergencyOnly bool,
	services []ServiceType, cell CellIdentity) *RegistrationInfo {
	return &RegistrationInfo{
		domain:        domain,
		transportType: transport,
		regState:      state,
		accessTech:    accessTech,
		rejectCause:   rejectCause,
		emergencyOnly: emergencyOnly,
		services:      cloneServices(services),
		cellIdentity:  cell,
	}
}

// NewVoiceRegistrationInfo builds a circuit-switched record carrying the
// voice sub-state.
func NewVoiceRegistrationInfo(domain Domain, transport TransportType, state RegState,
	accessTech int32, rejectCause int32, emergencyOnly bool,
	services []ServiceType, cell CellIdentity,
	cssSupported bool, roamingIndicator, systemIsInPrl, defaultRoamingIndicator int32) *RegistrationInfo {
	ri := NewRegistrationInfo(domain, transport, state, accessTech, rejectCause,
		emergencyOnly, services, cell)
	ri.subState = &VoiceSubState{
		SupportsConcurrentServices: cssSupported,
		RoamingIndicator:           roamingIndicator,
		SystemIsInPrl:              systemIsInPrl,
		DefaultRoamingIndicator:    defaultRoamingIndicator,
	}
	return ri
}

// NewDataRegistrationInfo builds a packet-switched record carrying the data
// sub-state.
func NewDataRegistrationInfo(domain Domain, transport TransportType, state RegState,
	accessTech int32, rejectCause int32, emergencyOnly bool,
	services []ServiceType, cell CellIdentity, maxDataCalls int32) *RegistrationInfo {
	ri := NewRegistrationInfo(domain, transport, state, accessTech, rejectCause,
		emergencyOnly, services, cell)
	ri.subState = &DataSubState{MaxDataCalls: maxDataCalls}
	return ri
}

func cloneServices(services []ServiceType) []ServiceType {
	if services == nil {
		return nil
	}
	out := make([]ServiceType, len(services))
	copy(out, services)
	return out
}

func (ri *RegistrationInfo) Domain() Domain               { return ri.domain }
func (ri *RegistrationInfo) TransportType() TransportType { return ri.transportType }
func (ri *RegistrationInfo) RegState() RegState           { return ri.regState }
func (ri *RegistrationInfo) AccessTech() int32            { return ri.accessTech }
func (ri *RegistrationInfo) RejectCause() int32           { return ri.rejectCause }
func (ri *RegistrationInfo) EmergencyOnly() bool          { return ri.emergencyOnly }

// AvailableServices returns the record's service sequence in producer order.
// The returned slice is a copy; mutating it does not affect the record.
func (ri *RegistrationInfo) AvailableServices() []ServiceType {
	return cloneServices(ri.services)
}

// CellIdentity returns the serving cell identity, or nil when absent.
func (ri *RegistrationInfo) CellIdentity() CellIdentity { return ri.cellIdentity }

// VoiceState returns the voice sub-state, or nil when the record was not
// built with the voice constructor.
func (ri *RegistrationInfo) VoiceState() *VoiceSubState {
	if v, ok := ri.subState.(*VoiceSubState); ok {
		return v
	}
	return nil
}

// DataState returns the data sub-state, or nil when the record was not built
// with the data constructor.
func (ri *RegistrationInfo) DataState() *DataSubState {
	if d, ok := ri.subState.(*DataSubState); ok {
		return d
	}
	return nil
}

// Validate checks the documented caller contracts the constructors do not
// enforce: the WLAN transport implies the PS domain and a home or
// not-registered-not-searching state. Unknown enum codes are well-formed and
// pass validation.
func (ri *RegistrationInfo) Validate() error {
	if ri.transportType != TransportWLAN {
		return nil
	}
	if ri.domain != DomainPS {
		return fmt.Errorf("WLAN transport requires the PS domain, got %s", ri.domain)
	}
	if ri.regState != RegStateHome && ri.regState != RegStateNotRegNotSearching {
		return fmt.Errorf("WLAN transport does not admit reg state %s", ri.regState)
	}
	return nil
}

// EncodeTo appends the record's fixed-order encoding to w. The layout is the
// field order of the radio interface layer and must not be reordered.
func (ri *RegistrationInfo) EncodeTo(w *parcel.Writer) {
	w.WriteInt32(int32(ri.domain))
	w.WriteInt32(int32(ri.transportType))
	w.WriteInt32(int32(ri.regState))
	w.WriteInt32(ri.accessTech)
	w.WriteInt32(ri.rejectCause)
	w.WriteBool(ri.emergencyOnly)
	w.WriteInt32Slice(servicesToInt32(ri.services))
	encodeCellIdentity(w, ri.cellIdentity)
	voice := ri.VoiceState()
	w.WritePresence(voice != nil)
	if voice != nil {
		voice.encodeTo(w)
	}
	data := ri.DataState()
	w.WritePresence(data != nil)
	if data != nil {
		data.encodeTo(w)
	}
}

// Encode returns the record's binary encoding.
func (ri *RegistrationInfo) Encode() []byte {
	w := parcel.NewWriter()
	ri.EncodeTo(w)
	return w.Bytes()
}

// Decode reconstructs a record from its binary encoding. It fails with an
// error satisfying errors.Is against parcel.ErrTruncated or
// parcel.ErrMalformed; on failure no partially built record is returned.
func Decode(data []byte) (*RegistrationInfo, error) {
	return DecodeFrom(parcel.NewReader(data))
}

// DecodeFrom reads one record from r, leaving any trailing bytes unread.
func DecodeFrom(r *parcel.Reader) (*RegistrationInfo, error) {
	ri := &RegistrationInfo{}
	var err error

	var v int32
	if v, err = r.ReadInt32("registration.domain"); err != nil {
		return nil, err
	}
	ri.domain = Domain(v)
	if v, err = r.ReadInt32("registration.transportType"); err != nil {
		return nil, err
	}
	ri.transportType = TransportType(v)
	if v, err = r.ReadInt32("registration.regState"); err != nil {
		return nil, err
	}
	ri.regState = RegState(v)
	if ri.accessTech, err = r.ReadInt32("registration.accessTech"); err != nil {
		return nil, err
	}
	if ri.rejectCause, err = r.ReadInt32("registration.rejectCause"); err != nil {
		return nil, err
	}
	if ri.emergencyOnly, err = r.ReadBool("registration.emergencyOnly"); err != nil {
		return nil, err
	}
	raw, err := r.ReadInt32Slice("registration.availableServices")
	if err != nil {
		return nil, err
	}
	ri.services = servicesFromInt32(raw)
	if ri.cellIdentity, err = decodeCellIdentity(r); err != nil {
		return nil, err
	}

	voicePresent, err := r.ReadPresence("registration.voiceState")
	if err != nil {
		return nil, err
	}
	var voice *VoiceSubState
	if voicePresent {
		if voice, err = decodeVoiceSubState(r); err != nil {
			return nil, err
		}
	}
	dataPresent, err := r.ReadPresence("registration.dataState")
	if err != nil {
		return nil, err
	}
	if dataPresent {
		// no constructor can produce both sub-states, so an encoding
		// carrying both did not come from this codec
		if voicePresent {
			return nil, &parcel.CodecError{Op: "registration.dataState", Kind: parcel.Malformed}
		}
		data, err := decodeDataSubState(r)
		if err != nil {
			return nil, err
		}
		ri.subState = data
	} else if voicePresent {
		ri.subState = voice
	}
	return ri, nil
}

func servicesToInt32(services []ServiceType) []int32 {
	if services == nil {
		return nil
	}
	out := make([]int32, len(services))
	for i, s := range services {
		out[i] = int32(s)
	}
	return out
}

func servicesFromInt32(raw []int32) []ServiceType {
	if raw == nil {
		return nil
	}
	out := make([]ServiceType, len(raw))
	for i, v := range raw {
		out[i] = ServiceType(v)
	}
	return out
}

// Equal reports structural equality over every field. The service sequence
// is compared ordered, duplicates included; optional parts compare absent
// against absent.
func (ri *RegistrationInfo) Equal(other *RegistrationInfo) bool {
	if ri == other {
		return true
	}
	if ri == nil || other == nil {
		return false
	}
	if ri.domain != other.domain ||
		ri.transportType != other.transportType ||
		ri.regState != other.regState ||
		ri.accessTech != other.accessTech ||
		ri.rejectCause != other.rejectCause ||
		ri.emergencyOnly != other.emergencyOnly {
		return false
	}
	if (ri.services == nil) != (other.services == nil) || len(ri.services) != len(other.services) {
		return false
	}
	for i := range ri.services {
		if ri.services[i] != other.services[i] {
			return false
		}
	}
	return cellIdentityEqual(ri.cellIdentity, other.cellIdentity) &&
		subStateEqual(ri.subState, other.subState)
}

// Hash returns a digest consistent with Equal: equal records hash equal. It
// is FNV-1a over the canonical encoding, which covers every field.
func (ri *RegistrationInfo) Hash() uint64 {
	h := fnv.New64a()
	h.Write(ri.Encode())
	return h.Sum64()
}

// String renders every field by name. Unrecognized enum codes render as
// "Unknown <code>"; rendering never fails.
func (ri *RegistrationInfo) String() string {
	var sb strings.Builder
	sb.WriteString("RegistrationInfo{")
	fmt.Fprintf(&sb, "domain=%s", ri.domain)
	fmt.Fprintf(&sb, " transportType=%s", ri.transportType)
	fmt.Fprintf(&sb, " regState=%s", ri.regState)
	fmt.Fprintf(&sb, " accessTech=%s", TechName(ri.accessTech))
	fmt.Fprintf(&sb, " rejectCause=%d", ri.rejectCause)
	fmt.Fprintf(&sb, " emergencyOnly=%t", ri.emergencyOnly)
	sb.WriteString(" availableServices=[")
	for i, s := range ri.services {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.String())
	}
	sb.WriteByte(']')
	if ri.cellIdentity != nil {
		fmt.Fprintf(&sb, " cellIdentity=%s", ri.cellIdentity)
	} else {
		sb.WriteString(" cellIdentity=<absent>")
	}
	if ri.subState != nil {
		fmt.Fprintf(&sb, " subState=%s", ri.subState)
	} else {
		sb.WriteString(" subState=<none>")
	}
	sb.WriteByte('}')
	return sb.String()
}
