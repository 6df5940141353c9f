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
	"testing"

	"github.com/stretchr/testify/suite"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/parcel"
)

type RegistrationSuite struct {
	suite.Suite
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

func (s *RegistrationSuite) homeCell() *CellIdentityNr {
	return &CellIdentityNr{
		Nci:  0x123456789,
		Pci:  501,
		Tac:  1010,
		Plmn: PlmnId{Mcc: "208", Mnc: "95"},
	}
}

// TestRoundTrip covers every presence combination of the optional parts.
func (s *RegistrationSuite) TestRoundTrip() {
	services := [][]ServiceType{
		nil,
		{},
		{ServiceVoice, ServiceData, ServiceSms},
		{ServiceData, ServiceData}, // duplicates must survive
	}
	cells := []CellIdentity{nil, s.homeCell()}

	for _, svcs := range services {
		for _, cell := range cells {
			records := []*RegistrationInfo{
				NewRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false, svcs, cell),
				NewVoiceRegistrationInfo(DomainCS, TransportWWAN, RegStateRoaming, TechUMTS, 0, false, svcs, cell, true, 1, 1, 0),
				NewDataRegistrationInfo(DomainPS, TransportWWAN, RegStateDenied, TechLTE, 13, true, svcs, cell, 16),
			}
			for _, rec := range records {
				decoded, err := Decode(rec.Encode())
				s.Require().NoError(err)
				s.True(rec.Equal(decoded), "decoded: %s", decoded)
				s.True(decoded.Equal(rec))
				s.Equal(rec.Hash(), decoded.Hash())
			}
		}
	}
}

// TestWlanScenario covers the IWLAN data registration end to end.
func (s *RegistrationSuite) TestWlanScenario() {
	rec := NewDataRegistrationInfo(DomainPS, TransportWLAN, RegStateHome, TechIWLAN,
		0, false, []ServiceType{ServiceData}, nil, 1)
	s.Require().NoError(rec.Validate())

	decoded, err := Decode(rec.Encode())
	s.Require().NoError(err)
	s.True(rec.Equal(decoded))
	s.Require().NotNil(decoded.DataState())
	s.Equal(int32(1), decoded.DataState().MaxDataCalls)
	s.Nil(decoded.VoiceState())
}

func (s *RegistrationSuite) TestEquality() {
	base := func() *RegistrationInfo {
		return NewRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false,
			[]ServiceType{ServiceData, ServiceSms}, s.homeCell())
	}

	s.Run("equal records hash equal", func() {
		s.True(base().Equal(base()))
		s.Equal(base().Hash(), base().Hash())
	})

	s.Run("service order matters", func() {
		swapped := NewRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false,
			[]ServiceType{ServiceSms, ServiceData}, s.homeCell())
		s.False(base().Equal(swapped))
	})

	s.Run("nil and empty services differ", func() {
		withNil := NewRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false, nil, nil)
		withEmpty := NewRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false, []ServiceType{}, nil)
		s.False(withNil.Equal(withEmpty))
	})

	s.Run("sub-state kind matters", func() {
		voice := NewVoiceRegistrationInfo(DomainCS, TransportWWAN, RegStateHome, TechUMTS, 0, false, nil, nil, false, 0, 0, 0)
		data := NewDataRegistrationInfo(DomainCS, TransportWWAN, RegStateHome, TechUMTS, 0, false, nil, nil, 0)
		none := NewRegistrationInfo(DomainCS, TransportWWAN, RegStateHome, TechUMTS, 0, false, nil, nil)
		s.False(voice.Equal(data))
		s.False(voice.Equal(none))
		s.False(none.Equal(data))
	})

	s.Run("cell identity compared structurally", func() {
		other := s.homeCell()
		other.Pci = 502
		withOther := NewRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false,
			[]ServiceType{ServiceData, ServiceSms}, other)
		s.False(base().Equal(withOther))
	})

	s.Run("nil receiver handling", func() {
		var nilRec *RegistrationInfo
		s.False(nilRec.Equal(base()))
		s.False(base().Equal(nil))
		s.True(nilRec.Equal(nil))
	})
}

// TestUnknownValueTolerance verifies out-of-range codes survive the whole
// pipeline: construction, codec and rendering.
func (s *RegistrationSuite) TestUnknownValueTolerance() {
	rec := NewRegistrationInfo(DomainPS, TransportWWAN, RegState(99), 77, 0, false,
		[]ServiceType{ServiceType(42)}, nil)

	decoded, err := Decode(rec.Encode())
	s.Require().NoError(err)
	s.True(rec.Equal(decoded))
	s.Equal(RegState(99), decoded.RegState())

	rendered := decoded.String()
	s.Contains(rendered, "regState=Unknown 99")
	s.Contains(rendered, "accessTech=Unknown 77")
	s.Contains(rendered, "Unknown 42")
}

// TestTruncation cuts the encoding right after the rejectCause field; the
// decode must fail cleanly instead of yielding a partial record.
func (s *RegistrationSuite) TestTruncation() {
	rec := NewDataRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false,
		[]ServiceType{ServiceData}, s.homeCell(), 16)
	encoded := rec.Encode()

	// the five leading int32 fields end at byte 20
	decoded, err := Decode(encoded[:20])
	s.Require().ErrorIs(err, parcel.ErrTruncated)
	s.Nil(decoded)

	// every prefix must fail, none may panic
	for n := 0; n < len(encoded); n++ {
		_, err := Decode(encoded[:n])
		s.Require().Error(err, "prefix length %d", n)
		s.Require().ErrorIs(err, parcel.ErrTruncated, "prefix length %d", n)
	}
}

func (s *RegistrationSuite) TestMalformedEncodings() {
	s.Run("presence tag outside 0/1", func() {
		rec := NewRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false, nil, nil)
		encoded := rec.Encode()
		// last two bytes are the voice and data presence slots
		encoded[len(encoded)-2] = 2
		_, err := Decode(encoded)
		s.ErrorIs(err, parcel.ErrMalformed)
	})

	s.Run("negative service count other than -1", func() {
		rec := NewRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false, nil, nil)
		encoded := rec.Encode()
		// the services count prefix follows the bool at byte 20
		copy(encoded[21:25], []byte{0xfe, 0xff, 0xff, 0xff})
		_, err := Decode(encoded)
		s.ErrorIs(err, parcel.ErrMalformed)
	})

	s.Run("both sub-states present", func() {
		rec := NewVoiceRegistrationInfo(DomainCS, TransportWWAN, RegStateHome, TechUMTS, 0, false, nil, nil, true, 0, 0, 0)
		encoded := rec.Encode()
		// flip the trailing data presence slot and append a payload
		encoded[len(encoded)-1] = 1
		encoded = append(encoded, 16, 0, 0, 0)
		_, err := Decode(encoded)
		s.ErrorIs(err, parcel.ErrMalformed)
	})

	s.Run("unknown cell identity type code", func() {
		w := parcel.NewWriter()
		for i := 0; i < 5; i++ {
			w.WriteInt32(0)
		}
		w.WriteBool(false)
		w.WriteInt32Slice(nil)
		w.WritePresence(true)
		w.WriteInt32(99) // no such cell identity type
		_, err := Decode(w.Bytes())
		s.ErrorIs(err, parcel.ErrMalformed)
	})
}

func (s *RegistrationSuite) TestValidate() {
	s.Run("WLAN requires PS domain", func() {
		rec := NewRegistrationInfo(DomainCS, TransportWLAN, RegStateHome, TechIWLAN, 0, false, nil, nil)
		s.Error(rec.Validate())
	})

	s.Run("WLAN restricts reg states", func() {
		rec := NewRegistrationInfo(DomainPS, TransportWLAN, RegStateRoaming, TechIWLAN, 0, false, nil, nil)
		s.Error(rec.Validate())

		ok := NewRegistrationInfo(DomainPS, TransportWLAN, RegStateNotRegNotSearching, TechIWLAN, 0, false, nil, nil)
		s.NoError(ok.Validate())
	})

	s.Run("construction never fails, even invalid", func() {
		rec := NewRegistrationInfo(DomainCS, TransportWLAN, RegStateDenied, TechIWLAN, 11, true, nil, nil)
		s.NotNil(rec)
		s.Error(rec.Validate())
		// the invalid record still round-trips
		decoded, err := Decode(rec.Encode())
		s.Require().NoError(err)
		s.True(rec.Equal(decoded))
	})
}

func (s *RegistrationSuite) TestImmutability() {
	services := []ServiceType{ServiceData, ServiceSms}
	rec := NewRegistrationInfo(DomainPS, TransportWWAN, RegStateHome, TechNR, 0, false, services, nil)

	services[0] = ServiceVoice // caller's slice, not the record's
	s.Equal([]ServiceType{ServiceData, ServiceSms}, rec.AvailableServices())

	got := rec.AvailableServices()
	got[0] = ServiceVoice
	s.Equal([]ServiceType{ServiceData, ServiceSms}, rec.AvailableServices())
}

func (s *RegistrationSuite) TestDisplay() {
	rec := NewDataRegistrationInfo(DomainPS, TransportWLAN, RegStateHome, TechIWLAN,
		0, false, []ServiceType{ServiceData}, nil, 1)
	rendered := rec.String()
	s.Contains(rendered, "domain=PS")
	s.Contains(rendered, "transportType=WLAN")
	s.Contains(rendered, "regState=HOME")
	s.Contains(rendered, "accessTech=IWLAN")
	s.Contains(rendered, "availableServices=[DATA]")
	s.Contains(rendered, "cellIdentity=<absent>")
	s.Contains(rendered, "maxDataCalls=1")
}
