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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/models"
)

func testUe(t *testing.T) *Ue {
	t.Helper()
	plmn := models.PlmnId{Mcc: "208", Mnc: "95"}
	cells := []*models.CellIdentityNr{
		{Nci: 1, Pci: 10, Tac: 1010, Plmn: plmn},
		{Nci: 2, Pci: 20, Tac: 1010, Plmn: plmn},
	}
	return NewUserEquipment(context.Background(), UeConfig{
		Imsi:         "208950000000001",
		Msidn:        "+336100000001",
		Imei:         "490154203237518",
		Type:         "Smartphone",
		Plmn:         plmn,
		TickInterval: time.Second,
	}, "test-sim", cells)
}

func TestBuildRecordsWhileRegistered(t *testing.T) {
	ue := testUe(t)
	ue.regState = models.RegStateHome
	ue.ServingCell = ue.cellList[0]

	data := ue.buildDataRecord()
	require.NotNil(t, data.DataState())
	assert.Equal(t, models.DomainPS, data.Domain())
	assert.Equal(t, models.RegStateHome, data.RegState())
	assert.False(t, data.EmergencyOnly())
	assert.Equal(t, []models.ServiceType{models.ServiceData, models.ServiceSms}, data.AvailableServices())
	require.NotNil(t, data.CellIdentity())
	assert.True(t, data.CellIdentity().Equal(ue.cellList[0]))

	voice := ue.buildVoiceRecord()
	require.NotNil(t, voice.VoiceState())
	assert.Nil(t, voice.DataState())
	assert.Equal(t, models.DomainCS, voice.Domain())

	// both views round-trip through the codec
	for _, rec := range []*models.RegistrationInfo{data, voice} {
		decoded, err := models.Decode(rec.Encode())
		require.NoError(t, err)
		assert.True(t, rec.Equal(decoded))
	}
}

func TestBuildRecordsWhileDenied(t *testing.T) {
	ue := testUe(t)
	ue.regState = models.RegStateDenied
	ue.rejectCause = 13

	data := ue.buildDataRecord()
	assert.Equal(t, int32(13), data.RejectCause())
	assert.True(t, data.EmergencyOnly())
	assert.Equal(t, []models.ServiceType{models.ServiceEmergency}, data.AvailableServices())
	assert.Nil(t, data.CellIdentity())
}

func TestBuildRecordsWhileSearching(t *testing.T) {
	ue := testUe(t)
	ue.regState = models.RegStateNotRegSearching

	data := ue.buildDataRecord()
	assert.Nil(t, data.AvailableServices())
	assert.False(t, data.EmergencyOnly())
	assert.Zero(t, data.RejectCause())
}
