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
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/giuliocarot0/gitc"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/models"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/monitoring"
)

const maxDataCalls = 16

// A Ue represents a User Equipment in the registration tracker. It walks the
// registration-state transition chain on a fixed tick and publishes an
// encoded RegistrationInfo record to the registry on every state change.

type Ue struct {
	ctx       context.Context
	cancelFun context.CancelFunc

	// identifiers
	Imsi  string
	Msidn string
	Imei  string

	// status variables
	regState    models.RegState
	rejectCause int32
	PlmnId      models.PlmnId
	ServingCell *models.CellIdentityNr
	statusMutex sync.RWMutex

	// configuration variables
	TickInterval time.Duration

	// simulation variables
	Profile  string
	simId    string
	cellList []*models.CellIdentityNr
}

type UeConfig struct {
	Imsi         string
	Msidn        string
	Imei         string
	Type         string
	Plmn         models.PlmnId
	TickInterval time.Duration
}

// NewUserEquipment creates a Ue instance with the provided configuration.
// cells is the pool of gNB cell identities the UE may camp on.
func NewUserEquipment(ctx context.Context, cfg UeConfig, simulationId string, cells []*models.CellIdentityNr) *Ue {
	ueCtx, ueCancelFunc := context.WithCancel(ctx)

	return &Ue{
		ctx:          ueCtx,
		cancelFun:    ueCancelFunc,
		Imsi:         cfg.Imsi,
		Msidn:        cfg.Msidn,
		Imei:         cfg.Imei,
		Profile:      cfg.Type,
		PlmnId:       cfg.Plmn,
		regState:     models.RegStateNotRegNotSearching,
		statusMutex:  sync.RWMutex{},
		TickInterval: cfg.TickInterval,
		simId:        simulationId,
		cellList:     cells,
	}
}

// PowerUp starts the UE loop. The UE reports its initial state immediately
// and then follows the transition chain until the context is cancelled.
func (ue *Ue) PowerUp() {
	monitoring.UEsByState.WithLabelValues(ue.simId, ue.regState.String()).Inc()
	ue.publishState(models.EventRegistrationStateReport)

	go func() {
		ticker := time.NewTicker(ue.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ue.ctx.Done():
				return
			case <-ticker.C:
				ue.step()
			}
		}
	}()
}

// TurnOff detaches the UE from the network. When graceful, a final
// deregistration record is reported before the loop stops.
func (ue *Ue) TurnOff(graceful bool) {
	ue.statusMutex.Lock()
	prev := ue.regState
	ue.regState = models.RegStateNotRegNotSearching
	ue.rejectCause = 0
	ue.ServingCell = nil
	ue.statusMutex.Unlock()

	if prev != models.RegStateNotRegNotSearching {
		monitoring.UEsByState.WithLabelValues(ue.simId, prev.String()).Dec()
		monitoring.UEsByState.WithLabelValues(ue.simId, ue.regState.String()).Inc()
	}
	if graceful {
		ue.publishState(models.EventDeregistration)
	}
	ue.cancelFun()
}

// CurrentState returns the UE's registration state.
func (ue *Ue) CurrentState() models.RegState {
	ue.statusMutex.RLock()
	defer ue.statusMutex.RUnlock()
	return ue.regState
}

func (ue *Ue) step() {
	ue.statusMutex.Lock()

	next, procedure := NextState(ue.regState)
	if next == ue.regState {
		ue.statusMutex.Unlock()
		return
	}

	prev := ue.regState
	ue.regState = next

	switch procedure {
	case models.Registration, models.RoamingEntry, models.RoamingReturn:
		ue.ServingCell = ue.pickRandomCell()
		ue.rejectCause = 0
		log.Printf("[%s] registered to the network (%s), cell: %s", ue.Imsi, procedure, ue.ServingCell)
	case models.RegistrationDenied:
		ue.ServingCell = nil
		ue.rejectCause = pickDenialCause()
		log.Printf("[%s] registration denied, cause %d", ue.Imsi, ue.rejectCause)
	default:
		ue.ServingCell = nil
		ue.rejectCause = 0
	}
	ue.statusMutex.Unlock()

	monitoring.UEsByState.WithLabelValues(ue.simId, prev.String()).Dec()
	monitoring.UEsByState.WithLabelValues(ue.simId, next.String()).Inc()

	event := models.EventRegistrationStateReport
	if procedure == models.Deregistration {
		event = models.EventDeregistration
	}
	ue.publishState(event)
}

// publishState encodes the UE's current registration as one PS data record
// and, for smartphone profiles, a companion CS voice record, then ships them
// to the registry task.
func (ue *Ue) publishState(event models.RegistryEventType) {
	ue.statusMutex.RLock()
	records := [][]byte{ue.buildDataRecord().Encode()}
	if ue.Profile == "Smartphone" {
		records = append(records, ue.buildVoiceRecord().Encode())
	}
	ue.statusMutex.RUnlock()

	for _, encoded := range records {
		monitoring.RecordsEncoded.WithLabelValues(ue.simId).Inc()
		msg := &models.UeToRegistryMsg{
			EventType: event,
			TimeStamp: time.Now(),
			Supi:      ue.Imsi,
			Gpsi:      ue.Msidn,
			PlmnId:    ue.PlmnId,
			Record:    encoded,
		}
		if err := gitc.Send(ue.Imsi, models.RegistryTask, models.UeToRegistryType, msg); err != nil {
			log.Printf("Error sending UeToRegistryMsg for UE %s: %v", ue.Imsi, err)
		}
	}
}

// buildDataRecord assembles the packet-switched view of the current state.
// Callers hold statusMutex.
func (ue *Ue) buildDataRecord() *models.RegistrationInfo {
	var cell models.CellIdentity
	if ue.ServingCell != nil {
		cell = ue.ServingCell
	}
	services, emergencyOnly := ue.availableServices(models.ServiceData, models.ServiceSms)
	return models.NewDataRegistrationInfo(
		models.DomainPS, models.TransportWWAN, ue.regState, models.TechNR,
		ue.rejectCause, emergencyOnly, services, cell, maxDataCalls)
}

// buildVoiceRecord assembles the circuit-switched view. Callers hold
// statusMutex.
func (ue *Ue) buildVoiceRecord() *models.RegistrationInfo {
	var cell models.CellIdentity
	if ue.ServingCell != nil {
		cell = ue.ServingCell
	}
	services, emergencyOnly := ue.availableServices(models.ServiceVoice, models.ServiceSms, models.ServiceVideo)
	roaming := int32(0)
	if ue.regState == models.RegStateRoaming {
		roaming = 1
	}
	return models.NewVoiceRegistrationInfo(
		models.DomainCS, models.TransportWWAN, ue.regState, models.TechUMTS,
		ue.rejectCause, emergencyOnly, services, cell,
		true, roaming, 1, roaming)
}

// availableServices maps the registration state to the service set: the full
// set when registered, emergency-only limited service when denied, nothing
// otherwise.
func (ue *Ue) availableServices(registered ...models.ServiceType) ([]models.ServiceType, bool) {
	switch {
	case ue.regState.Registered():
		return registered, false
	case ue.regState == models.RegStateDenied:
		return []models.ServiceType{models.ServiceEmergency}, true
	default:
		return nil, false
	}
}

func (ue *Ue) pickRandomCell() *models.CellIdentityNr {
	if len(ue.cellList) == 0 {
		return nil
	}
	return ue.cellList[rand.IntN(len(ue.cellList))]
}
