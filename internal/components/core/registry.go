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

package core

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/giuliocarot0/gitc"
	"github.com/gorilla/mux"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/components/utils"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/models"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/monitoring"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/parcel"
)

type recordKey struct {
	Supi   string
	Domain models.Domain
}

type subscriberInfo struct {
	Supi string
	Gpsi string
}

// Registry is the network-side consumer of registration records. It decodes
// the byte encodings the UEs publish, keeps the latest record per
// (subscriber, domain), hands out TMSIs to registered subscribers and pushes
// state-change notifications to northbound subscribers.
type Registry struct {
	PlmnId     models.PlmnId
	RegistryId string

	records     map[recordKey]*models.RegistrationInfo
	subscribers map[string]subscriberInfo
	recMutex    sync.RWMutex

	Subscriptions map[models.RegistryEventType][]string
	SubMutex      sync.RWMutex

	guti  *utils.GutiAllocator
	simId string
}

func NewRegistry(plmnId models.PlmnId, simId string, guti *utils.GutiAllocator) *Registry {
	return &Registry{
		PlmnId:        plmnId,
		RegistryId:    fmt.Sprintf("REG-%s%s", plmnId.Mcc, plmnId.Mnc),
		records:       make(map[recordKey]*models.RegistrationInfo),
		subscribers:   make(map[string]subscriberInfo),
		Subscriptions: make(map[models.RegistryEventType][]string),
		SubMutex:      sync.RWMutex{},
		guti:          guti,
		simId:         simId,
	}
}

func (reg *Registry) InitRegistry() {
	log.Printf("[%s] started", reg.RegistryId)
	err := gitc.StartTask(models.RegistryTask, func(msg gitc.Message) {
		switch msg.Type {
		case models.UeToRegistryType:
			reg.handleUeEvent(msg.Payload.(*models.UeToRegistryMsg))
		}
	}, 1024)
	if err != nil {
		log.Fatalf("[%s] could not start registry task: %s", reg.RegistryId, err.Error())
	}
}

// handleUeEvent decodes and stores one registration record. Records that do
// not decode are counted and dropped; the stored state is never touched by a
// failed decode.
func (reg *Registry) handleUeEvent(msg *models.UeToRegistryMsg) {
	info, err := models.Decode(msg.Record)
	if err != nil {
		kind := "malformed"
		if errors.Is(err, parcel.ErrTruncated) {
			kind = "truncated"
		}
		monitoring.DecodeFailures.WithLabelValues(reg.simId, kind).Inc()
		log.Printf("[%s] dropping record from %s: %s", reg.RegistryId, msg.Supi, err.Error())
		return
	}
	monitoring.RecordsDecoded.WithLabelValues(reg.simId).Inc()

	reg.recMutex.Lock()
	reg.records[recordKey{Supi: msg.Supi, Domain: info.Domain()}] = info
	reg.subscribers[msg.Supi] = subscriberInfo{Supi: msg.Supi, Gpsi: msg.Gpsi}
	reg.recMutex.Unlock()

	reg.manageTmsi(msg.Supi, info)
	reg.notifySubscribers(msg, info)
}

// manageTmsi keeps the TMSI allocation in step with the PS registration:
// allocated while registered, returned to the pool on deregistration.
func (reg *Registry) manageTmsi(supi string, info *models.RegistrationInfo) {
	if info.Domain() != models.DomainPS {
		return
	}
	switch {
	case info.RegState().Registered():
		if _, held := reg.guti.Lookup(supi); held {
			return
		}
		if _, err := reg.guti.Allocate(supi); err != nil {
			log.Printf("[%s] could not allocate TMSI for %s: %s", reg.RegistryId, supi, err.Error())
			return
		}
		monitoring.AllocatedTmsis.WithLabelValues(reg.simId).Set(float64(reg.guti.Allocated()))
	case info.RegState() == models.RegStateNotRegNotSearching:
		if err := reg.guti.Release(supi); err == nil {
			monitoring.AllocatedTmsis.WithLabelValues(reg.simId).Set(float64(reg.guti.Allocated()))
		}
	}
}

// RegistrationEventReport is the JSON body pushed to notification callbacks.
type RegistrationEventReport struct {
	EventType     models.RegistryEventType `json:"eventType"`
	TimeStamp     time.Time                `json:"timeStamp"`
	Supi          string                   `json:"supi"`
	Gpsi          string                   `json:"gpsi"`
	PlmnId        models.PlmnId            `json:"plmnId"`
	Domain        string                   `json:"domain"`
	RegState      string                   `json:"regState"`
	EmergencyOnly bool                     `json:"emergencyOnly"`
	Record        string                   `json:"record"`
}

func (reg *Registry) notifySubscribers(msg *models.UeToRegistryMsg, info *models.RegistrationInfo) {
	reg.SubMutex.RLock()
	defer reg.SubMutex.RUnlock()

	callbacks := reg.Subscriptions[msg.EventType]
	if len(callbacks) == 0 {
		return
	}

	report := &RegistrationEventReport{
		EventType:     msg.EventType,
		TimeStamp:     msg.TimeStamp,
		Supi:          msg.Supi,
		Gpsi:          msg.Gpsi,
		PlmnId:        msg.PlmnId,
		Domain:        info.Domain().String(),
		RegState:      info.RegState().String(),
		EmergencyOnly: info.EmergencyOnly(),
		Record:        info.String(),
	}

	callbackBody, err := json.Marshal(report)
	if err != nil {
		log.Printf("[%s] error while marshalling notification: %s", reg.RegistryId, err.Error())
		return
	}

	for _, callbackUrl := range callbacks {
		go func(url string, data []byte) {
			resp, err := http.Post(url, "application/json", bytes.NewBuffer(data))
			if err != nil {
				log.Printf("Error notifying subscriber %s: %v", url, err)
				return
			}
			defer func() {
				_ = resp.Body.Close()
			}()
		}(callbackUrl, callbackBody)
	}
}

// NORTHBOUND Definitions

// SubscriptionRequest subscribes a callback URI to registry event types.
type SubscriptionRequest struct {
	EventList []models.RegistryEventType `json:"eventList"`
	NotifyUri string                     `json:"notifyUri"`
}

func (reg *Registry) HandleNewSubscription(w http.ResponseWriter, r *http.Request) {

	subData := &SubscriptionRequest{}

	if err := json.NewDecoder(r.Body).Decode(subData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if subData.NotifyUri == "" || len(subData.EventList) == 0 {
		http.Error(w, "notifyUri and eventList are required", http.StatusBadRequest)
		return
	}

	reg.SubMutex.Lock()
	defer reg.SubMutex.Unlock()

	for _, event := range subData.EventList {
		reg.Subscriptions[event] = append(reg.Subscriptions[event], subData.NotifyUri)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(subData); err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}

	log.Printf("[%s] created new subscription for: %s", reg.RegistryId, subData.NotifyUri)
}

// RegistrationView is the JSON projection of one stored record, carrying
// both the display fields and the raw encoding.
type RegistrationView struct {
	RegState      string   `json:"regState"`
	TransportType string   `json:"transportType"`
	AccessTech    string   `json:"accessTech"`
	RejectCause   int32    `json:"rejectCause"`
	EmergencyOnly bool     `json:"emergencyOnly"`
	Services      []string `json:"availableServices"`
	CellIdentity  string   `json:"cellIdentity,omitempty"`
	Tmsi          string   `json:"tmsi,omitempty"`
	Encoded       string   `json:"encoded"`
}

type RegistrationResponse struct {
	Supi    string                      `json:"supi"`
	Gpsi    string                      `json:"gpsi"`
	Domains map[string]RegistrationView `json:"domains"`
}

func (reg *Registry) viewOf(supi string, info *models.RegistrationInfo) RegistrationView {
	view := RegistrationView{
		RegState:      info.RegState().String(),
		TransportType: info.TransportType().String(),
		AccessTech:    models.TechName(info.AccessTech()),
		RejectCause:   info.RejectCause(),
		EmergencyOnly: info.EmergencyOnly(),
		Encoded:       base64.StdEncoding.EncodeToString(info.Encode()),
	}
	for _, s := range info.AvailableServices() {
		view.Services = append(view.Services, s.String())
	}
	if cell := info.CellIdentity(); cell != nil {
		view.CellIdentity = cell.String()
	}
	if info.Domain() == models.DomainPS {
		if tmsi, ok := reg.guti.Lookup(supi); ok {
			view.Tmsi = tmsi
		}
	}
	return view
}

func (reg *Registry) HandleGetRegistration(w http.ResponseWriter, r *http.Request) {
	supi := mux.Vars(r)["supi"]

	reg.recMutex.RLock()
	sub, known := reg.subscribers[supi]
	domains := make(map[string]RegistrationView)
	for key, info := range reg.records {
		if key.Supi == supi {
			domains[key.Domain.String()] = reg.viewOf(supi, info)
		}
	}
	reg.recMutex.RUnlock()

	if !known {
		http.Error(w, "unknown subscriber", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(RegistrationResponse{
		Supi:    supi,
		Gpsi:    sub.Gpsi,
		Domains: domains,
	})
	if err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}
}

// StateCounts aggregates stored records per domain and state.
type StateCounts struct {
	Subscribers int                       `json:"subscribers"`
	ByState     map[string]map[string]int `json:"byState"` // domain -> state -> count
}

func (reg *Registry) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	reg.recMutex.RLock()
	counts := StateCounts{
		Subscribers: len(reg.subscribers),
		ByState:     make(map[string]map[string]int),
	}
	for key, info := range reg.records {
		domain := key.Domain.String()
		if counts.ByState[domain] == nil {
			counts.ByState[domain] = make(map[string]int)
		}
		counts.ByState[domain][info.RegState().String()]++
	}
	reg.recMutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(counts); err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}
}

// Registration returns the stored record for one subscriber and domain.
func (reg *Registry) Registration(supi string, domain models.Domain) (*models.RegistrationInfo, bool) {
	reg.recMutex.RLock()
	defer reg.recMutex.RUnlock()
	info, ok := reg.records[recordKey{Supi: supi, Domain: domain}]
	return info, ok
}

func (reg *Registry) RegisterNorthboundAPIs(r *mux.Router) {
	r.HandleFunc("/nreg-evts/v1/subscriptions", reg.HandleNewSubscription).Methods(http.MethodPost)
	r.HandleFunc("/nreg-state/v1/registrations", reg.HandleListRegistrations).Methods(http.MethodGet)
	r.HandleFunc("/nreg-state/v1/registrations/{supi}", reg.HandleGetRegistration).Methods(http.MethodGet)
	log.Printf("[%s] nreg-evts and nreg-state have been registered", reg.RegistryId)
}
