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

package tracker

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/components/core"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/components/ran"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/components/utils"
	"gitlab.eurecom.fr/open-exposure/netreg/registration-tracker/internal/models"
)

/* Tracker Instance Code */

// TMSI pool bounds handed to the GUTI allocator.
const (
	tmsiBase     uint32 = 0xc0000000
	tmsiPoolSize        = 65536
)

type TrackerInstance struct {
	// list of UEs
	ctx          context.Context
	UeList       map[string]*ran.Ue
	ueListMutex  sync.RWMutex
	Registry     *core.Registry
	config       *FleetConfig
	ueGenContext context.Context
	ueGenCancel  context.CancelFunc
	guti         *utils.GutiAllocator
	sbiPort      uint16
	simId        string
	CellList     []*models.CellIdentityNr
}

func NewTrackerInstance(sbiPort uint16, config *FleetConfig) *TrackerInstance {
	return &TrackerInstance{
		ctx:          context.Background(),
		UeList:       make(map[string]*ran.Ue),
		ueListMutex:  sync.RWMutex{},
		config:       config,
		Registry:     nil,
		ueGenContext: nil,
		ueGenCancel:  nil,
		guti:         nil,
		sbiPort:      sbiPort,
		simId:        uuid.NewString(),
	}
}

func (t *TrackerInstance) InitTrackerInstance() error {
	t.guti = utils.NewGutiAllocator(tmsiBase, tmsiPoolSize)

	t.Registry = core.NewRegistry(t.config.Plmn, t.simId, t.guti)
	t.Registry.InitRegistry()

	// spawn the gNBs
	t.CellList = generateNRCells(t.config.Plmn, t.config.NumOfGnb)

	/* enable the registry's service based interface */
	r := mux.NewRouter()

	// register the registration state and subscription apis
	t.Registry.RegisterNorthboundAPIs(r)

	go func() {
		h2server := &http2.Server{}
		h2chandler := h2c.NewHandler(r, h2server)

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", t.sbiPort),
			Handler: h2chandler,
		}

		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not start registry sbi server: %s", err.Error())
		}
	}()

	return nil

}

func (t *TrackerInstance) Start() error {
	t.ueGenContext, t.ueGenCancel = context.WithCancel(t.ctx)
	log.Printf("starting tracker instance %s", t.simId)

	go func() {
		select {
		case <-t.ueGenContext.Done():
			return
		default:
			for i := 0; i < t.config.NumOfUe; i++ {
				// generate a new UE with a unique IMSI

				arrTime := expRand(float64(t.config.ArrivalRate))
				time.Sleep(arrTime)

				imsi := fmt.Sprintf("%s%s00000%05d", t.config.Plmn.Mcc, t.config.Plmn.Mnc, i+1)
				imei := generateIMEI()
				// Generate unique MSISDN per UE based on index
				msisdn := fmt.Sprintf("+336%09d", 100000000+i)

				ue := ran.NewUserEquipment(t.ctx, ran.UeConfig{
					Imsi:         imsi,
					Msidn:        msisdn,
					Imei:         imei,
					Type:         pickProfile(i),
					Plmn:         t.config.Plmn,
					TickInterval: t.config.TickInterval,
				}, t.simId, t.CellList)

				// if ue is not nil then start the UE and add it to the list
				if ue != nil {
					t.ueListMutex.Lock()
					ue.PowerUp()
					t.UeList[imsi] = ue
					t.ueListMutex.Unlock()
				}
			}
		}
	}()
	return nil
}

func (t *TrackerInstance) Stop() error {
	// stop the generation of UEs
	t.ueGenCancel()

	t.ueListMutex.Lock()
	defer t.ueListMutex.Unlock()
	// this function should always overtake the start function
	for imsi, ue := range t.UeList {
		// gracefully turn off the UE
		ue.TurnOff(true)
		delete(t.UeList, imsi)
	}

	return nil
}

// pickProfile alternates device kinds over the fleet; smartphones also
// maintain a CS registration, IoT devices are PS only.
func pickProfile(i int) string {
	if i%4 == 3 {
		return "IoT"
	}
	return "Smartphone"
}

func generateIMEI() string {

	// Generate TAC (Type Allocation Code) - 8 digits
	tac := fmt.Sprintf("%08d", rand.Intn(100000000))

	// Generate SNR (Serial Number) - 6 digits
	snr := fmt.Sprintf("%06d", rand.Intn(1000000))

	// Concatenate TAC + SNR (14 digits so far)
	imei14 := tac + snr

	// Compute check digit using Luhn algorithm
	checkDigit := luhnCheckDigit(imei14)

	return imei14 + checkDigit
}

// luhnCheckDigit computes the Luhn check digit for a given numeric string.
func luhnCheckDigit(number string) string {
	sum := 0
	alt := true // start doubling from the rightmost digit
	for i := len(number) - 1; i >= 0; i-- {
		n, _ := strconv.Atoi(string(number[i]))
		if alt {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alt = !alt
	}
	checkDigit := (10 - (sum % 10)) % 10
	return strconv.Itoa(checkDigit)
}

// exponential random variable with mean 1/λ
func expRand(lambda float64) time.Duration {
	u := rand.Float64()
	return time.Duration(-math.Log(1-u) / lambda * float64(time.Second))
}

func generateNRCells(plmn models.PlmnId, max int) []*models.CellIdentityNr {
	// NCI is 36 bits max (values: 0 .. 2^36-1)
	const maxNCI = (1 << 36) - 1

	if int64(max) > maxNCI {
		max = maxNCI
	}

	cells := make([]*models.CellIdentityNr, 0, max)
	for i := 0; i < max; i++ {
		cells = append(cells, &models.CellIdentityNr{
			Nci:  int64(i),
			Pci:  int32(rand.Intn(1008)), // PCI range 0..1007
			Tac:  1010,
			Plmn: plmn,
		})
	}
	return cells
}
