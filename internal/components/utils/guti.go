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

package utils

import (
	"errors"
	"fmt"
	"sync"
)

// GutiAllocator hands out temporary identifiers (TMSIs) to registered
// subscribers. Each SUPI holds at most one TMSI at a time; allocation is
// idempotent until the TMSI is released.
type GutiAllocator struct {
	mutex          sync.Mutex
	availableTmsis []uint32
	allocated      map[string]uint32 // supi -> TMSI
	tmsiToSupi     map[uint32]string // TMSI -> supi
}

// NewGutiAllocator builds an allocator with a pool of poolSize sequential
// TMSIs starting at base.
func NewGutiAllocator(base uint32, poolSize int) *GutiAllocator {
	tmsis := make([]uint32, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		tmsis = append(tmsis, base+uint32(i))
	}

	return &GutiAllocator{
		availableTmsis: tmsis,
		allocated:      make(map[string]uint32),
		tmsiToSupi:     make(map[uint32]string),
	}
}

func (a *GutiAllocator) Allocate(supi string) (string, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if tmsi, ok := a.allocated[supi]; ok {
		return formatTmsi(tmsi), nil // subscriber already has a TMSI
	}

	if len(a.availableTmsis) == 0 {
		return "", errors.New("TMSI pool exhausted")
	}

	tmsi := a.availableTmsis[0]
	a.availableTmsis = a.availableTmsis[1:]
	a.allocated[supi] = tmsi
	a.tmsiToSupi[tmsi] = supi

	return formatTmsi(tmsi), nil
}

func (a *GutiAllocator) Release(supi string) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	tmsi, ok := a.allocated[supi]
	if !ok {
		return errors.New("subscriber does not hold a TMSI")
	}

	delete(a.allocated, supi)
	delete(a.tmsiToSupi, tmsi)
	a.availableTmsis = append([]uint32{tmsi}, a.availableTmsis...)

	return nil
}

// Lookup returns the TMSI held by supi, if any.
func (a *GutiAllocator) Lookup(supi string) (string, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	tmsi, ok := a.allocated[supi]
	if !ok {
		return "", false
	}
	return formatTmsi(tmsi), true
}

// Holder returns the SUPI holding a formatted TMSI.
func (a *GutiAllocator) Holder(tmsi string) (string, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var raw uint32
	if _, err := fmt.Sscanf(tmsi, "%08x", &raw); err != nil {
		return "", false
	}
	supi, ok := a.tmsiToSupi[raw]
	return supi, ok
}

// Allocated reports the number of TMSIs currently held.
func (a *GutiAllocator) Allocated() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return len(a.allocated)
}

func formatTmsi(tmsi uint32) string {
	return fmt.Sprintf("%08x", tmsi)
}
