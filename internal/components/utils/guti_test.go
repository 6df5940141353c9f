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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateAndRelease(t *testing.T) {
	a := NewGutiAllocator(0xc0000000, 4)

	tmsi, err := a.Allocate("208950000000001")
	require.NoError(t, err)
	assert.Equal(t, "c0000000", tmsi)
	assert.Equal(t, 1, a.Allocated())

	// allocation is idempotent per subscriber
	again, err := a.Allocate("208950000000001")
	require.NoError(t, err)
	assert.Equal(t, tmsi, again)
	assert.Equal(t, 1, a.Allocated())

	supi, ok := a.Holder(tmsi)
	require.True(t, ok)
	assert.Equal(t, "208950000000001", supi)

	require.NoError(t, a.Release("208950000000001"))
	assert.Equal(t, 0, a.Allocated())
	_, ok = a.Holder(tmsi)
	assert.False(t, ok)

	// released TMSI goes back to the front of the pool
	tmsi2, err := a.Allocate("208950000000002")
	require.NoError(t, err)
	assert.Equal(t, tmsi, tmsi2)
}

func TestPoolExhaustion(t *testing.T) {
	a := NewGutiAllocator(0xc0000000, 2)

	_, err := a.Allocate("supi-1")
	require.NoError(t, err)
	_, err = a.Allocate("supi-2")
	require.NoError(t, err)

	_, err = a.Allocate("supi-3")
	assert.Error(t, err)

	require.NoError(t, a.Release("supi-1"))
	_, err = a.Allocate("supi-3")
	assert.NoError(t, err)
}

func TestReleaseWithoutAllocation(t *testing.T) {
	a := NewGutiAllocator(0xc0000000, 2)
	assert.Error(t, a.Release("unknown"))
}

func TestLookup(t *testing.T) {
	a := NewGutiAllocator(0xd0000000, 2)

	_, ok := a.Lookup("supi-1")
	assert.False(t, ok)

	tmsi, err := a.Allocate("supi-1")
	require.NoError(t, err)

	got, ok := a.Lookup("supi-1")
	require.True(t, ok)
	assert.Equal(t, tmsi, got)
}
