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

package parcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteInt32(-42)
	w.WriteInt64(1 << 35)
	w.WriteBool(true)
	w.WriteBool(false)
	w.WriteString("20895")
	w.WriteString("")

	r := NewReader(w.Bytes())

	i32, err := r.ReadInt32("i32")
	require.NoError(t, err)
	assert.Equal(t, int32(-42), i32)

	i64, err := r.ReadInt64("i64")
	require.NoError(t, err)
	assert.Equal(t, int64(1<<35), i64)

	b, err := r.ReadBool("b1")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = r.ReadBool("b2")
	require.NoError(t, err)
	assert.False(t, b)

	s, err := r.ReadString("s1")
	require.NoError(t, err)
	assert.Equal(t, "20895", s)

	s, err = r.ReadString("s2")
	require.NoError(t, err)
	assert.Equal(t, "", s)

	assert.Equal(t, 0, r.Remaining())
}

func TestInt32SliceRoundTrip(t *testing.T) {
	cases := map[string][]int32{
		"nil":        nil,
		"empty":      {},
		"populated":  {1, 2, 3},
		"duplicates": {2, 2, 2},
	}

	for name, vs := range cases {
		t.Run(name, func(t *testing.T) {
			w := NewWriter()
			w.WriteInt32Slice(vs)

			got, err := NewReader(w.Bytes()).ReadInt32Slice("services")
			require.NoError(t, err)
			assert.Equal(t, vs, got)
		})
	}
}

func TestNilSliceEncodesSentinel(t *testing.T) {
	w := NewWriter()
	w.WriteInt32Slice(nil)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, w.Bytes())

	w = NewWriter()
	w.WriteInt32Slice([]int32{})
	assert.Equal(t, []byte{0, 0, 0, 0}, w.Bytes())
}

func TestTruncatedReads(t *testing.T) {
	w := NewWriter()
	w.WriteInt32(7)
	full := w.Bytes()

	for n := 0; n < len(full); n++ {
		_, err := NewReader(full[:n]).ReadInt32("field")
		require.ErrorIs(t, err, ErrTruncated, "length %d", n)
	}

	// slice count says four elements, only one follows
	w = NewWriter()
	w.WriteInt32(4)
	w.WriteInt32(1)
	_, err := NewReader(w.Bytes()).ReadInt32Slice("services")
	assert.ErrorIs(t, err, ErrTruncated)

	// string length exceeds remaining bytes
	w = NewWriter()
	w.WriteInt32(10)
	_, err = NewReader(w.Bytes()).ReadString("mcc")
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestMalformedValues(t *testing.T) {
	// negative count other than the -1 sentinel
	w := NewWriter()
	w.WriteInt32(-2)
	_, err := NewReader(w.Bytes()).ReadInt32Slice("services")
	assert.ErrorIs(t, err, ErrMalformed)

	// presence tag outside {0, 1}
	_, err = NewReader([]byte{2}).ReadPresence("cellIdentity")
	assert.ErrorIs(t, err, ErrMalformed)

	// negative string length
	w = NewWriter()
	w.WriteInt32(-1)
	_, err = NewReader(w.Bytes()).ReadString("mcc")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCodecErrorReportsOpAndKind(t *testing.T) {
	_, err := NewReader(nil).ReadInt32("registration.domain")
	require.Error(t, err)

	var codecErr *CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, "registration.domain", codecErr.Op)
	assert.Equal(t, Truncated, codecErr.Kind)
	assert.Contains(t, err.Error(), "registration.domain")
}

func TestPresenceRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WritePresence(true)
	w.WritePresence(false)

	r := NewReader(w.Bytes())
	present, err := r.ReadPresence("a")
	require.NoError(t, err)
	assert.True(t, present)
	present, err = r.ReadPresence("b")
	require.NoError(t, err)
	assert.False(t, present)
}
