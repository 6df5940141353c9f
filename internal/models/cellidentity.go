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

// PlmnId identifies an operator network. Mcc and Mnc are kept as strings to
// preserve leading zeros.
type PlmnId struct {
	Mcc string `yaml:"mcc" json:"mcc"`
	Mnc string `yaml:"mnc" json:"mnc"`
}

func (p PlmnId) String() string {
	return p.Mcc + p.Mnc
}

// Cell identity type codes carried on the wire after the presence tag,
// replacing the platform's runtime class lookup.
const (
	cellTypeNr  int32 = 1
	cellTypeLte int32 = 2
)

// CellIdentity is the opaque serving-cell identifier a registration record
// optionally carries. Implementations own their encoding, equality and
// rendering; the record treats them as black boxes.
type CellIdentity interface {
	TypeCode() int32
	EncodeTo(w *parcel.Writer)
	Equal(other CellIdentity) bool
	String() string
}

// CellIdentityNr identifies an NR (5G) cell.
type CellIdentityNr struct {
	Nci  int64 // NR cell identity, 36 bits
	Pci  int32 // physical cell id
	Tac  int32 // tracking area code
	Plmn PlmnId
}

func (c *CellIdentityNr) TypeCode() int32 { return cellTypeNr }

func (c *CellIdentityNr) EncodeTo(w *parcel.Writer) {
	w.WriteInt64(c.Nci)
	w.WriteInt32(c.Pci)
	w.WriteInt32(c.Tac)
	w.WriteString(c.Plmn.Mcc)
	w.WriteString(c.Plmn.Mnc)
}

func decodeCellIdentityNr(r *parcel.Reader) (*CellIdentityNr, error) {
	c := &CellIdentityNr{}
	var err error
	if c.Nci, err = r.ReadInt64("cellIdentityNr.nci"); err != nil {
		return nil, err
	}
	if c.Pci, err = r.ReadInt32("cellIdentityNr.pci"); err != nil {
		return nil, err
	}
	if c.Tac, err = r.ReadInt32("cellIdentityNr.tac"); err != nil {
		return nil, err
	}
	if c.Plmn.Mcc, err = r.ReadString("cellIdentityNr.mcc"); err != nil {
		return nil, err
	}
	if c.Plmn.Mnc, err = r.ReadString("cellIdentityNr.mnc"); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CellIdentityNr) Equal(other CellIdentity) bool {
	o, ok := other.(*CellIdentityNr)
	return ok && *c == *o
}

func (c *CellIdentityNr) String() string {
	return fmt.Sprintf("CellIdentityNr{nci=%09x pci=%d tac=%d plmn=%s}",
		c.Nci, c.Pci, c.Tac, c.Plmn)
}

// CellIdentityLte identifies an LTE cell.
type CellIdentityLte struct {
	Ci   int32 // 28-bit E-UTRAN cell identity
	Pci  int32
	Tac  int32
	Plmn PlmnId
}

func (c *CellIdentityLte) TypeCode() int32 { return cellTypeLte }

func (c *CellIdentityLte) EncodeTo(w *parcel.Writer) {
	w.WriteInt32(c.Ci)
	w.WriteInt32(c.Pci)
	w.WriteInt32(c.Tac)
	w.WriteString(c.Plmn.Mcc)
	w.WriteString(c.Plmn.Mnc)
}

func decodeCellIdentityLte(r *parcel.Reader) (*CellIdentityLte, error) {
	c := &CellIdentityLte{}
	var err error
	if c.Ci, err = r.ReadInt32("cellIdentityLte.ci"); err != nil {
		return nil, err
	}
	if c.Pci, err = r.ReadInt32("cellIdentityLte.pci"); err != nil {
		return nil, err
	}
	if c.Tac, err = r.ReadInt32("cellIdentityLte.tac"); err != nil {
		return nil, err
	}
	if c.Plmn.Mcc, err = r.ReadString("cellIdentityLte.mcc"); err != nil {
		return nil, err
	}
	if c.Plmn.Mnc, err = r.ReadString("cellIdentityLte.mnc"); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CellIdentityLte) Equal(other CellIdentity) bool {
	o, ok := other.(*CellIdentityLte)
	return ok && *c == *o
}

func (c *CellIdentityLte) String() string {
	return fmt.Sprintf("CellIdentityLte{ci=%d pci=%d tac=%d plmn=%s}",
		c.Ci, c.Pci, c.Tac, c.Plmn)
}

// encodeCellIdentity writes the presence tag, the type code and the payload.
func encodeCellIdentity(w *parcel.Writer, c CellIdentity) {
	if c == nil {
		w.WritePresence(false)
		return
	}
	w.WritePresence(true)
	w.WriteInt32(c.TypeCode())
	c.EncodeTo(w)
}

func decodeCellIdentity(r *parcel.Reader) (CellIdentity, error) {
	present, err := r.ReadPresence("cellIdentity")
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	code, err := r.ReadInt32("cellIdentity.type")
	if err != nil {
		return nil, err
	}
	switch code {
	case cellTypeNr:
		return decodeCellIdentityNr(r)
	case cellTypeLte:
		return decodeCellIdentityLte(r)
	default:
		return nil, &parcel.CodecError{Op: "cellIdentity.type", Kind: parcel.Malformed}
	}
}

func cellIdentityEqual(a, b CellIdentity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
