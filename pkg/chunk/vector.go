// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package chunk

import (
	"fmt"

	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

type Vector struct {
	_PhyFormat PhyFormat
	_Typ       common.LType
	_Cap       int
	Data       []byte
	Mask       *util.Bitmap
	Buf        *VecBuffer
	Aux        *VecBuffer
}

func (vec *Vector) Init(cap int) {
	vec.Aux = nil
	vec.Mask.Reset()
	vec._Cap = cap
	sz := vec.Typ().GetInternalType().Size()
	if sz > 0 {
		vec.Buf = NewStandardBuffer(vec.Typ(), cap)
		vec.Data = vec.Buf.Data
	}
	if vec.Typ().GetInternalType().IsVarchar() {
		vec.Aux = NewStringBuffer()
	}
}

func (vec *Vector) Typ() common.LType {
	return vec._Typ
}

func (vec *Vector) Cap() int {
	return vec._Cap
}

func (vec *Vector) PhyFormat() PhyFormat {
	return vec._PhyFormat
}

func (vec *Vector) SetPhyFormat(pf PhyFormat) {
	vec._PhyFormat = pf
}

func (vec *Vector) Reference(other *Vector) {
	util.AssertFunc(vec.Typ().Equal(other.Typ()))
	vec.Reinterpret(other)
}

// ReferenceValue turns the vector into a constant vector holding val.
func (vec *Vector) ReferenceValue(val *Value) {
	util.AssertFunc(val.IsNull || vec.Typ().Id == val.Typ.Id)
	vec.SetPhyFormat(PF_CONST)
	vec.Buf = NewConstBuffer(vec.Typ())
	vec.Data = vec.Buf.Data
	vec._Cap = 1
	vec.Mask = &util.Bitmap{}
	vec.Aux = nil
	if vec.Typ().GetInternalType().IsVarchar() {
		vec.Aux = NewStringBuffer()
	}
	vec.SetValue(0, val)
}

func (vec *Vector) Reinterpret(other *Vector) {
	vec._PhyFormat = other._PhyFormat
	vec._Cap = other._Cap
	vec.Buf = other.Buf
	vec.Aux = other.Aux
	vec.Data = other.Data
	vec.Mask = other.Mask
}

func (vec *Vector) GetValue(idx int) *Value {
	switch vec.PhyFormat() {
	case PF_CONST:
		idx = 0
	case PF_FLAT:
	default:
		panic("usp")
	}
	if !vec.Mask.RowIsValid(uint64(idx)) {
		return NewNullValue(vec.Typ())
	}

	switch vec.Typ().Id {
	case common.LTID_NULL:
		return NewNullValue(vec.Typ())
	case common.LTID_INTEGER:
		data := GetSliceInPhyFormatFlat[int32](vec)
		return &Value{
			Typ: vec.Typ(),
			I64: int64(data[idx]),
		}
	case common.LTID_BOOLEAN:
		data := GetSliceInPhyFormatFlat[bool](vec)
		return &Value{
			Typ:  vec.Typ(),
			Bool: data[idx],
		}
	case common.LTID_VARCHAR:
		data := GetSliceInPhyFormatFlat[common.String](vec)
		return &Value{
			Typ: vec.Typ(),
			Str: data[idx].String(),
		}
	case common.LTID_DECIMAL:
		data := GetSliceInPhyFormatFlat[common.Decimal](vec)
		return &Value{
			Typ: vec.Typ(),
			Dec: data[idx],
		}
	case common.LTID_DATE:
		data := GetSliceInPhyFormatFlat[common.Date](vec)
		return NewDateValue(data[idx])
	case common.LTID_UBIGINT:
		data := GetSliceInPhyFormatFlat[uint64](vec)
		return &Value{
			Typ: vec.Typ(),
			U64: data[idx],
		}
	case common.LTID_BIGINT:
		data := GetSliceInPhyFormatFlat[int64](vec)
		return &Value{
			Typ: vec.Typ(),
			I64: data[idx],
		}
	case common.LTID_DOUBLE:
		data := GetSliceInPhyFormatFlat[float64](vec)
		return &Value{
			Typ: vec.Typ(),
			F64: data[idx],
		}
	default:
		panic(fmt.Sprintf("usp %v", vec.Typ()))
	}
}

// SetValue writes val at idx. A null value of any type marks the row invalid.
func (vec *Vector) SetValue(idx int, val *Value) {
	vec.Mask.Set(uint64(idx), !val.IsNull)
	if val.IsNull {
		return
	}
	util.AssertFunc(val.Typ.Equal(vec.Typ()))
	pTyp := vec.Typ().GetInternalType()
	switch pTyp {
	case common.INT32:
		slice := util.ToSlice[int32](vec.Data, pTyp.Size())
		slice[idx] = int32(val.I64)
	case common.INT64:
		slice := util.ToSlice[int64](vec.Data, pTyp.Size())
		slice[idx] = val.I64
	case common.UINT64:
		slice := util.ToSlice[uint64](vec.Data, pTyp.Size())
		slice[idx] = val.U64
	case common.VARCHAR:
		slice := util.ToSlice[common.String](vec.Data, pTyp.Size())
		if vec.Aux == nil {
			vec.Aux = NewStringBuffer()
		}
		slice[idx] = vec.Aux.AddString(val.Str)
	case common.DATE:
		slice := util.ToSlice[common.Date](vec.Data, pTyp.Size())
		slice[idx] = val.Date()
	case common.DECIMAL:
		slice := util.ToSlice[common.Decimal](vec.Data, pTyp.Size())
		slice[idx] = val.Dec
	case common.DOUBLE:
		slice := util.ToSlice[float64](vec.Data, pTyp.Size())
		slice[idx] = val.F64
	case common.BOOL:
		slice := util.ToSlice[bool](vec.Data, pTyp.Size())
		slice[idx] = val.Bool
	default:
		panic(fmt.Sprintf("usp %v", pTyp))
	}
}

// Grow enlarges a flat vector to hold at least cap rows.
func (vec *Vector) Grow(cap int) {
	util.AssertFunc(vec.PhyFormat().IsFlat())
	if cap <= vec._Cap {
		return
	}
	sz := vec.Typ().GetInternalType().Size()
	if sz > 0 {
		buf := NewStandardBuffer(vec.Typ(), cap)
		copy(buf.Data, vec.Data)
		vec.Buf = buf
		vec.Data = buf.Data
	}
	if !vec.Mask.AllValid() {
		vec.Mask.Resize(vec._Cap, cap)
	}
	vec._Cap = cap
}

func (vec *Vector) Reset() {
	vec._PhyFormat = PF_FLAT
	vec.Mask.Reset()
	if vec.Aux != nil {
		vec.Aux = NewStringBuffer()
	}
}

// Flatten turns a constant vector into a flat vector of cnt rows.
func (vec *Vector) Flatten(cnt int) {
	switch vec.PhyFormat() {
	case PF_FLAT:
	case PF_CONST:
		val := vec.GetValue(0)
		vec._PhyFormat = PF_FLAT
		vec.Mask = &util.Bitmap{}
		vec.Init(max(util.DefaultVectorSize, cnt))
		if val.IsNull {
			vec.Mask.SetAllInvalid(cnt)
			return
		}
		for i := 0; i < cnt; i++ {
			vec.SetValue(i, val)
		}
	}
}

// constant vector
func GetSliceInPhyFormatConst[T any](vec *Vector) []T {
	util.AssertFunc(vec.PhyFormat().IsConst() || vec.PhyFormat().IsFlat())
	pSize := vec.Typ().GetInternalType().Size()
	return util.ToSlice[T](vec.Data, pSize)
}

func IsNullInPhyFormatConst(vec *Vector) bool {
	util.AssertFunc(vec.PhyFormat().IsConst())
	return !vec.Mask.RowIsValid(0)
}

func SetNullInPhyFormatConst(vec *Vector, null bool) {
	util.AssertFunc(vec.PhyFormat().IsConst())
	vec.Mask.Set(0, !null)
}

// flat vector
func GetSliceInPhyFormatFlat[T any](vec *Vector) []T {
	return GetSliceInPhyFormatConst[T](vec)
}

func GetMaskInPhyFormatFlat(vec *Vector) *util.Bitmap {
	util.AssertFunc(vec.PhyFormat().IsFlat())
	return vec.Mask
}

func NewVector(lTyp common.LType, initData bool, cap int) *Vector {
	vec := &Vector{
		_PhyFormat: PF_FLAT,
		_Typ:       lTyp,
		Mask:       &util.Bitmap{},
	}
	if initData {
		vec.Init(cap)
	}
	return vec
}

func NewFlatVector(lTyp common.LType, cap int) *Vector {
	return NewVector(lTyp, true, cap)
}

func NewConstVector(val *Value, typ common.LType) *Vector {
	vec := NewVector(typ, false, 0)
	vec.ReferenceValue(val)
	return vec
}
