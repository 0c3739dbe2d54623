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
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/daviszhen/hashagg/pkg/common"
)

type Value struct {
	Typ    common.LType
	IsNull bool
	//value
	Bool  bool
	I64   int64
	I64_1 int64
	I64_2 int64
	U64   uint64
	F64   float64
	Str   string
	Dec   common.Decimal
}

func NewNullValue(typ common.LType) *Value {
	return &Value{
		Typ:    typ,
		IsNull: true,
	}
}

func NewBooleanValue(b bool) *Value {
	return &Value{
		Typ:  common.BooleanType(),
		Bool: b,
	}
}

func NewIntegerValue(i int32) *Value {
	return &Value{
		Typ: common.IntegerType(),
		I64: int64(i),
	}
}

func NewBigintValue(i int64) *Value {
	return &Value{
		Typ: common.BigintType(),
		I64: i,
	}
}

func NewUbigintValue(u uint64) *Value {
	return &Value{
		Typ: common.UbigintType(),
		U64: u,
	}
}

func NewDoubleValue(f float64) *Value {
	return &Value{
		Typ: common.DoubleType(),
		F64: f,
	}
}

func NewVarcharValue(s string) *Value {
	return &Value{
		Typ: common.VarcharType(),
		Str: s,
	}
}

// NewDecimalValue keeps the declared width and scale of typ.
// The payload is rescaled to typ.Scale.
func NewDecimalValue(typ common.LType, d common.Decimal) (*Value, error) {
	if typ.Id != common.LTID_DECIMAL {
		return nil, fmt.Errorf("%v is not a decimal type", typ)
	}
	rd, err := d.Rescale(typ.Scale)
	if err != nil {
		return nil, err
	}
	return &Value{
		Typ: typ,
		Dec: rd,
	}, nil
}

func NewDateValue(d common.Date) *Value {
	return &Value{
		Typ:   common.DateType(),
		I64:   int64(d.Year),
		I64_1: int64(d.Month),
		I64_2: int64(d.Day),
	}
}

func (val *Value) Date() common.Date {
	return common.Date{
		Year:  int32(val.I64),
		Month: int32(val.I64_1),
		Day:   int32(val.I64_2),
	}
}

func (val *Value) Copy() *Value {
	ret := *val
	return &ret
}

func (val Value) String() string {
	if val.IsNull {
		return "NULL"
	}
	switch val.Typ.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT:
		return strconv.FormatInt(val.I64, 10)
	case common.LTID_UBIGINT:
		return strconv.FormatUint(val.U64, 10)
	case common.LTID_BOOLEAN:
		return strconv.FormatBool(val.Bool)
	case common.LTID_VARCHAR:
		return val.Str
	case common.LTID_DECIMAL:
		return val.Dec.String()
	case common.LTID_DATE:
		d := val.Date()
		return d.String()
	case common.LTID_DOUBLE:
		return strconv.FormatFloat(val.F64, 'g', -1, 64)
	default:
		panic(fmt.Sprintf("usp %v", val.Typ))
	}
}

// CompareValue orders two values of the same type. NULL sorts first,
// NaN sorts after every other double.
func CompareValue(a, b *Value) int {
	if a.IsNull || b.IsNull {
		switch {
		case a.IsNull && b.IsNull:
			return 0
		case a.IsNull:
			return -1
		default:
			return 1
		}
	}
	switch a.Typ.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT:
		return cmp.Compare(a.I64, b.I64)
	case common.LTID_UBIGINT:
		return cmp.Compare(a.U64, b.U64)
	case common.LTID_BOOLEAN:
		return cmp.Compare(boolToInt(a.Bool), boolToInt(b.Bool))
	case common.LTID_VARCHAR:
		return strings.Compare(a.Str, b.Str)
	case common.LTID_DECIMAL:
		return a.Dec.Cmp(b.Dec.Decimal)
	case common.LTID_DATE:
		if c := cmp.Compare(a.I64, b.I64); c != 0 {
			return c
		}
		if c := cmp.Compare(a.I64_1, b.I64_1); c != 0 {
			return c
		}
		return cmp.Compare(a.I64_2, b.I64_2)
	case common.LTID_DOUBLE:
		an, bn := math.IsNaN(a.F64), math.IsNaN(b.F64)
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		}
		return cmp.Compare(a.F64, b.F64)
	default:
		panic(fmt.Sprintf("usp %v", a.Typ))
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
