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
package common

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxDecimalWidth is the widest DECIMAL the engine declares.
	MaxDecimalWidth = 38
	// MaxDecimalScale is bounded by the 19 digit decimal payload.
	MaxDecimalScale = 19
)

type LType struct {
	Id    LTypeId
	PTyp  PhyType
	Width int
	Scale int
}

func MakeLType(id LTypeId) LType {
	ret := LType{Id: id}
	ret.PTyp = ret.GetInternalType()
	return ret
}

func Null() LType {
	return MakeLType(LTID_NULL)
}

func DecimalType(width, scale int) LType {
	ret := MakeLType(LTID_DECIMAL)
	ret.Width = width
	ret.Scale = scale
	return ret
}

func BigintType() LType {
	return MakeLType(LTID_BIGINT)
}

func IntegerType() LType {
	return MakeLType(LTID_INTEGER)
}

func UbigintType() LType {
	return MakeLType(LTID_UBIGINT)
}

func DoubleType() LType {
	return MakeLType(LTID_DOUBLE)
}

func VarcharType() LType {
	return MakeLType(LTID_VARCHAR)
}

func DateType() LType {
	return MakeLType(LTID_DATE)
}

func BooleanType() LType {
	return MakeLType(LTID_BOOLEAN)
}

func CopyLTypes(typs ...LType) []LType {
	ret := make([]LType, 0, len(typs))
	ret = append(ret, typs...)
	return ret
}

var Numerics = map[LTypeId]int{
	LTID_INTEGER: 0,
	LTID_BIGINT:  0,
	LTID_UBIGINT: 0,
	LTID_DOUBLE:  0,
	LTID_DECIMAL: 0,
}

func (lt LType) IsNumeric() bool {
	_, has := Numerics[lt.Id]
	return has
}

var Integrals = map[LTypeId]int{
	LTID_INTEGER: 0,
	LTID_BIGINT:  0,
	LTID_UBIGINT: 0,
}

func (lt LType) IsIntegral() bool {
	_, has := Integrals[lt.Id]
	return has
}

func (lt LType) IsNull() bool {
	return lt.Id == LTID_NULL
}

func (lt LType) Equal(o LType) bool {
	if lt.Id != o.Id {
		return false
	}
	switch lt.Id {
	case LTID_DECIMAL:
		return lt.Width == o.Width && lt.Scale == o.Scale
	default:
	}
	return true
}

func (lt LType) GetInternalType() PhyType {
	switch lt.Id {
	case LTID_BOOLEAN:
		return BOOL
	case LTID_NULL, LTID_INTEGER:
		return INT32
	case LTID_DATE:
		return DATE
	case LTID_BIGINT:
		return INT64
	case LTID_UBIGINT:
		return UINT64
	case LTID_DOUBLE:
		return DOUBLE
	case LTID_DECIMAL:
		return DECIMAL
	case LTID_VARCHAR:
		return VARCHAR
	case LTID_INVALID:
		return INVALID
	default:
		panic(fmt.Sprintf("usp logical type %d", lt.Id))
	}
}

func (lt LType) String() string {
	switch lt.Id {
	case LTID_NULL:
		return "NULL"
	case LTID_BOOLEAN:
		return "BOOLEAN"
	case LTID_INTEGER:
		return "INTEGER"
	case LTID_BIGINT:
		return "BIGINT"
	case LTID_UBIGINT:
		return "UBIGINT"
	case LTID_DOUBLE:
		return "DOUBLE"
	case LTID_DECIMAL:
		return fmt.Sprintf("DECIMAL(%d,%d)", lt.Width, lt.Scale)
	case LTID_DATE:
		return "DATE"
	case LTID_VARCHAR:
		return "VARCHAR"
	default:
		return lt.Id.String()
	}
}

// ParseLType converts a type name used in config files and
// command lines into a LType.
//
// Accepted names: int, integer, bigint, ubigint, double, decimal(p,s),
// varchar, string, date, bool, boolean.
func ParseLType(name string) (LType, error) {
	lname := strings.ToLower(strings.TrimSpace(name))
	switch lname {
	case "int", "integer", "int32":
		return IntegerType(), nil
	case "bigint", "int64":
		return BigintType(), nil
	case "ubigint", "uint64":
		return UbigintType(), nil
	case "double", "float64":
		return DoubleType(), nil
	case "varchar", "string", "text":
		return VarcharType(), nil
	case "date":
		return DateType(), nil
	case "bool", "boolean":
		return BooleanType(), nil
	case "decimal":
		return DecimalType(MaxDecimalWidth, 0), nil
	}
	if strings.HasPrefix(lname, "decimal(") && strings.HasSuffix(lname, ")") {
		args := strings.Split(lname[len("decimal("):len(lname)-1], ",")
		if len(args) != 2 {
			return LType{}, fmt.Errorf("invalid decimal type %q", name)
		}
		width, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return LType{}, fmt.Errorf("invalid decimal width in %q: %w", name, err)
		}
		scale, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil {
			return LType{}, fmt.Errorf("invalid decimal scale in %q: %w", name, err)
		}
		if width <= 0 || width > MaxDecimalWidth ||
			scale < 0 || scale > width || scale > MaxDecimalScale {
			return LType{}, fmt.Errorf("decimal(%d,%d) out of range", width, scale)
		}
		return DecimalType(width, scale), nil
	}
	return LType{}, fmt.Errorf("unknown type %q", name)
}
