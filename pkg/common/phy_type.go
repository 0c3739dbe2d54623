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
	"unsafe"
)

type PhyType int

const (
	NA      PhyType = 0
	BOOL    PhyType = 1
	INT32   PhyType = 7
	UINT64  PhyType = 8
	INT64   PhyType = 9
	DOUBLE  PhyType = 12
	VARCHAR PhyType = 200
	DATE    PhyType = 207
	DECIMAL PhyType = 209

	INVALID PhyType = 255
)

var pTypeToStr = map[PhyType]string{
	NA:      "NA",
	BOOL:    "BOOL",
	INT32:   "INT32",
	UINT64:  "UINT64",
	INT64:   "INT64",
	DOUBLE:  "DOUBLE",
	VARCHAR: "VARCHAR",
	DATE:    "DATE",
	DECIMAL: "DECIMAL",
	INVALID: "INVALID",
}

var (
	BoolSize    int
	Int32Size   int
	Int64Size   int
	DateSize    int
	VarcharSize int
	DecimalSize int
)

func init() {
	b := false
	BoolSize = int(unsafe.Sizeof(b))
	Int32Size = int(unsafe.Sizeof(int32(0)))
	Int64Size = int(unsafe.Sizeof(int64(0)))
	DateSize = int(unsafe.Sizeof(Date{}))
	VarcharSize = int(unsafe.Sizeof(String{}))
	DecimalSize = int(unsafe.Sizeof(Decimal{}))
}

func (pt PhyType) String() string {
	if s, has := pTypeToStr[pt]; has {
		return s
	}
	return fmt.Sprintf("PhyType(%d)", int(pt))
}

// Size is the width of one slot in a flat vector.
func (pt PhyType) Size() int {
	switch pt {
	case BOOL:
		return BoolSize
	case INT32:
		return Int32Size
	case INT64, UINT64, DOUBLE:
		return Int64Size
	case VARCHAR:
		return VarcharSize
	case DATE:
		return DateSize
	case DECIMAL:
		return DecimalSize
	case NA:
		return 0
	default:
		panic(fmt.Sprintf("usp phy type %v", pt))
	}
}

func (pt PhyType) IsVarchar() bool {
	return pt == VARCHAR
}
