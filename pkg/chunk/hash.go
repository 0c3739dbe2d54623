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
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/daviszhen/hashagg/pkg/common"
)

const (
	NULL_HASH = 0xbf58476d1ce4e5b9
)

// canonical NaN bits. every NaN hashes and compares as this one.
const nanBits = 0x7ff8000000000001

func murmurhash64(x uint64) uint64 {
	x ^= x >> 32
	x *= 0xd6e8feb86659fd93
	x ^= x >> 32
	x *= 0xd6e8feb86659fd93
	x ^= x >> 32
	return x
}

func CombineHashScalar(a, b uint64) uint64 {
	return (a * 0xbf58476d1ce4e5b9) ^ b
}

func hashFloat64(f float64) uint64 {
	switch {
	case math.IsNaN(f):
		return murmurhash64(nanBits)
	case f == 0:
		//+0 and -0
		return murmurhash64(0)
	default:
		return murmurhash64(math.Float64bits(f))
	}
}

// HashValue hashes one group key component. Values equal under
// ValueEqual hash the same.
func HashValue(val *Value) uint64 {
	if val.IsNull {
		return NULL_HASH
	}
	switch val.Typ.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT:
		return murmurhash64(uint64(val.I64))
	case common.LTID_UBIGINT:
		return murmurhash64(val.U64)
	case common.LTID_BOOLEAN:
		return murmurhash64(uint64(boolToInt(val.Bool)))
	case common.LTID_DOUBLE:
		return hashFloat64(val.F64)
	case common.LTID_VARCHAR:
		return xxhash.Sum64String(val.Str)
	case common.LTID_DECIMAL:
		norm := val.Dec.Normalize()
		return xxhash.Sum64String(norm.String())
	case common.LTID_DATE:
		h := murmurhash64(uint64(val.I64))
		h = CombineHashScalar(h, murmurhash64(uint64(val.I64_1)))
		return CombineHashScalar(h, murmurhash64(uint64(val.I64_2)))
	default:
		panic(fmt.Sprintf("usp hash type %v", val.Typ))
	}
}

// ValueEqual is the equality of group key components.
// NULL equals NULL. For doubles +0 equals -0 and NaN equals NaN.
func ValueEqual(a, b *Value) bool {
	if a.IsNull || b.IsNull {
		return a.IsNull && b.IsNull
	}
	if a.Typ.Id != b.Typ.Id {
		return false
	}
	switch a.Typ.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT:
		return a.I64 == b.I64
	case common.LTID_UBIGINT:
		return a.U64 == b.U64
	case common.LTID_BOOLEAN:
		return a.Bool == b.Bool
	case common.LTID_DOUBLE:
		if math.IsNaN(a.F64) || math.IsNaN(b.F64) {
			return math.IsNaN(a.F64) && math.IsNaN(b.F64)
		}
		return a.F64 == b.F64
	case common.LTID_VARCHAR:
		return a.Str == b.Str
	case common.LTID_DECIMAL:
		return a.Dec.Equal(&b.Dec)
	case common.LTID_DATE:
		return a.I64 == b.I64 && a.I64_1 == b.I64_1 && a.I64_2 == b.I64_2
	default:
		panic(fmt.Sprintf("usp equal type %v", a.Typ))
	}
}
