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
package compute

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

func castErr(val *chunk.Value, to common.LType, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %q to %v: %v", ErrInvalidCast, val.String(), to, err)
	}
	return fmt.Errorf("%w: %q to %v", ErrInvalidCast, val.String(), to)
}

func checkInt32(val *chunk.Value, to common.LType, i int64) (*chunk.Value, error) {
	if i > math.MaxInt32 || i < math.MinInt32 {
		return nil, castErr(val, to, nil)
	}
	return chunk.NewIntegerValue(int32(i)), nil
}

// CastValue converts one scalar to the type to.
func CastValue(val *chunk.Value, to common.LType) (*chunk.Value, error) {
	if val.IsNull {
		return chunk.NewNullValue(to), nil
	}
	if val.Typ.Equal(to) {
		return val, nil
	}
	if val.Typ.Id == common.LTID_VARCHAR {
		return castFromString(val, to)
	}
	if to.Id == common.LTID_VARCHAR {
		return chunk.NewVarcharValue(val.String()), nil
	}
	switch val.Typ.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT:
		return castFromInt(val, val.I64, to)
	case common.LTID_UBIGINT:
		if val.U64 > math.MaxInt64 {
			if to.Id == common.LTID_DOUBLE {
				return chunk.NewDoubleValue(float64(val.U64)), nil
			}
			return nil, castErr(val, to, nil)
		}
		return castFromInt(val, int64(val.U64), to)
	case common.LTID_DOUBLE:
		return castFromDouble(val, to)
	case common.LTID_DECIMAL:
		return castFromDecimal(val, to)
	case common.LTID_BOOLEAN:
		if to.IsIntegral() || to.Id == common.LTID_DOUBLE || to.Id == common.LTID_DECIMAL {
			i := int64(0)
			if val.Bool {
				i = 1
			}
			return castFromInt(val, i, to)
		}
	}
	return nil, castErr(val, to, nil)
}

func castFromInt(val *chunk.Value, i int64, to common.LType) (*chunk.Value, error) {
	switch to.Id {
	case common.LTID_INTEGER:
		return checkInt32(val, to, i)
	case common.LTID_BIGINT:
		return chunk.NewBigintValue(i), nil
	case common.LTID_UBIGINT:
		if i < 0 {
			return nil, castErr(val, to, nil)
		}
		return chunk.NewUbigintValue(uint64(i)), nil
	case common.LTID_DOUBLE:
		return chunk.NewDoubleValue(float64(i)), nil
	case common.LTID_DECIMAL:
		ret, err := chunk.NewDecimalValue(to, common.DecimalFromInt64(i))
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return ret, nil
	case common.LTID_BOOLEAN:
		return chunk.NewBooleanValue(i != 0), nil
	}
	return nil, castErr(val, to, nil)
}

func castFromDouble(val *chunk.Value, to common.LType) (*chunk.Value, error) {
	f := val.F64
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, castErr(val, to, nil)
	}
	switch to.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT:
		r := math.Round(f)
		if r >= math.MaxInt64 || r < math.MinInt64 {
			return nil, castErr(val, to, nil)
		}
		return castFromInt(val, int64(r), to)
	case common.LTID_UBIGINT:
		r := math.Round(f)
		if r < 0 || r >= math.MaxUint64 {
			return nil, castErr(val, to, nil)
		}
		return chunk.NewUbigintValue(uint64(r)), nil
	case common.LTID_DECIMAL:
		d, err := common.DecimalFromFloat64(f)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		ret, err := chunk.NewDecimalValue(to, d)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return ret, nil
	}
	return nil, castErr(val, to, nil)
}

func castFromDecimal(val *chunk.Value, to common.LType) (*chunk.Value, error) {
	switch to.Id {
	case common.LTID_DECIMAL:
		ret, err := chunk.NewDecimalValue(to, val.Dec)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return ret, nil
	case common.LTID_DOUBLE:
		f, err := strconv.ParseFloat(val.Dec.String(), 64)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return chunk.NewDoubleValue(f), nil
	case common.LTID_INTEGER, common.LTID_BIGINT, common.LTID_UBIGINT:
		r := val.Dec.Round(0)
		i, err := strconv.ParseInt(r.String(), 10, 64)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return castFromInt(val, i, to)
	}
	return nil, castErr(val, to, nil)
}

func castFromString(val *chunk.Value, to common.LType) (*chunk.Value, error) {
	s := strings.TrimSpace(val.Str)
	switch to.Id {
	case common.LTID_INTEGER:
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return chunk.NewIntegerValue(int32(i)), nil
	case common.LTID_BIGINT:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return chunk.NewBigintValue(i), nil
	case common.LTID_UBIGINT:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return chunk.NewUbigintValue(u), nil
	case common.LTID_DOUBLE:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return chunk.NewDoubleValue(f), nil
	case common.LTID_DECIMAL:
		d, err := common.ParseDecimal(s)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		ret, err := chunk.NewDecimalValue(to, d)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return ret, nil
	case common.LTID_DATE:
		d, err := common.ParseDate(s)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return chunk.NewDateValue(d), nil
	case common.LTID_BOOLEAN:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, castErr(val, to, err)
		}
		return chunk.NewBooleanValue(b), nil
	}
	return nil, castErr(val, to, nil)
}

// castVector casts count rows of src. A constant input gives a constant result.
func castVector(src *chunk.Vector, to common.LType, count int) (*chunk.Vector, error) {
	if src.Typ().Equal(to) {
		return src, nil
	}
	if src.PhyFormat().IsConst() {
		val, err := CastValue(src.GetValue(0), to)
		if err != nil {
			return nil, err
		}
		return chunk.NewConstVector(val, to), nil
	}
	result := chunk.NewFlatVector(to, max(util.DefaultVectorSize, count))
	for i := 0; i < count; i++ {
		val, err := CastValue(src.GetValue(i), to)
		if err != nil {
			return nil, err
		}
		result.SetValue(i, val)
	}
	return result, nil
}
