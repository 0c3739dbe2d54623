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
	"errors"
	"fmt"
	"math"

	"github.com/daviszhen/hashagg/pkg/common"
)

func addInt32CheckOf(left, right, result *int32) error {
	res := int64(*left) + int64(*right)
	if res > math.MaxInt32 || res < math.MinInt32 {
		return fmt.Errorf("%w: %d + %d", ErrIntegerOverflow, *left, *right)
	}
	*result = int32(res)
	return nil
}

func subInt32CheckOf(left, right, result *int32) error {
	res := int64(*left) - int64(*right)
	if res > math.MaxInt32 || res < math.MinInt32 {
		return fmt.Errorf("%w: %d - %d", ErrIntegerOverflow, *left, *right)
	}
	*result = int32(res)
	return nil
}

func mulInt32CheckOf(left, right, result *int32) error {
	res := int64(*left) * int64(*right)
	if res > math.MaxInt32 || res < math.MinInt32 {
		return fmt.Errorf("%w: %d * %d", ErrIntegerOverflow, *left, *right)
	}
	*result = int32(res)
	return nil
}

func divInt32(left, right, result *int32) error {
	if *right == 0 {
		return ErrDivideByZero
	}
	if *left == math.MinInt32 && *right == -1 {
		return fmt.Errorf("%w: %d / %d", ErrIntegerOverflow, *left, *right)
	}
	*result = *left / *right
	return nil
}

func addInt64CheckOf(left, right, result *int64) error {
	res := *left + *right
	if (*left > 0 && *right > 0 && res < 0) ||
		(*left < 0 && *right < 0 && res >= 0) {
		return fmt.Errorf("%w: %d + %d", ErrIntegerOverflow, *left, *right)
	}
	*result = res
	return nil
}

func subInt64CheckOf(left, right, result *int64) error {
	res := *left - *right
	if (*left >= 0 && *right < 0 && res < 0) ||
		(*left < 0 && *right > 0 && res >= 0) {
		return fmt.Errorf("%w: %d - %d", ErrIntegerOverflow, *left, *right)
	}
	*result = res
	return nil
}

func mulInt64CheckOf(left, right, result *int64) error {
	if *left == 0 || *right == 0 {
		*result = 0
		return nil
	}
	res := *left * *right
	if res/ *right != *left ||
		(*left == -1 && *right == math.MinInt64) ||
		(*right == -1 && *left == math.MinInt64) {
		return fmt.Errorf("%w: %d * %d", ErrIntegerOverflow, *left, *right)
	}
	*result = res
	return nil
}

func divInt64(left, right, result *int64) error {
	if *right == 0 {
		return ErrDivideByZero
	}
	if *left == math.MinInt64 && *right == -1 {
		return fmt.Errorf("%w: %d / %d", ErrIntegerOverflow, *left, *right)
	}
	*result = *left / *right
	return nil
}

func addUint64CheckOf(left, right, result *uint64) error {
	res := *left + *right
	if res < *left {
		return fmt.Errorf("%w: %d + %d", ErrIntegerOverflow, *left, *right)
	}
	*result = res
	return nil
}

func subUint64CheckOf(left, right, result *uint64) error {
	if *right > *left {
		return fmt.Errorf("%w: %d - %d", ErrIntegerOverflow, *left, *right)
	}
	*result = *left - *right
	return nil
}

func mulUint64CheckOf(left, right, result *uint64) error {
	if *left != 0 && *right > math.MaxUint64 / *left {
		return fmt.Errorf("%w: %d * %d", ErrIntegerOverflow, *left, *right)
	}
	*result = *left * *right
	return nil
}

func divUint64(left, right, result *uint64) error {
	if *right == 0 {
		return ErrDivideByZero
	}
	*result = *left / *right
	return nil
}

func addDouble(left, right, result *float64) error {
	*result = *left + *right
	return nil
}

func subDouble(left, right, result *float64) error {
	*result = *left - *right
	return nil
}

func mulDouble(left, right, result *float64) error {
	*result = *left * *right
	return nil
}

func divDouble(left, right, result *float64) error {
	if *right == 0 {
		return ErrDivideByZero
	}
	*result = *left / *right
	return nil
}

// decimal operators keep the scale of the result type.
func decimalOp(scale int, fun func(res, l, r *common.Decimal) error) BinaryOp[common.Decimal] {
	return func(left, right, result *common.Decimal) error {
		var res common.Decimal
		if err := fun(&res, left, right); err != nil {
			if errors.Is(err, ErrDivideByZero) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrIntegerOverflow, err)
		}
		scaled, err := res.Rescale(scale)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIntegerOverflow, err)
		}
		*result = scaled
		return nil
	}
}

func divDecimal(res, left, right *common.Decimal) error {
	if right.Decimal.IsZero() {
		return ErrDivideByZero
	}
	return res.Div(left, right)
}

// GetArithmeticFunction returns the vector function of the operator on
// operands of type typ.
func GetArithmeticFunction(subTyp ET_SubTyp, typ common.LType) (BinaryVectorFunc, error) {
	switch typ.GetInternalType() {
	case common.INT32:
		switch subTyp {
		case ET_Add:
			return BinaryFunction[int32](typ, addInt32CheckOf), nil
		case ET_Sub:
			return BinaryFunction[int32](typ, subInt32CheckOf), nil
		case ET_Mul:
			return BinaryFunction[int32](typ, mulInt32CheckOf), nil
		case ET_Div:
			return BinaryFunction[int32](typ, divInt32), nil
		}
	case common.INT64:
		switch subTyp {
		case ET_Add:
			return BinaryFunction[int64](typ, addInt64CheckOf), nil
		case ET_Sub:
			return BinaryFunction[int64](typ, subInt64CheckOf), nil
		case ET_Mul:
			return BinaryFunction[int64](typ, mulInt64CheckOf), nil
		case ET_Div:
			return BinaryFunction[int64](typ, divInt64), nil
		}
	case common.UINT64:
		switch subTyp {
		case ET_Add:
			return BinaryFunction[uint64](typ, addUint64CheckOf), nil
		case ET_Sub:
			return BinaryFunction[uint64](typ, subUint64CheckOf), nil
		case ET_Mul:
			return BinaryFunction[uint64](typ, mulUint64CheckOf), nil
		case ET_Div:
			return BinaryFunction[uint64](typ, divUint64), nil
		}
	case common.DOUBLE:
		switch subTyp {
		case ET_Add:
			return BinaryFunction[float64](typ, addDouble), nil
		case ET_Sub:
			return BinaryFunction[float64](typ, subDouble), nil
		case ET_Mul:
			return BinaryFunction[float64](typ, mulDouble), nil
		case ET_Div:
			return BinaryFunction[float64](typ, divDouble), nil
		}
	case common.DECIMAL:
		switch subTyp {
		case ET_Add:
			return BinaryFunction[common.Decimal](typ, decimalOp(typ.Scale, (*common.Decimal).Add)), nil
		case ET_Sub:
			return BinaryFunction[common.Decimal](typ, decimalOp(typ.Scale, (*common.Decimal).Sub)), nil
		case ET_Mul:
			return BinaryFunction[common.Decimal](typ, decimalOp(typ.Scale, (*common.Decimal).Mul)), nil
		case ET_Div:
			return BinaryFunction[common.Decimal](typ, decimalOp(typ.Scale, divDecimal)), nil
		}
	}
	return nil, fmt.Errorf("no operator %v for type %v", subTyp, typ)
}
