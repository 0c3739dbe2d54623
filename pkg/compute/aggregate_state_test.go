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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
)

func newState(t *testing.T, name string, argTyp common.LType) (AggrState, common.LType) {
	fun, err := GetAggrFunction(name, argTyp)
	require.NoError(t, err)
	return fun.NewState(), fun.RetType
}

func feed(t *testing.T, state AggrState, vals ...*chunk.Value) {
	for _, val := range vals {
		require.NoError(t, state.UpdateSingle(val))
	}
}

func decVal(t *testing.T, typ common.LType, s string) *chunk.Value {
	val, err := chunk.NewDecimalValue(typ, common.MustDecimal(s))
	require.NoError(t, err)
	return val
}

func TestAggrStateNullRules(t *testing.T) {
	intNull := chunk.NewNullValue(common.IntegerType())
	boolNull := chunk.NewNullValue(common.BooleanType())
	cases := []struct {
		name     string
		argTyp   common.LType
		vals     []*chunk.Value
		empty    string
		allNull  string
		expected string
	}{
		{FuncCount, common.IntegerType(), []*chunk.Value{chunk.NewIntegerValue(1), intNull, chunk.NewIntegerValue(3)}, "0", "0", "2"},
		{FuncCountStar, common.IntegerType(), []*chunk.Value{chunk.NewIntegerValue(1), intNull, chunk.NewIntegerValue(3)}, "0", "2", "3"},
		{FuncSum, common.IntegerType(), []*chunk.Value{chunk.NewIntegerValue(1), intNull, chunk.NewIntegerValue(3)}, "NULL", "NULL", "4"},
		{FuncMin, common.IntegerType(), []*chunk.Value{chunk.NewIntegerValue(5), intNull, chunk.NewIntegerValue(-3)}, "NULL", "NULL", "-3"},
		{FuncMax, common.IntegerType(), []*chunk.Value{chunk.NewIntegerValue(5), intNull, chunk.NewIntegerValue(-3)}, "NULL", "NULL", "5"},
		{FuncAvg, common.IntegerType(), []*chunk.Value{chunk.NewIntegerValue(1), intNull, chunk.NewIntegerValue(4)}, "NULL", "NULL", "2.5"},
		{FuncFirst, common.IntegerType(), []*chunk.Value{intNull, chunk.NewIntegerValue(7), chunk.NewIntegerValue(8)}, "NULL", "NULL", "7"},
		{FuncBoolAnd, common.BooleanType(), []*chunk.Value{chunk.NewBooleanValue(true), boolNull, chunk.NewBooleanValue(false)}, "NULL", "NULL", "false"},
		{FuncBoolOr, common.BooleanType(), []*chunk.Value{chunk.NewBooleanValue(false), boolNull, chunk.NewBooleanValue(true)}, "NULL", "NULL", "true"},
		{FuncApproxCountDistinct, common.IntegerType(), []*chunk.Value{chunk.NewIntegerValue(1), intNull, chunk.NewIntegerValue(1), chunk.NewIntegerValue(2)}, "0", "0", "2"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			state, retTyp := newState(t, c.name, c.argTyp)
			assert.Equal(t, c.empty, state.Output().String())

			state, _ = newState(t, c.name, c.argTyp)
			feed(t, state, chunk.NewNullValue(c.argTyp), chunk.NewNullValue(c.argTyp))
			assert.Equal(t, c.allNull, state.Output().String())

			state, _ = newState(t, c.name, c.argTyp)
			feed(t, state, c.vals...)
			out := state.Output()
			assert.Equal(t, c.expected, out.String())
			if !out.IsNull {
				assert.True(t, out.Typ.Equal(retTyp), "%v %v", out.Typ, retTyp)
			}
			//reading the result does not consume the state
			assert.Equal(t, c.expected, state.Output().String())
		})
	}
}

func TestAggrStateReturnTypes(t *testing.T) {
	dec := common.DecimalType(10, 2)
	cases := []struct {
		name   string
		argTyp common.LType
		retTyp common.LType
	}{
		{FuncCount, common.VarcharType(), common.BigintType()},
		{FuncSum, common.IntegerType(), common.BigintType()},
		{FuncSum, common.BigintType(), common.BigintType()},
		{FuncSum, common.DoubleType(), common.DoubleType()},
		{FuncSum, dec, common.DecimalType(common.MaxDecimalWidth, 2)},
		{FuncAvg, common.IntegerType(), common.DoubleType()},
		{FuncAvg, dec, common.DecimalType(common.MaxDecimalWidth, 2)},
		{FuncMin, common.DateType(), common.DateType()},
		{FuncMax, common.VarcharType(), common.VarcharType()},
		{FuncFirst, dec, dec},
		{FuncApproxCountDistinct, common.VarcharType(), common.BigintType()},
	}
	for _, c := range cases {
		fun, err := GetAggrFunction(c.name, c.argTyp)
		require.NoError(t, err)
		assert.True(t, c.retTyp.Equal(fun.RetType), "%s(%v) returns %v", c.name, c.argTyp, fun.RetType)
	}

	for _, bad := range []struct {
		name   string
		argTyp common.LType
	}{
		{FuncSum, common.VarcharType()},
		{FuncAvg, common.DateType()},
		{FuncBoolAnd, common.IntegerType()},
	} {
		_, err := GetAggrFunction(bad.name, bad.argTyp)
		assert.ErrorIs(t, err, ErrAggrTypeMismatch)
	}
	assert.Contains(t, AggrFunctionNames(), FuncApproxCountDistinct)
}

func TestAggrStateDecimal(t *testing.T) {
	dec := common.DecimalType(10, 2)
	state, retTyp := newState(t, FuncSum, dec)
	feed(t, state, decVal(t, dec, "1.25"), decVal(t, dec, "2.5"), chunk.NewNullValue(dec))
	out := state.Output()
	assert.Equal(t, "3.75", out.String())
	assert.True(t, out.Typ.Equal(retTyp))

	state, _ = newState(t, FuncAvg, dec)
	feed(t, state, decVal(t, dec, "1.00"), decVal(t, dec, "2.00"))
	assert.Equal(t, "1.50", state.Output().String())

	state, _ = newState(t, FuncMax, dec)
	feed(t, state, decVal(t, dec, "1.5"), decVal(t, dec, "10.01"), decVal(t, dec, "-3"))
	assert.Equal(t, "10.01", state.Output().String())
}

func TestAggrStateAvgDecimalOverflow(t *testing.T) {
	dec := common.DecimalType(18, 0)
	nines := decVal(t, dec, "999999999999999999")
	state, _ := newState(t, FuncAvg, dec)
	var err error
	updates := 0
	for ; updates < 12 && err == nil; updates++ {
		err = state.UpdateSingle(nines)
	}
	//the running sum holds 19 digits, the eleventh value overflows it
	assert.ErrorIs(t, err, ErrAggrOverflow)
	assert.Equal(t, 11, updates)
	assert.Equal(t, "999999999999999999", state.Output().String())
}

func TestAggrStateDouble(t *testing.T) {
	state, _ := newState(t, FuncMax, common.DoubleType())
	feed(t, state, chunk.NewDoubleValue(1), chunk.NewDoubleValue(math.NaN()), chunk.NewDoubleValue(2))
	assert.True(t, math.IsNaN(state.Output().F64))

	state, _ = newState(t, FuncMin, common.DoubleType())
	feed(t, state, chunk.NewDoubleValue(1), chunk.NewDoubleValue(math.NaN()), chunk.NewDoubleValue(-2))
	assert.Equal(t, -2.0, state.Output().F64)

	state, _ = newState(t, FuncSum, common.DoubleType())
	feed(t, state, chunk.NewDoubleValue(0.5), chunk.NewDoubleValue(0.25))
	assert.Equal(t, 0.75, state.Output().F64)
}

func TestAggrStateVarchar(t *testing.T) {
	state, _ := newState(t, FuncMin, common.VarcharType())
	feed(t, state, chunk.NewVarcharValue("pear"), chunk.NewVarcharValue("apple"), chunk.NewVarcharValue("zoo"))
	assert.Equal(t, "apple", state.Output().String())

	state, _ = newState(t, FuncApproxCountDistinct, common.VarcharType())
	for i := 0; i < 100; i++ {
		feed(t, state, chunk.NewVarcharValue([]string{"a", "b", "c"}[i%3]))
	}
	assert.Equal(t, int64(3), state.Output().I64)
}

func TestAggrStateErrors(t *testing.T) {
	state, _ := newState(t, FuncSum, common.IntegerType())
	err := state.UpdateSingle(chunk.NewVarcharValue("x"))
	assert.ErrorIs(t, err, ErrAggrTypeMismatch)

	state, _ = newState(t, FuncSum, common.BigintType())
	feed(t, state, chunk.NewBigintValue(math.MinInt64))
	err = state.UpdateSingle(chunk.NewBigintValue(-1))
	assert.ErrorIs(t, err, ErrAggrOverflow)
	assert.Equal(t, "-9223372036854775808", state.Output().String())

	state, _ = newState(t, FuncBoolOr, common.BooleanType())
	assert.ErrorIs(t, state.UpdateSingle(chunk.NewIntegerValue(1)), ErrAggrTypeMismatch)
}
