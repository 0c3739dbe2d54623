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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/axiomhq/hyperloglog"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

// AggrState is the running state of one aggregate for one group.
type AggrState interface {
	// UpdateSingle folds one input value into the state.
	UpdateSingle(val *chunk.Value) error
	// Output returns the current result. It does not change the state.
	Output() *chunk.Value
}

// AggrStates holds the states of one group in aggregate call order.
type AggrStates []AggrState

func checkArg(name string, argTyp common.LType, val *chunk.Value) error {
	if val.Typ.Id != argTyp.Id {
		return fmt.Errorf("%w: %s expects %v, got %v", ErrAggrTypeMismatch, name, argTyp, val.Typ)
	}
	return nil
}

// count(x)
type CountState struct {
	_argTyp common.LType
	_star   bool
	_count  int64
}

func (state *CountState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		if state._star {
			state._count++
		}
		return nil
	}
	name := "count"
	if state._star {
		name = "count_star"
	}
	if err := checkArg(name, state._argTyp, val); err != nil {
		return err
	}
	state._count++
	return nil
}

func (state *CountState) Output() *chunk.Value {
	return chunk.NewBigintValue(state._count)
}

// sum over INTEGER and BIGINT
type SumIntState struct {
	_argTyp common.LType
	_isset  bool
	_value  int64
}

func (state *SumIntState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		return nil
	}
	if err := checkArg("sum", state._argTyp, val); err != nil {
		return err
	}
	res := state._value + val.I64
	if (state._value > 0 && val.I64 > 0 && res < 0) ||
		(state._value < 0 && val.I64 < 0 && res >= 0) {
		return fmt.Errorf("%w: sum %d + %d exceeds BIGINT", ErrAggrOverflow, state._value, val.I64)
	}
	state._value = res
	state._isset = true
	return nil
}

func (state *SumIntState) Output() *chunk.Value {
	if !state._isset {
		return chunk.NewNullValue(common.BigintType())
	}
	return chunk.NewBigintValue(state._value)
}

// sum over DOUBLE
type SumDoubleState struct {
	_isset bool
	_value float64
}

func (state *SumDoubleState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		return nil
	}
	if err := checkArg("sum", common.DoubleType(), val); err != nil {
		return err
	}
	state._value += val.F64
	state._isset = true
	return nil
}

func (state *SumDoubleState) Output() *chunk.Value {
	if !state._isset {
		return chunk.NewNullValue(common.DoubleType())
	}
	return chunk.NewDoubleValue(state._value)
}

// sum over DECIMAL
type SumDecimalState struct {
	_retTyp common.LType
	_isset  bool
	_value  common.Decimal
}

func (state *SumDecimalState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		return nil
	}
	if err := checkArg("sum", state._retTyp, val); err != nil {
		return err
	}
	res := val.Dec
	if state._isset {
		if err := res.Add(&state._value, &val.Dec); err != nil {
			return fmt.Errorf("%w: sum %v + %v: %v", ErrAggrOverflow, state._value.String(), val.Dec.String(), err)
		}
	}
	//the result must stay representable in the declared scale
	if _, err := res.Rescale(state._retTyp.Scale); err != nil {
		return fmt.Errorf("%w: sum %v: %v", ErrAggrOverflow, res.String(), err)
	}
	state._value = res
	state._isset = true
	return nil
}

func (state *SumDecimalState) Output() *chunk.Value {
	if !state._isset {
		return chunk.NewNullValue(state._retTyp)
	}
	return decimalOutput(state._retTyp, state._value)
}

// outputAs retypes a kept input value to the declared argument type.
func outputAs(typ common.LType, val *chunk.Value) *chunk.Value {
	if typ.Id == common.LTID_DECIMAL {
		return decimalOutput(typ, val.Dec)
	}
	ret := val.Copy()
	ret.Typ = typ
	return ret
}

func decimalOutput(retTyp common.LType, d common.Decimal) *chunk.Value {
	ret, err := chunk.NewDecimalValue(retTyp, d)
	if err != nil {
		panic(err)
	}
	return ret
}

// min(x) and max(x)
type MinMaxState struct {
	_argTyp common.LType
	_isMax  bool
	_isset  bool
	_value  *chunk.Value
}

func (state *MinMaxState) name() string {
	if state._isMax {
		return "max"
	}
	return "min"
}

func (state *MinMaxState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		return nil
	}
	if err := checkArg(state.name(), state._argTyp, val); err != nil {
		return err
	}
	if !state._isset {
		state._value = val.Copy()
		state._isset = true
		return nil
	}
	c := chunk.CompareValue(val, state._value)
	if state._isMax && c > 0 || !state._isMax && c < 0 {
		state._value = val.Copy()
	}
	return nil
}

func (state *MinMaxState) Output() *chunk.Value {
	if !state._isset {
		return chunk.NewNullValue(state._argTyp)
	}
	return outputAs(state._argTyp, state._value)
}

// avg over INTEGER, BIGINT and DOUBLE
type AvgDoubleState struct {
	_argTyp common.LType
	_count  int64
	_sum    float64
}

func (state *AvgDoubleState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		return nil
	}
	if err := checkArg("avg", state._argTyp, val); err != nil {
		return err
	}
	if state._argTyp.Id == common.LTID_DOUBLE {
		state._sum += val.F64
	} else {
		state._sum += float64(val.I64)
	}
	state._count++
	return nil
}

func (state *AvgDoubleState) Output() *chunk.Value {
	if state._count == 0 {
		return chunk.NewNullValue(common.DoubleType())
	}
	return chunk.NewDoubleValue(state._sum / float64(state._count))
}

// avg over DECIMAL
type AvgDecimalState struct {
	_retTyp common.LType
	_count  int64
	_sum    common.Decimal
}

func (state *AvgDecimalState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		return nil
	}
	if err := checkArg("avg", state._retTyp, val); err != nil {
		return err
	}
	if state._count == 0 {
		state._sum = val.Dec
	} else {
		var res common.Decimal
		if err := res.Add(&state._sum, &val.Dec); err != nil {
			return fmt.Errorf("%w: avg %v + %v: %v", ErrAggrOverflow, state._sum.String(), val.Dec.String(), err)
		}
		state._sum = res
	}
	state._count++
	return nil
}

func (state *AvgDecimalState) Output() *chunk.Value {
	if state._count == 0 {
		return chunk.NewNullValue(state._retTyp)
	}
	var res common.Decimal
	cnt := common.DecimalFromInt64(state._count)
	if err := res.Div(&state._sum, &cnt); err != nil {
		panic(err)
	}
	return decimalOutput(state._retTyp, res)
}

// first(x) keeps the first non-null value.
type FirstState struct {
	_argTyp common.LType
	_isset  bool
	_value  *chunk.Value
}

func (state *FirstState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		return nil
	}
	if err := checkArg("first", state._argTyp, val); err != nil {
		return err
	}
	if !state._isset {
		state._value = val.Copy()
		state._isset = true
	}
	return nil
}

func (state *FirstState) Output() *chunk.Value {
	if !state._isset {
		return chunk.NewNullValue(state._argTyp)
	}
	return outputAs(state._argTyp, state._value)
}

// bool_and(x) and bool_or(x)
type BoolState struct {
	_isAnd bool
	_isset bool
	_value bool
}

func (state *BoolState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		return nil
	}
	name := "bool_or"
	if state._isAnd {
		name = "bool_and"
	}
	if err := checkArg(name, common.BooleanType(), val); err != nil {
		return err
	}
	if !state._isset {
		state._value = val.Bool
		state._isset = true
	} else if state._isAnd {
		state._value = state._value && val.Bool
	} else {
		state._value = state._value || val.Bool
	}
	return nil
}

func (state *BoolState) Output() *chunk.Value {
	if !state._isset {
		return chunk.NewNullValue(common.BooleanType())
	}
	return chunk.NewBooleanValue(state._value)
}

// approx_count_distinct(x) estimates the distinct non-null values
// with a hyperloglog sketch.
type ApproxCountDistinctState struct {
	_argTyp common.LType
	_sketch *hyperloglog.Sketch
	_buf    [8]byte
}

func (state *ApproxCountDistinctState) UpdateSingle(val *chunk.Value) error {
	if val.IsNull {
		return nil
	}
	if err := checkArg("approx_count_distinct", state._argTyp, val); err != nil {
		return err
	}
	if state._sketch == nil {
		state._sketch = hyperloglog.New()
	}
	//equal values share one hash, so the sketch sees them once
	binary.LittleEndian.PutUint64(state._buf[:], chunk.HashValue(val))
	state._sketch.Insert(state._buf[:])
	return nil
}

func (state *ApproxCountDistinctState) Output() *chunk.Value {
	if state._sketch == nil {
		return chunk.NewBigintValue(0)
	}
	est := state._sketch.Estimate()
	util.AssertFunc(est <= math.MaxInt64)
	return chunk.NewBigintValue(int64(est))
}
