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
	"sort"
	"strings"

	"github.com/daviszhen/hashagg/pkg/common"
)

const (
	FuncCount               = "count"
	FuncCountStar           = "count_star"
	FuncSum                 = "sum"
	FuncMin                 = "min"
	FuncMax                 = "max"
	FuncAvg                 = "avg"
	FuncFirst               = "first"
	FuncBoolAnd             = "bool_and"
	FuncBoolOr              = "bool_or"
	FuncApproxCountDistinct = "approx_count_distinct"
)

// AggrFunction is an aggregate function bound to one argument type.
type AggrFunction struct {
	Name     string
	ArgType  common.LType
	RetType  common.LType
	NewState func() AggrState
}

type aggrBinder func(name string, argTyp common.LType) (*AggrFunction, error)

var aggrFunctions = map[string]aggrBinder{
	FuncCount:               bindCount,
	FuncCountStar:           bindCount,
	FuncSum:                 bindSum,
	FuncMin:                 bindMinMax,
	FuncMax:                 bindMinMax,
	FuncAvg:                 bindAvg,
	FuncFirst:               bindFirst,
	FuncBoolAnd:             bindBool,
	FuncBoolOr:              bindBool,
	FuncApproxCountDistinct: bindApproxCountDistinct,
}

// AggrFunctionNames lists the registered aggregate functions.
func AggrFunctionNames() []string {
	ret := make([]string, 0, len(aggrFunctions))
	for name := range aggrFunctions {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// GetAggrFunction resolves the aggregate function name on argument type argTyp.
func GetAggrFunction(name string, argTyp common.LType) (*AggrFunction, error) {
	lname := strings.ToLower(name)
	binder, has := aggrFunctions[lname]
	if !has {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAggr, name)
	}
	return binder(lname, argTyp)
}

func unsupportedArg(name string, argTyp common.LType) error {
	return fmt.Errorf("%w: %s does not accept %v", ErrAggrTypeMismatch, name, argTyp)
}

func bindCount(name string, argTyp common.LType) (*AggrFunction, error) {
	star := name == FuncCountStar
	return &AggrFunction{
		Name:    name,
		ArgType: argTyp,
		RetType: common.BigintType(),
		NewState: func() AggrState {
			return &CountState{_argTyp: argTyp, _star: star}
		},
	}, nil
}

func sumDecimalType(argTyp common.LType) common.LType {
	return common.DecimalType(common.MaxDecimalWidth, argTyp.Scale)
}

func bindSum(name string, argTyp common.LType) (*AggrFunction, error) {
	ret := &AggrFunction{
		Name:    name,
		ArgType: argTyp,
	}
	switch argTyp.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT:
		ret.RetType = common.BigintType()
		ret.NewState = func() AggrState {
			return &SumIntState{_argTyp: argTyp}
		}
	case common.LTID_DOUBLE:
		ret.RetType = common.DoubleType()
		ret.NewState = func() AggrState {
			return &SumDoubleState{}
		}
	case common.LTID_DECIMAL:
		retTyp := sumDecimalType(argTyp)
		ret.RetType = retTyp
		ret.NewState = func() AggrState {
			return &SumDecimalState{_retTyp: retTyp}
		}
	default:
		return nil, unsupportedArg(name, argTyp)
	}
	return ret, nil
}

func bindMinMax(name string, argTyp common.LType) (*AggrFunction, error) {
	switch argTyp.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT, common.LTID_UBIGINT,
		common.LTID_DOUBLE, common.LTID_DECIMAL, common.LTID_DATE,
		common.LTID_VARCHAR, common.LTID_BOOLEAN:
	default:
		return nil, unsupportedArg(name, argTyp)
	}
	isMax := name == FuncMax
	return &AggrFunction{
		Name:    name,
		ArgType: argTyp,
		RetType: argTyp,
		NewState: func() AggrState {
			return &MinMaxState{_argTyp: argTyp, _isMax: isMax}
		},
	}, nil
}

func bindAvg(name string, argTyp common.LType) (*AggrFunction, error) {
	ret := &AggrFunction{
		Name:    name,
		ArgType: argTyp,
	}
	switch argTyp.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT, common.LTID_DOUBLE:
		ret.RetType = common.DoubleType()
		ret.NewState = func() AggrState {
			return &AvgDoubleState{_argTyp: argTyp}
		}
	case common.LTID_DECIMAL:
		retTyp := sumDecimalType(argTyp)
		ret.RetType = retTyp
		ret.NewState = func() AggrState {
			return &AvgDecimalState{_retTyp: retTyp}
		}
	default:
		return nil, unsupportedArg(name, argTyp)
	}
	return ret, nil
}

func bindFirst(name string, argTyp common.LType) (*AggrFunction, error) {
	if argTyp.Id == common.LTID_NULL {
		return nil, unsupportedArg(name, argTyp)
	}
	return &AggrFunction{
		Name:    name,
		ArgType: argTyp,
		RetType: argTyp,
		NewState: func() AggrState {
			return &FirstState{_argTyp: argTyp}
		},
	}, nil
}

func bindBool(name string, argTyp common.LType) (*AggrFunction, error) {
	if argTyp.Id != common.LTID_BOOLEAN {
		return nil, unsupportedArg(name, argTyp)
	}
	isAnd := name == FuncBoolAnd
	return &AggrFunction{
		Name:    name,
		ArgType: argTyp,
		RetType: common.BooleanType(),
		NewState: func() AggrState {
			return &BoolState{_isAnd: isAnd}
		},
	}, nil
}

func bindApproxCountDistinct(name string, argTyp common.LType) (*AggrFunction, error) {
	if argTyp.Id == common.LTID_NULL {
		return nil, unsupportedArg(name, argTyp)
	}
	return &AggrFunction{
		Name:    name,
		ArgType: argTyp,
		RetType: common.BigintType(),
		NewState: func() AggrState {
			return &ApproxCountDistinctState{_argTyp: argTyp}
		},
	}, nil
}
