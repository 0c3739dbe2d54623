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
	"strings"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
)

// AggrCall is one aggregate in the select list: the function, its
// argument expression and the declared result type.
type AggrCall struct {
	Name    string
	Args    []*Expr
	RetType common.LType
	Func    *AggrFunction
}

// NewAggrCall binds the aggregate function name to its arguments.
func NewAggrCall(name string, args ...*Expr) (*AggrCall, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s has %d arguments", ErrMultiArgAggr, name, len(args))
	}
	fun, err := GetAggrFunction(name, args[0].DataTyp)
	if err != nil {
		return nil, err
	}
	return &AggrCall{
		Name:    fun.Name,
		Args:    args,
		RetType: fun.RetType,
		Func:    fun,
	}, nil
}

// CountStar is count(*): every row of the input is counted.
func CountStar() *AggrCall {
	call, err := NewAggrCall(FuncCountStar, ConstExpr(chunk.NewBooleanValue(true)))
	if err != nil {
		panic(err)
	}
	return call
}

func (call *AggrCall) validate() error {
	if len(call.Args) != 1 {
		return fmt.Errorf("%w: %s has %d arguments", ErrMultiArgAggr, call.Name, len(call.Args))
	}
	if call.Func == nil {
		fun, err := GetAggrFunction(call.Name, call.Args[0].DataTyp)
		if err != nil {
			return err
		}
		call.Func = fun
	}
	if call.RetType.Id == common.LTID_INVALID {
		call.RetType = call.Func.RetType
	}
	if !call.Func.RetType.Equal(call.RetType) {
		return fmt.Errorf("%s declares %v, function returns %v", call.Name, call.RetType, call.Func.RetType)
	}
	return nil
}

func (call *AggrCall) NewState() AggrState {
	return call.Func.NewState()
}

func (call *AggrCall) String() string {
	if call.Name == FuncCountStar {
		return "count(*)"
	}
	args := make([]string, 0, len(call.Args))
	for _, arg := range call.Args {
		args = append(args, arg.String())
	}
	return fmt.Sprintf("%s(%s)", call.Name, strings.Join(args, ", "))
}
