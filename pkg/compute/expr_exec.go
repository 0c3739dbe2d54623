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

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/util"
)

// ExprExec evaluates a fixed list of expressions over input chunks.
type ExprExec struct {
	_exprs []*Expr
}

func NewExprExec(es ...*Expr) *ExprExec {
	exec := &ExprExec{}
	for _, e := range es {
		if e == nil {
			continue
		}
		exec._exprs = append(exec._exprs, e)
	}
	return exec
}

func (exec *ExprExec) Count() int {
	return len(exec._exprs)
}

// ExecuteExprs evaluates every expression into the columns of result.
func (exec *ExprExec) ExecuteExprs(data *chunk.Chunk, result *chunk.Chunk) error {
	if result.ColumnCount() < len(exec._exprs) {
		return fmt.Errorf("result chunk has %d columns, need %d", result.ColumnCount(), len(exec._exprs))
	}
	for i := 0; i < len(exec._exprs); i++ {
		vec, err := exec.ExecuteExpr(data, i)
		if err != nil {
			return err
		}
		result.Data[i].Reference(vec)
	}
	result.SetCap(max(result.Cap(), data.Card()))
	result.SetCard(data.Card())
	return nil
}

// ExecuteExpr evaluates the i-th expression over data into a column
// of data.Card() rows.
func (exec *ExprExec) ExecuteExpr(data *chunk.Chunk, i int) (res *chunk.Vector, err error) {
	defer func() {
		if e := recover(); e != nil {
			res = nil
			err = util.ConvertPanicError(e)
		}
	}()
	return exec.execute(exec._exprs[i], data, data.Card())
}

func (exec *ExprExec) execute(expr *Expr, data *chunk.Chunk, count int) (*chunk.Vector, error) {
	switch expr.Typ {
	case ET_Column:
		return exec.executeColumnRef(expr, data)
	case ET_Const:
		return chunk.NewConstVector(expr.ConstValue, expr.DataTyp), nil
	case ET_Func:
		return exec.executeFunc(expr, data, count)
	default:
		panic(fmt.Sprintf("usp expr type %d", expr.Typ))
	}
}

func (exec *ExprExec) executeColumnRef(expr *Expr, data *chunk.Chunk) (*chunk.Vector, error) {
	if expr.ColRef < 0 || expr.ColRef >= data.ColumnCount() {
		return nil, fmt.Errorf("%w: %d of %d columns", ErrColumnOutOfRange, expr.ColRef, data.ColumnCount())
	}
	vec := data.Data[expr.ColRef]
	if !vec.Typ().Equal(expr.DataTyp) {
		return nil, fmt.Errorf("column %d has type %v, expression expects %v",
			expr.ColRef, vec.Typ(), expr.DataTyp)
	}
	return vec, nil
}

func (exec *ExprExec) executeFunc(expr *Expr, data *chunk.Chunk, count int) (*chunk.Vector, error) {
	children := make([]*chunk.Vector, 0, len(expr.Children))
	for _, child := range expr.Children {
		vec, err := exec.execute(child, data, count)
		if err != nil {
			return nil, err
		}
		children = append(children, vec)
	}
	switch expr.SubTyp {
	case ET_Cast:
		if len(children) != 1 {
			return nil, fmt.Errorf("cast takes one argument, got %d", len(children))
		}
		return castVector(children[0], expr.DataTyp, count)
	case ET_Add, ET_Sub, ET_Mul, ET_Div:
		if len(children) != 2 {
			return nil, fmt.Errorf("operator %v takes two arguments, got %d", expr.SubTyp, len(children))
		}
		for _, child := range expr.Children {
			if child.DataTyp.GetInternalType() != expr.DataTyp.GetInternalType() {
				return nil, fmt.Errorf("operand %v of type %v does not match %v",
					child, child.DataTyp, expr.DataTyp)
			}
		}
		fun, err := GetArithmeticFunction(expr.SubTyp, expr.DataTyp)
		if err != nil {
			return nil, err
		}
		return fun(children[0], children[1], count)
	default:
		panic(fmt.Sprintf("usp function %v", expr.SubTyp))
	}
}
