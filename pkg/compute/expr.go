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

	"github.com/huandu/go-clone"
	"github.com/xlab/treeprint"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
)

type ET int

const (
	ET_Column ET = iota //column
	ET_Const            //constant
	ET_Func             //function
)

type ET_SubTyp int

const (
	ET_Invalid ET_SubTyp = iota
	//operator
	ET_Add
	ET_Sub
	ET_Mul
	ET_Div
	ET_Cast
)

func (et ET_SubTyp) String() string {
	switch et {
	case ET_Add:
		return "+"
	case ET_Sub:
		return "-"
	case ET_Mul:
		return "*"
	case ET_Div:
		return "/"
	case ET_Cast:
		return "cast"
	default:
		panic(fmt.Sprintf("usp %v", int(et)))
	}
}

func (et ET_SubTyp) isOperator() bool {
	switch et {
	case ET_Add, ET_Sub, ET_Mul, ET_Div:
		return true
	default:
		return false
	}
}

type Expr struct {
	Typ     ET
	SubTyp  ET_SubTyp
	DataTyp common.LType

	Children []*Expr

	ColRef     int // position in the input chunk
	ConstValue *chunk.Value
	Alias      string
}

func ColumnExpr(idx int, typ common.LType, alias string) *Expr {
	return &Expr{
		Typ:     ET_Column,
		DataTyp: typ,
		ColRef:  idx,
		Alias:   alias,
	}
}

func ConstExpr(val *chunk.Value) *Expr {
	return &Expr{
		Typ:        ET_Const,
		DataTyp:    val.Typ,
		ConstValue: val,
	}
}

func FuncExpr(subTyp ET_SubTyp, retTyp common.LType, children ...*Expr) *Expr {
	return &Expr{
		Typ:      ET_Func,
		SubTyp:   subTyp,
		DataTyp:  retTyp,
		Children: children,
	}
}

func CastExpr(child *Expr, typ common.LType) *Expr {
	return FuncExpr(ET_Cast, typ, child)
}

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	switch e.Typ {
	case ET_Column:
		if len(e.Alias) != 0 {
			return e.Alias
		}
		return fmt.Sprintf("#%d", e.ColRef)
	case ET_Const:
		if e.DataTyp.Id == common.LTID_VARCHAR && !e.ConstValue.IsNull {
			return fmt.Sprintf("'%s'", e.ConstValue.Str)
		}
		return e.ConstValue.String()
	case ET_Func:
		if e.SubTyp.isOperator() {
			return fmt.Sprintf("(%v %v %v)", e.Children[0], e.SubTyp, e.Children[1])
		}
		args := make([]string, 0, len(e.Children))
		for _, child := range e.Children {
			args = append(args, child.String())
		}
		if e.SubTyp == ET_Cast {
			return fmt.Sprintf("cast(%s as %v)", strings.Join(args, ", "), e.DataTyp)
		}
		return fmt.Sprintf("%v(%s)", e.SubTyp, strings.Join(args, ", "))
	default:
		panic(fmt.Sprintf("usp expr type %d", e.Typ))
	}
}

func appendMeta(meta, s string) string {
	return fmt.Sprintf("%s %s", meta, s)
}

func (e *Expr) Print(tree treeprint.Tree, meta string) {
	if e == nil {
		return
	}
	head := appendMeta(meta, e.DataTyp.String())
	switch e.Typ {
	case ET_Column:
		tree.AddMetaNode(head, fmt.Sprintf("(%s,%d)", e.Alias, e.ColRef))
	case ET_Const:
		tree.AddMetaNode(head, fmt.Sprintf("(%v)", e.ConstValue))
	case ET_Func:
		branch := tree.AddMetaBranch(head, e.SubTyp.String())
		for _, child := range e.Children {
			child.Print(branch, "")
		}
	default:
		panic(fmt.Sprintf("usp expr type %d", e.Typ))
	}
}

func copyExpr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	return clone.Clone(e).(*Expr)
}

func copyExprs(exprs ...*Expr) []*Expr {
	ret := make([]*Expr, 0, len(exprs))
	for _, e := range exprs {
		ret = append(ret, copyExpr(e))
	}
	return ret
}
