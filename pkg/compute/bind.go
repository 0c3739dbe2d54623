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
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v5"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/parser"
)

// Column names one input column and its declared type.
type Column struct {
	Name string
	Typ  common.LType
}

func columnTypes(columns []Column) []common.LType {
	ret := make([]common.LType, len(columns))
	for i, col := range columns {
		ret[i] = col.Typ
	}
	return ret
}

// ParseColumns parses "k:int,v:decimal(10,2)".
func ParseColumns(s string) ([]Column, error) {
	parts := splitTopLevel(s)
	ret := make([]Column, 0, len(parts))
	for _, part := range parts {
		name, typName, ok := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid column %q, want name:type", part)
		}
		typ, err := common.ParseLType(typName)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		if indexOfColumn(ret, name) >= 0 {
			return nil, fmt.Errorf("duplicate column %s", name)
		}
		ret = append(ret, Column{Name: name, Typ: typ})
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("no columns in %q", s)
	}
	return ret, nil
}

func indexOfColumn(columns []Column, name string) int {
	for i, col := range columns {
		if strings.EqualFold(col.Name, name) {
			return i
		}
	}
	return -1
}

func bindColumn(columns []Column, name string) (*Expr, error) {
	idx := indexOfColumn(columns, name)
	if idx < 0 {
		return nil, fmt.Errorf("no such column %s", name)
	}
	return ColumnExpr(idx, columns[idx].Typ, columns[idx].Name), nil
}

// BindGroupBy binds group by expression lists like "k" or "k, s"
// against columns.
func BindGroupBy(columns []Column, lists []string) ([]*Expr, error) {
	b := &binder{columns: columns}
	ret := make([]*Expr, 0, len(lists))
	for _, list := range lists {
		if strings.TrimSpace(list) == "" {
			continue
		}
		targets, err := parser.ParseTargetList(list)
		if err != nil {
			return nil, fmt.Errorf("group by: %w", err)
		}
		for _, target := range targets {
			expr, err := b.bindExpr(target.GetVal())
			if err != nil {
				return nil, fmt.Errorf("group by: %w", err)
			}
			ret = append(ret, expr)
		}
	}
	return ret, nil
}

// BindAggregates binds aggregate lists like "sum(v), count(*)" or
// "avg(v::double precision)" against columns.
func BindAggregates(columns []Column, lists []string) ([]*AggrCall, error) {
	b := &binder{columns: columns}
	ret := make([]*AggrCall, 0, len(lists))
	for _, list := range lists {
		if strings.TrimSpace(list) == "" {
			continue
		}
		targets, err := parser.ParseTargetList(list)
		if err != nil {
			return nil, err
		}
		for _, target := range targets {
			fc := target.GetVal().GetFuncCall()
			if fc == nil {
				return nil, fmt.Errorf("%s is not an aggregate call", deparseNode(target.GetVal()))
			}
			aggr, err := b.bindAggrCall(fc)
			if err != nil {
				return nil, err
			}
			ret = append(ret, aggr)
		}
	}
	return ret, nil
}

// binder turns parsed expressions into Expr over the input columns.
type binder struct {
	columns []Column
}

func getFuncName(expr *pg_query.FuncCall) string {
	for _, node := range expr.GetFuncname() {
		sval := node.GetString_().GetSval()
		if sval == "pg_catalog" {
			continue
		}
		return strings.ToLower(sval)
	}
	return ""
}

func (b *binder) bindAggrCall(expr *pg_query.FuncCall) (*AggrCall, error) {
	name := getFuncName(expr)
	if expr.GetAggDistinct() || expr.GetAggFilter() != nil ||
		expr.GetOver() != nil || len(expr.GetAggOrder()) != 0 ||
		expr.GetAggWithinGroup() || expr.GetFuncVariadic() {
		return nil, fmt.Errorf("usp aggregate modifier in %s", name)
	}
	if expr.GetAggStar() {
		if name != FuncCount && name != FuncCountStar {
			return nil, fmt.Errorf("invalid aggregate %s(*), only count takes *", name)
		}
		return CountStar(), nil
	}
	if name == FuncCountStar && len(expr.GetArgs()) == 0 {
		return CountStar(), nil
	}
	if len(expr.GetArgs()) != 1 {
		return nil, fmt.Errorf("%w: %s has %d arguments", ErrMultiArgAggr, name, len(expr.GetArgs()))
	}
	arg, err := b.bindExpr(expr.GetArgs()[0])
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", name, err)
	}
	return NewAggrCall(name, arg)
}

func (b *binder) bindExpr(expr *pg_query.Node) (*Expr, error) {
	switch realExpr := expr.GetNode().(type) {
	case *pg_query.Node_ColumnRef:
		return b.bindColumnRef(realExpr.ColumnRef)
	case *pg_query.Node_AConst:
		return b.bindAConst(realExpr.AConst)
	case *pg_query.Node_TypeCast:
		return b.bindTypeCast(realExpr.TypeCast)
	case *pg_query.Node_AExpr:
		return b.bindAExpr(realExpr.AExpr)
	case *pg_query.Node_FuncCall:
		return nil, fmt.Errorf("function %s is not allowed in an expression", getFuncName(realExpr.FuncCall))
	default:
		return nil, fmt.Errorf("usp expression %s", deparseNode(expr))
	}
}

func (b *binder) bindColumnRef(expr *pg_query.ColumnRef) (*Expr, error) {
	fields := expr.GetFields()
	if len(fields) != 1 || fields[0].GetString_() == nil {
		return nil, fmt.Errorf("usp column reference %s", deparseNode(&pg_query.Node{Node: &pg_query.Node_ColumnRef{ColumnRef: expr}}))
	}
	return bindColumn(b.columns, fields[0].GetString_().GetSval())
}

func (b *binder) bindAConst(expr *pg_query.A_Const) (*Expr, error) {
	if expr.GetIsnull() {
		return nil, fmt.Errorf("untyped NULL, use cast(NULL as type)")
	}
	switch realExpr := expr.GetVal().(type) {
	case *pg_query.A_Const_Ival:
		return ConstExpr(chunk.NewIntegerValue(realExpr.Ival.GetIval())), nil
	case *pg_query.A_Const_Fval:
		//integers beyond int32 come as Fval too
		fval := realExpr.Fval.GetFval()
		if i, err := strconv.ParseInt(fval, 10, 64); err == nil {
			return ConstExpr(chunk.NewBigintValue(i)), nil
		}
		f, err := strconv.ParseFloat(fval, 64)
		if err != nil {
			return nil, err
		}
		return ConstExpr(chunk.NewDoubleValue(f)), nil
	case *pg_query.A_Const_Sval:
		return ConstExpr(chunk.NewVarcharValue(realExpr.Sval.GetSval())), nil
	case *pg_query.A_Const_Boolval:
		return ConstExpr(chunk.NewBooleanValue(realExpr.Boolval.GetBoolval())), nil
	default:
		return nil, fmt.Errorf("usp constant %v", expr)
	}
}

func (b *binder) bindTypeCast(expr *pg_query.TypeCast) (*Expr, error) {
	resultTyp, err := bindTypeName(expr.GetTypeName())
	if err != nil {
		return nil, err
	}
	if aconst := expr.GetArg().GetAConst(); aconst != nil && aconst.GetIsnull() {
		return ConstExpr(chunk.NewNullValue(resultTyp)), nil
	}
	child, err := b.bindExpr(expr.GetArg())
	if err != nil {
		return nil, err
	}
	return addCastToType(child, resultTyp)
}

// bindTypeName maps the parser's type names, like int4 or numeric(10,2),
// to LType.
func bindTypeName(typName *pg_query.TypeName) (common.LType, error) {
	name := ""
	for _, node := range typName.GetNames() {
		if node.GetString_().GetSval() == "pg_catalog" {
			continue
		}
		name = strings.ToLower(node.GetString_().GetSval())
	}
	mods := make([]int, 0, len(typName.GetTypmods()))
	for _, node := range typName.GetTypmods() {
		ival := node.GetAConst().GetIval()
		if ival == nil {
			return common.LType{}, fmt.Errorf("usp modifier of type %s", name)
		}
		mods = append(mods, int(ival.GetIval()))
	}
	switch name {
	case "int2", "int4":
		name = "integer"
	case "int8":
		name = "bigint"
	case "float4", "float8":
		name = "double"
	case "bpchar", "text":
		name = "varchar"
	case "numeric", "decimal":
		switch len(mods) {
		case 0:
			name = "decimal"
		case 1:
			name = fmt.Sprintf("decimal(%d,0)", mods[0])
		case 2:
			name = fmt.Sprintf("decimal(%d,%d)", mods[0], mods[1])
		default:
			return common.LType{}, fmt.Errorf("too many modifiers of type %s", name)
		}
		mods = nil
	}
	if len(mods) != 0 && name != "varchar" {
		return common.LType{}, fmt.Errorf("usp modifier of type %s", name)
	}
	return common.ParseLType(name)
}

func (b *binder) bindAExpr(expr *pg_query.A_Expr) (*Expr, error) {
	if expr.GetKind() != pg_query.A_Expr_Kind_AEXPR_OP || len(expr.GetName()) != 1 {
		return nil, fmt.Errorf("usp expression kind %v", expr.GetKind())
	}
	opName := expr.GetName()[0].GetString_().GetSval()
	var subTyp ET_SubTyp
	switch opName {
	case "+":
		subTyp = ET_Add
	case "-":
		subTyp = ET_Sub
	case "*":
		subTyp = ET_Mul
	case "/":
		subTyp = ET_Div
	default:
		return nil, fmt.Errorf("usp operator '%s'", opName)
	}

	right, err := b.bindExpr(expr.GetRexpr())
	if err != nil {
		return nil, err
	}
	var left *Expr
	if expr.GetLexpr() == nil {
		//prefix + and -
		switch subTyp {
		case ET_Add:
			return right, nil
		case ET_Sub:
			left = ConstExpr(chunk.NewIntegerValue(0))
		default:
			return nil, fmt.Errorf("usp prefix operator '%s'", opName)
		}
	} else {
		left, err = b.bindExpr(expr.GetLexpr())
		if err != nil {
			return nil, err
		}
	}

	resultTyp, err := decideResultType(left.DataTyp, right.DataTyp)
	if err != nil {
		return nil, fmt.Errorf("operator '%s': %w", opName, err)
	}
	left, err = addCastToType(left, resultTyp)
	if err != nil {
		return nil, err
	}
	right, err = addCastToType(right, resultTyp)
	if err != nil {
		return nil, err
	}
	return FuncExpr(subTyp, resultTyp, left, right), nil
}

// decimalSize is the width and scale an operand takes in decimal
// arithmetic.
func decimalSize(typ common.LType) (int, int) {
	switch typ.Id {
	case common.LTID_DECIMAL:
		return typ.Width, typ.Scale
	case common.LTID_INTEGER:
		return 10, 0
	default:
		return 19, 0
	}
}

func decideResultType(left, right common.LType) (common.LType, error) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return common.LType{}, fmt.Errorf("no arithmetic on %v and %v", left, right)
	}
	switch {
	case left.Id == common.LTID_DOUBLE || right.Id == common.LTID_DOUBLE:
		return common.DoubleType(), nil
	case left.Id == common.LTID_DECIMAL || right.Id == common.LTID_DECIMAL:
		maxScale, maxWidthOverScale := 0, 0
		for _, typ := range []common.LType{left, right} {
			width, scale := decimalSize(typ)
			maxScale = max(maxScale, scale)
			maxWidthOverScale = max(maxWidthOverScale, width-scale)
		}
		width := min(maxScale+maxWidthOverScale, common.MaxDecimalWidth)
		return common.DecimalType(width, maxScale), nil
	case left.Id == right.Id:
		return left, nil
	default:
		return common.BigintType(), nil
	}
}

// addCastToType casts expr to typ. Constants are cast at bind time.
func addCastToType(expr *Expr, typ common.LType) (*Expr, error) {
	if expr.DataTyp.Equal(typ) {
		return expr, nil
	}
	if expr.Typ == ET_Const {
		val, err := CastValue(expr.ConstValue, typ)
		if err != nil {
			return nil, err
		}
		return ConstExpr(val), nil
	}
	return CastExpr(expr, typ), nil
}

func deparseNode(node *pg_query.Node) string {
	stmt := &pg_query.ParseResult{Stmts: []*pg_query.RawStmt{{
		Stmt: &pg_query.Node{Node: &pg_query.Node_SelectStmt{SelectStmt: &pg_query.SelectStmt{
			TargetList: []*pg_query.Node{{Node: &pg_query.Node_ResTarget{ResTarget: &pg_query.ResTarget{Val: node}}}},
			Op:         pg_query.SetOperation_SETOP_NONE,
		}}},
	}}}
	sql, err := pg_query.Deparse(stmt)
	if err != nil {
		return fmt.Sprintf("%T", node.GetNode())
	}
	return strings.TrimPrefix(sql, "SELECT ")
}

func splitTopLevel(s string) []string {
	ret := make([]string, 0)
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				ret = appendTrimmed(ret, s[start:i])
				start = i + 1
			}
		}
	}
	return appendTrimmed(ret, s[start:])
}

func appendTrimmed(list []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return list
	}
	return append(list, s)
}
