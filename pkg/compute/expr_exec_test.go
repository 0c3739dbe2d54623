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
	"github.com/xlab/treeprint"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
)

func vecStrings(vec *chunk.Vector, count int) []string {
	ret := make([]string, count)
	for i := 0; i < count; i++ {
		ret[i] = vec.GetValue(i).String()
	}
	return ret
}

func TestExecuteArithmetic(t *testing.T) {
	null := chunk.NewNullValue(common.IntegerType())
	data := mustChunk(t, kvTypes, kvRow(1, 10), []*chunk.Value{null, chunk.NewIntegerValue(3)}, kvRow(7, -2))
	two := ConstExpr(chunk.NewIntegerValue(2))
	cases := []struct {
		expr     *Expr
		expected []string
	}{
		{FuncExpr(ET_Add, common.IntegerType(), kvColumn(0), kvColumn(1)), []string{"11", "NULL", "5"}},
		{FuncExpr(ET_Sub, common.IntegerType(), kvColumn(0), kvColumn(1)), []string{"-9", "NULL", "9"}},
		{FuncExpr(ET_Mul, common.IntegerType(), kvColumn(1), two), []string{"20", "6", "-4"}},
		{FuncExpr(ET_Div, common.IntegerType(), kvColumn(1), two), []string{"5", "1", "-1"}},
	}
	for _, c := range cases {
		exec := NewExprExec(c.expr)
		vec, err := exec.ExecuteExpr(data, 0)
		require.NoError(t, err, c.expr.String())
		assert.Equal(t, c.expected, vecStrings(vec, data.Card()), c.expr.String())
	}
}

func TestExecuteArithmeticErrors(t *testing.T) {
	data := mustChunk(t, kvTypes, kvRow(math.MaxInt32, 0))
	_, err := NewExprExec(FuncExpr(ET_Add, common.IntegerType(), kvColumn(0), ConstExpr(chunk.NewIntegerValue(1)))).
		ExecuteExpr(data, 0)
	assert.ErrorIs(t, err, ErrIntegerOverflow)

	_, err = NewExprExec(FuncExpr(ET_Div, common.IntegerType(), kvColumn(0), kvColumn(1))).ExecuteExpr(data, 0)
	assert.ErrorIs(t, err, ErrDivideByZero)

	_, err = NewExprExec(FuncExpr(ET_Add, common.BigintType(), kvColumn(0), kvColumn(1))).ExecuteExpr(data, 0)
	assert.Error(t, err)

	_, err = NewExprExec(ColumnExpr(2, common.IntegerType(), "x")).ExecuteExpr(data, 0)
	assert.ErrorIs(t, err, ErrColumnOutOfRange)
}

func TestExecuteDecimal(t *testing.T) {
	dec := common.DecimalType(10, 2)
	types := []common.LType{dec, dec}
	data := mustChunk(t, types,
		[]*chunk.Value{decVal(t, dec, "1.25"), decVal(t, dec, "2.5")},
		[]*chunk.Value{decVal(t, dec, "3"), decVal(t, dec, "0")},
	)
	left := ColumnExpr(0, dec, "a")
	right := ColumnExpr(1, dec, "b")
	vec, err := NewExprExec(FuncExpr(ET_Add, dec, left, right)).ExecuteExpr(data, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"3.75", "3.00"}, vecStrings(vec, 2))

	_, err = NewExprExec(FuncExpr(ET_Div, dec, left, right)).ExecuteExpr(data, 0)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestExecuteCast(t *testing.T) {
	types := []common.LType{common.VarcharType()}
	data := mustChunk(t, types,
		[]*chunk.Value{chunk.NewVarcharValue(" 12 ")},
		[]*chunk.Value{chunk.NewNullValue(common.VarcharType())},
	)
	vec, err := NewExprExec(CastExpr(ColumnExpr(0, types[0], "s"), common.BigintType())).ExecuteExpr(data, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"12", "NULL"}, vecStrings(vec, 2))

	bad := mustChunk(t, types, []*chunk.Value{chunk.NewVarcharValue("x1")})
	_, err = NewExprExec(CastExpr(ColumnExpr(0, types[0], "s"), common.IntegerType())).ExecuteExpr(bad, 0)
	assert.ErrorIs(t, err, ErrInvalidCast)

	vec, err = NewExprExec(CastExpr(ConstExpr(chunk.NewIntegerValue(3)), common.DoubleType())).ExecuteExpr(data, 0)
	require.NoError(t, err)
	assert.True(t, vec.PhyFormat().IsConst())
	assert.Equal(t, []string{"3", "3"}, vecStrings(vec, 2))
}

func TestCastValue(t *testing.T) {
	dec := common.DecimalType(10, 2)
	cases := []struct {
		val      *chunk.Value
		to       common.LType
		expected string
	}{
		{chunk.NewIntegerValue(5), common.DoubleType(), "5"},
		{chunk.NewBigintValue(7), dec, "7.00"},
		{chunk.NewDoubleValue(2.5), common.BigintType(), "3"},
		{chunk.NewDoubleValue(1.005), dec, "1.00"},
		{decVal(t, dec, "2.49"), common.IntegerType(), "2"},
		{decVal(t, dec, "2.5"), common.DoubleType(), "2.5"},
		{chunk.NewVarcharValue("1998-12-01"), common.DateType(), "1998-12-01"},
		{chunk.NewVarcharValue("true"), common.BooleanType(), "true"},
		{chunk.NewBooleanValue(true), common.IntegerType(), "1"},
		{chunk.NewIntegerValue(42), common.VarcharType(), "42"},
		{chunk.NewNullValue(common.IntegerType()), common.VarcharType(), "NULL"},
	}
	for _, c := range cases {
		got, err := CastValue(c.val, c.to)
		require.NoError(t, err, "%v to %v", c.val, c.to)
		assert.Equal(t, c.expected, got.String(), "%v to %v", c.val, c.to)
	}

	for _, bad := range []struct {
		val *chunk.Value
		to  common.LType
	}{
		{chunk.NewBigintValue(math.MaxInt64), common.IntegerType()},
		{chunk.NewDoubleValue(math.NaN()), common.BigintType()},
		{chunk.NewIntegerValue(-1), common.UbigintType()},
		{chunk.NewVarcharValue("abc"), common.DoubleType()},
		{chunk.NewDateValue(common.Date{Year: 2000, Month: 1, Day: 1}), common.IntegerType()},
	} {
		_, err := CastValue(bad.val, bad.to)
		assert.ErrorIs(t, err, ErrInvalidCast, "%v to %v", bad.val, bad.to)
	}
}

func TestExecuteExprs(t *testing.T) {
	data := mustChunk(t, kvTypes, kvRow(1, 10), kvRow(2, 20))
	exec := NewExprExec(kvColumn(1), nil, ConstExpr(chunk.NewVarcharValue("c")))
	assert.Equal(t, 2, exec.Count())

	result := &chunk.Chunk{}
	result.Init([]common.LType{common.IntegerType(), common.VarcharType()}, 2)
	require.NoError(t, exec.ExecuteExprs(data, result))
	assert.Equal(t, 2, result.Card())
	assert.Equal(t, []string{"10", "20"}, vecStrings(result.Data[0], 2))
	assert.Equal(t, []string{"c", "c"}, vecStrings(result.Data[1], 2))

	assert.Error(t, exec.ExecuteExprs(data, &chunk.Chunk{}))
}

func TestExprPrintAndCopy(t *testing.T) {
	expr := FuncExpr(ET_Mul, common.IntegerType(), kvColumn(1), ConstExpr(chunk.NewIntegerValue(2)))
	tree := treeprint.New()
	expr.Print(tree, "arg")
	out := tree.String()
	assert.Contains(t, out, "*")
	assert.Contains(t, out, "(v,1)")

	cp := copyExpr(expr)
	cp.Children[0].ColRef = 0
	assert.Equal(t, 1, expr.Children[0].ColRef)
	assert.Equal(t, expr.String(), copyExprs(expr)[0].String())
	assert.Nil(t, copyExpr(nil))
}
