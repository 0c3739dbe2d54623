package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLType(t *testing.T) {
	cases := []struct {
		name string
		want LType
	}{
		{"int", IntegerType()},
		{"INTEGER", IntegerType()},
		{"bigint", BigintType()},
		{" double ", DoubleType()},
		{"varchar", VarcharType()},
		{"date", DateType()},
		{"bool", BooleanType()},
		{"decimal(10,2)", DecimalType(10, 2)},
		{"decimal( 38 , 4 )", DecimalType(38, 4)},
	}
	for _, c := range cases {
		got, err := ParseLType(c.name)
		require.NoError(t, err, c.name)
		assert.True(t, c.want.Equal(got), c.name)
		assert.Equal(t, c.want.PTyp, got.PTyp, c.name)
	}

	for _, bad := range []string{"", "float", "decimal(1)", "decimal(a,2)", "decimal(2,3)", "decimal(40,1)"} {
		_, err := ParseLType(bad)
		assert.Error(t, err, bad)
	}
}

func TestLTypeEqual(t *testing.T) {
	assert.True(t, DecimalType(10, 2).Equal(DecimalType(10, 2)))
	assert.False(t, DecimalType(10, 2).Equal(DecimalType(10, 3)))
	assert.False(t, IntegerType().Equal(BigintType()))
	assert.Equal(t, "DECIMAL(38,2)", DecimalType(38, 2).String())
	assert.True(t, DoubleType().IsNumeric())
	assert.False(t, DoubleType().IsIntegral())
	assert.True(t, BigintType().IsIntegral())
	assert.Equal(t, INT32, Null().PTyp)
}

func TestDecimal(t *testing.T) {
	a := MustDecimal("1.50")
	b := MustDecimal("1.5")
	assert.True(t, a.Equal(&b))
	na := a.Normalize()
	nb := b.Normalize()
	assert.Equal(t, na.String(), nb.String())

	var sum Decimal
	require.NoError(t, sum.Add(&a, &b))
	assert.Equal(t, "3.00", sum.String())

	r, err := b.Rescale(3)
	require.NoError(t, err)
	assert.Equal(t, "1.500", r.String())

	var q Decimal
	three := DecimalFromInt64(3)
	require.NoError(t, q.Div(&sum, &three))
	one := DecimalFromInt64(1)
	assert.True(t, q.Equal(&one))
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())
	e := Date{Year: 2024, Month: 3, Day: 1}
	assert.True(t, d.Less(&e))
	assert.False(t, e.Less(&d))
	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)
}
