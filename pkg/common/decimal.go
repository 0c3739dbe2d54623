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
package common

import (
	"fmt"

	decimal2 "github.com/govalues/decimal"
)

type Decimal struct {
	decimal2.Decimal
}

func ParseDecimal(s string) (Decimal, error) {
	d, err := decimal2.Parse(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Decimal: d}, nil
}

func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

func DecimalFromInt64(v int64) Decimal {
	return Decimal{Decimal: decimal2.MustNew(v, 0)}
}

// DecimalFromScaled returns v / 10^scale.
func DecimalFromScaled(v int64, scale int) (Decimal, error) {
	d, err := decimal2.New(v, scale)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Decimal: d}, nil
}

func DecimalFromFloat64(f float64) (Decimal, error) {
	d, err := decimal2.NewFromFloat64(f)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Decimal: d}, nil
}

func (dec *Decimal) Equal(o *Decimal) bool {
	return dec.Decimal.Cmp(o.Decimal) == 0
}

func (dec *Decimal) String() string {
	return dec.Decimal.String()
}

// Normalize drops trailing fractional zeros so that 1.50 and 1.5
// share one representation.
func (dec *Decimal) Normalize() Decimal {
	return Decimal{Decimal: dec.Decimal.Trim(0)}
}

// Rescale pads or rounds the value to the scale.
func (dec *Decimal) Rescale(scale int) (Decimal, error) {
	if dec.Decimal.Scale() > scale {
		return Decimal{Decimal: dec.Decimal.Round(scale)}, nil
	}
	zero, err := decimal2.New(0, scale)
	if err != nil {
		return Decimal{}, err
	}
	res, err := dec.Decimal.Add(zero)
	if err != nil {
		return Decimal{}, fmt.Errorf("decimal %v can not be rescaled to %d: %w", dec.Decimal, scale, err)
	}
	return Decimal{Decimal: res}, nil
}

func (dec *Decimal) Add(lhs *Decimal, rhs *Decimal) error {
	res, err := lhs.Decimal.Add(rhs.Decimal)
	if err != nil {
		return err
	}
	dec.Decimal = res
	return nil
}

func (dec *Decimal) Sub(lhs *Decimal, rhs *Decimal) error {
	res, err := lhs.Decimal.Sub(rhs.Decimal)
	if err != nil {
		return err
	}
	dec.Decimal = res
	return nil
}

func (dec *Decimal) Mul(lhs *Decimal, rhs *Decimal) error {
	res, err := lhs.Decimal.Mul(rhs.Decimal)
	if err != nil {
		return err
	}
	dec.Decimal = res
	return nil
}

func (dec *Decimal) Div(lhs *Decimal, rhs *Decimal) error {
	res, err := lhs.Decimal.Quo(rhs.Decimal)
	if err != nil {
		return err
	}
	dec.Decimal = res
	return nil
}

func (dec *Decimal) Less(lhs, rhs *Decimal) bool {
	return lhs.Decimal.Cmp(rhs.Decimal) < 0
}
