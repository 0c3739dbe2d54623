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
package chunk

import (
	"errors"
	"fmt"

	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

var ErrBuilderType = errors.New("value type does not match builder type")

// VecBuilder accumulates scalars of one type into a flat vector.
type VecBuilder struct {
	typ   common.LType
	vec   *Vector
	count int
}

func NewVecBuilder(typ common.LType) *VecBuilder {
	return &VecBuilder{
		typ: typ,
		vec: NewFlatVector(typ, util.DefaultVectorSize),
	}
}

func (b *VecBuilder) Typ() common.LType {
	return b.typ
}

// Push appends val. A null value is accepted for any builder type.
func (b *VecBuilder) Push(val *Value) error {
	if !val.IsNull && !val.Typ.Equal(b.typ) {
		return fmt.Errorf("%w: push %v into %v", ErrBuilderType, val.Typ, b.typ)
	}
	if b.count >= b.vec.Cap() {
		b.vec.Grow(b.vec.Cap() * 2)
	}
	b.vec.SetValue(b.count, val)
	b.count++
	return nil
}

func (b *VecBuilder) Len() int {
	return b.count
}

// Finish returns the vector built so far and restarts the builder.
func (b *VecBuilder) Finish() *Vector {
	ret := b.vec
	b.vec = NewFlatVector(b.typ, util.DefaultVectorSize)
	b.count = 0
	return ret
}
