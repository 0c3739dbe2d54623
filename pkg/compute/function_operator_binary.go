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
	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

type BinaryOp[T any] func(left, right, result *T) error

type BinaryVectorFunc func(left, right *chunk.Vector, count int) (*chunk.Vector, error)

// BinaryFunction lifts a scalar operator to vectors. A null on either
// side yields a null without calling op.
func BinaryFunction[T any](retTyp common.LType, op BinaryOp[T]) BinaryVectorFunc {
	return func(left, right *chunk.Vector, count int) (*chunk.Vector, error) {
		if left.PhyFormat().IsConst() && right.PhyFormat().IsConst() {
			return binaryExecConst[T](left, right, retTyp, op)
		}
		return binaryExecFlat[T](left, right, retTyp, count, op)
	}
}

func binaryExecConst[T any](
	left, right *chunk.Vector,
	retTyp common.LType,
	op BinaryOp[T],
) (*chunk.Vector, error) {
	result := chunk.NewConstVector(chunk.NewNullValue(retTyp), retTyp)
	if chunk.IsNullInPhyFormatConst(left) ||
		chunk.IsNullInPhyFormatConst(right) {
		return result, nil
	}
	lSlice := chunk.GetSliceInPhyFormatConst[T](left)
	rSlice := chunk.GetSliceInPhyFormatConst[T](right)
	resSlice := chunk.GetSliceInPhyFormatConst[T](result)
	if err := op(&lSlice[0], &rSlice[0], &resSlice[0]); err != nil {
		return nil, err
	}
	chunk.SetNullInPhyFormatConst(result, false)
	return result, nil
}

func binaryExecFlat[T any](
	left, right *chunk.Vector,
	retTyp common.LType,
	count int,
	op BinaryOp[T],
) (*chunk.Vector, error) {
	lconst := left.PhyFormat().IsConst()
	rconst := right.PhyFormat().IsConst()
	lSlice := chunk.GetSliceInPhyFormatFlat[T](left)
	rSlice := chunk.GetSliceInPhyFormatFlat[T](right)

	result := chunk.NewFlatVector(retTyp, max(util.DefaultVectorSize, count))
	resSlice := chunk.GetSliceInPhyFormatFlat[T](result)
	resMask := chunk.GetMaskInPhyFormatFlat(result)
	for i := 0; i < count; i++ {
		lidx, ridx := i, i
		if lconst {
			lidx = 0
		}
		if rconst {
			ridx = 0
		}
		if !left.Mask.RowIsValid(uint64(lidx)) || !right.Mask.RowIsValid(uint64(ridx)) {
			resMask.SetInvalid(uint64(i))
			continue
		}
		if err := op(&lSlice[lidx], &rSlice[ridx], &resSlice[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}
