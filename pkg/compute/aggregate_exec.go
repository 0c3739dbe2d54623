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

	"go.uber.org/zap"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

// HashAggr groups the rows of the sunk chunks by the group by
// expressions and keeps one state per aggregate call per group.
type HashAggr struct {
	_groups     []*Expr
	_aggregates []*AggrCall
	_groupExec  *ExprExec
	_paramExec  *ExprExec
	_store      *GroupStateStore
	_finalized  bool

	_rowCnt   int
	_batchCnt int
}

func NewHashAggr(groups []*Expr, aggregates []*AggrCall) (*HashAggr, error) {
	paramExprs := make([]*Expr, 0, len(aggregates))
	for _, aggr := range aggregates {
		if err := aggr.validate(); err != nil {
			return nil, err
		}
		paramExprs = append(paramExprs, aggr.Args[0])
	}
	return &HashAggr{
		_groups:     groups,
		_aggregates: aggregates,
		_groupExec:  NewExprExec(groups...),
		_paramExec:  NewExprExec(paramExprs...),
		_store:      NewGroupStateStore(),
	}, nil
}

// OutputTypes is the group by types followed by the aggregate result types.
func (haggr *HashAggr) OutputTypes() []common.LType {
	ret := make([]common.LType, 0, len(haggr._groups)+len(haggr._aggregates))
	for _, group := range haggr._groups {
		ret = append(ret, group.DataTyp)
	}
	for _, aggr := range haggr._aggregates {
		ret = append(ret, aggr.RetType)
	}
	return ret
}

func (haggr *HashAggr) GroupCount() int {
	if haggr._store == nil {
		return 0
	}
	return haggr._store.Len()
}

func (haggr *HashAggr) RowCount() int {
	return haggr._rowCnt
}

func (haggr *HashAggr) BatchCount() int {
	return haggr._batchCnt
}

// Sink folds one input chunk into the group states.
//
// Every group by expression and every aggregate argument is evaluated
// before any state changes. A failed state update stops the chunk at
// that row. Earlier updates stay applied.
func (haggr *HashAggr) Sink(data *chunk.Chunk) error {
	if haggr._finalized {
		return ErrAggrFinalized
	}
	groupVecs := make([]*chunk.Vector, len(haggr._groups))
	for i := range haggr._groups {
		vec, err := haggr._groupExec.ExecuteExpr(data, i)
		if err != nil {
			return fmt.Errorf("evaluate group by %d: %w", i, err)
		}
		groupVecs[i] = vec
	}
	paramVecs := make([]*chunk.Vector, len(haggr._aggregates))
	for i, aggr := range haggr._aggregates {
		vec, err := haggr._paramExec.ExecuteExpr(data, i)
		if err != nil {
			return fmt.Errorf("evaluate aggregate %s argument: %w", aggr.Name, err)
		}
		paramVecs[i] = vec
	}

	cnt := data.Card()
	for row := 0; row < cnt; row++ {
		key := make(GroupKey, len(groupVecs))
		for i, vec := range groupVecs {
			key[i] = vec.GetValue(row)
		}
		if err := util.CheckRun(util.FAULTS_SCOPE_EXEC, FaultHashAggrUpdate); err != nil {
			return fmt.Errorf("update row %d: %w", row, err)
		}
		states := haggr._store.FindOrCreate(key, haggr._aggregates)
		for i, state := range states {
			if err := state.UpdateSingle(paramVecs[i].GetValue(row)); err != nil {
				return fmt.Errorf("update aggregate %s: %w", haggr._aggregates[i].Name, err)
			}
		}
	}
	haggr._rowCnt += cnt
	haggr._batchCnt++
	util.Debug("hash aggregate sink",
		zap.Int("rows", cnt),
		zap.Int("groups", haggr._store.Len()),
	)
	return nil
}

// Finalize emits one row per group: the group key columns followed by
// the aggregate results. It can be called once.
func (haggr *HashAggr) Finalize() (*chunk.Chunk, error) {
	if haggr._finalized {
		return nil, ErrAggrFinalized
	}
	haggr._finalized = true
	store := haggr._store
	haggr._store = nil

	keyBuilders := make([]*chunk.VecBuilder, len(haggr._groups))
	for i, group := range haggr._groups {
		keyBuilders[i] = chunk.NewVecBuilder(group.DataTyp)
	}
	aggrBuilders := make([]*chunk.VecBuilder, len(haggr._aggregates))
	for i, aggr := range haggr._aggregates {
		aggrBuilders[i] = chunk.NewVecBuilder(aggr.RetType)
	}

	err := store.Scan(func(key GroupKey, states AggrStates) error {
		for i, val := range key {
			if err := keyBuilders[i].Push(val); err != nil {
				return fmt.Errorf("group by %d: %w", i, err)
			}
		}
		for i, state := range states {
			if err := aggrBuilders[i].Push(state.Output()); err != nil {
				return fmt.Errorf("aggregate %s: %w", haggr._aggregates[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &chunk.Chunk{}
	for _, b := range keyBuilders {
		result.Data = append(result.Data, b.Finish())
	}
	for _, b := range aggrBuilders {
		result.Data = append(result.Data, b.Finish())
	}
	result.SetCap(store.Len())
	result.SetCard(store.Len())
	util.Info("hash aggregate finalized",
		zap.Int("groups", store.Len()),
		zap.Int("rows", haggr._rowCnt),
		zap.Int("batches", haggr._batchCnt),
	)
	return result, nil
}
