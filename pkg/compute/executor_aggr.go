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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xlab/treeprint"
	"go.uber.org/zap"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

type HashAggrState int

const (
	HAS_INIT HashAggrState = iota
	HAS_SCAN
	HAS_DONE
)

func (has HashAggrState) String() string {
	switch has {
	case HAS_INIT:
		return "accumulating"
	case HAS_SCAN:
		return "materializing"
	case HAS_DONE:
		return "done"
	default:
		return fmt.Sprintf("HashAggrState(%d)", int(has))
	}
}

// HashAggrExecutor pulls every chunk of its child, then emits one
// chunk with a row per group.
type HashAggrExecutor struct {
	_child  Source
	_hAggr  *HashAggr
	_has    HashAggrState
	_result *chunk.Chunk
	_stats  ExecStats
}

var _ Source = &HashAggrExecutor{}

// NewHashAggrExecutor takes copies of the group by expressions and
// the aggregate calls.
func NewHashAggrExecutor(child Source, groups []*Expr, aggregates []*AggrCall) (*HashAggrExecutor, error) {
	if child == nil {
		return nil, errors.New("hash aggregate needs a child source")
	}
	calls := make([]*AggrCall, 0, len(aggregates))
	for _, aggr := range aggregates {
		calls = append(calls, &AggrCall{
			Name:    aggr.Name,
			Args:    copyExprs(aggr.Args...),
			RetType: aggr.RetType,
			Func:    aggr.Func,
		})
	}
	hAggr, err := NewHashAggr(copyExprs(groups...), calls)
	if err != nil {
		return nil, err
	}
	return &HashAggrExecutor{
		_child: child,
		_hAggr: hAggr,
		_has:   HAS_INIT,
	}, nil
}

func (exec *HashAggrExecutor) Types() []common.LType {
	return exec._hAggr.OutputTypes()
}

func (exec *HashAggrExecutor) State() HashAggrState {
	return exec._has
}

func (exec *HashAggrExecutor) Execute(ctx context.Context, output *chunk.Chunk) (OperatorResult, error) {
	if exec._has == HAS_INIT {
		start := time.Now()
		err := exec.accumulate(ctx)
		exec._stats._totalTime += time.Since(start)
		if err != nil {
			exec.fail(err)
			return InvalidOpResult, err
		}
		exec._result, err = exec._hAggr.Finalize()
		if err != nil {
			exec.fail(err)
			return InvalidOpResult, err
		}
		exec._has = HAS_SCAN
	}
	if exec._has == HAS_SCAN {
		assignChunk(output, exec._result)
		exec._result = nil
		exec._has = HAS_DONE
		util.Info("hash aggregate output",
			zap.Int("rows", output.Card()),
			zap.String("stats", exec._stats.String()),
		)
		return haveMoreOutput, nil
	}
	output.Count = 0
	return Done, nil
}

func (exec *HashAggrExecutor) accumulate(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		childChunk := &chunk.Chunk{}
		st := time.Now()
		res, err := exec._child.Execute(ctx, childChunk)
		exec._stats._totalChildTime += time.Since(st)
		if err != nil {
			return err
		}
		if res == Done {
			return nil
		}
		if res != haveMoreOutput {
			return fmt.Errorf("child returned %v", res)
		}
		if childChunk.Card() == 0 {
			continue
		}
		if err = exec._hAggr.Sink(childChunk); err != nil {
			return err
		}
	}
}

func (exec *HashAggrExecutor) fail(err error) {
	util.Error("hash aggregate failed",
		zap.String("state", exec._has.String()),
		zap.Int("rows", exec._hAggr.RowCount()),
		zap.Error(err),
	)
	exec._has = HAS_DONE
	exec._result = nil
}

// Explain renders the operator and its child.
func (exec *HashAggrExecutor) Explain() string {
	tree := treeprint.NewWithRoot("HashAggregate")
	exec.explain(tree)
	return tree.String()
}

func (exec *HashAggrExecutor) explain(tree treeprint.Tree) {
	groups := tree.AddBranch("groupBy")
	for i, group := range exec._hAggr._groups {
		group.Print(groups, fmt.Sprintf("%d", i))
	}
	aggrs := tree.AddBranch("aggregates")
	for i, aggr := range exec._hAggr._aggregates {
		branch := aggrs.AddMetaBranch(fmt.Sprintf("%d %v", i, aggr.RetType), aggr.String())
		aggr.Args[0].Print(branch, "")
	}
	switch child := exec._child.(type) {
	case *HashAggrExecutor:
		child.explain(tree.AddBranch("HashAggregate"))
	case fmt.Stringer:
		tree.AddNode(child.String())
	default:
		tree.AddNode(fmt.Sprintf("%T", child))
	}
}

// Close releases the group states and closes the child.
func (exec *HashAggrExecutor) Close() error {
	exec._has = HAS_DONE
	exec._result = nil
	exec._hAggr._store = nil
	return exec._child.Close()
}
