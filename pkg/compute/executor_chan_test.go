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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/daviszhen/hashagg/pkg/chunk"
)

func TestChanSource(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	chunks := []*chunk.Chunk{
		mustChunk(t, kvTypes, kvRow(1, 10), kvRow(2, 20)),
		mustChunk(t, kvTypes, kvRow(1, 30)),
	}
	src := NewChanSource(NewChunkSource(kvTypes, chunks...), 1)
	assert.Equal(t, kvTypes, src.Types())
	exec, err := NewHashAggrExecutor(src,
		[]*Expr{kvColumn(0)}, []*AggrCall{mustAggr(t, FuncSum, kvColumn(1))})
	require.NoError(t, err)
	ret, err := Collect(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, []string{"1,40", "2,20"}, sortedRows(ret))
	require.NoError(t, exec.Close())
}

func TestChanSourceError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	errBoom := errors.New("boom")
	failAfter(t, FaultChunkSourceNext, 1, errBoom)
	child := NewChunkSource(kvTypes,
		mustChunk(t, kvTypes, kvRow(1, 10)),
		mustChunk(t, kvTypes, kvRow(2, 20)),
	)
	exec, err := NewHashAggrExecutor(NewChanSource(child, 0),
		[]*Expr{kvColumn(0)}, []*AggrCall{CountStar()})
	require.NoError(t, err)
	_, err = Collect(context.Background(), exec)
	assert.ErrorIs(t, err, errBoom)
	require.NoError(t, exec.Close())
}

func TestChanSourceCloseEarly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	chunks := make([]*chunk.Chunk, 0)
	for i := 0; i < 10; i++ {
		chunks = append(chunks, mustChunk(t, kvTypes, kvRow(int32(i), 1)))
	}
	src := NewChanSource(NewChunkSource(kvTypes, chunks...), 2)
	res, err := src.Execute(context.Background(), &chunk.Chunk{})
	require.NoError(t, err)
	assert.Equal(t, HaveMoreOutput, res)
	require.NoError(t, src.Close())

	res, err = src.Execute(context.Background(), &chunk.Chunk{})
	require.NoError(t, err)
	assert.Equal(t, Done, res)
}

func TestChanSourceCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx, cancel := context.WithCancel(context.Background())
	src := NewChanSource(NewChunkSource(kvTypes, mustChunk(t, kvTypes, kvRow(1, 1))), 0)
	cancel()
	_, err := src.Execute(ctx, &chunk.Chunk{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, src.Close())
}

func TestRunProducer(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ch := make(chan *chunk.Chunk, 4)
	src := NewChunkSource(kvTypes, mustChunk(t, kvTypes, kvRow(1, 1)), mustChunk(t, kvTypes, kvRow(2, 2)))
	require.NoError(t, RunProducer(context.Background(), src, ch))
	cnt := 0
	for data := range ch {
		cnt += data.Card()
	}
	assert.Equal(t, 2, cnt)
}
