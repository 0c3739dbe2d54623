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
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
)

// RunProducer drains src into ch and closes ch when it returns.
func RunProducer(ctx context.Context, src Source, ch chan<- *chunk.Chunk) error {
	defer close(ch)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		output := &chunk.Chunk{}
		res, err := src.Execute(ctx, output)
		if err != nil {
			return err
		}
		switch res {
		case Done:
			return nil
		case haveMoreOutput:
		default:
			return fmt.Errorf("source returned %v", res)
		}
		select {
		case ch <- output:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ChanSource reads its child on a separate goroutine, keeping up to
// prefetch chunks buffered. The child is started on the first Execute.
type ChanSource struct {
	_child    Source
	_prefetch int
	_ch       chan *chunk.Chunk
	_group    *errgroup.Group
	_cancel   context.CancelFunc
	_done     bool
}

var _ Source = &ChanSource{}

func NewChanSource(child Source, prefetch int) *ChanSource {
	return &ChanSource{
		_child:    child,
		_prefetch: max(prefetch, 0),
	}
}

func (src *ChanSource) start(ctx context.Context) {
	var gctx context.Context
	ctx, src._cancel = context.WithCancel(ctx)
	src._group, gctx = errgroup.WithContext(ctx)
	src._ch = make(chan *chunk.Chunk, src._prefetch)
	src._group.Go(func() error {
		return RunProducer(gctx, src._child, src._ch)
	})
}

func (src *ChanSource) Execute(ctx context.Context, output *chunk.Chunk) (OperatorResult, error) {
	if src._done {
		output.Count = 0
		return Done, nil
	}
	if src._group == nil {
		src.start(ctx)
	}
	select {
	case data, ok := <-src._ch:
		if !ok {
			src._done = true
			if err := src._group.Wait(); err != nil {
				return InvalidOpResult, err
			}
			output.Count = 0
			return Done, nil
		}
		assignChunk(output, data)
		return haveMoreOutput, nil
	case <-ctx.Done():
		return InvalidOpResult, ctx.Err()
	}
}

func (src *ChanSource) Types() []common.LType {
	return src._child.Types()
}

// Close stops the producer, waits for it and closes the child.
func (src *ChanSource) Close() error {
	if src._group != nil {
		src._cancel()
		for range src._ch {
		}
		_ = src._group.Wait()
		src._group = nil
	}
	src._done = true
	return src._child.Close()
}

func (src *ChanSource) String() string {
	return fmt.Sprintf("ChanSource(prefetch %d)", src._prefetch)
}
