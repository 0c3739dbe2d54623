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
	"time"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
)

type OperatorResult int

const (
	InvalidOpResult OperatorResult = 0
	haveMoreOutput  OperatorResult = 2
	Done            OperatorResult = 3
)

// HaveMoreOutput is returned with a filled output chunk.
const HaveMoreOutput = haveMoreOutput

func (res OperatorResult) String() string {
	switch res {
	case InvalidOpResult:
		return "invalid"
	case haveMoreOutput:
		return "have more output"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("OperatorResult(%d)", int(res))
	}
}

// Source produces chunks on demand. Execute fills output and returns
// HaveMoreOutput, or returns Done when the source is exhausted.
type Source interface {
	Execute(ctx context.Context, output *chunk.Chunk) (OperatorResult, error)
	Types() []common.LType
	Close() error
}

type ExecStats struct {
	_totalTime      time.Duration
	_totalChildTime time.Duration
}

func (stats ExecStats) String() string {
	if stats._totalTime == 0 {
		return "total time is 0"
	}
	return fmt.Sprintf("time : total %v, this %v (%.2f) , child %v",
		stats._totalTime,
		stats._totalTime-stats._totalChildTime,
		float64(stats._totalTime-stats._totalChildTime)/float64(stats._totalTime),
		stats._totalChildTime,
	)
}

// assignChunk makes output share the columns of src.
func assignChunk(output, src *chunk.Chunk) {
	output.Data = src.Data
	output.SetCap(src.Cap())
	output.SetCard(src.Card())
}
