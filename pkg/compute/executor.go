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

	"github.com/daviszhen/hashagg/pkg/chunk"
)

// Collect drains src. It stops at the first error.
func Collect(ctx context.Context, src Source) ([]*chunk.Chunk, error) {
	ret := make([]*chunk.Chunk, 0)
	for {
		output := &chunk.Chunk{}
		res, err := src.Execute(ctx, output)
		if err != nil {
			return nil, err
		}
		switch res {
		case Done:
			return ret, nil
		case haveMoreOutput:
			ret = append(ret, output)
		default:
			return nil, fmt.Errorf("source returned %v", res)
		}
	}
}
