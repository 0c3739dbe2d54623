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

import "errors"

var (
	ErrColumnOutOfRange = errors.New("column reference out of range")
	ErrIntegerOverflow  = errors.New("integer overflow")
	ErrDivideByZero     = errors.New("division by zero")
	ErrInvalidCast      = errors.New("invalid cast")

	ErrUnknownAggr      = errors.New("unknown aggregate function")
	ErrMultiArgAggr     = errors.New("aggregate function takes exactly one argument")
	ErrAggrTypeMismatch = errors.New("aggregate argument type mismatch")
	ErrAggrOverflow     = errors.New("aggregate overflow")
	ErrAggrFinalized    = errors.New("hash aggregate already finalized")
)

// fault points in util.FAULTS_SCOPE_EXEC
const (
	FaultChunkSourceNext = "chunk_source_next"
	FaultHashAggrUpdate  = "hash_aggr_update"
)
