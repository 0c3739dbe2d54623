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
	"strings"

	"github.com/daviszhen/hashagg/pkg/chunk"
)

// GroupKey is the values of the group by expressions for one row.
type GroupKey []*chunk.Value

func (key GroupKey) Hash() uint64 {
	var h uint64
	for i, val := range key {
		vh := chunk.HashValue(val)
		if i == 0 {
			h = vh
		} else {
			h = chunk.CombineHashScalar(h, vh)
		}
	}
	return h
}

func (key GroupKey) Equal(o GroupKey) bool {
	if len(key) != len(o) {
		return false
	}
	for i := range key {
		if !chunk.ValueEqual(key[i], o[i]) {
			return false
		}
	}
	return true
}

func (key GroupKey) String() string {
	strs := make([]string, 0, len(key))
	for _, val := range key {
		strs = append(strs, val.String())
	}
	return "(" + strings.Join(strs, ", ") + ")"
}

type groupEntry struct {
	key    GroupKey
	states AggrStates
}

// GroupStateStore maps group keys to their aggregate states.
// Entries are only added.
type GroupStateStore struct {
	_buckets map[uint64][]*groupEntry
	_count   int
}

func NewGroupStateStore() *GroupStateStore {
	return &GroupStateStore{
		_buckets: make(map[uint64][]*groupEntry),
	}
}

// FindOrCreate returns the states of key. A missing key gets a fresh
// state per aggregate call.
func (store *GroupStateStore) FindOrCreate(key GroupKey, calls []*AggrCall) AggrStates {
	h := key.Hash()
	bucket := store._buckets[h]
	for _, entry := range bucket {
		if entry.key.Equal(key) {
			return entry.states
		}
	}
	states := make(AggrStates, len(calls))
	for i, call := range calls {
		states[i] = call.NewState()
	}
	store._buckets[h] = append(bucket, &groupEntry{
		key:    key,
		states: states,
	})
	store._count++
	return states
}

func (store *GroupStateStore) Len() int {
	return store._count
}

// Scan visits every group once. The order is unspecified.
func (store *GroupStateStore) Scan(fun func(key GroupKey, states AggrStates) error) error {
	for _, bucket := range store._buckets {
		for _, entry := range bucket {
			if err := fun(entry.key, entry.states); err != nil {
				return err
			}
		}
	}
	return nil
}
