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
	"fmt"

	"go.uber.org/zap"

	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

type Chunk struct {
	Data  []*Vector
	Count int
	_Cap  int
}

func (c *Chunk) Init(types []common.LType, cap int) {
	c._Cap = cap
	c.Count = 0
	c.Data = nil
	for _, lType := range types {
		c.Data = append(c.Data, NewFlatVector(lType, c._Cap))
	}
}

func (c *Chunk) Reset() {
	if len(c.Data) == 0 {
		return
	}
	for _, vec := range c.Data {
		vec.Reset()
	}
	c.Count = 0
}

func (c *Chunk) Cap() int {
	return c._Cap
}

func (c *Chunk) SetCap(cap int) {
	c._Cap = cap
}

func (c *Chunk) SetCard(count int) {
	util.AssertFunc(count <= c._Cap)
	c.Count = count
}

func (c *Chunk) Card() int {
	if c == nil {
		return 0
	}
	return c.Count
}

func (c *Chunk) ColumnCount() int {
	if c == nil {
		return 0
	}
	return len(c.Data)
}

func (c *Chunk) Types() []common.LType {
	ret := make([]common.LType, 0, c.ColumnCount())
	for _, vec := range c.Data {
		ret = append(ret, vec.Typ())
	}
	return ret
}

// Reference makes c share the columns of other.
func (c *Chunk) Reference(other *Chunk) {
	util.AssertFunc(other.ColumnCount() <= c.ColumnCount())
	c.SetCap(other.Cap())
	c.SetCard(other.Card())
	for i := 0; i < other.ColumnCount(); i++ {
		c.Data[i].Reference(other.Data[i])
	}
}

// AppendRow writes one row at the end of the chunk, growing the
// columns when the chunk is full.
func (c *Chunk) AppendRow(vals ...*Value) error {
	if len(vals) != c.ColumnCount() {
		return fmt.Errorf("append %d values into a chunk of %d columns", len(vals), c.ColumnCount())
	}
	for i, val := range vals {
		if !val.IsNull && !val.Typ.Equal(c.Data[i].Typ()) {
			return fmt.Errorf("column %d: value type %v does not match column type %v",
				i, val.Typ, c.Data[i].Typ())
		}
	}
	for _, vec := range c.Data {
		if !vec.PhyFormat().IsFlat() {
			vec.Flatten(c.Count)
		}
		if c.Count >= vec.Cap() {
			vec.Grow(max(util.DefaultVectorSize, vec.Cap()*2))
		}
	}
	if c.Count >= c._Cap {
		c._Cap = max(util.DefaultVectorSize, c._Cap*2)
	}
	for i, val := range vals {
		c.Data[i].SetValue(c.Count, val)
	}
	c.Count++
	return nil
}

// Row returns the values of row idx.
func (c *Chunk) Row(idx int) []*Value {
	ret := make([]*Value, c.ColumnCount())
	for j := 0; j < c.ColumnCount(); j++ {
		ret[j] = c.Data[j].GetValue(idx)
	}
	return ret
}

func (c *Chunk) Flatten() {
	for i := 0; i < c.ColumnCount(); i++ {
		c.Data[i].Flatten(c.Card())
	}
}

// Print2 logs the rows at debug level, one entry per row.
func (c *Chunk) Print2(rowPrefix string) {
	for i := 0; i < c.Card(); i++ {
		fields := make([]zap.Field, 0, c.ColumnCount())
		for j := 0; j < c.ColumnCount(); j++ {
			val := c.Data[j].GetValue(i)
			fields = append(fields, zap.String(fmt.Sprintf("%d", j), val.String()))
		}
		util.Debug(rowPrefix, fields...)
	}
}

// NewChunkFromRows builds a chunk of the types from rows of values.
func NewChunkFromRows(types []common.LType, rows ...[]*Value) (*Chunk, error) {
	ret := &Chunk{}
	ret.Init(types, max(util.DefaultVectorSize, len(rows)))
	for _, row := range rows {
		if err := ret.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
