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
	"unsafe"

	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

type VecBufferType int

const (
	//array of data
	VBT_STANDARD VecBufferType = iota
	//owner of the string bytes
	VBT_STRING
)

type VecBuffer struct {
	BufTyp VecBufferType
	Data   []byte
	Strs   [][]byte
}

func NewBuffer(sz int) *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_STANDARD,
		Data:   util.GAlloc.Alloc(sz),
	}
}

func NewStandardBuffer(lt common.LType, cap int) *VecBuffer {
	return NewBuffer(lt.GetInternalType().Size() * cap)
}

func NewConstBuffer(typ common.LType) *VecBuffer {
	return NewStandardBuffer(typ, 1)
}

func NewStringBuffer() *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_STRING,
	}
}

// AddString copies s into the buffer. The returned String stays valid
// as long as the buffer is referenced.
func (buf *VecBuffer) AddString(s string) common.String {
	util.AssertFunc(buf.BufTyp == VBT_STRING)
	if len(s) == 0 {
		return common.String{}
	}
	dst := make([]byte, len(s))
	copy(dst, s)
	buf.Strs = append(buf.Strs, dst)
	return common.String{
		Len:  len(dst),
		Data: unsafe.Pointer(unsafe.SliceData(dst)),
	}
}
