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
package common

import (
	"bytes"
	"unsafe"

	"github.com/daviszhen/hashagg/pkg/util"
)

// String is the slot layout of a VARCHAR value in a flat vector.
// Data points into bytes owned by the vector's string buffer.
type String struct {
	Len  int
	Data unsafe.Pointer
}

func (s *String) DataSlice() []byte {
	if s.Len == 0 {
		return nil
	}
	return util.PointerToSlice[byte](s.Data, s.Len)
}

func (s *String) String() string {
	return string(s.DataSlice())
}

func (s *String) Equal(o *String) bool {
	if s.Len != o.Len {
		return false
	}
	return bytes.Equal(s.DataSlice(), o.DataSlice())
}

func (s *String) Less(o *String) bool {
	return bytes.Compare(s.DataSlice(), o.DataSlice()) < 0
}
