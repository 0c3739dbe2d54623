package util

import (
	"unsafe"
)

func ToSlice[T any](data []byte, pSize int) []T {
	if pSize == 0 || len(data) == 0 {
		return nil
	}
	slen := len(data) / pSize
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(data))), slen)
}

func PointerToSlice[T any](base unsafe.Pointer, len int) []T {
	return unsafe.Slice((*T)(base), len)
}
