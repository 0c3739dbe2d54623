package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmap(t *testing.T) {
	mask := &Bitmap{
		Bits: []uint8{0, 0},
	}
	mask.Set(0, true)
	assert.True(t, len(mask.Bits) == 2)
	assert.True(t, mask.RowIsValid(0))
	mask.Set(0, false)
	assert.True(t, !mask.RowIsValid(0))
	assert.True(t, mask.Bits != nil)
	mask.Set(DefaultVectorSize, false)
	assert.True(t, !mask.RowIsValid(DefaultVectorSize))
}

func TestBitmapGrow(t *testing.T) {
	mask := &Bitmap{}
	assert.True(t, mask.AllValid())
	assert.True(t, mask.RowIsValid(10))

	mask.SetInvalid(3 * DefaultVectorSize)
	assert.False(t, mask.RowIsValid(3*DefaultVectorSize))
	assert.True(t, mask.RowIsValid(3*DefaultVectorSize-1))
	assert.True(t, mask.RowIsValid(0))
	assert.Equal(t, 3*DefaultVectorSize, mask.CountValid(3*DefaultVectorSize))
	assert.Equal(t, 3*DefaultVectorSize, mask.CountValid(3*DefaultVectorSize+1))

	//past the allocated entries
	mask.SetValid(100 * DefaultVectorSize)
	assert.True(t, mask.RowIsValid(100*DefaultVectorSize))
}

func TestBitmapAllInvalid(t *testing.T) {
	mask := &Bitmap{}
	mask.SetAllInvalid(17)
	for i := 0; i < 17; i++ {
		assert.False(t, mask.RowIsValid(uint64(i)))
	}
	assert.Equal(t, 0, mask.CountValid(17))

	var nilMask *Bitmap
	assert.True(t, nilMask.AllValid())
	assert.True(t, nilMask.RowIsValid(5))
}
