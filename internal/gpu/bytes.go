package gpu

import (
	"encoding/binary"
	"math"
)

// AppendFloat32s appends vs to b in the little-endian layout GPU buffers expect.
func AppendFloat32s(b []byte, vs ...float32) []byte {
	for _, v := range vs {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

// RoundUp16 rounds n up to the next multiple of 16, the constant buffer
// size granularity.
func RoundUp16(n int) int {
	return (n + 15) &^ 15
}
