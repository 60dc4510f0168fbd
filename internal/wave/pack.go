package wave

import (
	"encoding/binary"
	"sync"
)

// silenceCode returns the code for a zero sample at the given depth.
func silenceCode(bitsPerSample int) int {
	if bitsPerSample == 8 {
		return 128
	}
	return 0
}

// PackUint8 writes one byte per code, keeping the low 8 bits.
func PackUint8(codes []int, dst []byte) []byte {
	for _, c := range codes {
		dst = append(dst, byte(c))
	}
	return dst
}

// PackInt16 splits each code into a low byte then a high byte (s16le).
func PackInt16(codes []int, dst []byte) []byte {
	for _, c := range codes {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(c)))
	}
	return dst
}

// Interleave repeats each mono code once per channel, producing
// channel-interleaved frames (L R L R ... for stereo).
func Interleave(codes []int, channels int) []int {
	if channels <= 1 {
		return codes
	}
	out := make([]int, len(codes)*channels)
	for i, c := range codes {
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = c
		}
	}
	return out
}

// scratchPool holds byte buffers reused across Encode calls to avoid
// allocating the whole file twice per render.
var scratchPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 64*1024)
		return &buf
	},
}

func acquireScratch() *[]byte {
	return scratchPool.Get().(*[]byte)
}

func releaseScratch(b *[]byte) {
	// oversized buffers are dropped so one long render does not pin memory
	if cap(*b) > 16<<20 {
		return
	}
	*b = (*b)[:0]
	scratchPool.Put(b)
}
