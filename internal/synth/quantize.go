package synth

import "fmt"

const (
	// Silence8 is the unsigned 8-bit code for a zero sample.
	Silence8 = 128
	// Amplitude16 scales a [-1, 1] sample to the signed 16-bit range.
	Amplitude16 = 32767
)

// Quantize8 maps a sample to an unsigned 8-bit code as 128 + round(127*s).
// -1 maps to 1 and +1 to 255; the missing 0 code is kept for compatibility
// with existing 8-bit renders.
func Quantize8(s float64) uint8 {
	c := Silence8 + roundHalfUp(127*s)
	if c < 0 {
		return 0
	}
	if c > 255 {
		return 255
	}
	return uint8(c)
}

// Quantize16 maps a sample to a signed 16-bit code as round(32767*s).
func Quantize16(s float64) int16 {
	c := roundHalfUp(Amplitude16 * s)
	if c < -32768 {
		return -32768
	}
	if c > 32767 {
		return 32767
	}
	return int16(c)
}

// Quantize converts clipped samples to integer codes for the given bit depth.
func Quantize(buf []float64, bitsPerSample int) ([]int, error) {
	codes := make([]int, len(buf))
	switch bitsPerSample {
	case 8:
		for i, s := range buf {
			codes[i] = int(Quantize8(s))
		}
	case 16:
		for i, s := range buf {
			codes[i] = int(Quantize16(s))
		}
	default:
		return nil, fmt.Errorf("bits per sample %d: %w", bitsPerSample, ErrInvalidConfig)
	}
	return codes, nil
}
