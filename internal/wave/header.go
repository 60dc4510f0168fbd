package wave

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the length of the canonical PCM WAVE header.
const HeaderSize = 44

const (
	fmtChunkSize = 16
	formatPCM    = 1
)

var (
	// ErrInvalidConfig is returned for an unsupported bit depth or a
	// non-positive sample rate or channel count.
	ErrInvalidConfig = errors.New("invalid wave format")
	// ErrMalformed is returned when decoding bytes that are not a canonical PCM WAVE file.
	ErrMalformed = errors.New("malformed wave data")
)

// Format describes the PCM layout of a wave file.
type Format struct {
	BitsPerSample int `json:"bitsPerSample"`
	NumChannels   int `json:"numChannels"`
	SampleRate    int `json:"sampleRate"`
}

// Validate reports whether f can be encoded.
func (f Format) Validate() error {
	if f.BitsPerSample != 8 && f.BitsPerSample != 16 {
		return fmt.Errorf("bits per sample %d: %w", f.BitsPerSample, ErrInvalidConfig)
	}
	if f.NumChannels <= 0 || f.NumChannels > 0xFFFF {
		return fmt.Errorf("channels %d: %w", f.NumChannels, ErrInvalidConfig)
	}
	if f.SampleRate <= 0 || uint64(f.SampleRate)*uint64(f.blockAlign()) > 0xFFFFFFFF {
		return fmt.Errorf("sample rate %d: %w", f.SampleRate, ErrInvalidConfig)
	}
	return nil
}

func (f Format) blockAlign() int {
	return f.NumChannels * f.BitsPerSample / 8
}

// Header is the 44-byte RIFF/WAVE header of a PCM file.
type Header struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // 36 + Subchunk2Size
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * BlockAlign
	BlockAlign    uint16 // NumChannels * BitsPerSample/8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // frames * BlockAlign
}

// DeriveHeader computes the header for frames sample frames in format f.
// Every size field is derived here and nowhere else.
func DeriveHeader(frames int, f Format) (Header, error) {
	if err := f.Validate(); err != nil {
		return Header{}, err
	}
	if frames < 0 {
		frames = 0
	}

	blockAlign := f.blockAlign()
	dataSize := uint64(frames) * uint64(blockAlign)
	if dataSize > 0xFFFFFFFF-36 {
		return Header{}, fmt.Errorf("%d frames exceed the 4 GiB RIFF limit: %w", frames, ErrInvalidConfig)
	}

	return Header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + uint32(dataSize),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: fmtChunkSize,
		AudioFormat:   formatPCM,
		NumChannels:   uint16(f.NumChannels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(blockAlign * f.SampleRate),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(f.BitsPerSample),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(dataSize),
	}, nil
}

// AppendBinary appends the little-endian encoding of h to dst.
func (h Header) AppendBinary(dst []byte) []byte {
	le := binary.LittleEndian
	dst = append(dst, h.ChunkID[:]...)
	dst = le.AppendUint32(dst, h.ChunkSize)
	dst = append(dst, h.Format[:]...)
	dst = append(dst, h.Subchunk1ID[:]...)
	dst = le.AppendUint32(dst, h.Subchunk1Size)
	dst = le.AppendUint16(dst, h.AudioFormat)
	dst = le.AppendUint16(dst, h.NumChannels)
	dst = le.AppendUint32(dst, h.SampleRate)
	dst = le.AppendUint32(dst, h.ByteRate)
	dst = le.AppendUint16(dst, h.BlockAlign)
	dst = le.AppendUint16(dst, h.BitsPerSample)
	dst = append(dst, h.Subchunk2ID[:]...)
	dst = le.AppendUint32(dst, h.Subchunk2Size)
	return dst
}

// Bytes returns the 44-byte encoding of h.
func (h Header) Bytes() []byte {
	return h.AppendBinary(make([]byte, 0, HeaderSize))
}

// PCMFormat returns the PCM layout the header describes.
func (h Header) PCMFormat() Format {
	return Format{
		BitsPerSample: int(h.BitsPerSample),
		NumChannels:   int(h.NumChannels),
		SampleRate:    int(h.SampleRate),
	}
}

// Frames returns the number of sample frames in the data chunk.
func (h Header) Frames() int {
	if h.BlockAlign == 0 {
		return 0
	}
	return int(h.Subchunk2Size / uint32(h.BlockAlign))
}

// ParseHeader decodes the canonical 44-byte header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("header needs %d bytes, have %d: %w", HeaderSize, len(b), ErrMalformed)
	}

	le := binary.LittleEndian
	var h Header
	copy(h.ChunkID[:], b[0:4])
	h.ChunkSize = le.Uint32(b[4:8])
	copy(h.Format[:], b[8:12])
	copy(h.Subchunk1ID[:], b[12:16])
	h.Subchunk1Size = le.Uint32(b[16:20])
	h.AudioFormat = le.Uint16(b[20:22])
	h.NumChannels = le.Uint16(b[22:24])
	h.SampleRate = le.Uint32(b[24:28])
	h.ByteRate = le.Uint32(b[28:32])
	h.BlockAlign = le.Uint16(b[32:34])
	h.BitsPerSample = le.Uint16(b[34:36])
	copy(h.Subchunk2ID[:], b[36:40])
	h.Subchunk2Size = le.Uint32(b[40:44])

	switch {
	case string(h.ChunkID[:]) != "RIFF":
		return Header{}, fmt.Errorf("chunk id %q: %w", h.ChunkID[:], ErrMalformed)
	case string(h.Format[:]) != "WAVE":
		return Header{}, fmt.Errorf("format %q: %w", h.Format[:], ErrMalformed)
	case string(h.Subchunk1ID[:]) != "fmt ":
		return Header{}, fmt.Errorf("subchunk1 id %q: %w", h.Subchunk1ID[:], ErrMalformed)
	case h.Subchunk1Size != fmtChunkSize || h.AudioFormat != formatPCM:
		return Header{}, fmt.Errorf("not a canonical PCM fmt chunk: %w", ErrMalformed)
	case string(h.Subchunk2ID[:]) != "data":
		return Header{}, fmt.Errorf("subchunk2 id %q: %w", h.Subchunk2ID[:], ErrMalformed)
	}
	return h, nil
}
