package wave

import (
	"encoding/binary"
	"fmt"
)

// Decoded is a parsed canonical wave file.
type Decoded struct {
	Header  Header
	Payload []byte
}

// Decode parses a canonical 44-byte-header PCM wave file. The payload must
// be exactly Subchunk2Size bytes and ChunkSize must agree with it.
func Decode(b []byte) (*Decoded, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	if err := h.PCMFormat().Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrMalformed)
	}

	payload := b[HeaderSize:]
	if uint64(len(payload)) != uint64(h.Subchunk2Size) {
		return nil, fmt.Errorf("data size %d, header says %d: %w", len(payload), h.Subchunk2Size, ErrMalformed)
	}
	if h.ChunkSize != 36+h.Subchunk2Size {
		return nil, fmt.Errorf("chunk size %d does not match data size %d: %w", h.ChunkSize, h.Subchunk2Size, ErrMalformed)
	}
	return &Decoded{Header: h, Payload: payload}, nil
}

// Codes returns the payload as integer sample codes: unsigned bytes for
// 8-bit files, signed little-endian pairs for 16-bit files.
func (d *Decoded) Codes() []int {
	if d.Header.BitsPerSample == 8 {
		codes := make([]int, len(d.Payload))
		for i, b := range d.Payload {
			codes[i] = int(b)
		}
		return codes
	}

	codes := make([]int, len(d.Payload)/2)
	for i := range codes {
		codes[i] = int(int16(binary.LittleEndian.Uint16(d.Payload[i*2:])))
	}
	return codes
}
