package wave

import (
	"github.com/RenatoCabral2022/tonegrid/internal/fastb64"
)

// DataURIPrefix precedes the base64 payload of a playable wave data URI.
const DataURIPrefix = "data:audio/wav;base64,"

// EncodedWave is a complete wave file and its base64 text.
type EncodedWave struct {
	Header Header
	Bytes  []byte
	Base64 string
}

// DataURI returns the wave as a data URI suitable for an audio element's src.
func (w *EncodedWave) DataURI() string {
	return DataURIPrefix + w.Base64
}

// Frames returns the number of sample frames in the payload.
func (w *EncodedWave) Frames() int {
	return w.Header.Frames()
}

// Encoder packs sample codes into RIFF/WAVE files.
// It is safe for concurrent use.
type Encoder struct {
	b64 *fastb64.Encoding
}

// NewEncoder creates an encoder that shares the given base64 table.
func NewEncoder(b64 *fastb64.Encoding) *Encoder {
	return &Encoder{b64: b64}
}

// Encode builds a wave file from channel-interleaved codes. 8-bit codes are
// unsigned bytes; 16-bit codes are signed and written little-endian. A
// trailing partial frame is padded with silence. Empty input yields a
// header-only file.
func (e *Encoder) Encode(codes []int, f Format) (*EncodedWave, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	frames := (len(codes) + f.NumChannels - 1) / f.NumChannels
	h, err := DeriveHeader(frames, f)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, HeaderSize+int(h.Subchunk2Size))
	out = h.AppendBinary(out)
	if f.BitsPerSample == 8 {
		out = PackUint8(codes, out)
	} else {
		out = PackInt16(codes, out)
	}
	if pad := frames*f.NumChannels - len(codes); pad > 0 {
		fill := make([]int, pad)
		for i := range fill {
			fill[i] = silenceCode(f.BitsPerSample)
		}
		if f.BitsPerSample == 8 {
			out = PackUint8(fill, out)
		} else {
			out = PackInt16(fill, out)
		}
	}

	scratch := acquireScratch()
	*scratch = e.b64.AppendEncode(*scratch, out)
	text := string(*scratch)
	releaseScratch(scratch)

	return &EncodedWave{
		Header: h,
		Bytes:  out,
		Base64: text,
	}, nil
}
