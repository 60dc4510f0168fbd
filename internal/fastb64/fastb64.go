// Package fastb64 is a standard-alphabet base64 encoder that emits two
// output characters per table lookup.
package fastb64

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const padChar = '='

// Encoding holds the 12-bit lookup table. Build it once with NewEncoding and
// share the pointer; it is read-only after construction.
type Encoding struct {
	pairs [4096][2]byte
}

// NewEncoding builds the table mapping every 12-bit value to its two characters.
func NewEncoding() *Encoding {
	e := &Encoding{}
	for i := range e.pairs {
		e.pairs[i] = [2]byte{alphabet[i>>6], alphabet[i&0x3F]}
	}
	return e
}

// EncodedLen returns the padded length of the encoding of n bytes.
func (e *Encoding) EncodedLen(n int) int {
	return (n + 2) / 3 * 4
}

// Encode writes the encoding of src into dst, which must hold EncodedLen(len(src)) bytes.
func (e *Encoding) Encode(dst, src []byte) {
	di, si := 0, 0
	for n := len(src) - len(src)%3; si < n; si += 3 {
		v := uint(src[si])<<16 | uint(src[si+1])<<8 | uint(src[si+2])
		hi := e.pairs[v>>12]
		lo := e.pairs[v&0xFFF]
		dst[di] = hi[0]
		dst[di+1] = hi[1]
		dst[di+2] = lo[0]
		dst[di+3] = lo[1]
		di += 4
	}

	switch len(src) - si {
	case 1:
		v := uint(src[si])
		dst[di] = alphabet[v>>2]
		dst[di+1] = alphabet[(v&0x03)<<4]
		dst[di+2] = padChar
		dst[di+3] = padChar
	case 2:
		v := uint(src[si])<<8 | uint(src[si+1])
		dst[di] = alphabet[v>>10]
		dst[di+1] = alphabet[(v>>4)&0x3F]
		dst[di+2] = alphabet[(v&0x0F)<<2]
		dst[di+3] = padChar
	}
}

// EncodeToString returns the base64 encoding of src.
func (e *Encoding) EncodeToString(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	buf := make([]byte, e.EncodedLen(len(src)))
	e.Encode(buf, src)
	return string(buf)
}

// AppendEncode appends the encoding of src to dst and returns the extended slice.
func (e *Encoding) AppendEncode(dst, src []byte) []byte {
	n := e.EncodedLen(len(src))
	start := len(dst)
	if cap(dst)-start < n {
		grown := make([]byte, start, start+n)
		copy(grown, dst)
		dst = grown
	}
	dst = dst[:start+n]
	e.Encode(dst[start:], src)
	return dst
}
