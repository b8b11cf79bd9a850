package eliza

import (
	"fmt"
	"strings"
)

// The hash layer reproduces the original machine's word hashing exactly.
// A word is packed into a 36-bit datum of six 6-bit character codes, and
// the hash is the middle bits of the square of its 35-bit magnitude. Both
// widths are compatibility contracts: changing either changes every hash
// value and breaks memory-rule selection against the historical outputs.

const (
	magnitudeMask = 0x7FFFFFFFF // low 35 bits; bit 35 is the sign
	chunkLen      = 6
)

// Hash extracts n middle bits (0 <= n <= 15) from the square of the
// 35-bit magnitude of datum. The square may exceed 64 bits; the bits
// extracted all sit below bit 50, so wrapping multiplication is safe.
func Hash(datum uint64, n int) uint64 {
	if n < 0 || n > 15 {
		panic(fmt.Sprintf("eliza: hash bit count %d out of range", n))
	}
	d := datum & magnitudeMask
	d *= d
	d >>= uint(35 - n/2)
	return d & (1<<uint(n) - 1)
}

// LastChunkAsDatum packs the last six-character chunk of word into a
// 36-bit value, one 6-bit code per character, space-padded on the right
// when the chunk is short. Words longer than six characters contribute
// only their final chunk, as on the original hardware. Every character
// must be in the 64-character set; upstream filtering guarantees this,
// so an undefined character is a programming error and panics.
func LastChunkAsDatum(word string) uint64 {
	chunk := word
	if len(word) > 0 {
		chunk = word[((len(word)-1)/chunkLen)*chunkLen:]
	}
	var datum uint64
	for i := 0; i < len(chunk); i++ {
		datum = datum<<6 | uint64(encodeChar(chunk[i]))
	}
	for i := len(chunk); i < chunkLen; i++ {
		datum = datum<<6 | uint64(encodeChar(' '))
	}
	return datum
}

// encodeChar returns the 6-bit code of c, which is its position in the
// charset table.
func encodeChar(c byte) int {
	code := strings.IndexByte(charset, c)
	if code < 0 || c == 0 {
		panic(fmt.Sprintf("eliza: character %q has no encoding", c))
	}
	return code
}
