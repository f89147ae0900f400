// Package gameid generates TypeID-style identifiers: a lowercase prefix,
// an underscore, then a UUIDv7 encoded as 26 characters of Crockford base32.
// IDs with the same prefix sort by creation time.
package gameid

import (
	"crypto/rand"
	"time"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const suffixLen = 26

// Well-known prefixes.
const (
	PrefixConn  = "conn"
	PrefixMatch = "match"
)

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator handles ID generation with configurable randomness and time.
type Generator struct {
	randSource RandSource
	now        func() time.Time
}

// NewGenerator creates a generator. A nil randSource uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource, now: time.Now}
}

// New creates an ID with the given prefix using crypto/rand.
func New(prefix string) string {
	return NewGenerator(nil).New(prefix)
}

// New creates an ID with the given prefix.
func (g *Generator) New(prefix string) string {
	uuid := g.uuidV7()
	return prefix + "_" + encodeBase32(uuid)
}

func (g *Generator) uuidV7() [16]byte {
	var uuid [16]byte

	// 48-bit millisecond timestamp, then random bits with the version and
	// variant nibbles overwritten.
	now := g.now().UnixMilli()
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	if g.randSource != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(g.randSource.IntN(256))
		}
	} else if _, err := rand.Read(uuid[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return uuid
}

// encodeBase32 encodes 128 bits as 26 characters. The value is treated as a
// 130-bit big-endian number with two leading zero bits, so the first
// character is always in 0-7.
func encodeBase32(data [16]byte) string {
	result := make([]byte, suffixLen)

	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(data[i])
		lo = lo<<8 | uint64(data[i+8])
	}

	for i := suffixLen - 1; i >= 0; i-- {
		result[i] = alphabet[lo&0x1f]
		lo = lo>>5 | (hi&0x1f)<<59
		hi >>= 5
	}

	return string(result)
}
