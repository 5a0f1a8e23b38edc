package checksum

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Size is the length of a Checksum in bytes.
const Size = sha256.Size

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainCollection = "snapsum/collection/v1"
	DomainTree       = "snapsum/tree/v1"
	DomainAttributes = "snapsum/attributes/v1"
	DomainDocument   = "snapsum/document/v1"
	DomainProject    = "snapsum/project/v1"
	DomainEntity     = "snapsum/entity/v1"
)

// Checksum is a fixed-size SHA-256 digest.
// Equal inputs always yield equal checksums.
type Checksum [Size]byte

// Zero is the all-zero checksum. It is never produced by Of.
var Zero Checksum

// Of computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func Of(domain string, data []byte) Checksum {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)

	var c Checksum
	h.Sum(c[:0])
	return c
}

// OfParts hashes a sequence of byte slices under a domain. Each part is
// length-prefixed so that ("ab","c") and ("a","bc") never collide.
func OfParts(domain string, parts ...[]byte) Checksum {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})

	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}

	var c Checksum
	h.Sum(c[:0])
	return c
}

// Parse decodes a 64-character lowercase hex string.
func Parse(s string) (Checksum, error) {
	var c Checksum
	if len(s) != hex.EncodedLen(Size) {
		return Zero, fmt.Errorf("checksum: invalid length %d, want %d", len(s), hex.EncodedLen(Size))
	}
	if _, err := hex.Decode(c[:], []byte(s)); err != nil {
		return Zero, fmt.Errorf("checksum: %w", err)
	}
	return c, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParse(s string) Checksum {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the lowercase hex encoding.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Short returns the first 12 hex characters, for human-facing output.
func (c Checksum) Short() string {
	return c.String()[:12]
}

// IsZero reports whether c is the zero checksum.
func (c Checksum) IsZero() bool {
	return c == Zero
}

// Bytes returns a copy of the digest bytes.
func (c Checksum) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, c[:])
	return b
}

// MarshalText implements encoding.TextMarshaler (hex form).
func (c Checksum) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Checksum) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
