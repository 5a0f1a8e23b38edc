package checksum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfDeterminism(t *testing.T) {
	a := Of(DomainDocument, []byte("hello"))
	b := Of(DomainDocument, []byte("hello"))

	assert.Equal(t, a, b, "Of must be deterministic")
	assert.Len(t, a.String(), 64, "SHA-256 hex is 64 characters")
	assert.False(t, a.IsZero())
}

func TestOfDomainSeparation(t *testing.T) {
	a := Of(DomainDocument, []byte("hello"))
	b := Of(DomainProject, []byte("hello"))
	assert.NotEqual(t, a, b, "different domains must produce different checksums")
}

func TestOfPartsBoundaries(t *testing.T) {
	a := OfParts(DomainEntity, []byte("ab"), []byte("c"))
	b := OfParts(DomainEntity, []byte("a"), []byte("bc"))
	assert.NotEqual(t, a, b, "length prefixes must disambiguate part boundaries")
}

func TestParseRoundTrip(t *testing.T) {
	c := Of(DomainDocument, []byte("x"))

	parsed, err := Parse(c.String())
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
	assert.Equal(t, c.String()[:12], c.Short())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("abc")
	assert.Error(t, err)

	_, err = Parse(string(make([]byte, 64)))
	assert.Error(t, err)

	assert.Panics(t, func() { MustParse("zz") })
}

func TestChecksumJSON(t *testing.T) {
	c := Of(DomainDocument, []byte("x"))

	data, err := json.Marshal(map[string]Checksum{"c": c})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"`+c.String()+`"}`, string(data))

	var decoded map[string]Checksum
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, c, decoded["c"])
}

func TestBytesIsCopy(t *testing.T) {
	c := Of(DomainDocument, []byte("x"))
	b := c.Bytes()
	b[0] ^= 0xff
	assert.NotEqual(t, b[0], c[0])
}
