package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"b": 1, "a": "x", "c": []any{true, nil}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1,"c":[true,null]}`, string(out))
}

func TestMarshalCanonical_HonoursStructTags(t *testing.T) {
	req := NewResourceRequest("https://a.example/manifest.json", NewResourceRef("catalog", "movie", "top"))
	out, err := MarshalCanonical(req)
	require.NoError(t, err)
	assert.Equal(t, `{"base":"https://a.example/manifest.json","path":{"id":"top","resource":"catalog","type":"movie"}}`, string(out))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(out))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + combining acute accent normalizes to a single code point
	out, err := MarshalCanonical("cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"caf\u00e9\"", string(out))
}

func TestMarshalCanonical_LineSeparatorLiteral(t *testing.T) {
	out, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(out))
}

func TestMarshalCanonical_PreservesNumbers(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"big": int64(9007199254740993), "f": 1.5})
	require.NoError(t, err)
	assert.Equal(t, `{"big":9007199254740993,"f":1.5}`, string(out))
}

func TestCompareKeysRFC8785(t *testing.T) {
	assert.Equal(t, 0, compareKeysRFC8785("a", "a"))
	assert.Equal(t, -1, compareKeysRFC8785("a", "ab"))
	assert.Equal(t, 1, compareKeysRFC8785("b", "a"))
	// U+FFFF sorts after a surrogate pair in UTF-16 but before it in UTF-8
	assert.Equal(t, 1, compareKeysRFC8785("\uffff", "\U0001F600"))
}
