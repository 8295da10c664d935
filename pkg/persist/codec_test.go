package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a struct for round-trip codec testing.
type testState struct {
	Name   string         `json:"name"   yaml:"name"`
	Count  int            `json:"count"  yaml:"count"`
	Values map[string]int `json:"values" yaml:"values"`
}

func roundTrip(t *testing.T, codec Codec) {
	t.Helper()

	original := testState{
		Name:   "test",
		Count:  42,
		Values: map[string]int{"a": 1, "b": 2},
	}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var decoded testState

	require.NoError(t, codec.Decode(&buf, &decoded))

	assert.Equal(t, original, decoded)
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Parallel()

	roundTrip(t, NewJSONCodec())
	roundTrip(t, &JSONCodec{})
	roundTrip(t, NewYAMLCodec())
	roundTrip(t, NewLZ4Codec(&JSONCodec{}))
	roundTrip(t, NewLZ4Codec(NewYAMLCodec()))
}

func TestCodecs_Extension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json", NewJSONCodec().Extension())
	assert.Equal(t, ".yaml", NewYAMLCodec().Extension())
	assert.Equal(t, ".json.lz4", NewLZ4Codec(NewJSONCodec()).Extension())
}

func TestCodecFor(t *testing.T) {
	t.Parallel()

	c, err := CodecFor(FormatJSON)
	require.NoError(t, err)
	assert.IsType(t, &JSONCodec{}, c)

	c, err = CodecFor(FormatYAML)
	require.NoError(t, err)
	assert.IsType(t, &YAMLCodec{}, c)

	_, err = CodecFor("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestJSONCodec_CompactNoIndent(t *testing.T) {
	t.Parallel()

	codec := &JSONCodec{Indent: ""}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, testState{Name: "compact", Count: 1}))

	// Compact JSON has at most one trailing newline (from json.Encoder).
	assert.LessOrEqual(t, strings.Count(buf.String(), "\n"), 1)
}

func TestJSONCodec_PrettyPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, NewJSONCodec().Encode(&buf, testState{Name: "pretty", Count: 1}))

	assert.Contains(t, buf.String(), defaultIndent)
}

func TestJSONCodec_Errors(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	var decoded testState

	err := codec.Decode(strings.NewReader("not valid json{{{"), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json decode")

	// Channels cannot be JSON-encoded.
	var buf bytes.Buffer

	err = codec.Encode(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json encode")
}

func TestYAMLCodec_DecodeError(t *testing.T) {
	t.Parallel()

	var decoded testState

	err := NewYAMLCodec().Decode(strings.NewReader("name: [unterminated"), &decoded)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml decode")
}

func TestLZ4Codec_Compresses(t *testing.T) {
	t.Parallel()

	state := testState{Name: strings.Repeat("abc", 1000)}

	var plain, packed bytes.Buffer

	require.NoError(t, (&JSONCodec{}).Encode(&plain, state))
	require.NoError(t, NewLZ4Codec(&JSONCodec{}).Encode(&packed, state))

	assert.Less(t, packed.Len(), plain.Len())
}

func TestLZ4Codec_DecodeError(t *testing.T) {
	t.Parallel()

	var decoded testState

	err := NewLZ4Codec(NewJSONCodec()).Decode(strings.NewReader("not lz4"), &decoded)

	require.Error(t, err)
}

func TestSaveLoadState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	codec := NewLZ4Codec(NewJSONCodec())

	original := testState{Name: "load-test", Count: 77, Values: map[string]int{"k": 5}}

	require.NoError(t, SaveState(dir, "test_state", codec, original))

	_, err := os.Stat(filepath.Join(dir, "test_state.json.lz4"))
	require.NoError(t, err)

	var loaded testState

	require.NoError(t, LoadState(dir, "test_state", codec, &loaded))
	assert.Equal(t, original, loaded)

	require.NoError(t, RemoveState(dir, "test_state", codec))
	require.NoError(t, RemoveState(dir, "test_state", codec))

	_, err = os.Stat(filepath.Join(dir, "test_state.json.lz4"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadState_FileNotFound(t *testing.T) {
	t.Parallel()

	var state testState

	err := LoadState(t.TempDir(), "nonexistent", NewJSONCodec(), &state)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")
}

func TestSaveState_InvalidDirectory(t *testing.T) {
	t.Parallel()

	err := SaveState("/nonexistent/path/that/does/not/exist", "test", NewJSONCodec(), testState{Name: "test"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")
}

func TestSaveState_EncodeError(t *testing.T) {
	t.Parallel()

	// Channels cannot be JSON-encoded.
	err := SaveState(t.TempDir(), "bad", NewJSONCodec(), make(chan int))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode")
}

func TestLoadState_DecodeError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("not json{{{"), 0o600))

	var state testState

	err := LoadState(dir, "corrupt", NewJSONCodec(), &state)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
