package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// persisterState is a struct for persister round-trip testing.
type persisterState struct {
	Label string `json:"label" yaml:"label"`
	Value int    `json:"value" yaml:"value"`
}

func TestPersister_SaveLoad(t *testing.T) {
	t.Parallel()

	for _, codec := range []Codec{NewJSONCodec(), NewYAMLCodec(), NewLZ4Codec(NewJSONCodec())} {
		dir := t.TempDir()

		p := NewPersister[persisterState]("mystate", codec)
		assert.Equal(t, "mystate", p.Basename())

		original := persisterState{Label: "hello", Value: 42}

		require.NoError(t, p.Save(dir, &original))

		restored, err := p.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, original, restored)

		require.NoError(t, p.Remove(dir))

		_, err = p.Load(dir)
		require.Error(t, err)
	}
}

func TestPersister_LoadMissingFile(t *testing.T) {
	t.Parallel()

	p := NewPersister[persisterState]("missing", NewJSONCodec())

	_, err := p.Load(t.TempDir())

	assert.Error(t, err)
}

func TestPersister_SaveInvalidDir(t *testing.T) {
	t.Parallel()

	p := NewPersister[persisterState]("state", NewJSONCodec())

	err := p.Save("/nonexistent/path", &persisterState{Label: "x"})

	assert.Error(t, err)
}
