package tally_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/codetally/pkg/tally"
)

func TestValueNull(t *testing.T) {
	t.Parallel()

	assert.True(t, tally.Null.IsNull())
	assert.True(t, tally.Value{}.IsNull())
	assert.False(t, tally.V("").IsNull())
	assert.Equal(t, "(none)", tally.Null.String())
	assert.Equal(t, "mit", tally.V("mit").String())
	assert.NotEqual(t, tally.Null, tally.V(""))
}

func TestEntryJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal([]tally.Entry{e("mit", 2), null(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"value":"mit","count":2},{"value":null,"count":1}]`, string(data))

	var back []tally.Entry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []tally.Entry{e("mit", 2), null(1)}, back)
}

func TestEntryYAML(t *testing.T) {
	t.Parallel()

	data, err := yaml.Marshal([]tally.Entry{e("mit", 2), null(1)})
	require.NoError(t, err)
	assert.YAMLEq(t, "- value: mit\n  count: 2\n- value: null\n  count: 1\n", string(data))

	var back []tally.Entry
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, []tally.Entry{e("mit", 2), null(1)}, back)
}
