package tally_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/codetally/pkg/tally"
)

func TestCountRanksByCountThenFirstOccurrence(t *testing.T) {
	t.Parallel()

	got := tally.Count([]tally.Value{
		tally.V("gpl"), tally.V("mit"), tally.Null, tally.V("mit"), tally.V("apache"), tally.Null,
	})

	assert.Equal(t, []tally.Entry{
		e("mit", 2),
		null(2),
		e("gpl", 1),
		e("apache", 1),
	}, got)
}

func TestCountEmpty(t *testing.T) {
	t.Parallel()

	got := tally.Count(nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, tally.Expand(got))
}

func TestCountConservesTotal(t *testing.T) {
	t.Parallel()

	values := tally.Values("a", "b", "a", "c", "c", "c")

	assert.Equal(t, len(values), tally.Total(tally.Count(values)))
}

func TestCountExpandRoundTrip(t *testing.T) {
	t.Parallel()

	cases := [][]tally.Value{
		tally.Values("x"),
		tally.Values("b", "a", "b", "a", "c"),
		{tally.Null, tally.V("mit"), tally.Null},
	}

	for _, values := range cases {
		ranked := tally.Count(values)

		assert.Equal(t, ranked, tally.Count(tally.Expand(ranked)))
	}
}

func TestExpandRepeatsInRankedOrder(t *testing.T) {
	t.Parallel()

	got := tally.Expand([]tally.Entry{e("a", 2), null(1)})

	assert.Equal(t, []tally.Value{tally.V("a"), tally.V("a"), tally.Null}, got)
}
