package tally_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
	"github.com/Sumatoshi-tech/codetally/pkg/tally"
)

// fixture builds a codebase rooted at "root" from slash-separated paths,
// creating intermediate directories on demand.
type fixture struct {
	t  *testing.T
	cb *codebase.Codebase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cb, err := codebase.New("root", false)
	require.NoError(t, err)

	return &fixture{t: t, cb: cb}
}

func (f *fixture) dir(p string) *codebase.Resource {
	f.t.Helper()

	current := f.cb.Root()
	if p == "" {
		return current
	}

	for _, seg := range strings.Split(p, "/") {
		child, ok := f.cb.Lookup(current.Path + "/" + seg)
		if !ok {
			var err error

			child, err = f.cb.AddChild(current, seg, false)
			require.NoError(f.t, err)
		}

		current = child
	}

	return current
}

func (f *fixture) file(p string, det codebase.Detections, facets ...string) *codebase.Resource {
	f.t.Helper()

	parentPath, name := "", p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		parentPath, name = p[:i], p[i+1:]
	}

	res, err := f.cb.AddChild(f.dir(parentPath), name, true)
	require.NoError(f.t, err)

	res.Detections = det
	res.Facets = facets

	return res
}

func allKinds() tally.Capabilities {
	return tally.NewCapabilities(tally.AllKinds...)
}

func runPass(t *testing.T, cb *codebase.Codebase, caps tally.Capabilities) *tally.Pass {
	t.Helper()

	pass, err := tally.NewSummarizer(tally.Options{Capabilities: caps}).Run(context.Background(), cb)
	require.NoError(t, err)

	t.Cleanup(func() { _ = pass.Close() })

	return pass
}

func summaryOf(t *testing.T, pass *tally.Pass, p string) tally.Summary {
	t.Helper()

	res, ok := pass.Codebase.Lookup(p)
	require.True(t, ok, p)

	s, err := pass.Summary(res)
	require.NoError(t, err)

	return s
}

func e(v string, n int) tally.Entry {
	return tally.Entry{Value: tally.V(v), Count: n}
}

func null(n int) tally.Entry {
	return tally.Entry{Value: tally.Null, Count: n}
}
