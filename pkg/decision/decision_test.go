package decision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariacomputecompany/fozzy/pkg/decision"
)

func TestCursorReplaysInOrder(t *testing.T) {
	t.Parallel()

	log := decision.Log{
		{Kind: decision.KindStep, Index: 0, Name: "start"},
		{Kind: decision.KindRandU64, Value: 42},
		{Kind: decision.KindTimeAdvanceMs, Ms: 10},
	}
	cur := decision.NewCursor(log)

	require.Equal(t, 3, cur.Remaining())

	d, ok := cur.Next()
	require.True(t, ok)
	assert.Equal(t, decision.KindStep, d.Kind)
	assert.Equal(t, 2, cur.Remaining())

	d, ok = cur.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(42), d.Value)

	d, ok = cur.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(10), d.Ms)

	_, ok = cur.Next()
	assert.False(t, ok)
}

func TestCursorReset(t *testing.T) {
	t.Parallel()

	cur := decision.NewCursor(decision.Log{{Kind: decision.KindRandU64, Value: 1}})
	_, _ = cur.Next()
	assert.Equal(t, 0, cur.Remaining())

	cur.Reset()
	assert.Equal(t, 1, cur.Remaining())
}
