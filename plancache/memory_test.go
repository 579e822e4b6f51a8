package plancache

import (
	"context"
	"testing"

	"github.com/parserator/kernel/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTripRewritesOriginToCached(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	plan := types.SearchPlan{
		ID:    "plan-1",
		Steps: []types.SearchStep{{TargetKey: "email", ValidationType: types.ValidationEmail}},
		Metadata: types.PlanMetadata{
			Origin: types.PlanOriginHeuristic,
		},
	}
	entry := NewEntry(plan, 0.8, nil, 100, 5, "default")

	require.NoError(t, Store(ctx, m, "key-1", entry))

	got, ok, err := Fetch(ctx, m, "key-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.PlanOriginCached, got.Plan.Metadata.Origin)
	assert.Equal(t, "plan-1", got.Plan.ID)
}

func TestMemoryMissReturnsNotOK(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryFetchClonesSoCallerMutationDoesNotCorruptStore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	plan := types.SearchPlan{ID: "p", Steps: []types.SearchStep{{TargetKey: "a"}}}
	require.NoError(t, Store(ctx, m, "k", NewEntry(plan, 0.5, nil, 0, 0, "")))

	got, _, _ := Fetch(ctx, m, "k")
	got.Plan.Steps[0].TargetKey = "mutated"

	again, _, _ := Fetch(ctx, m, "k")
	assert.Equal(t, "a", again.Plan.Steps[0].TargetKey)
}

func TestMemoryDeleteAndClear(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = Store(ctx, m, "a", NewEntry(types.SearchPlan{ID: "a"}, 0, nil, 0, 0, ""))
	_ = Store(ctx, m, "b", NewEntry(types.SearchPlan{ID: "b"}, 0, nil, 0, 0, ""))
	require.Equal(t, 2, m.Len())

	require.NoError(t, m.Delete(ctx, "a"))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, 0, m.Len())
}
