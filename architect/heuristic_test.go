package architect

import (
	"context"
	"testing"

	"github.com/parserator/kernel/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicBuildPlanInfersValidationTypes(t *testing.T) {
	h := NewHeuristic()
	schema := map[string]types.SchemaField{
		"email":      types.NewHintField("email"),
		"full_name":  types.NewHintField(""),
		"is_active":  types.NewOpaqueField(nil),
	}

	plan, diags, err := h.BuildPlan(context.Background(), schema, `{"email":"a@b.com"}`, "extract contact info")
	require.NoError(t, err)
	assert.Len(t, plan.Steps, 3)
	assert.NotEmpty(t, diags)
	assert.Equal(t, types.PlanOriginHeuristic, plan.Metadata.Origin)

	var byKey = map[string]types.SearchStep{}
	for _, s := range plan.Steps {
		byKey[s.TargetKey] = s
	}
	assert.Equal(t, types.ValidationEmail, byKey["email"].ValidationType)
	assert.Equal(t, types.ValidationName, byKey["full_name"].ValidationType)
	assert.Equal(t, types.ValidationBoolean, byKey["is_active"].ValidationType)
}

func TestHeuristicBuildPlanRejectsEmptySchema(t *testing.T) {
	h := NewHeuristic()
	_, _, err := h.BuildPlan(context.Background(), nil, "input", "")
	assert.Error(t, err)
}

func TestHeuristicBuildPlanIsDeterministicRegardlessOfMapOrder(t *testing.T) {
	h := NewHeuristic()
	schema := map[string]types.SchemaField{
		"zebra": types.NewHintField("string"),
		"alpha": types.NewHintField("string"),
	}
	plan, _, err := h.BuildPlan(context.Background(), schema, "x", "")
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "alpha", plan.Steps[0].TargetKey)
	assert.Equal(t, "zebra", plan.Steps[1].TargetKey)
}
