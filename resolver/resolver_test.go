package resolver

import (
	"context"
	"testing"

	"github.com/parserator/kernel/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesJSONFirst(t *testing.T) {
	reg := NewRegistry(JSONResolver{}, TypedRegexResolver{})
	step := types.SearchStep{TargetKey: "email", ValidationType: types.ValidationEmail, IsRequired: true}

	res, diags, err := reg.ResolveField(context.Background(), `{"email": "ada@example.com"}`, step)
	require.NoError(t, err)
	assert.True(t, res.Defined)
	assert.Equal(t, "ada@example.com", res.Value)
	assert.Empty(t, diags)
}

func TestRegistryFallsThroughToNextResolver(t *testing.T) {
	reg := NewRegistry(JSONResolver{}, TypedRegexResolver{})
	step := types.SearchStep{TargetKey: "email", ValidationType: types.ValidationEmail, IsRequired: true}

	res, _, err := reg.ResolveField(context.Background(), "Contact: ada@example.com", step)
	require.NoError(t, err)
	assert.True(t, res.Defined)
	assert.Equal(t, "ada@example.com", res.Value)
}

func TestRegistrySkipsWhenNoResolverMatches(t *testing.T) {
	reg := NewRegistry(JSONResolver{}, TypedRegexResolver{})
	step := types.SearchStep{TargetKey: "email", ValidationType: types.ValidationEmail, IsRequired: true}

	res, _, err := reg.ResolveField(context.Background(), "no contact info here", step)
	require.NoError(t, err)
	assert.False(t, res.Defined)
}

func TestSectionResolverFindsLabeledLineInSection(t *testing.T) {
	input := "CONTACT INFO\nEmail: ada@example.com\nPhone: 555-1234\n"
	step := types.SearchStep{TargetKey: "email", ValidationType: types.ValidationEmail}

	res, err := SectionResolver{}.Resolve(context.Background(), input, step)
	require.NoError(t, err)
	assert.True(t, res.Defined)
	assert.Equal(t, "ada@example.com", res.Value)
}

func TestLooseKVResolverMatchesSnakeVariant(t *testing.T) {
	input := "email_address: ada@example.com"
	step := types.SearchStep{TargetKey: "emailAddress", ValidationType: types.ValidationEmail}

	res, err := LooseKVResolver{}.Resolve(context.Background(), input, step)
	require.NoError(t, err)
	assert.True(t, res.Defined)
}
