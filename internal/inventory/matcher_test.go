package inventory

import (
	"testing"

	"podsync/internal/services/printify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opts(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func TestOptionsKeyIsOrderIndependent(t *testing.T) {
	a := map[string]string{"size": "M", "color": "red"}
	b := map[string]string{"color": "red", "size": "M"}
	assert.Equal(t, NewOptionsKey(a), NewOptionsKey(b))
}

func TestOptionsKeyDistinguishesMappings(t *testing.T) {
	cases := []struct {
		name string
		a, b map[string]string
	}{
		{"different value", opts("size", "M"), opts("size", "L")},
		{"case sensitive", opts("color", "Red"), opts("color", "red")},
		{"extra attribute", opts("size", "M"), opts("size", "M", "color", "red")},
		{"separator in content", opts("a", "b:c"), opts("a:b", "c")},
		{"empty against non-empty", nil, opts("size", "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEqual(t, NewOptionsKey(tc.a), NewOptionsKey(tc.b))
		})
	}
}

func TestMatchVariantsFullMatch(t *testing.T) {
	existing := []printify.Variant{
		{ID: 1, Title: "M / Red", Price: 2500, IsEnabled: true, Options: opts("size", "M", "color", "red")},
		{ID: 2, Title: "L / Red", Price: 2700, IsEnabled: false, Options: opts("size", "L", "color", "red")},
	}
	candidates := []printify.CatalogVariant{
		{ID: 902, Options: opts("color", "red", "size", "L")},
		{ID: 901, Options: opts("color", "red", "size", "M")},
		{ID: 903, Options: opts("color", "blue", "size", "M")},
	}

	res := MatchVariants(existing, candidates)
	require.True(t, res.Matched)
	assert.Nil(t, res.Missing)
	require.Len(t, res.Variants, 2)

	assert.Equal(t, 901, res.Variants[0].ID)
	assert.Equal(t, 2500, res.Variants[0].Price)
	assert.True(t, res.Variants[0].IsEnabled)

	assert.Equal(t, 902, res.Variants[1].ID)
	assert.Equal(t, 2700, res.Variants[1].Price)
	assert.False(t, res.Variants[1].IsEnabled)
}

func TestMatchVariantsRejectsWholeCandidateOnSingleMiss(t *testing.T) {
	existing := []printify.Variant{
		{ID: 1, Price: 2500, IsEnabled: true, Options: opts("size", "M", "color", "red")},
		{ID: 2, Price: 2700, IsEnabled: true, Options: opts("size", "XL", "color", "red")},
		{ID: 3, Price: 2900, IsEnabled: true, Options: opts("size", "L", "color", "red")},
	}
	candidates := []printify.CatalogVariant{
		{ID: 901, Options: opts("size", "M", "color", "red")},
		{ID: 903, Options: opts("size", "L", "color", "red")},
	}

	res := MatchVariants(existing, candidates)
	assert.False(t, res.Matched)
	assert.Empty(t, res.Variants)
	require.NotNil(t, res.Missing)
	assert.Equal(t, 2, res.Missing.ID)
}

func TestMatchVariantsRequiresExactValues(t *testing.T) {
	existing := []printify.Variant{{ID: 1, Options: opts("color", "Red")}}
	candidates := []printify.CatalogVariant{{ID: 9, Options: opts("color", "red")}}

	assert.False(t, MatchVariants(existing, candidates).Matched)
}

func TestMatchVariantsFirstDuplicateWins(t *testing.T) {
	existing := []printify.Variant{{ID: 1, Price: 100, Options: opts("size", "M")}}
	candidates := []printify.CatalogVariant{
		{ID: 50, Options: opts("size", "M")},
		{ID: 60, Options: opts("size", "M")},
	}

	res := MatchVariants(existing, candidates)
	require.True(t, res.Matched)
	assert.Equal(t, 50, res.Variants[0].ID)
}

func TestMatchVariantsEmptyExistingMatchesTrivially(t *testing.T) {
	res := MatchVariants(nil, []printify.CatalogVariant{{ID: 1}})
	assert.True(t, res.Matched)
	assert.Empty(t, res.Variants)
}

func TestMatchVariantsDoesNotMutateInput(t *testing.T) {
	existing := []printify.Variant{{ID: 1, Price: 100, IsEnabled: true, Options: opts("size", "M")}}
	candidates := []printify.CatalogVariant{{ID: 7, Options: opts("size", "M")}}

	res := MatchVariants(existing, candidates)
	require.True(t, res.Matched)
	res.Variants[0].Options["size"] = "changed"

	assert.Equal(t, 1, existing[0].ID)
	assert.Equal(t, "M", existing[0].Options["size"])
}

func TestMatchVariantsPreservesPriceAndFlagForEveryVariant(t *testing.T) {
	sizes := []string{"XS", "S", "M", "L", "XL", "2XL"}
	var existing []printify.Variant
	var candidates []printify.CatalogVariant
	for i, s := range sizes {
		existing = append(existing, printify.Variant{
			ID: i + 1, Price: 1000 + i*111, IsEnabled: i%2 == 0, Options: opts("size", s),
		})
		// candidates listed in reverse order with unrelated ids
		candidates = append([]printify.CatalogVariant{{ID: 500 + i, Options: opts("size", s)}}, candidates...)
	}

	res := MatchVariants(existing, candidates)
	require.True(t, res.Matched)
	require.Len(t, res.Variants, len(existing))
	for i, v := range res.Variants {
		assert.Equal(t, existing[i].Price, v.Price)
		assert.Equal(t, existing[i].IsEnabled, v.IsEnabled)
		assert.Equal(t, 500+i, v.ID)
	}
}
